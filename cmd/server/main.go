package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitter/internal/auth"
	"github.com/mmynk/splitter/internal/config"
	"github.com/mmynk/splitter/internal/document"
	"github.com/mmynk/splitter/internal/metrics"
	"github.com/mmynk/splitter/internal/middleware"
	"github.com/mmynk/splitter/internal/service"
	"github.com/mmynk/splitter/internal/storage/sqlite"
	"github.com/mmynk/splitter/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	m := metrics.New()
	svc := service.NewLedgerService(store, document.NewYAMLDecoder(), m, cfg.Unit)

	var requireAuth func(http.Handler) http.Handler
	if cfg.AuthEnabled() {
		requireAuth = middleware.RequireAuth(auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL))
		slog.Info("API authentication enabled")
	} else {
		slog.Warn("API authentication disabled, set SPLITTER_JWT_SECRET to enable")
	}

	mux := http.NewServeMux()
	service.NewHandler(svc).Register(mux, requireAuth)
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Wrap with h2c for HTTP/2 without TLS
	handler := h2c.NewHandler(middleware.Logging(m.Middleware(mux)), &http2.Server{})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Server starting", "address", cfg.Addr, "unit", cfg.Unit)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
