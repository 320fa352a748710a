package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitter/internal/calculator"
	"github.com/mmynk/splitter/internal/document"
	"github.com/mmynk/splitter/internal/report"
	"github.com/mmynk/splitter/internal/storage"
)

// MaxDocumentSize caps request bodies.
const MaxDocumentSize = 1 << 20

// Handler exposes LedgerService over HTTP.
type Handler struct {
	svc *LedgerService
}

// NewHandler creates a Handler for svc.
func NewHandler(svc *LedgerService) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the API routes on mux. Each route is wrapped by wrap,
// which may be nil.
func (h *Handler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	if wrap == nil {
		wrap = func(next http.Handler) http.Handler { return next }
	}
	routes := map[string]http.HandlerFunc{
		"POST /api/resolve":              h.resolve,
		"POST /api/ledgers":              h.createLedger,
		"GET /api/ledgers":               h.listLedgers,
		"GET /api/ledgers/{id}":          h.getLedger,
		"DELETE /api/ledgers/{id}":       h.deleteLedger,
		"GET /api/ledgers/{id}/balances": h.ledgerBalances,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, wrap(fn))
	}
}

// resolve handles POST /api/resolve?format=json|text.
func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	_, table, err := h.svc.ResolveDocument(data)
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeTable(w, r, table, func(s report.Summary) any { return s })
}

// createLedger handles POST /api/ledgers?title=...
func (h *Handler) createLedger(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := h.svc.CreateLedger(r.Context(), data, r.URL.Query().Get("title"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSummary(record))
}

func (h *Handler) listLedgers(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListLedgers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	summaries := make([]ledgerSummary, len(records))
	for i, record := range records {
		summaries[i] = toSummary(record)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ledgers": summaries})
}

func (h *Handler) getLedger(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.GetLedger(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocument(record))
}

func (h *Handler) deleteLedger(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLedger(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ledgerBalances handles GET /api/ledgers/{id}/balances?format=json|text.
func (h *Handler) ledgerBalances(w http.ResponseWriter, r *http.Request) {
	record, table, err := h.svc.LedgerBalances(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.writeTable(w, r, table, func(s report.Summary) any {
		return ledgerBalances{ID: record.ID, Title: record.Title, Summary: s}
	})
}

// writeTable renders table as text lines or as JSON built by wrap.
func (h *Handler) writeTable(w http.ResponseWriter, r *http.Request, table calculator.BalanceTable, wrap func(report.Summary) any) {
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, wrap(report.NewSummary(table, h.svc.Unit())))
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := report.WriteLines(w, report.TextFormatter{Unit: h.svc.Unit()}.Format(table)); err != nil {
			slog.Warn("Failed to write response", "error", err)
		}
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unsupported format %q", format)})
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, document.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, calculator.ErrUnknownPerson):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStorageDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}
