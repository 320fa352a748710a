// Command splitter prints who owes whom for a ledger document.
//
// Usage:
//
//	splitter [-unit PLN] [-format text|json] FILE
//	splitter token SUBJECT
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mmynk/splitter/internal/auth"
	"github.com/mmynk/splitter/internal/config"
	"github.com/mmynk/splitter/internal/document"
	"github.com/mmynk/splitter/internal/report"
	"github.com/mmynk/splitter/internal/service"
	"github.com/mmynk/splitter/pkg/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "splitter: failed to load config: %v\n", err)
		return 1
	}
	slog.SetDefault(logging.New(stderr, logging.ParseLevel(cfg.LogLevel)))

	if len(args) > 0 && args[0] == "token" {
		return runToken(cfg, args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("splitter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	unit := fs.String("unit", cfg.Unit, "currency label printed next to amounts")
	format := fs.String("format", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: splitter [-unit UNIT] [-format text|json] FILE")
		fmt.Fprintln(stderr, "       splitter token SUBJECT")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "splitter: unsupported format %q\n", *format)
		return 2
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read input", "path", path, "error", err)
		return 1
	}

	svc := service.NewLedgerService(nil, document.NewYAMLDecoder(), nil, *unit)
	_, table, err := svc.ResolveDocument(data)
	if err != nil {
		slog.Error("Failed to resolve balances", "path", path, "error", err)
		return 1
	}

	if *format == "json" {
		err = report.WriteJSON(stdout, table, svc.Unit())
	} else {
		err = report.WriteLines(stdout, report.TextFormatter{Unit: svc.Unit()}.Format(table))
	}
	if err != nil {
		slog.Error("Failed to print balances", "error", err)
		return 1
	}
	return 0
}

// runToken prints a bearer token for the HTTP API.
func runToken(cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: splitter token SUBJECT")
		return 2
	}
	if !cfg.AuthEnabled() {
		slog.Error("Cannot issue token", "error", "SPLITTER_JWT_SECRET is not set")
		return 1
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).Generate(args[0])
	if err != nil {
		slog.Error("Failed to issue token", "error", err)
		return 1
	}
	fmt.Fprintln(stdout, token)
	return 0
}
