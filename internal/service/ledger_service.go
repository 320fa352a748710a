// Package service orchestrates decoding, balance resolution and ledger
// storage, and exposes them over HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitter/internal/calculator"
	"github.com/mmynk/splitter/internal/document"
	"github.com/mmynk/splitter/internal/metrics"
	"github.com/mmynk/splitter/internal/models"
	"github.com/mmynk/splitter/internal/report"
	"github.com/mmynk/splitter/internal/storage"
)

// ErrStorageDisabled is returned by ledger operations when no store is configured.
var ErrStorageDisabled = errors.New("ledger storage is not configured")

// LedgerService resolves balances for documents and stored ledgers.
type LedgerService struct {
	store   storage.Store
	decoder document.Decoder
	metrics *metrics.Metrics
	unit    string
}

// NewLedgerService creates a LedgerService. store and m may be nil: without a
// store only document resolution is available, without metrics nothing is
// recorded.
func NewLedgerService(store storage.Store, decoder document.Decoder, m *metrics.Metrics, unit string) *LedgerService {
	if unit == "" {
		unit = report.DefaultUnit
	}
	return &LedgerService{store: store, decoder: decoder, metrics: m, unit: unit}
}

// Unit returns the currency label used in reports.
func (s *LedgerService) Unit() string {
	return s.unit
}

// Resolve computes the balance table of ledger.
func (s *LedgerService) Resolve(ledger *models.Ledger) (calculator.BalanceTable, error) {
	items := 0
	for _, r := range ledger.Receipts {
		items += len(r.Items)
	}

	start := time.Now()
	table, err := calculator.Resolve(ledger.Persons, ledger.Receipts)
	elapsed := time.Since(start)
	s.metrics.ObserveResolve(items, elapsed, err)
	if err != nil {
		return nil, err
	}

	slog.Debug("Balances resolved",
		"persons", len(ledger.Persons),
		"receipts", len(ledger.Receipts),
		"items", items,
		"duration", elapsed,
	)
	return table, nil
}

// ResolveDocument decodes data and resolves its balances.
func (s *LedgerService) ResolveDocument(data []byte) (*models.Ledger, calculator.BalanceTable, error) {
	ledger, err := s.decoder.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	table, err := s.Resolve(ledger)
	if err != nil {
		return nil, nil, err
	}
	return ledger, table, nil
}

// CreateLedger decodes data and stores it. Documents that reference
// undeclared persons are rejected, so every stored ledger resolves.
func (s *LedgerService) CreateLedger(ctx context.Context, data []byte, title string) (*models.LedgerRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	ledger, _, err := s.ResolveDocument(data)
	if err != nil {
		return nil, err
	}

	record := &models.LedgerRecord{Title: title, Ledger: *ledger}
	if err := s.store.CreateLedger(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store ledger: %w", err)
	}

	slog.Info("Ledger stored",
		"ledger_id", record.ID,
		"title", record.Title,
		"receipts", len(ledger.Receipts),
	)
	return record, nil
}

// GetLedger returns a stored ledger.
func (s *LedgerService) GetLedger(ctx context.Context, id string) (*models.LedgerRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.GetLedger(ctx, id)
}

// ListLedgers returns stored ledger metadata, newest first.
func (s *LedgerService) ListLedgers(ctx context.Context) ([]*models.LedgerRecord, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	return s.store.ListLedgers(ctx)
}

// DeleteLedger removes a stored ledger.
func (s *LedgerService) DeleteLedger(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	if err := s.store.DeleteLedger(ctx, id); err != nil {
		return err
	}
	slog.Info("Ledger deleted", "ledger_id", id)
	return nil
}

// LedgerBalances resolves the balances of a stored ledger.
func (s *LedgerService) LedgerBalances(ctx context.Context, id string) (*models.LedgerRecord, calculator.BalanceTable, error) {
	record, err := s.GetLedger(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	table, err := s.Resolve(&record.Ledger)
	if err != nil {
		return nil, nil, err
	}
	return record, table, nil
}
