// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitter/internal/models"
)

// ErrNotFound is returned when a ledger does not exist.
var ErrNotFound = errors.New("ledger not found")

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateLedger persists a new ledger.
	// The record's ID, Title and CreatedAt fields are populated when empty.
	CreateLedger(ctx context.Context, record *models.LedgerRecord) error

	// GetLedger retrieves a ledger with all persons, receipts and items,
	// in declaration order. Returns an error wrapping ErrNotFound if missing.
	GetLedger(ctx context.Context, ledgerID string) (*models.LedgerRecord, error)

	// ListLedgers returns ledger metadata (without persons or receipts),
	// newest first.
	ListLedgers(ctx context.Context) ([]*models.LedgerRecord, error)

	// DeleteLedger removes a ledger and everything it owns.
	DeleteLedger(ctx context.Context, ledgerID string) error

	// Close releases any resources held by the store.
	Close() error
}
