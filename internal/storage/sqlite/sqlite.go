// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/splitter/internal/models"
	"github.com/mmynk/splitter/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are a per-connection setting, so request them in the DSN
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateLedger persists a new ledger to the database.
func (s *SQLiteStore) CreateLedger(ctx context.Context, record *models.LedgerRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}
	if record.Title == "" {
		record.Title = generateTitle(record.Ledger.Receipts)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO ledgers (id, title, created_at) VALUES (?, ?, ?)",
		record.ID, record.Title, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger: %w", err)
	}

	for i, person := range record.Ledger.Persons {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO persons (ledger_id, position, name) VALUES (?, ?, ?)",
			record.ID, i, person.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	for i, receipt := range record.Ledger.Receipts {
		receiptID := uuid.New().String()
		_, err = tx.ExecContext(ctx,
			"INSERT INTO receipts (id, ledger_id, position, name, paid_by) VALUES (?, ?, ?, ?, ?)",
			receiptID, record.ID, i, receipt.Name, receipt.PaidBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert receipt: %w", err)
		}

		for j, item := range receipt.Items {
			itemID := uuid.New().String()
			_, err = tx.ExecContext(ctx,
				"INSERT INTO items (id, receipt_id, position, name, cost) VALUES (?, ?, ?, ?, ?)",
				itemID, receiptID, j, item.Name, item.Cost,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item: %w", err)
			}

			for k, person := range item.SharedBy {
				_, err = tx.ExecContext(ctx,
					"INSERT INTO item_sharers (item_id, position, person) VALUES (?, ?, ?)",
					itemID, k, person,
				)
				if err != nil {
					return fmt.Errorf("failed to insert item sharer: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetLedger retrieves a ledger by ID, including all persons, receipts and items.
func (s *SQLiteStore) GetLedger(ctx context.Context, ledgerID string) (*models.LedgerRecord, error) {
	record := &models.LedgerRecord{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, created_at FROM ledgers WHERE id = ?",
		ledgerID,
	).Scan(&record.ID, &record.Title, &record.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, ledgerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	persons, err := queryStrings(ctx, s.db,
		"SELECT name FROM persons WHERE ledger_id = ? ORDER BY position", ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get persons: %w", err)
	}
	for _, name := range persons {
		record.Ledger.Persons = append(record.Ledger.Persons, models.Person{Name: name})
	}

	receiptIDs, receipts, err := s.getReceipts(ctx, ledgerID)
	if err != nil {
		return nil, err
	}

	for i := range receipts {
		itemIDs, items, err := s.getItems(ctx, receiptIDs[i])
		if err != nil {
			return nil, err
		}
		for j := range items {
			sharers, err := queryStrings(ctx, s.db,
				"SELECT person FROM item_sharers WHERE item_id = ? ORDER BY position", itemIDs[j])
			if err != nil {
				return nil, fmt.Errorf("failed to get item sharers: %w", err)
			}
			items[j].SharedBy = sharers
		}
		receipts[i].Items = items
	}
	record.Ledger.Receipts = receipts

	return record, nil
}

func (s *SQLiteStore) getReceipts(ctx context.Context, ledgerID string) ([]string, []models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, paid_by FROM receipts WHERE ledger_id = ? ORDER BY position",
		ledgerID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get receipts: %w", err)
	}
	defer rows.Close()

	var ids []string
	var receipts []models.Receipt
	for rows.Next() {
		var id string
		var receipt models.Receipt
		if err := rows.Scan(&id, &receipt.Name, &receipt.PaidBy); err != nil {
			return nil, nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		ids = append(ids, id)
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return ids, receipts, nil
}

func (s *SQLiteStore) getItems(ctx context.Context, receiptID string) ([]string, []models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, cost FROM items WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var ids []string
	var items []models.Item
	for rows.Next() {
		var id string
		var item models.Item
		if err := rows.Scan(&id, &item.Name, &item.Cost); err != nil {
			return nil, nil, fmt.Errorf("failed to scan item: %w", err)
		}
		ids = append(ids, id)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return ids, items, nil
}

// ListLedgers returns ledger metadata, newest first.
func (s *SQLiteStore) ListLedgers(ctx context.Context) ([]*models.LedgerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, created_at FROM ledgers ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	var records []*models.LedgerRecord
	for rows.Next() {
		record := &models.LedgerRecord{}
		if err := rows.Scan(&record.ID, &record.Title, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledgers: %w", err)
	}

	return records, nil
}

// DeleteLedger removes a ledger by ID.
func (s *SQLiteStore) DeleteLedger(ctx context.Context, ledgerID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM ledgers WHERE id = ?", ledgerID)
	if err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, ledgerID)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryStrings(ctx context.Context, q queryer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// generateTitle creates an auto-generated title from receipt names.
func generateTitle(receipts []models.Receipt) string {
	if len(receipts) == 0 {
		return fmt.Sprintf("Ledger - %s", time.Now().Format("Jan 2, 2006"))
	}
	names := make([]string, len(receipts))
	for i, r := range receipts {
		names[i] = r.Name
	}
	if len(names) <= 3 {
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s and %d more",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
