package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitter/internal/calculator"
	"github.com/mmynk/splitter/internal/document"
	"github.com/mmynk/splitter/internal/report"
)

func TestLedgerService_ResolveDocument(t *testing.T) {
	svc := NewLedgerService(nil, document.NewYAMLDecoder(), nil, "")
	assert.Equal(t, report.DefaultUnit, svc.Unit())

	ledger, table, err := svc.ResolveDocument([]byte(dinner))
	require.NoError(t, err)
	assert.Len(t, ledger.Receipts, 1)

	got, ok := table.Owes("Alice", "Bob")
	require.True(t, ok)
	assert.InDelta(t, 8.0, got, 1e-9)
	assert.Empty(t, table["Bob"])
}

func TestLedgerService_UnknownPerson(t *testing.T) {
	svc := NewLedgerService(nil, document.NewYAMLDecoder(), nil, "")

	_, _, err := svc.ResolveDocument([]byte("persons: [Alice]\nreceipts:\n  - name: Lunch\n    paid_by: Alice\n    items:\n      - name: soup\n        cost: 4\n        shared_by: [Zed]\n"))
	require.Error(t, err)

	var unknown *calculator.UnknownPersonError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Zed", unknown.Name)
	assert.Equal(t, calculator.RoleSharer, unknown.Role)
}

func TestLedgerService_StorageDisabled(t *testing.T) {
	svc := NewLedgerService(nil, document.NewYAMLDecoder(), nil, "")
	ctx := context.Background()

	_, err := svc.CreateLedger(ctx, []byte(dinner), "")
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = svc.ListLedgers(ctx)
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, _, err = svc.LedgerBalances(ctx, "id")
	assert.ErrorIs(t, err, ErrStorageDisabled)
	assert.ErrorIs(t, svc.DeleteLedger(ctx, "id"), ErrStorageDisabled)
}
