package service

import (
	"github.com/mmynk/splitter/internal/models"
	"github.com/mmynk/splitter/internal/report"
)

// ledgerDocument is the input document format plus storage metadata.
type ledgerDocument struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	CreatedAt int64             `json:"created_at"`
	Persons   []string          `json:"persons"`
	Receipts  []receiptDocument `json:"receipts"`
}

type receiptDocument struct {
	Name   string         `json:"name"`
	PaidBy string         `json:"paid_by"`
	Items  []itemDocument `json:"items"`
}

type itemDocument struct {
	Name     string   `json:"name"`
	Cost     float64  `json:"cost"`
	SharedBy []string `json:"shared_by,omitempty"`
}

// ledgerSummary is a ledger without its contents.
type ledgerSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
}

type ledgerBalances struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	report.Summary
}

type errorResponse struct {
	Error string `json:"error"`
}

func toSummary(record *models.LedgerRecord) ledgerSummary {
	return ledgerSummary{ID: record.ID, Title: record.Title, CreatedAt: record.CreatedAt}
}

func toDocument(record *models.LedgerRecord) ledgerDocument {
	doc := ledgerDocument{
		ID:        record.ID,
		Title:     record.Title,
		CreatedAt: record.CreatedAt,
		Persons:   record.Ledger.PersonNames(),
		Receipts:  make([]receiptDocument, len(record.Ledger.Receipts)),
	}
	for i, r := range record.Ledger.Receipts {
		items := make([]itemDocument, len(r.Items))
		for j, it := range r.Items {
			items[j] = itemDocument{Name: it.Name, Cost: it.Cost, SharedBy: it.SharedBy}
		}
		doc.Receipts[i] = receiptDocument{Name: r.Name, PaidBy: r.PaidBy, Items: items}
	}
	return doc
}
