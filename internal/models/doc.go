// Package models defines the entity model for Splitter.
//
// # Entities
//
//   - Person: a named participant, identified by name only
//   - Receipt: one payment event, paid by a single person, made of items
//   - Item: one line of a receipt with a cost and an optional sharer list
//   - Ledger: the declared persons and receipts of one run
//
// Entities are plain values with no behavior. Cross-references (a payer or
// sharer name that was never declared) are not checked here, since persons
// and receipts are decoded independently. The calculator package reports
// them when a ledger is resolved.
//
// # Persistence
//
// LedgerRecord wraps a Ledger with the metadata the storage layer assigns
// (ID, title, creation time).
package models
