package models

// Person is a participant who may pay for or share in expenses.
type Person struct {
	// Name identifies the person. Unique within a ledger.
	Name string
}

// Item is a single line of a receipt.
type Item struct {
	// Name is an informational label (e.g., "Bread", "Wine").
	Name string

	// Cost is the non-negative amount of this line.
	Cost float64

	// SharedBy lists the names of the people splitting this item.
	// An empty list means the item is shared by every declared person.
	// A name listed twice carries two shares.
	SharedBy []string
}

// Receipt is one payment event: a payer and the items they paid for.
type Receipt struct {
	// Name is an informational label (e.g., "Groceries").
	Name string

	// PaidBy is the name of the person who paid the whole receipt.
	PaidBy string

	// Items are the receipt lines in declaration order.
	Items []Item
}

// Ledger is the full set of declared persons and receipts for one run.
type Ledger struct {
	Persons  []Person
	Receipts []Receipt
}

// PersonNames returns the declared person names in declaration order.
func (l *Ledger) PersonNames() []string {
	names := make([]string, len(l.Persons))
	for i, p := range l.Persons {
		names[i] = p.Name
	}
	return names
}

// LedgerRecord is a ledger as persisted by the storage layer.
type LedgerRecord struct {
	// ID is the unique identifier for the ledger (UUID format).
	ID string

	// Title is the human-readable name for the ledger.
	// Auto-generated from the receipts when not provided.
	Title string

	// Ledger holds the persons and receipts.
	Ledger Ledger

	// CreatedAt is the Unix timestamp when the ledger was stored.
	CreatedAt int64
}
