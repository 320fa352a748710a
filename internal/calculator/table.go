package calculator

import "sort"

// BalanceTable maps debtor -> creditor -> amount owed.
// Every declared person is a debtor key, possibly with no debts.
// A person never appears as their own creditor.
type BalanceTable map[string]map[string]float64

// Debt is a single (debtor, creditor, amount) triple.
type Debt struct {
	From   string  // Person who owes
	To     string  // Person who is owed
	Amount float64
}

// Owes returns the amount debtor owes creditor and whether the pair was
// ever recorded.
func (t BalanceTable) Owes(debtor, creditor string) (float64, bool) {
	amount, ok := t[debtor][creditor]
	return amount, ok
}

// Debtors returns every debtor key, sorted by name.
func (t BalanceTable) Debtors() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Debts flattens the table into triples ordered by debtor, then creditor.
// Pairs that were recorded with a zero amount are included.
func (t BalanceTable) Debts() []Debt {
	var debts []Debt
	for _, debtor := range t.Debtors() {
		creditors := make([]string, 0, len(t[debtor]))
		for creditor := range t[debtor] {
			creditors = append(creditors, creditor)
		}
		sort.Strings(creditors)
		for _, creditor := range creditors {
			debts = append(debts, Debt{From: debtor, To: creditor, Amount: t[debtor][creditor]})
		}
	}
	return debts
}

// Merge sums partial tables, e.g. tables resolved from disjoint receipt
// shards over the same persons. Inputs are not modified.
func Merge(tables ...BalanceTable) BalanceTable {
	merged := make(BalanceTable)
	for _, table := range tables {
		for debtor, debts := range table {
			if _, exists := merged[debtor]; !exists {
				merged[debtor] = make(map[string]float64, len(debts))
			}
			for creditor, amount := range debts {
				merged[debtor][creditor] += amount
			}
		}
	}
	return merged
}
