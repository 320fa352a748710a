// Package report renders balance tables for people.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/mmynk/splitter/internal/calculator"
)

// DefaultUnit is the currency label used when none is configured.
const DefaultUnit = "PLN"

// Formatter renders a balance table as output lines.
type Formatter interface {
	Format(table calculator.BalanceTable) []string
}

// TextFormatter renders one "<debtor> owes <amount> <unit> to <creditor>"
// line per recorded pair, ordered by debtor then creditor.
type TextFormatter struct {
	Unit string
}

var _ Formatter = TextFormatter{}

// Format implements Formatter.
func (f TextFormatter) Format(table calculator.BalanceTable) []string {
	unit := f.Unit
	if unit == "" {
		unit = DefaultUnit
	}

	debts := table.Debts()
	lines := make([]string, 0, len(debts))
	for _, d := range debts {
		lines = append(lines, fmt.Sprintf("%s owes %s %s to %s", d.From, FormatAmount(d.Amount), unit, d.To))
	}
	return lines
}

// FormatAmount prints the shortest decimal that round-trips to amount.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// WriteLines writes each line followed by a newline.
func WriteLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// Balance is the JSON form of a single debt.
type Balance struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Summary is the JSON form of a resolved balance table.
type Summary struct {
	Unit     string    `json:"unit"`
	Persons  []string  `json:"persons"`
	Balances []Balance `json:"balances"`
}

// NewSummary converts table into its JSON form.
func NewSummary(table calculator.BalanceTable, unit string) Summary {
	if unit == "" {
		unit = DefaultUnit
	}
	debts := table.Debts()
	balances := make([]Balance, len(debts))
	for i, d := range debts {
		balances[i] = Balance{From: d.From, To: d.To, Amount: d.Amount}
	}
	return Summary{Unit: unit, Persons: table.Debtors(), Balances: balances}
}

// WriteJSON encodes the summary of table to w.
func WriteJSON(w io.Writer, table calculator.BalanceTable, unit string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewSummary(table, unit)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
