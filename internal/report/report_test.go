package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitter/internal/calculator"
)

func TestTextFormatter_Format(t *testing.T) {
	table := calculator.BalanceTable{
		"Alice": {},
		"Bob":   {"Alice": 5},
		"Carol": {"Bob": 10.0 / 3, "Alice": 0},
	}

	tests := []struct {
		name string
		unit string
		want []string
	}{
		{
			name: "default unit",
			want: []string{
				"Bob owes 5 PLN to Alice",
				"Carol owes 0 PLN to Alice",
				"Carol owes 3.3333333333333335 PLN to Bob",
			},
		},
		{
			name: "custom unit",
			unit: "EUR",
			want: []string{
				"Bob owes 5 EUR to Alice",
				"Carol owes 0 EUR to Alice",
				"Carol owes 3.3333333333333335 EUR to Bob",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TextFormatter{Unit: tt.unit}.Format(table)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextFormatter_NoDebts(t *testing.T) {
	got := TextFormatter{}.Format(calculator.BalanceTable{"Alice": {}})
	assert.Empty(t, got)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "5", FormatAmount(5))
	assert.Equal(t, "2.25", FormatAmount(2.25))
	assert.Equal(t, "0.1", FormatAmount(0.1))
}

func TestWriteLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLines(&buf, []string{"a", "b"}))
	assert.Equal(t, "a\nb\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	table := calculator.BalanceTable{
		"Alice": {},
		"Bob":   {"Alice": 5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, table, ""))

	var got Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, Summary{
		Unit:     "PLN",
		Persons:  []string{"Alice", "Bob"},
		Balances: []Balance{{From: "Bob", To: "Alice", Amount: 5}},
	}, got)
}
