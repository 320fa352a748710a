package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitter/internal/auth"
	"github.com/mmynk/splitter/internal/report"
)

const groceries = `
persons:
  - Alice
  - Bob
receipts:
  - name: Groceries
    paid_by: Alice
    items:
      - name: bread
        cost: 10
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_Text(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{writeFile(t, groceries)}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "Bob owes 5 PLN to Alice\n", stdout.String())
}

func TestRun_UnitFromEnvAndFlag(t *testing.T) {
	t.Setenv("SPLITTER_UNIT", "USD")
	path := writeFile(t, groceries)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{path}, &stdout, &stderr))
	assert.Equal(t, "Bob owes 5 USD to Alice\n", stdout.String())

	stdout.Reset()
	require.Equal(t, 0, run([]string{"-unit", "EUR", path}, &stdout, &stderr))
	assert.Equal(t, "Bob owes 5 EUR to Alice\n", stdout.String())
}

func TestRun_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-format", "json", writeFile(t, groceries)}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var got report.Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, []report.Balance{{From: "Bob", To: "Alice", Amount: 5}}, got.Balances)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing file argument",
			args:     func(t *testing.T) []string { return nil },
			wantCode: 2,
			wantErr:  "usage",
		},
		{
			name:     "unreadable file",
			args:     func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "missing.yaml")} },
			wantCode: 1,
			wantErr:  "Failed to read input",
		},
		{
			name: "decode failure",
			args: func(t *testing.T) []string {
				return []string{writeFile(t, "persons: [Alice]\nreceipts:\n  - name: Lunch\n")}
			},
			wantCode: 1,
			wantErr:  "line 3",
		},
		{
			name: "unknown person",
			args: func(t *testing.T) []string {
				return []string{writeFile(t, "persons: [Alice]\nreceipts:\n  - name: Lunch\n    paid_by: Bob\n")}
			},
			wantCode: 1,
			wantErr:  "unknown person reference",
		},
		{
			name:     "unsupported format",
			args:     func(t *testing.T) []string { return []string{"-format", "xml", "ledger.yaml"} },
			wantCode: 2,
			wantErr:  "unsupported format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			code := run(tt.args(t), &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			assert.Empty(t, stdout.String())
			assert.Contains(t, stderr.String(), tt.wantErr)
		})
	}
}

func TestRun_Token(t *testing.T) {
	t.Run("without secret", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run([]string{"token", "ci-bot"}, &stdout, &stderr))
		assert.Empty(t, stdout.String())
	})

	t.Run("with secret", func(t *testing.T) {
		t.Setenv("SPLITTER_JWT_SECRET", "test-secret-key-with-32-bytes!!!")

		var stdout, stderr bytes.Buffer
		require.Equal(t, 0, run([]string{"token", "ci-bot"}, &stdout, &stderr), stderr.String())

		claims, err := auth.NewJWTManager("test-secret-key-with-32-bytes!!!", time.Hour).
			Validate(strings.TrimSpace(stdout.String()))
		require.NoError(t, err)
		assert.Equal(t, "ci-bot", claims.Subject)
	})
}
