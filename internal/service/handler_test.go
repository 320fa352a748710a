package service

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitter/internal/document"
	"github.com/mmynk/splitter/internal/metrics"
	"github.com/mmynk/splitter/internal/report"
	"github.com/mmynk/splitter/internal/storage/sqlite"
)

const dinner = `
persons: [Alice, Bob, Carol]
receipts:
  - name: Dinner
    paid_by: Bob
    items:
      - name: Steak
        cost: 9
        shared_by: [Alice, Bob, Carol]
      - name: Wine
        cost: 10
        shared_by: [Alice, Bob]
`

// setupTestServer creates a test server backed by a temporary SQLite database.
func setupTestServer(t *testing.T) (*httptest.Server, *metrics.Metrics) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	m := metrics.New()
	svc := NewLedgerService(store, document.NewYAMLDecoder(), m, "EUR")

	mux := http.NewServeMux()
	NewHandler(svc).Register(mux, nil)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return server, m
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/yaml", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestResolve_JSON(t *testing.T) {
	server, m := setupTestServer(t)

	resp := post(t, server.URL+"/api/resolve", dinner)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[report.Summary](t, resp)
	assert.Equal(t, "EUR", got.Unit)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, got.Persons)
	require.Len(t, got.Balances, 2)
	assert.Equal(t, "Alice", got.Balances[0].From)
	assert.Equal(t, "Bob", got.Balances[0].To)
	assert.InDelta(t, 8.0, got.Balances[0].Amount, 1e-9)
	assert.Equal(t, "Carol", got.Balances[1].From)
	assert.InDelta(t, 3.0, got.Balances[1].Amount, 1e-9)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `splitter_resolve_total{result="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "splitter_items_processed_total 2")
}

func TestResolve_Text(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := post(t, server.URL+"/api/resolve?format=text", dinner)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Alice owes 8 EUR to Bob\nCarol owes 3 EUR to Bob\n", string(body))
}

func TestResolve_Errors(t *testing.T) {
	server, _ := setupTestServer(t)

	tests := []struct {
		name       string
		url        string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "decode failure",
			url:        "/api/resolve",
			body:       "persons: [Alice]\nreceipts:\n  - name: Lunch\n",
			wantStatus: http.StatusBadRequest,
			wantError:  "paid_by",
		},
		{
			name:       "unknown person",
			url:        "/api/resolve",
			body:       "persons: [Alice]\nreceipts:\n  - name: Lunch\n    paid_by: Mallory\n",
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "unknown person reference",
		},
		{
			name:       "unsupported format",
			url:        "/api/resolve?format=xml",
			body:       dinner,
			wantStatus: http.StatusBadRequest,
			wantError:  "unsupported format",
		},
		{
			name:       "infinite cost",
			url:        "/api/resolve",
			body:       "persons: [Alice, Bob]\nreceipts:\n  - name: Lunch\n    paid_by: Alice\n    items:\n      - name: soup\n        cost: .inf\n",
			wantStatus: http.StatusBadRequest,
			wantError:  "finite",
		},
		{
			name:       "infinite cost on create",
			url:        "/api/ledgers",
			body:       "persons: [Alice, Bob]\nreceipts:\n  - name: Lunch\n    paid_by: Alice\n    items:\n      - name: soup\n        cost: .inf\n",
			wantStatus: http.StatusBadRequest,
			wantError:  "finite",
		},
		{
			name:       "body too large",
			url:        "/api/resolve",
			body:       "persons: [" + strings.Repeat("a", MaxDocumentSize) + "]",
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, server.URL+tt.url, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			got := decode[errorResponse](t, resp)
			assert.Contains(t, got.Error, tt.wantError)
		})
	}
}

func TestLedgerLifecycle(t *testing.T) {
	server, _ := setupTestServer(t)

	// Create
	resp := post(t, server.URL+"/api/ledgers?title=Trip", dinner)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[ledgerSummary](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Trip", created.Title)

	// List
	resp = get(t, server.URL+"/api/ledgers")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[map[string][]ledgerSummary](t, resp)
	require.Len(t, list["ledgers"], 1)
	assert.Equal(t, created.ID, list["ledgers"][0].ID)

	// Get
	resp = get(t, server.URL+"/api/ledgers/"+created.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode[ledgerDocument](t, resp)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, doc.Persons)
	require.Len(t, doc.Receipts, 1)
	assert.Equal(t, "Bob", doc.Receipts[0].PaidBy)
	assert.Equal(t, []string{"Alice", "Bob"}, doc.Receipts[0].Items[1].SharedBy)

	// Balances
	resp = get(t, server.URL+"/api/ledgers/"+created.ID+"/balances")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balances := decode[ledgerBalances](t, resp)
	assert.Equal(t, created.ID, balances.ID)
	assert.Equal(t, "Trip", balances.Title)
	require.Len(t, balances.Balances, 2)
	assert.InDelta(t, 8.0, balances.Balances[0].Amount, 1e-9)

	// Delete
	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/ledgers/"+created.ID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	resp = get(t, server.URL+"/api/ledgers/"+created.ID)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateLedger_RejectsUnknownPerson(t *testing.T) {
	server, _ := setupTestServer(t)

	resp := post(t, server.URL+"/api/ledgers", "persons: [Alice]\nreceipts:\n  - name: Lunch\n    paid_by: Bob\n")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = get(t, server.URL+"/api/ledgers")
	list := decode[map[string][]ledgerSummary](t, resp)
	assert.Empty(t, list["ledgers"])
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"amount": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "failed to encode response", got.Error)
}
