package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tickerdesk/internal/api"
)

func TestSearchRanking(t *testing.T) {
	idx := NewIndex()

	// Exact ticker first.
	results := idx.Search("V", 0)
	if len(results) == 0 || results[0].Ticker != "V" {
		t.Fatalf("expected exact ticker V first, got %+v", results)
	}

	// Ticker prefix beats name matches.
	results = idx.Search("AA", 0)
	if len(results) == 0 || results[0].Ticker != "AAPL" {
		t.Fatalf("expected AAPL first for 'AA', got %+v", results)
	}

	// Case-insensitive name prefix.
	results = idx.Search("apple", 0)
	found := false
	for _, s := range results {
		if s.Ticker == "AAPL" {
			found = true
		}
	}
	if !found {
		t.Errorf("name search 'apple' missed AAPL: %+v", results)
	}
}

func TestSearchLimitsAndEmpty(t *testing.T) {
	idx := NewIndex()

	if got := idx.Search("", 0); got != nil {
		t.Errorf("empty query should return nil, got %+v", got)
	}
	if got := idx.Search("   ", 0); got != nil {
		t.Errorf("blank query should return nil, got %+v", got)
	}

	results := idx.Search("A", 3)
	if len(results) > 3 {
		t.Errorf("limit ignored: got %d results", len(results))
	}
	results = idx.Search("A", 0)
	if len(results) > DefaultLimit {
		t.Errorf("default limit ignored: got %d results", len(results))
	}
}

func TestRefreshReplacesUniverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"symbols": []Symbol{{Ticker: "ZZZ", Name: "Zeta Zero Zinc"}},
		})
	}))
	defer srv.Close()

	idx := NewIndex()
	idx.Refresh(context.Background(), api.NewClient(srv.URL, ""))

	if idx.Len() != 1 {
		t.Fatalf("expected universe of 1 after refresh, got %d", idx.Len())
	}
	if results := idx.Search("ZZZ", 0); len(results) != 1 {
		t.Errorf("refreshed symbol not searchable: %+v", results)
	}
}

func TestRefreshKeepsSeedOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	idx := NewIndex()
	before := idx.Len()
	idx.Refresh(context.Background(), api.NewClient(srv.URL, ""))
	if idx.Len() != before {
		t.Errorf("failed refresh changed the universe: %d -> %d", before, idx.Len())
	}
}
