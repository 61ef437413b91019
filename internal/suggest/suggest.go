package suggest

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"tickerdesk/internal/api"
)

// Symbol is one entry in the search-suggestion universe.
type Symbol struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector,omitempty"`
}

// DefaultLimit caps suggestion results the way the search box does.
const DefaultLimit = 8

// Index answers autocomplete queries over a small in-memory symbol set.
type Index struct {
	mu      sync.RWMutex
	symbols []Symbol
}

// NewIndex creates an Index seeded with the built-in symbol set.
func NewIndex() *Index {
	return &Index{symbols: append([]Symbol(nil), seedSymbols...)}
}

// Refresh replaces the universe with the backend's symbol list. Fetch
// failures keep the current set; autocomplete silently degrades to the
// seed data rather than breaking the search box.
func (i *Index) Refresh(ctx context.Context, client *api.Client) {
	var resp struct {
		Success bool     `json:"success"`
		Symbols []Symbol `json:"symbols"`
	}
	if err := client.GetJSON(ctx, "/api/symbols", &resp); err != nil {
		log.Printf("suggest: symbol refresh failed, keeping %d cached: %v", i.Len(), err)
		return
	}
	if !resp.Success || len(resp.Symbols) == 0 {
		return
	}

	i.mu.Lock()
	i.symbols = resp.Symbols
	i.mu.Unlock()
}

// Len returns the size of the current symbol universe.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.symbols)
}

// match ranks: lower is better.
const (
	matchExactTicker = iota
	matchTickerPrefix
	matchNamePrefix
	matchSubstring
	matchNone
)

// Search returns up to limit symbols matching the query, best first.
// Matching is case-insensitive; exact ticker beats ticker prefix beats
// company-name prefix beats substring.
func (i *Index) Search(query string, limit int) []Symbol {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	type ranked struct {
		sym  Symbol
		rank int
		pos  int
	}
	var hits []ranked
	for pos, sym := range i.symbols {
		r := rankMatch(sym, q)
		if r == matchNone {
			continue
		}
		hits = append(hits, ranked{sym: sym, rank: r, pos: pos})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].rank != hits[b].rank {
			return hits[a].rank < hits[b].rank
		}
		return hits[a].pos < hits[b].pos
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Symbol, len(hits))
	for n, h := range hits {
		out[n] = h.sym
	}
	return out
}

func rankMatch(sym Symbol, q string) int {
	ticker := strings.ToUpper(sym.Ticker)
	name := strings.ToUpper(sym.Name)

	switch {
	case ticker == q:
		return matchExactTicker
	case strings.HasPrefix(ticker, q):
		return matchTickerPrefix
	case strings.HasPrefix(name, q):
		return matchNamePrefix
	case strings.Contains(name, q) || strings.Contains(ticker, q):
		return matchSubstring
	default:
		return matchNone
	}
}
