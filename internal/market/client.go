package market

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"tickerdesk/internal/api"
)

// Quote is one symbol's latest trade snapshot.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// Quotes is a quote batch; Demo marks fallback data served because the
// backend could not be reached.
type Quotes struct {
	Quotes []Quote `json:"quotes"`
	Demo   bool    `json:"demo"`
}

// Client fetches market data over REST.
type Client struct {
	api       *api.Client
	allowDemo bool
}

// NewClient creates a market data client. With allowDemo set, transport
// failures degrade to deterministic demo quotes instead of erroring,
// mirroring how the dashboard keeps rendering when the feed is down.
func NewClient(apiClient *api.Client, allowDemo bool) *Client {
	return &Client{api: apiClient, allowDemo: allowDemo}
}

// GetQuotes returns quotes for the given symbols.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) (*Quotes, error) {
	normalized := normalizeSymbols(symbols)
	if len(normalized) == 0 {
		return &Quotes{Quotes: []Quote{}}, nil
	}

	var resp struct {
		Success bool    `json:"success"`
		Quotes  []Quote `json:"quotes"`
		Error   string  `json:"error,omitempty"`
	}
	query := url.Values{"symbols": {strings.Join(normalized, ",")}}
	err := c.api.GetJSON(ctx, "/api/market-data?"+query.Encode(), &resp)
	if err == nil && resp.Success {
		return &Quotes{Quotes: resp.Quotes}, nil
	}

	if !c.allowDemo {
		if err != nil {
			return nil, err
		}
		return nil, &api.APIError{Message: resp.Error}
	}

	log.Printf("market: quote fetch failed, serving demo data: %v", err)
	return &Quotes{Quotes: demoQuotes(normalized, time.Now()), Demo: true}, nil
}

func normalizeSymbols(symbols []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
