package market

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the market data routes.
func RegisterRoutes(r chi.Router, client *Client) {
	r.Get("/api/market/quotes", func(w http.ResponseWriter, r *http.Request) {
		symbols := strings.Split(r.URL.Query().Get("symbols"), ",")
		quotes, err := client.GetQuotes(r.Context(), symbols)
		if err != nil {
			http.Error(w, `{"error":"market data unavailable"}`, http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(quotes)
	})
}
