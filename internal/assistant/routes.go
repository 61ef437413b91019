package assistant

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tickerdesk/internal/api"
	"tickerdesk/internal/plan"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	HTML      bool   `json:"html"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	HTML      string `json:"html,omitempty"`
}

// RegisterRoutes mounts the chat route, gated on the user's plan.
func RegisterRoutes(r chi.Router, asst *Assistant, plans *plan.Manager) {
	r.Post("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if req.Message == "" {
			http.Error(w, `{"error":"message is required"}`, http.StatusBadRequest)
			return
		}

		tier := plans.Current(r.Context())
		if allowed, upsell := plan.Gate(plan.FeatureAIChat, tier); !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			json.NewEncoder(w).Encode(upsell)
			return
		}

		reply, sessionID, err := asst.Ask(r.Context(), req.SessionID, req.Message)
		if err != nil {
			log.Printf("assistant: chat: %v", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"error": api.FriendlyMessage(err)})
			return
		}

		resp := chatResponse{SessionID: sessionID, Reply: reply}
		if req.HTML {
			if html, err := RenderMarkdown(reply); err == nil {
				resp.HTML = html
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
}
