package plan

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type planResponse struct {
	Plan     Tier             `json:"plan"`
	Features map[Feature]bool `json:"features"`
}

// RegisterRoutes mounts the plan API routes.
func RegisterRoutes(r chi.Router, manager *Manager) {
	r.Get("/api/plan", handlePlan(manager, false))
	r.Post("/api/plan/refresh", handlePlan(manager, true))
}

func handlePlan(manager *Manager, force bool) http.HandlerFunc {
	features := []Feature{
		FeatureAnalysis, FeatureDeepAnalysis, FeatureAIChat, FeatureRealtime, FeatureTerminal,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var tier Tier
		if force {
			refreshed, err := manager.Refresh(r.Context())
			if err != nil {
				http.Error(w, `{"error":"could not refresh plan"}`, http.StatusBadGateway)
				return
			}
			tier = refreshed
		} else {
			tier = manager.Current(r.Context())
		}

		resp := planResponse{Plan: tier, Features: make(map[Feature]bool, len(features))}
		for _, f := range features {
			allowed, _ := Gate(f, tier)
			resp.Features[f] = allowed
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
