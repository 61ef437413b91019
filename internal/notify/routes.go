package notify

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the notification API routes.
func RegisterRoutes(r chi.Router, center *Center) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", handleList(center))
		r.Post("/{id}/dismiss", handleDismiss(center))
	})
}

func handleList(center *Center) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ListFilter{Limit: 50}
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				filter.Limit = parsed
			}
		}
		if lvl := r.URL.Query().Get("level"); lvl != "" {
			filter.Level = Level(lvl)
		}
		if r.URL.Query().Get("include_dismissed") != "true" {
			dismissed := false
			filter.Dismissed = &dismissed
		}

		list, err := center.List(r.Context(), filter)
		if err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []Notification{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func handleDismiss(center *Center) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := center.Dismiss(r.Context(), id); err != nil {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"dismissed"}`))
	}
}
