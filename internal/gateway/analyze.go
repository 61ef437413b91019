package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tickerdesk/internal/api"
	"tickerdesk/internal/history"
	"tickerdesk/internal/notify"
	"tickerdesk/internal/plan"
	"tickerdesk/internal/tasks"
)

// analysisTools is the closed set of job types the gateway submits,
// mapped to the plan feature that unlocks each. Unknown tools are
// rejected rather than forwarded blindly.
var analysisTools = map[string]plan.Feature{
	"stock-analysis": plan.FeatureAnalysis,
	"deep-analysis":  plan.FeatureDeepAnalysis,
	"screener":       plan.FeatureAnalysis,
}

// toolLabels names each tool for notifications.
var toolLabels = map[string]string{
	"stock-analysis": "Stock analysis",
	"deep-analysis":  "Deep analysis",
	"screener":       "Screener run",
}

type analyzeRequest struct {
	Tool   string         `json:"tool"`
	Symbol string         `json:"symbol"`
	Params map[string]any `json:"params,omitempty"`
}

func (s *Server) registerTaskRoutes(r chi.Router) {
	r.Post("/api/analyze", s.handleAnalyze)
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", s.handleListTasks)
		r.Get("/{id}", s.handleGetTask)
		r.Delete("/{id}", s.handleCancelTask)
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Tool == "" {
		req.Tool = "stock-analysis"
	}
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" {
		http.Error(w, `{"error":"symbol is required"}`, http.StatusBadRequest)
		return
	}

	feature, known := analysisTools[req.Tool]
	if !known {
		http.Error(w, fmt.Sprintf(`{"error":"unknown tool %q"}`, req.Tool), http.StatusBadRequest)
		return
	}

	tier := s.deps.Plans.Current(r.Context())
	if allowed, upsell := plan.Gate(feature, tier); !allowed {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(upsell)
		return
	}

	params := req.Params
	if params == nil {
		params = map[string]any{}
	}
	params["symbol"] = req.Symbol

	submit := func(ctx context.Context) (string, error) {
		return s.deps.API.SubmitTool(ctx, req.Tool, params)
	}

	taskID, err := submit(r.Context())
	if err != nil {
		s.deps.Center.Publish(r.Context(), notify.Notification{
			Level:   notify.LevelError,
			Title:   toolLabels[req.Tool] + " failed",
			Message: api.FriendlyMessage(err),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(api.Envelope{Success: false, Error: api.FriendlyMessage(err)})
		return
	}

	if s.deps.Runs != nil {
		// History is best-effort; the analysis itself proceeds either way.
		if recErr := s.deps.Runs.Start(r.Context(), taskID, req.Tool, req.Symbol); recErr != nil {
			log.Printf("gateway: recording run start: %v", recErr)
		}
	}

	label := fmt.Sprintf("%s: %s", toolLabels[req.Tool], req.Symbol)
	// Watch on the server context: polling must outlive this request.
	err = s.deps.Tasks.Watch(s.baseCtx, tasks.Task{
		ID:       taskID,
		Label:    label,
		Resubmit: submit,
	})
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(api.Envelope{Success: true, TaskID: taskID})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.deps.Tasks.Snapshots())
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, ok := s.deps.Tasks.Snapshot(id)
	if !ok {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.deps.Tasks.Cancel(id) {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}
	if s.deps.Runs != nil {
		_ = s.deps.Runs.Finish(r.Context(), id, history.StatusCancelled, nil, "cancelled by user")
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"cancelled"}`))
}
