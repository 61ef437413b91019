package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"tickerdesk/internal/api"
	"tickerdesk/internal/plan"
	"tickerdesk/internal/tasks"
)

// handleSearchSymbols answers autocomplete-style symbol lookups.
func (s *Server) handleSearchSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 0)
	results := s.suggest.Search(query, limit)
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No symbols match %q.", query)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d symbol(s):\n", len(results))
	for _, sym := range results {
		fmt.Fprintf(&sb, "- %s: %s", sym.Ticker, sym.Name)
		if sym.Sector != "" {
			fmt.Fprintf(&sb, " (%s)", sym.Sector)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetQuotes fetches a quote batch for a comma-separated symbol list.
func (s *Server) handleGetQuotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("symbols")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: symbols"), nil
	}

	quotes, err := s.market.GetQuotes(ctx, strings.Split(raw, ","))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching quotes: %v", api.FriendlyMessage(err))), nil
	}
	if len(quotes.Quotes) == 0 {
		return mcp.NewToolResultText("No quotes returned; check the symbols."), nil
	}

	var sb strings.Builder
	if quotes.Demo {
		sb.WriteString("(demo data; live feed unavailable)\n")
	}
	for _, q := range quotes.Quotes {
		fmt.Fprintf(&sb, "%s: %.2f (%+.2f, %+.2f%%) volume %d\n",
			q.Symbol, q.Price, q.Change, q.ChangePct, q.Volume)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleRunAnalysis submits an analysis job and blocks until the watch
// resolves, so the agent gets the finished result in one call.
func (s *Server) handleRunAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: symbol"), nil
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	tool := request.GetString("tool", "stock-analysis")

	feature := plan.FeatureAnalysis
	if tool == "deep-analysis" {
		feature = plan.FeatureDeepAnalysis
	}
	tier := s.plans.Current(ctx)
	if allowed, upsell := plan.Gate(feature, tier); !allowed {
		return mcp.NewToolResultError(upsell.Message), nil
	}

	submit := func(ctx context.Context) (string, error) {
		return s.api.SubmitTool(ctx, tool, map[string]any{"symbol": symbol})
	}
	taskID, err := submit(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("submitting %s: %v", tool, api.FriendlyMessage(err))), nil
	}

	done := s.sink.expect(taskID)
	watchErr := s.tasks.Watch(ctx, tasks.Task{
		ID:       taskID,
		Label:    fmt.Sprintf("%s: %s", tool, symbol),
		Resubmit: submit,
	})
	if watchErr != nil {
		s.sink.forget(taskID)
		return mcp.NewToolResultError(watchErr.Error()), nil
	}

	select {
	case <-ctx.Done():
		s.tasks.Cancel(taskID)
		return nil, ctx.Err()
	case out := <-done:
		if out.err != nil {
			return mcp.NewToolResultError(api.FriendlyMessage(out.err)), nil
		}
		return mcp.NewToolResultText(formatResult(symbol, out.result)), nil
	}
}

// handleGetPlan reports the mirrored subscription tier and feature access.
func (s *Server) handleGetPlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tier := s.plans.Current(ctx)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Current plan: %s\n", tier)
	for _, f := range []plan.Feature{
		plan.FeatureAnalysis,
		plan.FeatureDeepAnalysis,
		plan.FeatureAIChat,
		plan.FeatureRealtime,
		plan.FeatureTerminal,
	} {
		allowed, _ := plan.Gate(f, tier)
		state := "locked"
		if allowed {
			state = "available"
		}
		fmt.Fprintf(&sb, "- %s: %s (requires %s)\n", f, state, plan.RequiredTier(f))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatResult renders an analysis payload for agent consumption:
// well-known fields first, then the raw JSON for anything else.
func formatResult(symbol string, result json.RawMessage) string {
	var fields struct {
		Recommendation string  `json:"recommendation"`
		Confidence     float64 `json:"confidence"`
		Summary        string  `json:"summary"`
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analysis of %s complete.\n", symbol)
	if json.Unmarshal(result, &fields) == nil {
		if fields.Recommendation != "" {
			fmt.Fprintf(&sb, "Recommendation: %s\n", fields.Recommendation)
		}
		if fields.Confidence > 0 {
			fmt.Fprintf(&sb, "Confidence: %.0f%%\n", fields.Confidence*100)
		}
		if fields.Summary != "" {
			fmt.Fprintf(&sb, "%s\n", fields.Summary)
		}
	}
	if len(result) > 0 {
		fmt.Fprintf(&sb, "\nFull result:\n%s", result)
	}
	return sb.String()
}

// outcome is one task's terminal state.
type outcome struct {
	result json.RawMessage
	err    error
}

// resultSink routes task manager events to per-task waiter channels. The
// MCP handlers block on the channel while the manager polls; retries
// rebind the waiter to the resubmitted task id.
type resultSink struct {
	mu      sync.Mutex
	waiters map[string]chan outcome
}

func newResultSink() *resultSink {
	return &resultSink{waiters: make(map[string]chan outcome)}
}

// expect registers a waiter for the given task id.
func (r *resultSink) expect(taskID string) <-chan outcome {
	ch := make(chan outcome, 1)
	r.mu.Lock()
	r.waiters[taskID] = ch
	r.mu.Unlock()
	return ch
}

func (r *resultSink) forget(taskID string) {
	r.mu.Lock()
	delete(r.waiters, taskID)
	r.mu.Unlock()
}

func (r *resultSink) resolve(taskID string, out outcome) {
	r.mu.Lock()
	ch, ok := r.waiters[taskID]
	delete(r.waiters, taskID)
	r.mu.Unlock()
	if ok {
		ch <- out
	}
}

func (r *resultSink) TaskProgress(taskID, label string, status api.TaskStatus, percent int) {}

func (r *resultSink) TaskRetrying(oldID, newID, label string, retry int) {
	r.mu.Lock()
	if ch, ok := r.waiters[oldID]; ok {
		delete(r.waiters, oldID)
		r.waiters[newID] = ch
	}
	r.mu.Unlock()
}

func (r *resultSink) TaskCompleted(taskID, label string, result json.RawMessage) {
	r.resolve(taskID, outcome{result: result})
}

func (r *resultSink) TaskFailed(taskID, label string, err error) {
	r.resolve(taskID, outcome{err: err})
}
