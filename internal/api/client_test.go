package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSubmitTool(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(Envelope{Success: true, TaskID: "abc123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	id, err := c.SubmitTool(context.Background(), "stock-analysis", map[string]any{"symbol": "AAPL"})
	if err != nil {
		t.Fatalf("SubmitTool: %v", err)
	}
	if id != "abc123" {
		t.Errorf("expected task id abc123, got %q", id)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotPath != "/tools/stock-analysis" {
		t.Errorf("unexpected path %q", gotPath)
	}
}

func TestSubmitToolBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Envelope{Success: false, Error: "invalid symbol XYZ123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.SubmitTool(context.Background(), "stock-analysis", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsBackendError(err) {
		t.Errorf("expected backend error, got %T", err)
	}
}

func TestTaskStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tools/task-status/abc123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(StatusResponse{
			Status: StatusCompleted,
			Result: json.RawMessage(`{"recommendation":"BUY"}`),
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.TaskStatus(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("TaskStatus: %v", err)
	}
	if resp.Status != StatusCompleted {
		t.Errorf("expected completed, got %q", resp.Status)
	}
	if !strings.Contains(string(resp.Result), "BUY") {
		t.Errorf("result payload lost: %s", resp.Result)
	}
}

func TestHTTPErrorBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(Envelope{Success: false, Error: "rate limit exceeded"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.GetJSON(context.Background(), "/api/market-data", &struct{}{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", apiErr.Status)
	}
}

func TestUserPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "plan": "pro"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	plan, err := c.UserPlan(context.Background())
	if err != nil {
		t.Fatalf("UserPlan: %v", err)
	}
	if plan != "pro" {
		t.Errorf("expected pro, got %q", plan)
	}
}

func TestFriendlyMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&APIError{Message: "rate limit exceeded for free tier"}, "busy right now"},
		{&APIError{Message: "Unauthorized"}, "sign in again"},
		{&APIError{Message: "invalid symbol ZZZZ"}, "not recognised"},
		{errors.New("dial tcp: connection refused"), "Check your connection"},
		{&APIError{Message: "something exploded"}, "Something went wrong"},
	}
	for _, tc := range cases {
		got := FriendlyMessage(tc.err)
		if !strings.Contains(got, tc.want) {
			t.Errorf("FriendlyMessage(%v) = %q, want substring %q", tc.err, got, tc.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if StatusPending.Terminal() || StatusProcessing.Terminal() {
		t.Error("pending/processing should not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusFailed.Terminal() {
		t.Error("completed/failed should be terminal")
	}
}
