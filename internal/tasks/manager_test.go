package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"tickerdesk/internal/api"
)

// scriptedClient serves a fixed sequence of status responses per task id,
// repeating the last entry once the script runs out.
type scriptedClient struct {
	mu      sync.Mutex
	scripts map[string][]pollResult
	calls   map[string]int
}

type pollResult struct {
	resp *api.StatusResponse
	err  error
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{
		scripts: make(map[string][]pollResult),
		calls:   make(map[string]int),
	}
}

func (c *scriptedClient) script(taskID string, results ...pollResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scripts[taskID] = results
}

func (c *scriptedClient) TaskStatus(ctx context.Context, taskID string) (*api.StatusResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.calls[taskID]
	c.calls[taskID]++
	script := c.scripts[taskID]
	if len(script) == 0 {
		return nil, fmt.Errorf("no script for task %s", taskID)
	}
	if i >= len(script) {
		i = len(script) - 1
	}
	r := script[i]
	return r.resp, r.err
}

func (c *scriptedClient) callCount(taskID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[taskID]
}

func status(s api.TaskStatus) pollResult {
	return pollResult{resp: &api.StatusResponse{Status: s}}
}

// recordingSink captures events and signals terminal ones.
type recordingSink struct {
	mu        sync.Mutex
	progress  map[string][]int
	completed map[string]int
	failed    map[string]int
	results   map[string]json.RawMessage
	errs      map[string]error
	retried   [][2]string
	terminal  chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		progress:  make(map[string][]int),
		completed: make(map[string]int),
		failed:    make(map[string]int),
		results:   make(map[string]json.RawMessage),
		errs:      make(map[string]error),
		terminal:  make(chan string, 16),
	}
}

func (s *recordingSink) TaskProgress(taskID, label string, st api.TaskStatus, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[taskID] = append(s.progress[taskID], percent)
}

func (s *recordingSink) TaskRetrying(oldID, newID, label string, retry int) {
	s.mu.Lock()
	s.retried = append(s.retried, [2]string{oldID, newID})
	s.mu.Unlock()
}

func (s *recordingSink) TaskCompleted(taskID, label string, result json.RawMessage) {
	s.mu.Lock()
	s.completed[taskID]++
	s.results[taskID] = result
	s.mu.Unlock()
	s.terminal <- taskID
}

func (s *recordingSink) TaskFailed(taskID, label string, err error) {
	s.mu.Lock()
	s.failed[taskID]++
	s.errs[taskID] = err
	s.mu.Unlock()
	s.terminal <- taskID
}

func (s *recordingSink) waitTerminal(t *testing.T, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case id := <-s.terminal:
			if id == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for terminal event on %s", want)
		}
	}
}

var fastOpts = Options{Interval: 2 * time.Millisecond, MaxAttempts: 120, MaxRetries: 2}

func TestCompletedFiresSuccessExactlyOnce(t *testing.T) {
	client := newScriptedClient()
	client.script("abc123",
		status(api.StatusPending),
		status(api.StatusPending),
		status(api.StatusProcessing),
		status(api.StatusProcessing),
		status(api.StatusProcessing),
		pollResult{resp: &api.StatusResponse{
			Status: api.StatusCompleted,
			Result: json.RawMessage(`{"recommendation":"BUY"}`),
		}},
	)

	sink := newRecordingSink()
	m := NewManager(client, sink, fastOpts)
	if err := m.Watch(context.Background(), Task{ID: "abc123", Label: "Stock analysis"}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	sink.waitTerminal(t, "abc123")
	m.Wait()

	sink.mu.Lock()
	completed := sink.completed["abc123"]
	failed := sink.failed["abc123"]
	result := string(sink.results["abc123"])
	progress := append([]int(nil), sink.progress["abc123"]...)
	sink.mu.Unlock()

	if completed != 1 {
		t.Errorf("success handler fired %d times, want exactly 1", completed)
	}
	if failed != 0 {
		t.Errorf("failure handler fired %d times, want 0", failed)
	}
	if !strings.Contains(result, "BUY") {
		t.Errorf("result payload lost: %s", result)
	}

	// Progress is non-decreasing and hits 100 only at the end.
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("progress decreased: %v", progress)
			break
		}
	}
	for i, p := range progress {
		if p == 100 && i != len(progress)-1 {
			t.Errorf("progress reached 100 before completion: %v", progress)
		}
	}
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Errorf("final progress not 100: %v", progress)
	}

	// No further polling after completion.
	calls := client.callCount("abc123")
	time.Sleep(20 * fastOpts.Interval)
	if after := client.callCount("abc123"); after != calls {
		t.Errorf("polling continued after completion: %d -> %d", calls, after)
	}
	if m.ActiveCount() != 0 {
		t.Errorf("task still registered after completion")
	}
}

func TestFailedTaskRetriesExactlyLimitThenErrors(t *testing.T) {
	client := newScriptedClient()
	client.script("t1", status(api.StatusFailed))
	client.script("t1-r1", status(api.StatusFailed))
	client.script("t1-r2", pollResult{resp: &api.StatusResponse{Status: api.StatusFailed, Error: "model overloaded"}})

	var mu sync.Mutex
	resubmits := 0

	sink := newRecordingSink()
	m := NewManager(client, sink, fastOpts)
	task := Task{
		ID:    "t1",
		Label: "Stock analysis",
		Resubmit: func(ctx context.Context) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			resubmits++
			return fmt.Sprintf("t1-r%d", resubmits), nil
		},
	}
	if err := m.Watch(context.Background(), task); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	sink.waitTerminal(t, "t1-r2")
	m.Wait()

	mu.Lock()
	gotResubmits := resubmits
	mu.Unlock()
	if gotResubmits != fastOpts.MaxRetries {
		t.Errorf("resubmissions = %d, want %d", gotResubmits, fastOpts.MaxRetries)
	}

	sink.mu.Lock()
	failed := sink.failed["t1-r2"]
	err := sink.errs["t1-r2"]
	retried := append([][2]string(nil), sink.retried...)
	sink.mu.Unlock()
	if len(retried) != 2 || retried[0] != [2]string{"t1", "t1-r1"} || retried[1] != [2]string{"t1-r1", "t1-r2"} {
		t.Errorf("unexpected retry chain %v", retried)
	}
	if failed != 1 {
		t.Errorf("terminal error handler fired %d times, want exactly 1", failed)
	}
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("terminal error lost backend message: %v", err)
	}
	if m.ActiveCount() != 0 {
		t.Errorf("task still registered after terminal failure")
	}
}

func TestUnresolvedTaskTimesOutAfterMaxAttempts(t *testing.T) {
	client := newScriptedClient()
	client.script("stuck", status(api.StatusPending))

	sink := newRecordingSink()
	opts := Options{Interval: 2 * time.Millisecond, MaxAttempts: 5, MaxRetries: 2}
	m := NewManager(client, sink, opts)
	if err := m.Watch(context.Background(), Task{ID: "stuck", Label: "Deep analysis"}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	sink.waitTerminal(t, "stuck")
	m.Wait()

	if calls := client.callCount("stuck"); calls != opts.MaxAttempts {
		t.Errorf("polled %d times, want exactly %d", calls, opts.MaxAttempts)
	}
	sink.mu.Lock()
	err := sink.errs["stuck"]
	failed := sink.failed["stuck"]
	sink.mu.Unlock()
	if failed != 1 {
		t.Errorf("timeout surfaced %d times, want exactly 1", failed)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestTransportErrorsAreSwallowed(t *testing.T) {
	client := newScriptedClient()
	client.script("flaky",
		pollResult{err: errors.New("dial tcp: connection refused")},
		pollResult{err: errors.New("dial tcp: connection refused")},
		pollResult{resp: &api.StatusResponse{Status: api.StatusCompleted, Result: json.RawMessage(`{}`)}},
	)

	sink := newRecordingSink()
	m := NewManager(client, sink, fastOpts)
	if err := m.Watch(context.Background(), Task{ID: "flaky", Label: "Quote refresh"}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	sink.waitTerminal(t, "flaky")
	m.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.completed["flaky"] != 1 {
		t.Errorf("expected success despite transport errors, got completed=%d failed=%d",
			sink.completed["flaky"], sink.failed["flaky"])
	}
}

func TestConcurrentTasksAreIndependent(t *testing.T) {
	client := newScriptedClient()
	client.script("slow", status(api.StatusProcessing))
	client.script("quick",
		status(api.StatusProcessing),
		pollResult{resp: &api.StatusResponse{Status: api.StatusCompleted, Result: json.RawMessage(`{"ok":true}`)}},
	)

	sink := newRecordingSink()
	m := NewManager(client, sink, fastOpts)
	ctx := context.Background()
	if err := m.Watch(ctx, Task{ID: "slow", Label: "A"}); err != nil {
		t.Fatalf("Watch slow: %v", err)
	}
	if err := m.Watch(ctx, Task{ID: "quick", Label: "B"}); err != nil {
		t.Fatalf("Watch quick: %v", err)
	}
	if m.ActiveCount() != 2 {
		t.Errorf("expected 2 active tasks, got %d", m.ActiveCount())
	}

	sink.waitTerminal(t, "quick")

	// Completing "quick" must leave "slow" polling.
	if _, ok := m.Snapshot("slow"); !ok {
		t.Error("slow task was deregistered by quick task's completion")
	}
	before := client.callCount("slow")
	time.Sleep(10 * fastOpts.Interval)
	if after := client.callCount("slow"); after <= before {
		t.Errorf("slow task stopped polling: %d -> %d", before, after)
	}

	// Cancelling "slow" emits no terminal event and clears its timer.
	if !m.Cancel("slow") {
		t.Fatal("Cancel returned false for active task")
	}
	m.Wait()
	sink.mu.Lock()
	slowTerminal := sink.completed["slow"] + sink.failed["slow"]
	sink.mu.Unlock()
	if slowTerminal != 0 {
		t.Errorf("cancelled task emitted %d terminal events", slowTerminal)
	}
	if m.ActiveCount() != 0 {
		t.Errorf("expected no active tasks, got %d", m.ActiveCount())
	}
}

func TestWatchRejectsDuplicates(t *testing.T) {
	client := newScriptedClient()
	client.script("dup", status(api.StatusPending))

	m := NewManager(client, newRecordingSink(), fastOpts)
	defer func() {
		m.CancelAll()
		m.Wait()
	}()

	if err := m.Watch(context.Background(), Task{ID: "dup", Label: "x"}); err != nil {
		t.Fatalf("first Watch: %v", err)
	}
	if err := m.Watch(context.Background(), Task{ID: "dup", Label: "x"}); err == nil {
		t.Error("expected error watching the same task twice")
	}
	if err := m.Watch(context.Background(), Task{}); err == nil {
		t.Error("expected error watching empty task id")
	}
}

func TestEstimateProgress(t *testing.T) {
	if p := estimateProgress(api.StatusPending, 100); p != 25 {
		t.Errorf("pending cap: got %d, want 25", p)
	}
	if p := estimateProgress(api.StatusProcessing, 100); p != 95 {
		t.Errorf("processing cap: got %d, want 95", p)
	}
	if p := estimateProgress(api.StatusCompleted, 1); p != 100 {
		t.Errorf("completed: got %d, want 100", p)
	}
	if estimateProgress(api.StatusProcessing, 1) <= estimateProgress(api.StatusPending, 1) {
		t.Error("processing should estimate further along than pending")
	}
}
