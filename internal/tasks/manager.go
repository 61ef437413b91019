package tasks

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"tickerdesk/internal/api"
)

// Manager polls the backend task-status endpoint for submitted jobs and
// surfaces lifecycle events to a Sink. Each watched task gets its own
// timer goroutine; tasks are tracked independently, so cancelling or
// completing one never affects another.
type Manager struct {
	client StatusClient
	sink   Sink
	opts   Options

	mu      sync.Mutex
	watches map[string]*watch
	wg      sync.WaitGroup
}

type watch struct {
	task     Task
	cancel   context.CancelFunc
	attempts int
	retries  int
	progress int
}

// NewManager creates a Manager delivering events to sink.
func NewManager(client StatusClient, sink Sink, opts Options) *Manager {
	return &Manager{
		client:  client,
		sink:    sink,
		opts:    opts.withDefaults(),
		watches: make(map[string]*watch),
	}
}

// Watch starts polling the given task. It returns an error if the task
// identifier is empty or already being watched.
func (m *Manager) Watch(ctx context.Context, task Task) error {
	if task.ID == "" {
		return fmt.Errorf("task id is required")
	}

	m.mu.Lock()
	if _, exists := m.watches[task.ID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("task %s is already being watched", task.ID)
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &watch{task: task, cancel: cancel}
	m.watches[task.ID] = w
	m.wg.Add(1)
	m.mu.Unlock()

	// Immediate feedback before the first poll lands.
	m.sink.TaskProgress(task.ID, task.Label, api.StatusPending, m.bumpProgress(w, api.StatusPending))

	go m.run(ctx, w)
	return nil
}

// Cancel stops polling the given task. No terminal event is emitted; the
// caller decided the outcome. Returns false if the task is not watched.
func (m *Manager) Cancel(taskID string) bool {
	m.mu.Lock()
	w, ok := m.watches[taskID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	w.cancel()
	return true
}

// CancelAll stops every active watch (page-unload equivalent).
func (m *Manager) CancelAll() {
	m.mu.Lock()
	for _, w := range m.watches {
		w.cancel()
	}
	m.mu.Unlock()
}

// ActiveCount returns the number of tasks currently being polled.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watches)
}

// Snapshot returns the current state of one watched task.
func (m *Manager) Snapshot(taskID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.watches[taskID]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotOf(w), true
}

// Snapshots returns the state of all watched tasks, ordered by task id.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, 0, len(m.watches))
	for _, w := range m.watches {
		out = append(out, snapshotOf(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}

// Wait blocks until every watch goroutine has exited. Intended for
// shutdown after CancelAll, and for tests.
func (m *Manager) Wait() { m.wg.Wait() }

func snapshotOf(w *watch) Snapshot {
	return Snapshot{
		TaskID:   w.task.ID,
		Label:    w.task.Label,
		Attempts: w.attempts,
		Retries:  w.retries,
		Progress: w.progress,
	}
}

func (m *Manager) run(ctx context.Context, w *watch) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.remove(w)
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		w.attempts++
		attempts := w.attempts
		taskID := w.task.ID
		m.mu.Unlock()

		resp, err := m.client.TaskStatus(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				m.remove(w)
				return
			}
			// Transport hiccups are not task failures; try again next
			// tick. The attempt cap still bounds the loop.
			log.Printf("tasks: poll %s attempt %d: %v", taskID, attempts, err)
			if attempts >= m.opts.MaxAttempts {
				m.finishFailed(w, ErrTimeout)
				return
			}
			continue
		}

		switch resp.Status {
		case api.StatusCompleted:
			m.mu.Lock()
			w.progress = 100
			m.mu.Unlock()
			m.sink.TaskProgress(taskID, w.task.Label, api.StatusCompleted, 100)
			m.remove(w)
			w.cancel()
			m.sink.TaskCompleted(taskID, w.task.Label, resp.Result)
			return

		case api.StatusFailed:
			if w.task.Resubmit != nil && w.retries < m.opts.MaxRetries {
				if m.resubmit(ctx, w) {
					continue
				}
				// Resubmission itself failed; fall through to terminal error.
			}
			msg := resp.Error
			if msg == "" {
				msg = "task failed"
			}
			m.finishFailed(w, &api.APIError{Message: msg})
			return

		default:
			// pending, processing, or an unknown status the backend may
			// add later: keep polling and nudge the display estimate.
			m.sink.TaskProgress(taskID, w.task.Label, resp.Status, m.bumpProgress(w, resp.Status))
		}

		if attempts >= m.opts.MaxAttempts {
			m.finishFailed(w, ErrTimeout)
			return
		}
	}
}

// resubmit re-issues the original request and rebinds the watch to the
// new task identifier, resetting the attempt counter but keeping the
// monotonic progress clamp. Returns false if resubmission errored.
func (m *Manager) resubmit(ctx context.Context, w *watch) bool {
	m.mu.Lock()
	w.retries++
	oldID := w.task.ID
	m.mu.Unlock()

	newID, err := w.task.Resubmit(ctx)
	if err != nil {
		log.Printf("tasks: resubmit %s: %v", oldID, err)
		return false
	}

	m.mu.Lock()
	delete(m.watches, oldID)
	w.task.ID = newID
	w.attempts = 0
	retries := w.retries
	m.watches[newID] = w
	m.mu.Unlock()

	log.Printf("tasks: %s failed, resubmitted as %s (retry %d/%d)", oldID, newID, retries, m.opts.MaxRetries)
	m.sink.TaskRetrying(oldID, newID, w.task.Label, retries)
	return true
}

func (m *Manager) finishFailed(w *watch, err error) {
	m.remove(w)
	w.cancel()
	m.sink.TaskFailed(w.task.ID, w.task.Label, err)
}

func (m *Manager) remove(w *watch) {
	m.mu.Lock()
	delete(m.watches, w.task.ID)
	m.mu.Unlock()
}

// bumpProgress folds the latest status into the watch's monotonically
// non-decreasing display percentage and returns the new value.
func (m *Manager) bumpProgress(w *watch, status api.TaskStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p := estimateProgress(status, w.attempts); p > w.progress {
		w.progress = p
	}
	return w.progress
}

// estimateProgress maps a status and attempt count to a percentage for
// user feedback. This is a display heuristic, not a real measurement:
// queued tasks creep toward 25, running tasks toward 95, and only a
// completed task reads 100.
func estimateProgress(status api.TaskStatus, attempts int) int {
	switch status {
	case api.StatusPending:
		p := 5 + attempts
		if p > 25 {
			p = 25
		}
		return p
	case api.StatusProcessing:
		p := 30 + attempts*2
		if p > 95 {
			p = 95
		}
		return p
	case api.StatusCompleted:
		return 100
	default:
		return 0
	}
}
