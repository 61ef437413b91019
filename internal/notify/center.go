package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"tickerdesk/internal/api"
)

// Center collects notifications, fans them out to live subscribers
// (the dashboard WebSocket), and optionally persists them. It implements
// the task manager's Sink so task lifecycle events surface as
// notifications with progress.
type Center struct {
	store *Store // nil disables persistence

	mu     sync.Mutex
	recent []Notification
	byTask map[string]string // task id -> notification id
	subs   map[chan Notification]struct{}
}

// recentCap bounds the in-memory history when no store is configured.
const recentCap = 200

// NewCenter creates a Center. A nil store keeps history in memory only.
func NewCenter(store *Store) *Center {
	return &Center{
		store:  store,
		byTask: make(map[string]string),
		subs:   make(map[chan Notification]struct{}),
	}
}

// Publish assigns an id and timestamp, records the notification, and
// pushes it to all subscribers. The stored value is returned.
func (c *Center) Publish(ctx context.Context, n Notification) Notification {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Level == "" {
		n.Level = LevelInfo
	}

	c.mu.Lock()
	c.remember(n)
	if n.TaskID != "" {
		c.byTask[n.TaskID] = n.ID
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Create(ctx, n); err != nil {
			log.Printf("notify: persisting notification: %v", err)
		}
	}

	c.broadcast(n)
	return n
}

// Dismiss marks a notification dismissed and informs subscribers.
func (c *Center) Dismiss(ctx context.Context, id string) error {
	c.mu.Lock()
	var dismissed *Notification
	for i := range c.recent {
		if c.recent[i].ID == id {
			c.recent[i].Dismissed = true
			n := c.recent[i]
			dismissed = &n
			break
		}
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Dismiss(ctx, id); err != nil {
			return err
		}
	} else if dismissed == nil {
		return fmt.Errorf("notification %s not found", id)
	}

	if dismissed != nil {
		c.broadcast(*dismissed)
	}
	return nil
}

// List returns notification history, newest first.
func (c *Center) List(ctx context.Context, filter ListFilter) ([]Notification, error) {
	if c.store != nil {
		return c.store.List(ctx, filter)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Notification
	for i := len(c.recent) - 1; i >= 0; i-- {
		n := c.recent[i]
		if filter.Level != "" && n.Level != filter.Level {
			continue
		}
		if filter.Dismissed != nil && n.Dismissed != *filter.Dismissed {
			continue
		}
		if filter.TaskID != "" && n.TaskID != filter.TaskID {
			continue
		}
		out = append(out, n)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// Subscribe returns a channel receiving every published or updated
// notification. Slow subscribers miss updates rather than block publishers.
func (c *Center) Subscribe() chan Notification {
	ch := make(chan Notification, 64)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (c *Center) Unsubscribe(ch chan Notification) {
	c.mu.Lock()
	if _, ok := c.subs[ch]; ok {
		delete(c.subs, ch)
		close(ch)
	}
	c.mu.Unlock()
}

func (c *Center) broadcast(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// remember appends to the in-memory ring. Caller holds c.mu.
func (c *Center) remember(n Notification) {
	c.recent = append(c.recent, n)
	if len(c.recent) > recentCap {
		c.recent = c.recent[len(c.recent)-recentCap:]
	}
}

// TaskProgress implements tasks.Sink: one notification per task id,
// updated in place as the percentage estimate advances.
func (c *Center) TaskProgress(taskID, label string, status api.TaskStatus, percent int) {
	ctx := context.Background()

	c.mu.Lock()
	id, exists := c.byTask[taskID]
	c.mu.Unlock()

	p := percent
	n := Notification{
		Level:    LevelInfo,
		Title:    label,
		Message:  progressMessage(status),
		Progress: &p,
		TaskID:   taskID,
	}

	if !exists {
		c.Publish(ctx, n)
		return
	}

	n.ID = id
	n.CreatedAt = time.Now().UTC()
	c.mu.Lock()
	for i := range c.recent {
		if c.recent[i].ID == id {
			c.recent[i].Message = n.Message
			c.recent[i].Progress = &p
			n.CreatedAt = c.recent[i].CreatedAt
			break
		}
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.UpdateProgress(ctx, id, n.Message, percent); err != nil {
			log.Printf("notify: updating progress: %v", err)
		}
	}
	c.broadcast(n)
}

// TaskRetrying implements tasks.Sink: the progress notification follows
// the task to its new identifier and the user learns about the retry.
func (c *Center) TaskRetrying(oldID, newID, label string, retry int) {
	c.mu.Lock()
	if id, ok := c.byTask[oldID]; ok {
		delete(c.byTask, oldID)
		c.byTask[newID] = id
		for i := range c.recent {
			if c.recent[i].ID == id {
				c.recent[i].TaskID = newID
				break
			}
		}
	}
	c.mu.Unlock()

	// Published without a task id so it does not displace the progress
	// notification tracked under the new identifier.
	c.Publish(context.Background(), Notification{
		Level:   LevelWarning,
		Title:   label,
		Message: fmt.Sprintf("The analysis hit a snag; retrying (attempt %d)…", retry),
	})
}

// TaskCompleted implements tasks.Sink.
func (c *Center) TaskCompleted(taskID, label string, result json.RawMessage) {
	msg := "Done."
	if summary := resultSummary(result); summary != "" {
		msg = summary
	}
	c.Publish(context.Background(), Notification{
		Level:   LevelSuccess,
		Title:   label + " complete",
		Message: msg,
		TaskID:  taskID,
	})
}

// TaskFailed implements tasks.Sink.
func (c *Center) TaskFailed(taskID, label string, err error) {
	c.Publish(context.Background(), Notification{
		Level:   LevelError,
		Title:   label + " failed",
		Message: api.FriendlyMessage(err),
		TaskID:  taskID,
	})
}

func progressMessage(status api.TaskStatus) string {
	switch status {
	case api.StatusPending:
		return "Queued…"
	case api.StatusProcessing:
		return "Analyzing…"
	default:
		return "Working…"
	}
}

// resultSummary pulls a short human-readable line out of a result
// payload, preferring the recommendation field analysis tools return.
func resultSummary(result json.RawMessage) string {
	if len(result) == 0 {
		return ""
	}
	var fields struct {
		Recommendation string `json:"recommendation"`
		Summary        string `json:"summary"`
	}
	if err := json.Unmarshal(result, &fields); err != nil {
		return ""
	}
	if fields.Recommendation != "" {
		return "Recommendation: " + fields.Recommendation
	}
	return fields.Summary
}
