package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"tickerdesk/internal/api"
	"tickerdesk/internal/history"
	"tickerdesk/internal/notify"
	"tickerdesk/internal/tasks"
)

// taskSink fans task lifecycle events into the notification center and
// the persisted run history.
type taskSink struct {
	center *notify.Center
	runs   *history.Store
}

// NewTaskSink builds the Sink the gateway's task manager reports to.
// The run store may be nil to disable history.
func NewTaskSink(center *notify.Center, runs *history.Store) tasks.Sink {
	return &taskSink{center: center, runs: runs}
}

func (s *taskSink) TaskProgress(taskID, label string, status api.TaskStatus, percent int) {
	s.center.TaskProgress(taskID, label, status, percent)
}

func (s *taskSink) TaskRetrying(oldID, newID, label string, retry int) {
	s.center.TaskRetrying(oldID, newID, label, retry)
	if s.runs != nil {
		if err := s.runs.Rebind(context.Background(), oldID, newID); err != nil {
			log.Printf("gateway: rebinding run %s -> %s: %v", oldID, newID, err)
		}
	}
}

func (s *taskSink) TaskCompleted(taskID, label string, result json.RawMessage) {
	s.center.TaskCompleted(taskID, label, result)
	if s.runs != nil {
		if err := s.runs.Finish(context.Background(), taskID, "completed", result, ""); err != nil {
			log.Printf("gateway: recording completion of %s: %v", taskID, err)
		}
	}
}

func (s *taskSink) TaskFailed(taskID, label string, err error) {
	s.center.TaskFailed(taskID, label, err)
	if s.runs != nil {
		status := "failed"
		if errors.Is(err, tasks.ErrTimeout) {
			status = history.StatusTimeout
		}
		if recErr := s.runs.Finish(context.Background(), taskID, status, nil, err.Error()); recErr != nil {
			log.Printf("gateway: recording failure of %s: %v", taskID, recErr)
		}
	}
}
