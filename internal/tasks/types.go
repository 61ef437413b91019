package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tickerdesk/internal/api"
)

// ErrTimeout is reported when a task's status never resolves within the
// configured attempt cap.
var ErrTimeout = errors.New("task polling timed out")

// Task describes one asynchronous backend job to watch.
type Task struct {
	// ID is the opaque task identifier returned by job submission.
	ID string
	// Label names the requested operation for user-facing messages.
	Label string
	// Resubmit re-issues the original request and returns a fresh task
	// identifier. It is invoked by the bounded retry policy when the
	// backend reports the task as failed. A nil Resubmit disables retries
	// for this task.
	Resubmit func(ctx context.Context) (string, error)
}

// Sink receives task lifecycle events. Implementations must be safe for
// concurrent use; events for different tasks may arrive from different
// goroutines.
type Sink interface {
	// TaskProgress reports a display-heuristic percentage for an
	// in-flight task. Percent is non-decreasing per task and reaches 100
	// only on completion.
	TaskProgress(taskID, label string, status api.TaskStatus, percent int)
	// TaskRetrying reports that a failed task was resubmitted and is now
	// tracked under a new identifier.
	TaskRetrying(oldID, newID, label string, retry int)
	// TaskCompleted fires exactly once when a task completes.
	TaskCompleted(taskID, label string, result json.RawMessage)
	// TaskFailed fires exactly once when a task terminally fails, times
	// out, or retry resubmission itself errors.
	TaskFailed(taskID, label string, err error)
}

// StatusClient is the slice of the backend client the manager needs.
type StatusClient interface {
	TaskStatus(ctx context.Context, taskID string) (*api.StatusResponse, error)
}

// Options tunes the polling loop. Unset interval and attempt cap fall
// back to the defaults the web client shipped with: 2.5s interval and
// 120 attempts. MaxRetries 0 disables retries; negative selects the
// default of 2.
type Options struct {
	Interval    time.Duration
	MaxAttempts int
	MaxRetries  int
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 2500 * time.Millisecond
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 120
	}
	// MaxRetries 0 is a valid choice; negative means "use default".
	if o.MaxRetries < 0 {
		o.MaxRetries = 2
	}
	return o
}

// Snapshot is a point-in-time view of one watched task.
type Snapshot struct {
	TaskID   string `json:"task_id"`
	Label    string `json:"label"`
	Attempts int    `json:"attempts"`
	Retries  int    `json:"retries"`
	Progress int    `json:"progress"`
}
