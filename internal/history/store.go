package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tickerdesk/internal/db"
)

// Run records one analysis job from submission to its terminal state.
type Run struct {
	ID         string          `json:"id"`
	Tool       string          `json:"tool"`
	Symbol     string          `json:"symbol,omitempty"`
	Status     string          `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

// Terminal run statuses beyond the backend's own completed/failed.
const (
	StatusTimeout   = "timeout"
	StatusCancelled = "cancelled"
)

// Store persists analysis runs in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Start records a newly submitted run keyed by its task id.
func (s *Store) Start(ctx context.Context, taskID, tool, symbol string) error {
	if taskID == "" {
		taskID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_runs (id, tool, symbol, status, started_at)
		VALUES (?, ?, ?, 'pending', ?)`,
		taskID, tool, symbol, time.Now().UTC().Format(time.DateTime))
	if err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	return nil
}

// Rebind moves a run to a new task id after a retry resubmission.
func (s *Store) Rebind(ctx context.Context, oldID, newID string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE task_runs SET id = ? WHERE id = ?", newID, oldID)
	if err != nil {
		return fmt.Errorf("rebinding run: %w", err)
	}
	return nil
}

// Finish records a run's terminal state.
func (s *Store) Finish(ctx context.Context, taskID, status string, result json.RawMessage, errMsg string) error {
	var res sql.NullString
	if len(result) > 0 {
		res = sql.NullString{String: string(result), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE task_runs SET status = ?, result = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		status, res, errMsg, time.Now().UTC().Format(time.DateTime), taskID)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tool, symbol, status, result, error, started_at, finished_at
		FROM task_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			result   sql.NullString
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Tool, &r.Symbol, &r.Status, &result, &r.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if result.Valid {
			r.Result = json.RawMessage(result.String)
		}
		if t, parseErr := time.Parse(time.DateTime, started); parseErr == nil {
			r.StartedAt = t
		}
		if finished.Valid {
			if t, parseErr := time.Parse(time.DateTime, finished.String); parseErr == nil {
				r.FinishedAt = &t
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
