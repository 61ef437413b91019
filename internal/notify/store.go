package notify

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tickerdesk/internal/db"
)

// ListFilter controls which notifications are returned by List.
type ListFilter struct {
	Level     Level
	Dismissed *bool
	TaskID    string
	Since     time.Time
	Limit     int
}

// Store persists notifications in SQLite.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a notification record.
func (s *Store) Create(ctx context.Context, n Notification) error {
	var progress sql.NullInt64
	if n.Progress != nil {
		progress = sql.NullInt64{Int64: int64(*n.Progress), Valid: true}
	}
	dismissed := 0
	if n.Dismissed {
		dismissed = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, level, title, message, progress, task_id, dismissed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Level), n.Title, n.Message, progress, n.TaskID, dismissed,
		n.CreatedAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// UpdateProgress updates the message and progress of an existing record.
func (s *Store) UpdateProgress(ctx context.Context, id, message string, progress int) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET message = ?, progress = ? WHERE id = ?",
		message, progress, id)
	if err != nil {
		return fmt.Errorf("updating notification progress: %w", err)
	}
	return nil
}

// Dismiss marks a notification dismissed.
func (s *Store) Dismiss(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET dismissed = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("dismissing notification: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}

// List returns notifications matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Notification, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Level != "" {
		clauses = append(clauses, "level = ?")
		args = append(args, string(filter.Level))
	}
	if filter.Dismissed != nil {
		v := 0
		if *filter.Dismissed {
			v = 1
		}
		clauses = append(clauses, "dismissed = ?")
		args = append(args, v)
	}
	if filter.TaskID != "" {
		clauses = append(clauses, "task_id = ?")
		args = append(args, filter.TaskID)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT id, level, title, message, progress, task_id, dismissed, created_at FROM notifications"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var (
			n         Notification
			level     string
			progress  sql.NullInt64
			dismissed int
			ts        string
		)
		if err := rows.Scan(&n.ID, &level, &n.Title, &n.Message, &progress, &n.TaskID, &dismissed, &ts); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Level = Level(level)
		n.Dismissed = dismissed != 0
		if progress.Valid {
			p := int(progress.Int64)
			n.Progress = &p
		}
		if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
			n.CreatedAt = t
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
