package api

import (
	"errors"
	"fmt"
	"strings"
)

// TaskStatus is the lifecycle state of an asynchronous backend job.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusProcessing TaskStatus = "processing"
	StatusCompleted  TaskStatus = "completed"
	StatusFailed     TaskStatus = "failed"
)

// Terminal reports whether the status ends the task lifecycle.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// APIError is a logical failure reported by the backend, as opposed to a
// transport failure reaching it.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return "backend error: " + e.Message
}

// IsBackendError reports whether err is a backend-reported logical failure.
func IsBackendError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// friendlyPatterns maps raw backend error substrings to user-facing
// messages, checked in order.
var friendlyPatterns = []struct {
	keyword string
	message string
}{
	{"rate limit", "The service is busy right now. Please try again in a moment."},
	{"quota", "You have reached your plan's usage limit. Upgrade for more capacity."},
	{"unauthorized", "Your session has expired. Please sign in again."},
	{"forbidden", "This feature is not available on your current plan."},
	{"not found", "The requested data could not be found."},
	{"timeout", "The request took too long. Please try again."},
	{"invalid symbol", "That ticker symbol was not recognised."},
}

// FriendlyMessage maps an error to a message suitable for end users,
// using a small keyword-matching table over the raw backend text.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	raw := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		raw = apiErr.Message
	}

	lower := strings.ToLower(raw)
	for _, p := range friendlyPatterns {
		if strings.Contains(lower, p.keyword) {
			return p.message
		}
	}

	if !IsBackendError(err) {
		return "Could not reach the analysis service. Check your connection and try again."
	}
	return "Something went wrong processing your request. Please try again."
}
