// Package task defines the task domain model shared by the store, the
// extraction client and the front end.
package task

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultCategory is used when a task is created or edited without one.
	DefaultCategory = "General"

	// DefaultUserName is the display name before the user sets one.
	DefaultUserName = "User"
)

// Status is a kanban pipeline stage.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Pipeline lists the statuses in board order.
var Pipeline = []Status{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the pipeline stages.
func (s Status) Valid() bool {
	return s.index() >= 0
}

func (s Status) index() int {
	for i, p := range Pipeline {
		if p == s {
			return i
		}
	}
	return -1
}

// Next returns the following pipeline stage.
// ok is false when s is already the last stage or not a valid stage.
func (s Status) Next() (Status, bool) {
	i := s.index()
	if i < 0 || i+1 >= len(Pipeline) {
		return s, false
	}
	return Pipeline[i+1], true
}

// Prev returns the preceding pipeline stage.
func (s Status) Prev() (Status, bool) {
	i := s.index()
	if i <= 0 {
		return s, false
	}
	return Pipeline[i-1], true
}

// ParseStatus parses a status name (case-insensitive, trimmed).
// "in_progress" and "inprogress" are accepted for in-progress.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo":
		return StatusTodo, nil
	case "in-progress", "in_progress", "inprogress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("invalid status: %s", s)
}

// Task is a single user-tracked work item.
//
// Completed and Status transition independently: toggling completion
// rewrites Status, moving Status never rewrites Completed.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Status    Status `json:"status"`
	Completed bool   `json:"completed"`
	Date      string `json:"date,omitempty"`
}

// NewID returns a time-ordered unique id (UUIDv7: millisecond timestamp
// followed by random bits).
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CategoryOrDefault returns category, or DefaultCategory when it is blank.
func CategoryOrDefault(category string) string {
	if strings.TrimSpace(category) == "" {
		return DefaultCategory
	}
	return category
}
