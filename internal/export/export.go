// Package export pushes local tasks to a remote task list.
//
// Export is one-shot and one-way: remote state is never read back into
// the store.
package export

import (
	"context"
	"fmt"
	"strings"

	"viraflow/internal/task"
)

// List is a remote task list.
type List struct {
	ID        string
	Title     string
	IsDefault bool
}

// Item is one task as created remotely.
type Item struct {
	Title     string
	Notes     string
	Completed bool
}

// Target is a remote task backend.
// Commands never import a backend SDK directly.
type Target interface {
	// DefaultList returns the user's default list.
	DefaultList(ctx context.Context) (List, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns an error if not found or ambiguous.
	ResolveList(ctx context.Context, name string) (List, error)

	// CreateTask creates an item in the given list.
	CreateTask(ctx context.Context, listID string, item Item) error
}

// Items maps tasks to remote items, preserving order. Done tasks are
// skipped unless includeDone is set.
func Items(tasks []task.Task, includeDone bool) []Item {
	items := make([]Item, 0, len(tasks))
	for _, t := range tasks {
		done := isDone(t)
		if done && !includeDone {
			continue
		}
		items = append(items, Item{
			Title:     t.Title,
			Notes:     notes(t),
			Completed: done,
		})
	}
	return items
}

// isDone treats either completion signal as done, since the two can
// disagree after a status move.
func isDone(t task.Task) bool {
	return t.Completed || t.Status == task.StatusDone
}

func notes(t task.Task) string {
	parts := []string{"Category: " + task.CategoryOrDefault(t.Category)}
	if d := strings.TrimSpace(t.Date); d != "" {
		parts = append(parts, "Date: "+d)
	}
	parts = append(parts, "Status: "+string(t.Status))
	return strings.Join(parts, "\n")
}

// Push creates items in listID in order and stops at the first failure.
// It returns how many items were created.
func Push(ctx context.Context, target Target, listID string, items []Item) (int, error) {
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := target.CreateTask(ctx, listID, item); err != nil {
			return i, fmt.Errorf("export %q: %w", item.Title, err)
		}
	}
	return len(items), nil
}
