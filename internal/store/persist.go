package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"viraflow/internal/task"
)

const (
	// KeyTasks holds the task collection envelope.
	KeyTasks = "viraflow_secure_tasks"

	// KeyUserName holds the raw user name.
	KeyUserName = "viraflow_secure_username"

	// SchemaVersion is the envelope version written by this build.
	SchemaVersion = 1
)

// ErrUnsupportedVersion is returned when the persisted envelope was
// written by a newer build.
var ErrUnsupportedVersion = errors.New("unsupported schema version")

type envelope struct {
	Version int         `json:"version"`
	Tasks   []task.Task `json:"tasks"`
}

// EncodeTasks serializes tasks into the versioned envelope.
func EncodeTasks(tasks []task.Task) (string, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	b, err := json.Marshal(envelope{Version: SchemaVersion, Tasks: tasks})
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(b), nil
}

// DecodeTasks parses a persisted collection. A bare JSON array is the
// unversioned layout and is read as version 0.
func DecodeTasks(data string) ([]task.Task, error) {
	data = strings.TrimSpace(data)
	if strings.HasPrefix(data, "[") {
		var tasks []task.Task
		if err := json.Unmarshal([]byte(data), &tasks); err != nil {
			return nil, fmt.Errorf("json unmarshal: %w", err)
		}
		return normalize(tasks), nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if env.Version < 1 || env.Version > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return normalize(env.Tasks), nil
}

// normalize fills a missing status on records written before status
// existed and never returns nil.
func normalize(tasks []task.Task) []task.Task {
	if tasks == nil {
		return []task.Task{}
	}
	for i := range tasks {
		if tasks[i].Status == "" {
			if tasks[i].Completed {
				tasks[i].Status = task.StatusDone
			} else {
				tasks[i].Status = task.StatusTodo
			}
		}
	}
	return tasks
}
