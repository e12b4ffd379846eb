package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"viraflow/internal/store"
	"viraflow/internal/task"
)

// TaskRef identifies a task by list position or by id.
type TaskRef struct {
	Num int    // 1-based position in the list view; 0 when ID is set
	ID  string // full task id
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the task reference in args[0].
//
// An all-digit reference is a list position. Anything else is taken as a
// task id. References that look like flags are rejected.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	arg := strings.TrimSpace(args[0])

	if isAllDigits(arg) {
		num, err := strconv.Atoi(arg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
		}
		return TaskRef{Num: num}, nil
	}
	if strings.HasPrefix(arg, "-") {
		return TaskRef{}, fmt.Errorf("invalid task reference: %s", arg)
	}
	return TaskRef{ID: arg}, nil
}

// Resolve finds the referenced task in tasks (list view order).
func (r TaskRef) Resolve(tasks []task.Task) (task.Task, error) {
	if r.ID != "" {
		for _, t := range tasks {
			if t.ID == r.ID {
				return t, nil
			}
		}
		return task.Task{}, fmt.Errorf("task not found: %s", r.ID)
	}
	if r.Num < 1 || r.Num > len(tasks) {
		return task.Task{}, fmt.Errorf("task number out of range: %d", r.Num)
	}
	return tasks[r.Num-1], nil
}

// lookupTask resolves args[0] against the store, printing the error on
// failure.
func lookupTask(st *store.Store, args []string, errOut io.Writer) (task.Task, bool) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return task.Task{}, false
	}
	t, err := ref.Resolve(st.Tasks())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return task.Task{}, false
	}
	return t, true
}

// position returns the 1-based list position of id, or 0.
func position(tasks []task.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i + 1
		}
	}
	return 0
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
