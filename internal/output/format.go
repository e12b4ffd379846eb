// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"viraflow/internal/task"
)

const (
	// ListSeparator is the separator line for board columns.
	ListSeparator = "------------"
)

// FormatTask formats a task line for the list view.
// Format: "{N:>4}  [x] {TITLE}  ({CATEGORY}[, {DATE}])\n"
// The box reflects Completed, not Status.
func FormatTask(w io.Writer, num int, t task.Task) {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	fmt.Fprintf(w, "%4d  %s %s  (%s)\n", num, box, normalizeTitle(t.Title), detail(t))
}

// FormatTaskIndented formats a task line inside a board column.
// Format: "    {N:>4}  {TITLE}  ({CATEGORY}[, {DATE}])\n"
func FormatTaskIndented(w io.Writer, num int, t task.Task) {
	fmt.Fprintf(w, "    %4d  %s  (%s)\n", num, normalizeTitle(t.Title), detail(t))
}

// FormatColumnHeader formats a board column header.
func FormatColumnHeader(w io.Writer, status task.Status, count int) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintf(w, "%s (%d)\n", StatusLabel(status), count)
	fmt.Fprintln(w, ListSeparator)
}

// FormatBoard prints one column per pipeline stage. Task numbers are
// list positions so they can be used as references.
func FormatBoard(w io.Writer, tasks []task.Task) {
	for _, status := range task.Pipeline {
		var nums []int
		for i, t := range tasks {
			if t.Status == status {
				nums = append(nums, i+1)
			}
		}
		FormatColumnHeader(w, status, len(nums))
		for _, n := range nums {
			FormatTaskIndented(w, n, tasks[n-1])
		}
	}
}

// FormatStats prints board statistics.
func FormatStats(w io.Writer, st task.Stats) {
	fmt.Fprintf(w, "%-12s %d\n", "Total:", st.Total)
	for _, status := range task.Pipeline {
		fmt.Fprintf(w, "%-12s %d\n", StatusLabel(status)+":", st.ByStatus[status])
	}
	fmt.Fprintf(w, "%-12s %d%%\n", "Progress:", st.Progress)
	cats := st.SortedCategories()
	if len(cats) == 0 {
		return
	}
	fmt.Fprintln(w, "Categories:")
	for _, c := range cats {
		fmt.Fprintf(w, "    %4d  %s\n", c.Count, c.Category)
	}
}

// StatusLabel returns the display name of a status.
func StatusLabel(s task.Status) string {
	switch s {
	case task.StatusTodo:
		return "To Do"
	case task.StatusInProgress:
		return "In Progress"
	case task.StatusDone:
		return "Done"
	}
	return string(s)
}

func detail(t task.Task) string {
	d := task.CategoryOrDefault(t.Category)
	if date := strings.TrimSpace(t.Date); date != "" {
		d += ", " + date
	}
	return d
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
