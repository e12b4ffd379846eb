package output_test

import (
	"bytes"
	"testing"

	"viraflow/internal/output"
	"viraflow/internal/task"
	"viraflow/internal/testutil"
)

func boardTasks() []task.Task {
	return []task.Task{
		{ID: "1", Title: "Buy milk", Category: "Home", Status: task.StatusTodo, Date: "tomorrow"},
		{ID: "2", Title: "Write report", Category: "Work", Status: task.StatusInProgress},
		{ID: "3", Title: "Call mom", Status: task.StatusTodo, Completed: true},
		{ID: "4", Title: "Ship v1", Category: "Work", Status: task.StatusDone},
	}
}

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		num  int
		task task.Task
		want string
	}{
		{"open", 1, task.Task{Title: "Buy milk", Category: "Home"}, "   1  [ ] Buy milk  (Home)\n"},
		{"completed with date", 12, task.Task{Title: "Pay rent", Category: "Home", Date: "Friday", Completed: true}, "  12  [x] Pay rent  (Home, Friday)\n"},
		{"blank category", 3, task.Task{Title: "Stretch"}, "   3  [ ] Stretch  (General)\n"},
		{"untitled", 4, task.Task{Title: "  ", Category: "Work"}, "   4  [ ] (untitled)  (Work)\n"},
		{"multiline", 5, task.Task{Title: "a\nb", Category: "Work"}, "   5  [ ] a b  (Work)\n"},
		{"done status is not a checkmark", 6, task.Task{Title: "x", Category: "Work", Status: task.StatusDone}, "   6  [ ] x  (Work)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			output.FormatTask(&buf, tt.num, tt.task)
			if got := buf.String(); got != tt.want {
				t.Errorf("FormatTask() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatBoard(t *testing.T) {
	var buf bytes.Buffer
	output.FormatBoard(&buf, boardTasks())
	testutil.Golden(t, "board", buf.Bytes())
}

func TestFormatBoardEmpty(t *testing.T) {
	var buf bytes.Buffer
	output.FormatBoard(&buf, nil)
	want := "------------\nTo Do (0)\n------------\n" +
		"------------\nIn Progress (0)\n------------\n" +
		"------------\nDone (0)\n------------\n"
	if got := buf.String(); got != want {
		t.Errorf("FormatBoard(nil) = %q, want %q", got, want)
	}
}

func TestFormatStats(t *testing.T) {
	var buf bytes.Buffer
	output.FormatStats(&buf, task.Summarize(boardTasks()))
	testutil.Golden(t, "stats", buf.Bytes())
}

func TestStatusLabel(t *testing.T) {
	if got := output.StatusLabel(task.StatusInProgress); got != "In Progress" {
		t.Errorf("StatusLabel(in-progress) = %q", got)
	}
	if got := output.StatusLabel("archived"); got != "archived" {
		t.Errorf("StatusLabel(archived) = %q", got)
	}
}
