package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viraflow/internal/task"
)

func TestStatusPipelineMoves(t *testing.T) {
	next, ok := task.StatusTodo.Next()
	require.True(t, ok)
	assert.Equal(t, task.StatusInProgress, next)

	next, ok = task.StatusInProgress.Next()
	require.True(t, ok)
	assert.Equal(t, task.StatusDone, next)

	_, ok = task.StatusDone.Next()
	assert.False(t, ok, "done is the last stage")

	_, ok = task.StatusTodo.Prev()
	assert.False(t, ok, "todo is the first stage")

	prev, ok := task.StatusDone.Prev()
	require.True(t, ok)
	assert.Equal(t, task.StatusInProgress, prev)

	_, ok = task.Status("archived").Next()
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]task.Status{
		"todo":        task.StatusTodo,
		" DONE ":      task.StatusDone,
		"in-progress": task.StatusInProgress,
		"in_progress": task.StatusInProgress,
	} {
		got, err := task.ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := task.ParseStatus("later")
	assert.EqualError(t, err, "invalid status: later")
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := task.NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestCategoryOrDefault(t *testing.T) {
	assert.Equal(t, task.DefaultCategory, task.CategoryOrDefault("  "))
	assert.Equal(t, "Errands", task.CategoryOrDefault("Errands"))
}

func TestSummarize(t *testing.T) {
	tasks := []task.Task{
		{Category: "Work", Status: task.StatusDone},
		{Category: "Home", Status: task.StatusTodo},
		{Category: "Work", Status: task.StatusInProgress},
	}
	st := task.Summarize(tasks)

	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.ByStatus[task.StatusDone])
	assert.Equal(t, 33, st.Progress)
	assert.Equal(t, []task.CategoryCount{{"Work", 2}, {"Home", 1}}, st.SortedCategories())

	assert.Equal(t, 0, task.Summarize(nil).Progress)
}
