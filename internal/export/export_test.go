package export_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viraflow/internal/export"
	"viraflow/internal/task"
	"viraflow/internal/testutil"
)

func sample() []task.Task {
	return []task.Task{
		{ID: "1", Title: "Buy milk", Category: "Home", Status: task.StatusTodo, Date: "tomorrow"},
		{ID: "2", Title: "Report", Category: "", Status: task.StatusInProgress},
		{ID: "3", Title: "Moved to done", Category: "Work", Status: task.StatusDone},
		{ID: "4", Title: "Toggled", Category: "Work", Status: task.StatusTodo, Completed: true},
	}
}

func TestItemsSkipsDone(t *testing.T) {
	got := export.Items(sample(), false)
	want := []export.Item{
		{Title: "Buy milk", Notes: "Category: Home\nDate: tomorrow\nStatus: todo"},
		{Title: "Report", Notes: "Category: General\nStatus: in-progress"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
}

func TestItemsIncludeDone(t *testing.T) {
	got := export.Items(sample(), true)
	require.Len(t, got, 4)
	assert.False(t, got[1].Completed)
	assert.True(t, got[2].Completed, "status done counts as completed")
	assert.True(t, got[3].Completed, "completed flag counts even when status is todo")
}

func TestItemsEmpty(t *testing.T) {
	assert.Empty(t, export.Items(nil, true))
}

func TestPush(t *testing.T) {
	target := testutil.NewFakeTarget()
	items := export.Items(sample(), true)

	n, err := export.Push(context.Background(), target, testutil.DefaultListID, items)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, items, target.Items(testutil.DefaultListID))
}

func TestPushStopsAtFirstFailure(t *testing.T) {
	target := testutil.NewFakeTarget()
	target.FailAfter = 2

	n, err := export.Push(context.Background(), target, testutil.DefaultListID, export.Items(sample(), true))
	assert.Equal(t, 2, n)
	assert.EqualError(t, err, `export "Moved to done": quota exceeded`)
	assert.Len(t, target.Items(testutil.DefaultListID), 2)
}

func TestPushUnknownList(t *testing.T) {
	target := testutil.NewFakeTarget()
	n, err := export.Push(context.Background(), target, "nope", export.Items(sample(), false))
	assert.Zero(t, n)
	assert.True(t, errors.Is(err, testutil.ErrNotFound))
}

func TestPushCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := testutil.NewFakeTarget()
	n, err := export.Push(ctx, target, testutil.DefaultListID, export.Items(sample(), false))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, target.Items(testutil.DefaultListID))
}
