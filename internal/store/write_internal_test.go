package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viraflow/internal/securestore"
)

func TestWriteDropsOlderGeneration(t *testing.T) {
	kv := securestore.NewMemory()
	s := New(kv)

	// Completion order reversed relative to issue order.
	s.write(KeyTasks, 2, "newer")
	s.write(KeyTasks, 1, "older")

	v, _, err := kv.Get(context.Background(), KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, "newer", v)

	// Generations are tracked per key.
	s.write(KeyUserName, 1, "Ada")
	v, _, err = kv.Get(context.Background(), KeyUserName)
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)
}

func TestClearInvalidatesPendingWrites(t *testing.T) {
	kv := securestore.NewMemory()
	s := New(kv)
	require.NoError(t, s.Hydrate(context.Background()))

	s.AddTask("a", "", "")
	require.NoError(t, s.Flush(context.Background()))
	staleGen := s.gen

	s.ClearAllData(context.Background())
	s.write(KeyTasks, staleGen, `{"version":1,"tasks":[]}`)

	_, found, err := kv.Get(context.Background(), KeyTasks)
	require.NoError(t, err)
	assert.False(t, found, "a write issued before the clear must not resurrect the key")
}
