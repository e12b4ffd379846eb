package securestore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viraflow/internal/securestore"
)

// exercise runs the shared contract against any Store.
func exercise(t *testing.T, s securestore.Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Set(ctx, "empty", ""))
	v, found, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, found, "empty value is still present")
	assert.Equal(t, "", v)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"), "deleting an absent key is not an error")
	_, found, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory(t *testing.T) {
	exercise(t, securestore.NewMemory())
}

func TestMemoryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := securestore.NewMemory().Set(ctx, "k", "v")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLite(t *testing.T) {
	db, err := securestore.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer db.Close()
	exercise(t, db)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kv.db")

	db, err := securestore.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(context.Background(), "name", "Ada"))
	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "second close is a no-op")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	db, err = securestore.OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	v, found, err := db.Get(context.Background(), "name")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Ada", v)
}

func TestSQLiteClosed(t *testing.T) {
	db, err := securestore.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, _, err = db.Get(context.Background(), "k")
	assert.ErrorIs(t, err, securestore.ErrClosed)
	assert.ErrorIs(t, db.Set(context.Background(), "k", "v"), securestore.ErrClosed)
}

func TestSealed(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	exercise(t, securestore.NewSealed(securestore.NewMemory(), identity))
}

func TestSealedEncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	inner := securestore.NewMemory()
	sealed := securestore.NewSealed(inner, identity)
	require.NoError(t, sealed.Set(ctx, "tasks", `[{"title":"Buy milk"}]`))

	raw, found, err := inner.Get(ctx, "tasks")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotContains(t, raw, "Buy milk")

	other, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	_, _, err = securestore.NewSealed(inner, other).Get(ctx, "tasks")
	assert.Error(t, err, "a different identity cannot unseal")

	require.NoError(t, inner.Set(ctx, "tasks", "not base64!"))
	_, _, err = sealed.Get(ctx, "tasks")
	assert.ErrorContains(t, err, "unseal tasks")
}

func TestLoadOrCreateIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "identity.txt")

	first, err := securestore.LoadOrCreateIdentity(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, err := securestore.LoadOrCreateIdentity(path)
	require.NoError(t, err)
	assert.Equal(t, first.String(), second.String())

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))
	_, err = securestore.LoadOrCreateIdentity(path)
	assert.ErrorContains(t, err, "invalid identity file")
}

func TestOpenSealedSQLite(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := securestore.Open(filepath.Join(dir, "viraflow.db"), filepath.Join(dir, "identity.txt"))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "viraflow_secure_username", "Ada"))
	require.NoError(t, s.Close())

	s, err = securestore.Open(filepath.Join(dir, "viraflow.db"), filepath.Join(dir, "identity.txt"))
	require.NoError(t, err)
	defer s.Close()
	v, found, err := s.Get(ctx, "viraflow_secure_username")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Ada", v)

	data, err := os.ReadFile(filepath.Join(dir, "identity.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "AGE-SECRET-KEY-1"))
}
