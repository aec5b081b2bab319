package progress

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "progress.db")
}

func TestAddAndContains(t *testing.T) {
	ctx := context.Background()
	s, err := Open(tempDBPath(t), false)
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.Contains(ctx, "thread-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Add(ctx, "thread-1"))

	ok, err = s.Contains(ctx, "thread-1")
	require.NoError(t, err)
	assert.True(t, ok)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := Open(tempDBPath(t), false)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Add(ctx, "thread-1"))
	require.NoError(t, s.Add(ctx, "thread-1"))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestKeysSurviveReopen(t *testing.T) {
	ctx := context.Background()
	path := tempDBPath(t)

	s, err := Open(path, false)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "thread-1"))
	require.NoError(t, s.Add(ctx, "thread-2"))
	require.NoError(t, s.Close())

	s, err = Open(path, false)
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.Contains(ctx, "thread-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPurgeDiscardsPriorKeys(t *testing.T) {
	ctx := context.Background()
	path := tempDBPath(t)

	s, err := Open(path, false)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "thread-1"))
	require.NoError(t, s.Close())

	s, err = Open(path, true)
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.Contains(ctx, "thread-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiscardRemovesDatabaseFile(t *testing.T) {
	ctx := context.Background()
	path := tempDBPath(t)

	s, err := Open(path, false)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, "thread-1"))

	require.NoError(t, s.Discard())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + "-wal")
	assert.True(t, os.IsNotExist(err))
}
