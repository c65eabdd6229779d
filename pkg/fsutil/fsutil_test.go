package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/docrender/pkg/fsutil"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# Title\n"), 0o644))

	content, snap, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", string(content))
	assert.Equal(t, path, snap.Path)
	assert.Equal(t, int64(8), snap.Size)
	assert.NotZero(t, snap.Digest)
}

func TestReadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "missing", path: filepath.Join(dir, "missing.md"), want: fsutil.ErrNotFound},
		{name: "directory", path: dir, want: fsutil.ErrIsDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := fsutil.ReadFile(context.Background(), tt.path)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := fsutil.ReadFile(ctx, filepath.Join(dir, "any.md"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestChanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	setup := func(t *testing.T) (string, *fsutil.Snapshot) {
		t.Helper()
		path := filepath.Join(t.TempDir(), "doc.md")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
		_, snap, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)
		return path, snap
	}

	t.Run("untouched", func(t *testing.T) {
		t.Parallel()

		_, snap := setup(t)
		changed, err := fsutil.Changed(ctx, snap)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("touched with same content", func(t *testing.T) {
		t.Parallel()

		path, snap := setup(t)
		later := snap.ModTime.Add(time.Hour)
		require.NoError(t, os.Chtimes(path, later, later))

		changed, err := fsutil.Changed(ctx, snap)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("same size, new content", func(t *testing.T) {
		t.Parallel()

		path, snap := setup(t)
		require.NoError(t, os.WriteFile(path, []byte("world"), 0o644))
		later := snap.ModTime.Add(time.Hour)
		require.NoError(t, os.Chtimes(path, later, later))

		changed, err := fsutil.Changed(ctx, snap)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("resized", func(t *testing.T) {
		t.Parallel()

		path, snap := setup(t)
		require.NoError(t, os.WriteFile(path, []byte("hello, world"), 0o644))

		changed, err := fsutil.Changed(ctx, snap)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()

		path, snap := setup(t)
		require.NoError(t, os.Remove(path))

		changed, err := fsutil.Changed(ctx, snap)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("nil snapshot", func(t *testing.T) {
		t.Parallel()

		_, err := fsutil.Changed(ctx, nil)
		require.ErrorIs(t, err, fsutil.ErrNilSnapshot)
	})
}
