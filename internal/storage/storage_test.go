package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Put", func(t *testing.T) {
		html := []byte("<!DOCTYPE html><html><body>Demo</body></html>")

		path, err := storage.Put(ctx, "project-1/index.html", html)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(storage.Root(), "project-1", "index.html"), path)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, html, content)

		// Redeploys replace the page.
		_, err = storage.Put(ctx, "project-1/index.html", []byte("v2"))
		require.NoError(t, err)
		content, err = os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "v2", string(content))
	})

	t.Run("Put rejects escaping names", func(t *testing.T) {
		_, err := storage.Put(ctx, "../outside.html", []byte("x"))
		assert.Error(t, err)

		_, err = storage.Put(ctx, "", []byte("x"))
		assert.Error(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		path, err := storage.Put(ctx, "project-2/index.html", []byte("test"))
		require.NoError(t, err)

		require.NoError(t, storage.Delete(ctx, filepath.Dir(path)))
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))

		// Test deleting non-existent file
		err = storage.Delete(ctx, filepath.Join(storage.Root(), "nonexistent"))
		assert.Error(t, err)

		// Test deleting file outside storage directory
		err = storage.Delete(ctx, "/tmp/outside")
		assert.Error(t, err)

		// The root itself cannot be removed
		err = storage.Delete(ctx, storage.Root())
		assert.Error(t, err)
	})
}

func TestNewLocalStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sites")

	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)
	assert.DirExists(t, storage.Root())
}
