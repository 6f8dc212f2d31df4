package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent/internal/core/domain"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "documents")
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	return store, dir
}

func mustPath(t *testing.T, store *FileStore, name string) string {
	t.Helper()
	path, err := store.Path(name)
	require.NoError(t, err)
	return path
}

func TestNewFileStore_RequiresDir(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestSave_WritesSanitisedName(t *testing.T) {
	store, dir := newTestStore(t)

	path, err := store.Save(context.Background(), "../secret/my notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "my_notes.txt"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSave_Overwrites(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, "a.txt", strings.NewReader("first"))
	require.NoError(t, err)
	path, err := store.Save(ctx, "a.txt", strings.NewReader("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestSave_InvalidName(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Save(context.Background(), "...", strings.NewReader("x"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSave_CancelledContext(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, "a.txt", strings.NewReader("data"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, mustPath(t, store, "a.txt"))
}

func TestRemove(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	path, err := store.Save(ctx, "a.txt", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, "a.txt"))
	assert.NoFileExists(t, path)

	assert.NoError(t, store.Remove(ctx, "a.txt"), "removing a missing file is a no-op")
}

func TestPath(t *testing.T) {
	store, dir := newTestStore(t)

	assert.Equal(t, filepath.Join(dir, "사용자_안내서.pdf"), mustPath(t, store, "사용자 안내서.pdf"))
}

func TestUnusableNames_LeaveDirectoryIntact(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{".", "..", ""} {
		t.Run("name "+name, func(t *testing.T) {
			_, err := store.Path(name)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			assert.ErrorIs(t, store.Remove(ctx, name), domain.ErrInvalidInput)
			assert.DirExists(t, dir)
		})
	}

	_, err := store.Save(ctx, "a.txt", strings.NewReader("x"))
	assert.NoError(t, err)
}
