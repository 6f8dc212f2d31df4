package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent/internal/watcher"
)

func newChangeCmd() (*cobra.Command, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetContext(context.Background())
	return cmd, buf
}

func TestWatch_IndexesExistingThenStops(t *testing.T) {
	docs, _ := setupTestServices(t)
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.pdf", "c.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"watch", dir})
	err := rootCmd.ExecuteContext(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.pdf")}, docs.ingested)
	assert.Contains(t, buf.String(), "Watching "+dir)
}

func TestWatch_SkipExisting(t *testing.T) {
	docs, _ := setupTestServices(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"watch", "--skip-existing", dir})
	err := rootCmd.ExecuteContext(ctx)

	require.NoError(t, err)
	assert.Empty(t, docs.ingested)
}

func TestWatch_MissingDirectory(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "watch", filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestApplyChange(t *testing.T) {
	docs, _ := setupTestServices(t)

	cmd, buf := newChangeCmd()
	applyChange(cmd, watcher.Change{Path: "/docs/report.pdf", Kind: watcher.ChangeUpserted})
	applyChange(cmd, watcher.Change{Path: "/docs/old.txt", Kind: watcher.ChangeRemoved})

	assert.Equal(t, []string{"/docs/report.pdf"}, docs.ingested)
	assert.Equal(t, []string{"old.txt"}, docs.deleted)
	assert.Contains(t, buf.String(), "report.pdf (3 chunks)")
	assert.Contains(t, buf.String(), "old.txt removed")
}

func TestApplyChange_ReportsErrors(t *testing.T) {
	docs, _ := setupTestServices(t)
	docs.err = errors.New("extract failed")

	cmd, buf := newChangeCmd()
	applyChange(cmd, watcher.Change{Path: "/docs/report.pdf", Kind: watcher.ChangeUpserted})
	applyChange(cmd, watcher.Change{Path: "/docs/old.txt", Kind: watcher.ChangeRemoved})

	assert.Contains(t, buf.String(), "report.pdf: indexing: extract failed")
	assert.Contains(t, buf.String(), "old.txt: extract failed")
}
