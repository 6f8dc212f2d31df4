package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent/internal/adapters/driven/storage/badger"
	"github.com/custodia-labs/docent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docent/internal/adapters/driving/cli"
	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/logger"
)

func TestLoad_SettingsOnly(t *testing.T) {
	rt, err := Load(context.Background(), cli.Options{Ephemeral: true}, false)
	require.NoError(t, err)

	assert.NotNil(t, rt.Settings)
	assert.Nil(t, rt.Documents)
	assert.Nil(t, rt.Chat)
	assert.Nil(t, rt.Close)
}

func TestLoad_Ephemeral(t *testing.T) {
	rt, err := Load(context.Background(), cli.Options{Ephemeral: true}, true)
	require.NoError(t, err)
	require.NotNil(t, rt.Close)

	assert.NotNil(t, rt.Documents)
	assert.NotNil(t, rt.Chat)
	require.NotNil(t, rt.Supports)
	assert.True(t, rt.Supports("report.PDF"))
	assert.False(t, rt.Supports("photo.png"))
	assert.Empty(t, rt.Documents.List(context.Background()))

	require.NoError(t, rt.Close())
}

func TestCloser_RunsInReverseAndJoinsErrors(t *testing.T) {
	var order []int
	c := &closer{}
	c.add(func() error { order = append(order, 1); return nil })
	c.add(func() error { order = append(order, 2); return errors.New("boom") })
	c.add(func() error { order = append(order, 3); return nil })

	err := c.Close()

	assert.EqualError(t, err, "boom")
	assert.Equal(t, []int{3, 2, 1}, order)
	assert.NoError(t, c.Close())
}

func TestOpenVectorStore(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.DataDir = t.TempDir()

		store, err := openVectorStore(ctx, &settings)
		require.NoError(t, err)
		defer store.Close()

		assert.DirExists(t, filepath.Join(settings.DataDir, indexDir))
	})

	t.Run("memory", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.VectorStore.Backend = domain.VectorBackendMemory

		store, err := openVectorStore(ctx, &settings)
		require.NoError(t, err)
		assert.IsType(t, &memory.VectorStore{}, store)
	})

	t.Run("unknown", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.VectorStore.Backend = "chroma"

		_, err := openVectorStore(ctx, &settings)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestOpenSessionStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		settings := domain.DefaultAppSettings()

		store, err := openSessionStore(&settings)
		require.NoError(t, err)
		assert.IsType(t, &memory.SessionStore{}, store)
	})

	t.Run("badger", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.DataDir = t.TempDir()
		settings.Session.Backend = domain.SessionBackendBadger

		store, err := openSessionStore(&settings)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &badger.SessionStore{}, store)
	})

	t.Run("unknown", func(t *testing.T) {
		settings := domain.DefaultAppSettings()
		settings.Session.Backend = "redis"

		_, err := openSessionStore(&settings)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestPromptDir(t *testing.T) {
	assert.Equal(t, "/cfg/prompts", promptDir(cli.Options{}, "/cfg", "/data"))
	assert.Equal(t, "/data/prompts", promptDir(cli.Options{Ephemeral: true}, "/cfg", "/data"))
}

func TestLoad_LogsEffectiveIngestLimits(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	rt, err := Load(context.Background(), cli.Options{Ephemeral: true}, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	assert.Contains(t, buf.String(), "Extractors: .pdf, .txt (PDF limit 50 pages)")
	assert.Contains(t, buf.String(), "Chunker: 1000 characters, 200 overlap")
}
