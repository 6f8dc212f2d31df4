// Package app assembles docent's services from settings.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docent/internal/adapters/driven/ai"
	"github.com/custodia-labs/docent/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docent/internal/adapters/driven/storage/badger"
	"github.com/custodia-labs/docent/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/docent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docent/internal/adapters/driven/storage/pgvector"
	"github.com/custodia-labs/docent/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/docent/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docent/internal/adapters/driving/cli"
	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
	"github.com/custodia-labs/docent/internal/core/services"
	"github.com/custodia-labs/docent/internal/extractors"
	"github.com/custodia-labs/docent/internal/extractors/pdf"
	"github.com/custodia-labs/docent/internal/extractors/plaintext"
	"github.com/custodia-labs/docent/internal/logger"
	"github.com/custodia-labs/docent/internal/postprocessors/chunker"
)

// Directories under the data directory.
const (
	indexDir     = "index"
	documentsDir = "documents"
	sessionsDir  = "sessions"
	promptsDir   = "prompts"
)

// closer collects cleanup functions and runs them in reverse order.
type closer struct {
	fns []func() error
}

func (c *closer) add(fn func() error) {
	c.fns = append(c.fns, fn)
}

func (c *closer) Close() error {
	var errs []error
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.fns = nil
	return errors.Join(errs...)
}

// Load builds the runtime. It satisfies cli.Loader.
func Load(ctx context.Context, opts cli.Options, full bool) (rt *cli.Runtime, err error) {
	configDir, err := file.DefaultConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locating config directory: %w", err)
	}

	var configStore driven.ConfigStore
	if opts.Ephemeral {
		configStore = memory.NewConfigStore()
	} else {
		configStore, err = file.NewConfigStore(configDir)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	rt = &cli.Runtime{Settings: settingsService}
	if !full {
		return rt, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if opts.DataDir != "" {
		settings.DataDir = opts.DataDir
	}

	c := &closer{}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	if opts.Ephemeral {
		tmp, err := os.MkdirTemp("", "docent-*")
		if err != nil {
			return nil, fmt.Errorf("creating temporary data directory: %w", err)
		}
		c.add(func() error { return os.RemoveAll(tmp) })
		settings.DataDir = tmp
		settings.VectorStore.Backend = domain.VectorBackendMemory
		settings.Session.Backend = domain.SessionBackendMemory
	} else {
		if err := os.MkdirAll(settings.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	logger.Debug("Data directory: %s", settings.DataDir)

	embedder, llm := createAI(settings, c)

	store, err := openVectorStore(ctx, settings)
	if err != nil {
		return nil, err
	}
	c.add(store.Close)

	sessions, err := openSessionStore(settings)
	if err != nil {
		return nil, err
	}
	c.add(sessions.Close)

	files, err := filesystem.NewFileStore(filepath.Join(settings.DataDir, documentsDir))
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore(promptDir(opts, configDir, settings.DataDir))
	if err != nil {
		return nil, err
	}

	pdfExtractor := pdf.New(pdf.WithMaxPages(settings.Ingest.MaxPDFPages))
	registry := extractors.NewRegistry(plaintext.New(), pdfExtractor)
	splitter := chunker.New(
		chunker.WithChunkSize(settings.Ingest.ChunkSize),
		chunker.WithOverlap(settings.Ingest.ChunkOverlap),
	)
	logger.Debug("Extractors: %s (PDF limit %d pages)",
		strings.Join(registry.Extensions(), ", "), pdfExtractor.MaxPages())
	logger.Debug("Chunker: %d characters, %d overlap", splitter.ChunkSize(), splitter.Overlap())

	index := services.NewIndexService(store, embedder)
	documents := services.NewDocumentService(index, registry, splitter,
		services.WithMaxChunks(settings.Ingest.MaxChunks),
		services.WithFileStore(files),
	)

	chatOpts := []services.ChatOption{services.WithChatSettings(settings.Chat)}
	if settings.Session.SerializeRequests {
		chatOpts = append(chatOpts, services.WithSessionLocking())
	}
	chat := services.NewChatService(services.NewRetriever(index, prompts), llm, sessions, prompts, chatOpts...)

	rt.Documents = documents
	rt.Chat = chat
	rt.Supports = registry.Supports
	rt.Close = c.Close
	return rt, nil
}

// createAI builds whichever providers are configured. A missing provider is
// not fatal: commands that do not need it still work, and the services
// report ErrEmbeddingUnavailable or a failed answer when it is used.
func createAI(settings *domain.AppSettings, c *closer) (driven.EmbeddingService, driven.LLMService) {
	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Warn("Embedding provider unavailable: %v", err)
	}
	if embedder != nil {
		c.add(embedder.Close)
	}

	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Warn("LLM provider unavailable: %v", err)
	}
	if llm != nil {
		c.add(llm.Close)
	}

	return embedder, llm
}

func openVectorStore(ctx context.Context, settings *domain.AppSettings) (driven.VectorStore, error) {
	vs := settings.VectorStore
	logger.Debug("Vector store: %s", vs.Backend)

	switch vs.Backend {
	case domain.VectorBackendSQLite:
		return sqlite.NewVectorStore(filepath.Join(settings.DataDir, indexDir), vs.Dimensions)
	case domain.VectorBackendQdrant:
		return qdrant.NewVectorStore(ctx, qdrant.Config{
			URL:        vs.URL,
			APIKey:     vs.APIKey,
			Collection: vs.Collection,
			Dimensions: vs.Dimensions,
		})
	case domain.VectorBackendPgvector:
		return pgvector.NewVectorStore(ctx, pgvector.Config{
			ConnectionString: vs.URL,
			Table:            vs.Collection,
			Dimensions:       vs.Dimensions,
		})
	case domain.VectorBackendMemory:
		return memory.NewVectorStore(vs.Dimensions), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector store backend %q", domain.ErrInvalidInput, vs.Backend)
	}
}

func openSessionStore(settings *domain.AppSettings) (driven.SessionStore, error) {
	ss := settings.Session

	switch ss.Backend {
	case domain.SessionBackendBadger:
		return badger.NewSessionStore(badger.Config{
			Dir:         filepath.Join(settings.DataDir, sessionsDir),
			TTL:         ss.TTL,
			MaxSessions: ss.MaxSessions,
		})
	case domain.SessionBackendMemory, "":
		return memory.NewSessionStore(memory.SessionStoreConfig{
			TTL:         ss.TTL,
			MaxSessions: ss.MaxSessions,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown session backend %q", domain.ErrInvalidInput, ss.Backend)
	}
}

// promptDir keeps prompt templates with the config, except for ephemeral
// runs, which must not write outside their temporary directory.
func promptDir(opts cli.Options, configDir, dataDir string) string {
	if opts.Ephemeral {
		return filepath.Join(dataDir, promptsDir)
	}
	return filepath.Join(configDir, promptsDir)
}
