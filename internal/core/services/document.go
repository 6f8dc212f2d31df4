package services

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
	"github.com/custodia-labs/docent/internal/core/ports/driving"
	"github.com/custodia-labs/docent/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService turns files into indexed chunks and manages the collection.
type DocumentService struct {
	index     *IndexService
	extractor driven.TextExtractor
	splitter  driven.Splitter
	files     driven.FileStore
	maxChunks int
	locks     *keyedMutex
}

// DocumentOption configures a DocumentService.
type DocumentOption func(*DocumentService)

// WithMaxChunks rejects documents that split into more than n chunks.
// Zero disables the ceiling.
func WithMaxChunks(n int) DocumentOption {
	return func(s *DocumentService) {
		if n >= 0 {
			s.maxChunks = n
		}
	}
}

// WithFileStore keeps raw copies of imported documents in files.
func WithFileStore(files driven.FileStore) DocumentOption {
	return func(s *DocumentService) {
		s.files = files
	}
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	index *IndexService,
	extractor driven.TextExtractor,
	splitter driven.Splitter,
	opts ...DocumentOption,
) *DocumentService {
	s := &DocumentService{
		index:     index,
		extractor: extractor,
		splitter:  splitter,
		maxChunks: domain.DefaultAppSettings().Ingest.MaxChunks,
		locks:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest indexes the file at path under its sanitised base filename.
func (s *DocumentService) Ingest(ctx context.Context, path string) (int, error) {
	name, err := domain.DocumentName(path)
	if err != nil {
		return 0, err
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	return s.ingest(ctx, name, path)
}

// Import copies the file at path into the document store and indexes the copy.
func (s *DocumentService) Import(ctx context.Context, path string) (string, int, error) {
	if s.files == nil {
		return "", 0, fmt.Errorf("%w: no document store configured", domain.ErrInvalidInput)
	}

	name, err := domain.DocumentName(path)
	if err != nil {
		return "", 0, err
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("opening %s: %w", path, err)
	}
	stored, err := s.files.Save(ctx, name, f)
	f.Close()
	if err != nil {
		return "", 0, fmt.Errorf("storing %s: %w", name, err)
	}

	n, err := s.ingest(ctx, name, stored)
	if err != nil {
		if rmErr := s.files.Remove(context.WithoutCancel(ctx), name); rmErr != nil {
			logger.Warn("Removing stored copy of %s failed: %v", name, rmErr)
		}
		return "", 0, err
	}
	return name, n, nil
}

func (s *DocumentService) ingest(ctx context.Context, name, path string) (int, error) {
	logger.Section("Ingest " + name)

	text, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return 0, err
	}

	chunks := s.splitter.Split(text)
	logger.Debug("Split %s into %d chunks", name, len(chunks))
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrEmptyDocument, name)
	}
	if s.maxChunks > 0 && len(chunks) > s.maxChunks {
		return 0, fmt.Errorf("%w: %s has %d chunks, limit is %d",
			domain.ErrTooManyChunks, name, len(chunks), s.maxChunks)
	}

	n, err := s.index.Upsert(ctx, name, chunks)
	if err != nil {
		return 0, err
	}
	logger.Info("Ingested %s (%d chunks)", name, n)
	return n, nil
}

// List returns the names of indexed documents, sorted.
func (s *DocumentService) List(ctx context.Context) []string {
	return s.index.ListSources(ctx)
}

// Documents returns indexed documents with their chunk counts.
func (s *DocumentService) Documents(ctx context.Context) ([]domain.DocumentInfo, error) {
	return s.index.Documents(ctx)
}

// Delete removes the document's chunks and its stored raw file.
func (s *DocumentService) Delete(ctx context.Context, name string) error {
	if _, err := domain.DocumentName(name); err != nil {
		return err
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	if err := s.index.DeleteDocument(ctx, name); err != nil {
		return err
	}
	if s.files != nil {
		if err := s.files.Remove(ctx, name); err != nil {
			return fmt.Errorf("removing stored file %s: %w", name, err)
		}
	}
	return nil
}
