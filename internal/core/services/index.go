package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
	"github.com/custodia-labs/docent/internal/logger"
)

// IndexService embeds document chunks and keeps them in a vector store.
type IndexService struct {
	store     driven.VectorStore
	embedder  driven.EmbeddingService
	batchSize int
}

// NewIndexService creates an index over store using embedder for vectors.
func NewIndexService(store driven.VectorStore, embedder driven.EmbeddingService) *IndexService {
	return &IndexService{
		store:     store,
		embedder:  embedder,
		batchSize: driven.MaxEmbeddingBatch,
	}
}

// Upsert replaces every chunk of the named document with chunks and returns
// how many were stored. Embedding happens before anything is written, so an
// embedding failure leaves the index without the document. A write failure
// part way through removes whatever was committed before returning.
func (s *IndexService) Upsert(ctx context.Context, name string, chunks []string) (int, error) {
	if len(chunks) == 0 {
		return 0, domain.ErrEmptyInput
	}
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	if _, err := s.store.DeleteSource(ctx, name); err != nil {
		return 0, indexErr("removing previous chunks of "+name, err)
	}

	// Stage
	var staged [][]domain.Chunk
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		vectors, err := s.embedder.EmbedBatch(ctx, chunks[start:end])
		if err != nil {
			return 0, embeddingErr(err)
		}
		if len(vectors) != end-start {
			return 0, fmt.Errorf("%w: got %d embeddings for %d chunks",
				domain.ErrEmbeddingService, len(vectors), end-start)
		}

		batch := make([]domain.Chunk, end-start)
		for i, v := range vectors {
			idx := start + i
			batch[i] = domain.Chunk{
				ID:        domain.ChunkID(name, idx),
				Source:    name,
				Index:     idx,
				Content:   chunks[idx],
				Embedding: v,
			}
		}
		staged = append(staged, batch)
		logger.Debug("Embedded chunks %d-%d of %s", start, end-1, name)
	}

	// Commit
	for i, batch := range staged {
		if err := s.store.Add(ctx, batch); err != nil {
			if i > 0 {
				if _, delErr := s.store.DeleteSource(context.WithoutCancel(ctx), name); delErr != nil {
					logger.Error("Rollback of %s failed: %v", name, delErr)
				} else {
					logger.Warn("Rolled back partial upsert of %s", name)
				}
			}
			return 0, indexErr("writing chunks of "+name, err)
		}
	}

	logger.Debug("Indexed %s: %d chunks", name, len(chunks))
	return len(chunks), nil
}

// Query returns the k chunks most similar to text, best first.
func (s *IndexService) Query(ctx context.Context, text string, k int) ([]domain.RetrievedChunk, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, embeddingErr(err)
	}

	results, err := s.store.Search(ctx, vec, k)
	if err != nil {
		return nil, indexErr("searching", err)
	}
	return results, nil
}

// ListSources returns the sorted names of indexed documents.
// Store failures are logged and produce an empty list.
func (s *IndexService) ListSources(ctx context.Context) []string {
	docs, err := s.Documents(ctx)
	if err != nil {
		logger.Error("Listing documents failed: %v", err)
		return []string{}
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names
}

// Documents returns indexed documents with their chunk counts.
func (s *IndexService) Documents(ctx context.Context) ([]domain.DocumentInfo, error) {
	docs, err := s.store.Documents(ctx)
	if err != nil {
		return nil, indexErr("listing documents", err)
	}
	if docs == nil {
		docs = []domain.DocumentInfo{}
	}
	return docs, nil
}

// DeleteDocument removes every chunk of name. Unknown names are a no-op.
func (s *IndexService) DeleteDocument(ctx context.Context, name string) error {
	n, err := s.store.DeleteSource(ctx, name)
	if err != nil {
		return indexErr("deleting "+name, err)
	}
	logger.Debug("Deleted %d chunks of %s", n, name)
	return nil
}

func indexErr(op string, err error) error {
	if errors.Is(err, domain.ErrIndex) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrIndex, op, err)
}

func embeddingErr(err error) error {
	if errors.Is(err, domain.ErrEmbeddingService) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
}
