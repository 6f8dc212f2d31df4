package driven

import (
	"context"

	"github.com/custodia-labs/docent/internal/core/domain"
)

// MetricCosine is the only similarity metric stores are created with.
const MetricCosine = "cosine"

// VectorStore persists chunks with their embeddings and answers
// nearest-neighbour queries by cosine similarity.
//
// Stores record the vector dimension and metric when the index is created
// and reject a reopen with a different configuration (domain.ErrIndexMismatch).
type VectorStore interface {
	// Add writes chunks in one batch. Every chunk must carry an embedding.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to k chunks most similar to query, best first,
	// with Rank assigned 0..n-1.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error)

	// DeleteSource removes every chunk of the named document and returns how
	// many were removed. Unknown names are a no-op.
	DeleteSource(ctx context.Context, source string) (int, error)

	// Documents lists stored documents with their chunk counts, sorted by name.
	Documents(ctx context.Context) ([]domain.DocumentInfo, error)

	// Count returns the total number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the vector size of the index, or 0 if not yet fixed.
	Dimensions() int

	// Close releases resources.
	Close() error
}
