package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docent/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Chunks are kept in insertion order so equal scores resolve deterministically.
type VectorStore struct {
	mu         sync.RWMutex
	dimensions int
	order      []string
	chunks     map[string]domain.Chunk
}

// NewVectorStore creates a new in-memory vector store. A dimensions value
// of 0 adopts the size of the first added embedding.
func NewVectorStore(dimensions int) *VectorStore {
	return &VectorStore{
		dimensions: dimensions,
		chunks:     make(map[string]domain.Chunk),
	}
}

// Add stores chunks, replacing any with the same id.
func (s *VectorStore) Add(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims := s.dimensions
	if dims == 0 {
		dims = len(chunks[0].Embedding)
	}
	for _, c := range chunks {
		if dims == 0 || len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index has %d",
				domain.ErrIndexMismatch, c.ID, len(c.Embedding), dims)
		}
	}
	s.dimensions = dims

	for _, c := range chunks {
		if _, exists := s.chunks[c.ID]; !exists {
			s.order = append(s.order, c.ID)
		}
		c.Embedding = append([]float32(nil), c.Embedding...)
		s.chunks[c.ID] = c
	}
	return nil
}

// Search returns the k chunks most similar to the query vector.
func (s *VectorStore) Search(_ context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 || len(s.order) == 0 {
		return nil, nil
	}
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrIndexMismatch, len(query), s.dimensions)
	}

	candidates := make([]domain.Chunk, 0, len(s.order))
	for _, id := range s.order {
		candidates = append(candidates, s.chunks[id])
	}
	return vecmath.TopK(query, candidates, k), nil
}

// DeleteSource removes every chunk of a document.
func (s *VectorStore) DeleteSource(_ context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	removed := 0
	for _, id := range s.order {
		if s.chunks[id].Source == source {
			delete(s.chunks, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed, nil
}

// Documents lists indexed documents with their chunk counts, sorted by name.
func (s *VectorStore) Documents(_ context.Context) ([]domain.DocumentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, c := range s.chunks {
		counts[c.Source]++
	}

	docs := make([]domain.DocumentInfo, 0, len(counts))
	for name, n := range counts {
		docs = append(docs, domain.DocumentInfo{Name: name, ChunkCount: n})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Count returns the total number of stored chunks.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Dimensions returns the index dimension, or 0 while empty and unconfigured.
func (s *VectorStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}
