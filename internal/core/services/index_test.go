package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent/internal/core/domain"
)

func makeTexts(prefix string, n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("%s %d", prefix, i)
	}
	return texts
}

func TestIndexService_Upsert(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	embedder := newMockEmbedder()
	index := NewIndexService(store, embedder)

	n, err := index.Upsert(ctx, "report.pdf", makeTexts("chunk", 23))
	require.NoError(t, err)

	assert.Equal(t, 23, n)
	assert.Equal(t, []int{10, 10, 3}, embedder.batchSizes)
	assert.Equal(t, 3, store.addCalls)

	results, err := store.Search(ctx, []float32{1, 0, 0}, 30)
	require.NoError(t, err)
	require.Len(t, results, 23)
	assert.Equal(t, "report.pdf_0", results[0].ID)
	assert.Equal(t, "report.pdf_22", results[22].ID)
	assert.Equal(t, 22, results[22].Index)
	assert.Equal(t, "report.pdf", results[22].Source)
	assert.Equal(t, "chunk 22", results[22].Content)
}

func TestIndexService_Upsert_EmptyInput(t *testing.T) {
	index := NewIndexService(newMockVectorStore(), newMockEmbedder())

	_, err := index.Upsert(context.Background(), "a.txt", nil)

	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestIndexService_Upsert_ReplacesPreviousVersion(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	index := NewIndexService(store, newMockEmbedder())

	_, err := index.Upsert(ctx, "a.txt", makeTexts("old", 5))
	require.NoError(t, err)
	_, err = index.Upsert(ctx, "a.txt", makeTexts("new", 2))
	require.NoError(t, err)

	docs, err := index.Documents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentInfo{{Name: "a.txt", ChunkCount: 2}}, docs)
}

func TestIndexService_Upsert_EmbeddingFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	embedder := newMockEmbedder()
	embedder.failOnCall = 2
	index := NewIndexService(store, embedder)

	_, err := index.Upsert(ctx, "a.txt", makeTexts("chunk", 25))

	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
	assert.Zero(t, store.addCalls)
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexService_Upsert_CompensatesPartialWrite(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	store.failAddOn = 3
	index := NewIndexService(store, newMockEmbedder())

	_, err := index.Upsert(ctx, "a.txt", makeTexts("chunk", 25))

	assert.ErrorIs(t, err, domain.ErrIndex)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"a.txt", "a.txt"}, store.deleteCalls, "pre-delete then compensating delete")
	assert.Empty(t, index.ListSources(ctx))
}

func TestIndexService_Upsert_FirstWriteFailureSkipsCompensation(t *testing.T) {
	store := newMockVectorStore()
	store.failAddOn = 1
	index := NewIndexService(store, newMockEmbedder())

	_, err := index.Upsert(context.Background(), "a.txt", makeTexts("chunk", 3))

	assert.ErrorIs(t, err, domain.ErrIndex)
	assert.Equal(t, []string{"a.txt"}, store.deleteCalls)
}

func TestIndexService_Upsert_PreDeleteFailure(t *testing.T) {
	store := newMockVectorStore()
	store.deleteErr = errBoom
	embedder := newMockEmbedder()
	index := NewIndexService(store, embedder)

	_, err := index.Upsert(context.Background(), "a.txt", makeTexts("chunk", 3))

	assert.ErrorIs(t, err, domain.ErrIndex)
	assert.Zero(t, embedder.batchCalls)
}

func TestIndexService_Upsert_NoEmbedder(t *testing.T) {
	index := NewIndexService(newMockVectorStore(), nil)

	_, err := index.Upsert(context.Background(), "a.txt", []string{"x"})

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexService_Query(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	embedder := newMockEmbedder()
	embedder.vectors["cats"] = []float32{0, 1, 0}
	embedder.vectors["about cats"] = []float32{0, 0.9, 0.1}
	index := NewIndexService(store, embedder)

	_, err := index.Upsert(ctx, "pets.txt", []string{"about dogs", "about cats"})
	require.NoError(t, err)

	results, err := index.Query(ctx, "cats", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "about cats", results[0].Content)
	assert.Equal(t, 0, results[0].Rank)
	assert.Equal(t, 1, results[1].Rank)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestIndexService_Query_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("embedding failure", func(t *testing.T) {
		embedder := newMockEmbedder()
		embedder.embedErr = errBoom
		index := NewIndexService(newMockVectorStore(), embedder)

		_, err := index.Query(ctx, "q", 8)
		assert.ErrorIs(t, err, domain.ErrEmbeddingService)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("store failure", func(t *testing.T) {
		store := newMockVectorStore()
		store.searchErr = errBoom
		index := NewIndexService(store, newMockEmbedder())

		_, err := index.Query(ctx, "q", 8)
		assert.ErrorIs(t, err, domain.ErrIndex)
	})

	t.Run("mismatch keeps its identity", func(t *testing.T) {
		store := newMockVectorStore()
		store.searchErr = fmt.Errorf("%w: query has 2 dimensions", domain.ErrIndexMismatch)
		index := NewIndexService(store, newMockEmbedder())

		_, err := index.Query(ctx, "q", 8)
		assert.ErrorIs(t, err, domain.ErrIndexMismatch)
	})
}

func TestIndexService_ListSources(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	index := NewIndexService(store, newMockEmbedder())

	assert.Equal(t, []string{}, index.ListSources(ctx))

	_, err := index.Upsert(ctx, "b.txt", []string{"x"})
	require.NoError(t, err)
	_, err = index.Upsert(ctx, "a.txt", []string{"y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, index.ListSources(ctx))

	store.docsErr = errBoom
	assert.Equal(t, []string{}, index.ListSources(ctx))
}

func TestIndexService_DeleteDocument(t *testing.T) {
	ctx := context.Background()
	store := newMockVectorStore()
	index := NewIndexService(store, newMockEmbedder())

	_, err := index.Upsert(ctx, "a.txt", []string{"x", "y"})
	require.NoError(t, err)

	require.NoError(t, index.DeleteDocument(ctx, "a.txt"))
	require.NoError(t, index.DeleteDocument(ctx, "a.txt"), "second delete is a no-op")
	assert.Empty(t, index.ListSources(ctx))

	store.deleteErr = errBoom
	assert.ErrorIs(t, index.DeleteDocument(ctx, "a.txt"), domain.ErrIndex)
}
