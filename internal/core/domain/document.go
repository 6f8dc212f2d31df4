package domain

import "strconv"

// Chunk is a bounded slice of a document's text, the unit of embedding and retrieval.
// Chunks are immutable once stored and are only removed with their document.
type Chunk struct {
	// ID is derived from the source and index, see ChunkID.
	ID string

	// Source is the document name (original filename) that owns this chunk.
	Source string

	// Index is the ordinal position of the chunk within its document.
	Index int

	// Content is the chunk text.
	Content string

	// Embedding is the vector representation used for similarity search.
	Embedding []float32
}

// ChunkID returns the deterministic identifier for the chunk at index within source.
func ChunkID(source string, index int) string {
	return source + "_" + strconv.Itoa(index)
}

// RetrievedChunk is a chunk returned by a single similarity query.
type RetrievedChunk struct {
	Chunk

	// Rank is the 0-based position in the result list, best match first.
	Rank int

	// Similarity is the cosine similarity between the query and the chunk.
	Similarity float64
}

// RelevanceWeight returns the rank-derived weight (n - rank) / n.
// Weights strictly decrease with rank and lie in (0, 1]; rank 0 is always 1.0.
// Out-of-range input yields 0.
func RelevanceWeight(rank, total int) float64 {
	if total <= 0 || rank < 0 || rank >= total {
		return 0
	}
	return float64(total-rank) / float64(total)
}

// SourceAggregate accumulates the relevance of one document across a query's results.
type SourceAggregate struct {
	// Name is the document name.
	Name string

	// Score is the sum of relevance weights of every chunk from this document.
	Score float64

	// Fragments holds the raw text of every retrieved chunk, in rank order.
	Fragments []string
}

// RetrievalContext is the output of context assembly for one question.
type RetrievalContext struct {
	// Text is the formatted context block injected into the completion prompt.
	Text string

	// Chunks are the ranked query results.
	Chunks []RetrievedChunk

	// Sources are the per-document aggregates in first-appearance order.
	Sources []SourceAggregate
}

// DocumentInfo describes an indexed document for listings.
type DocumentInfo struct {
	// Name is the document name.
	Name string

	// ChunkCount is the number of stored chunks.
	ChunkCount int
}
