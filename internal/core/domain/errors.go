package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Extraction Errors.

	// ErrUnsupportedFormat indicates a file extension no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDocumentTooLarge indicates a document exceeds the page limit.
	ErrDocumentTooLarge = errors.New("document too large")

	// ErrEmptyDocument indicates a document contains no readable text.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrExtraction wraps an underlying read or decode failure.
	ErrExtraction = errors.New("extraction failed")

	// Index Errors.

	// ErrEmptyInput indicates an upsert was attempted with no chunks.
	ErrEmptyInput = errors.New("no chunks to process")

	// ErrTooManyChunks indicates a document exceeds the configured chunk ceiling.
	ErrTooManyChunks = errors.New("too many chunks")

	// ErrEmbeddingService indicates the embedding endpoint failed.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrIndex indicates a vector store query, write, delete or list failure.
	ErrIndex = errors.New("index error")

	// ErrIndexMismatch indicates the stored index was created with a different
	// dimension or distance metric. It always wraps ErrIndex.
	ErrIndexMismatch = fmt.Errorf("%w: configuration mismatch", ErrIndex)

	// Chat Errors.

	// ErrEmptyMessage indicates a blank user message.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrCompletionService indicates the chat-completion endpoint failed.
	ErrCompletionService = errors.New("completion service error")
)
