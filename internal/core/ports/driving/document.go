package driving

import (
	"context"

	"github.com/custodia-labs/docent/internal/core/domain"
)

// DocumentService manages the indexed document collection.
type DocumentService interface {
	// Ingest extracts, splits and indexes the file at path under its base
	// filename, replacing any earlier version. Returns the stored chunk count.
	Ingest(ctx context.Context, path string) (int, error)

	// Import copies the file into the raw document store and ingests the copy.
	// The copy is removed again when ingestion fails.
	Import(ctx context.Context, path string) (string, int, error)

	// List returns the names of indexed documents, sorted. Never fails;
	// store errors are logged and yield an empty list.
	List(ctx context.Context) []string

	// Documents returns indexed documents with their chunk counts.
	Documents(ctx context.Context) ([]domain.DocumentInfo, error)

	// Delete removes every chunk of the document and its stored raw file.
	Delete(ctx context.Context, name string) error
}
