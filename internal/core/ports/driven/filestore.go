package driven

import (
	"context"
	"io"
)

// FileStore keeps the raw bytes of uploaded documents.
type FileStore interface {
	// Save writes r under name and returns the stored file path.
	// The name is sanitised to a safe base filename first.
	Save(ctx context.Context, name string, r io.Reader) (string, error)

	// Remove deletes the stored file. Missing files are a no-op; invalid names
	// yield domain.ErrInvalidInput.
	Remove(ctx context.Context, name string) error

	// Path returns where a document with this name is (or would be) stored.
	// Names that sanitise to nothing yield domain.ErrInvalidInput.
	Path(name string) (string, error)
}
