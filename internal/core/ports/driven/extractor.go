package driven

import "context"

// TextExtractor reads the plain text of a document file.
// Each extractor handles a set of file extensions (e.g., ".pdf").
type TextExtractor interface {
	// Extensions returns the lower-case extensions, with leading dot, this extractor handles.
	Extensions() []string

	// Extract returns the full text of the file at path.
	// Unreadable files yield domain.ErrExtraction; files with no text
	// yield domain.ErrEmptyDocument.
	Extract(ctx context.Context, path string) (string, error)
}
