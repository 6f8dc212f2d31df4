// Package filesystem stores the raw bytes of ingested documents on disk.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore keeps uploaded documents under a single directory, one file per
// document name.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("filesystem: directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("filesystem: create %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes r to a temporary file and renames it into place, replacing any
// previous copy.
func (s *FileStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	dst, err := s.Path(name)
	if err != nil {
		return "", err
	}
	safe := filepath.Base(dst)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("filesystem: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, readerWithContext(ctx, r)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("filesystem: write %s: %w", safe, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("filesystem: close %s: %w", safe, err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("filesystem: store %s: %w", safe, err)
	}
	return dst, nil
}

// Remove deletes the stored copy of a document.
func (s *FileStore) Remove(_ context.Context, name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("filesystem: remove %s: %w", name, err)
	}
	return nil
}

// Path returns where a document with this name is stored. Names with no
// usable file name, such as "." or "..", are rejected with ErrInvalidInput.
func (s *FileStore) Path(name string) (string, error) {
	safe, err := domain.DocumentName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, safe), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
