// Package pdf extracts text from PDF files using poppler's command line tools.
package pdf

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
)

// DefaultMaxPages is the largest PDF accepted for ingestion.
const DefaultMaxPages = 50

// ErrPDFToolNotFound is returned when pdfinfo or pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler to extract PDF text")

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Extractor reads PDF text with pdfinfo (page count) and pdftotext (content).
type Extractor struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
	maxPages int
}

// Option configures the extractor.
type Option func(*Extractor)

// WithMaxPages sets the page ceiling. Values below 1 are ignored.
func WithMaxPages(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithRunner replaces the command runner, for tests.
func WithRunner(r CommandRunner) Option {
	return func(e *Extractor) {
		e.runner = r
		e.lookPath = func(name string) (string, error) { return name, nil }
	}
}

// New creates a PDF extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		runner:   execRunner{},
		lookPath: exec.LookPath,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// MaxPages returns the page ceiling.
func (e *Extractor) MaxPages() int {
	return e.maxPages
}

// Extract returns the text of every page, joined by newlines.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	for _, tool := range []string{"pdfinfo", "pdftotext"} {
		if _, err := e.lookPath(tool); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrExtraction, ErrPDFToolNotFound)
		}
	}

	info, err := e.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		return "", fmt.Errorf("%w: read page count: %w", domain.ErrExtraction, err)
	}
	pages, err := parsePageCount(info)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	if pages > e.maxPages {
		return "", fmt.Errorf("%w: %d pages exceeds the limit of %d", domain.ErrDocumentTooLarge, pages, e.maxPages)
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	text := joinPages(string(out))
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyDocument
	}
	return text, nil
}

// parsePageCount reads the "Pages:" line of pdfinfo output.
func parsePageCount(info []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(info))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("parse page count %q: %w", value, err)
		}
		return n, nil
	}
	return 0, errors.New("page count not reported")
}

// joinPages splits pdftotext output on form feeds and joins the pages with newlines.
func joinPages(out string) string {
	pages := strings.Split(out, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	for i, p := range pages {
		pages[i] = strings.TrimRight(p, "\n")
	}
	return strings.Join(pages, "\n")
}

// CheckAvailable reports whether the poppler tools are on PATH.
func CheckAvailable() error {
	for _, tool := range []string{"pdfinfo", "pdftotext"} {
		if _, err := exec.LookPath(tool); err != nil {
			return ErrPDFToolNotFound
		}
	}
	return nil
}

// InstallInstructions returns how to install pdftotext on common platforms.
func InstallInstructions() string {
	return `PDF support needs pdftotext and pdfinfo from poppler:
  macOS:          brew install poppler
  Debian/Ubuntu:  sudo apt install poppler-utils
  Fedora:         sudo dnf install poppler-utils`
}
