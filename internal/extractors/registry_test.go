package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent/internal/core/domain"
)

type stubExtractor struct {
	exts []string
	text string
	got  string
}

func (s *stubExtractor) Extensions() []string { return s.exts }

func (s *stubExtractor) Extract(_ context.Context, path string) (string, error) {
	s.got = path
	return s.text, nil
}

func TestRegistry_DispatchesByExtension(t *testing.T) {
	pdf := &stubExtractor{exts: []string{".pdf"}, text: "pdf text"}
	txt := &stubExtractor{exts: []string{".txt"}, text: "plain text"}
	r := NewRegistry(pdf, txt)

	text, err := r.Extract(context.Background(), "/tmp/Report.PDF")
	require.NoError(t, err)
	assert.Equal(t, "pdf text", text)
	assert.Equal(t, "/tmp/Report.PDF", pdf.got)

	text, err = r.Extract(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "plain text", text)
}

func TestRegistry_UnsupportedFormat(t *testing.T) {
	r := NewRegistry(&stubExtractor{exts: []string{".txt"}})

	tests := []string{"slides.pptx", "README", "archive.tar.gz"}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			_, err := r.Extract(context.Background(), path)
			assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
			assert.False(t, r.Supports(path))
		})
	}
}

func TestRegistry_Extensions(t *testing.T) {
	r := NewRegistry(
		&stubExtractor{exts: []string{".txt"}},
		&stubExtractor{exts: []string{".PDF"}},
	)

	assert.Equal(t, []string{".pdf", ".txt"}, r.Extensions())
	assert.True(t, r.Supports("a.Txt"))
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	first := &stubExtractor{exts: []string{".txt"}, text: "first"}
	second := &stubExtractor{exts: []string{".txt"}, text: "second"}
	r := NewRegistry(first, second)

	text, err := r.Extract(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}
