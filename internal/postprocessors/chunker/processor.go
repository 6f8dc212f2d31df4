// Package chunker splits document text into bounded, overlapping chunks.
//
// The splitter is recursive: it cuts on the coarsest boundary present
// (paragraphs, then lines, then sentence ends, then words) and only falls
// back to a hard character cut when a piece has no boundary left. Adjacent
// pieces are merged back up to the chunk size, carrying a tail of at most
// the overlap into the next chunk. Sizes are counted in runes.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docent/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// separatorLevels are tried in order; a level matches on any of its separators.
// The empty level is the hard character cut.
var separatorLevels = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? ", "。"},
	{" "},
	nil,
}

// Splitter splits text into chunks of at most chunkSize runes.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave room for new text in every chunk
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split cuts text into trimmed, non-empty chunks in document order.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, separatorLevels)
}

func (s *Splitter) split(text string, levels [][]string) []string {
	// Pick the first level with a separator present in the text.
	level := len(levels) - 1
	for i, seps := range levels[:len(levels)-1] {
		if containsAny(text, seps) {
			level = i
			break
		}
	}

	var pieces []string
	if levels[level] == nil {
		pieces = splitRunes(text)
	} else {
		pieces = splitKeep(text, levels[level])
	}
	rest := levels[level+1:]

	var chunks, pending []string
	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) < s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending)...)
			pending = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, s.merge([]string{piece})...)
			continue
		}
		chunks = append(chunks, s.split(piece, rest)...)
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.merge(pending)...)
	}

	return chunks
}

// merge joins pieces into chunks no longer than chunkSize, starting each new
// chunk with the trailing pieces of the previous one that fit in the overlap.
func (s *Splitter) merge(pieces []string) []string {
	var (
		chunks  []string
		current []string
		lengths []int
		total   int
	)

	emit := func() {
		if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if total+n > s.chunkSize && len(current) > 0 {
			emit()
			for total > s.overlap || (total+n > s.chunkSize && total > 0) {
				total -= lengths[0]
				current = current[1:]
				lengths = lengths[1:]
			}
		}
		current = append(current, piece)
		lengths = append(lengths, n)
		total += n
	}
	if len(current) > 0 {
		emit()
	}

	return chunks
}

func containsAny(text string, seps []string) bool {
	for _, sep := range seps {
		if strings.Contains(text, sep) {
			return true
		}
	}
	return false
}

// splitKeep splits text after every occurrence of any separator, keeping
// the separator at the end of the preceding piece.
func splitKeep(text string, seps []string) []string {
	var pieces []string
	start := 0
	for i := 0; i < len(text); {
		matched := 0
		for _, sep := range seps {
			if strings.HasPrefix(text[i:], sep) {
				matched = len(sep)
				break
			}
		}
		if matched == 0 {
			_, size := utf8.DecodeRuneInString(text[i:])
			i += size
			continue
		}
		i += matched
		pieces = append(pieces, text[start:i])
		start = i
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

func splitRunes(text string) []string {
	pieces := make([]string, 0, utf8.RuneCountInString(text))
	for len(text) > 0 {
		_, size := utf8.DecodeRuneInString(text)
		pieces = append(pieces, text[:size])
		text = text[size:]
	}
	return pieces
}
