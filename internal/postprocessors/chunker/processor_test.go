package chunker

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.ChunkSize() != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.ChunkSize())
		}
		if s.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.Overlap())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		s := New(WithChunkSize(500), WithOverlap(100))
		if s.ChunkSize() != 500 || s.Overlap() != 100 {
			t.Errorf("expected 500/100, got %d/%d", s.ChunkSize(), s.Overlap())
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.Overlap() >= s.ChunkSize() {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1))
		if s.ChunkSize() != DefaultChunkSize || s.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected defaults, got %d/%d", s.ChunkSize(), s.Overlap())
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\t"} {
		if chunks := New().Split(text); chunks != nil {
			t.Errorf("Split(%q) = %v, want nil", text, chunks)
		}
	}
}

func TestSplit_ShortText(t *testing.T) {
	chunks := New().Split("  hello world \n")
	want := []string{"hello world"}
	if !reflect.DeepEqual(chunks, want) {
		t.Errorf("got %q, want %q", chunks, want)
	}
}

func TestSplit_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
		want    []string
	}{
		{
			name: "paragraphs",
			size: 15,
			text: "aaaa bbbb\n\ncccc dddd",
			want: []string{"aaaa bbbb", "cccc dddd"},
		},
		{
			name: "sentences",
			size: 12,
			text: "Hi there. Bye now.",
			want: []string{"Hi there.", "Bye now."},
		},
		{
			name: "ideographic full stop",
			size: 4,
			text: "가나다。라마바。",
			want: []string{"가나다。", "라마바。"},
		},
		{
			name:    "words with overlap",
			size:    10,
			overlap: 5,
			text:    "one two three four five",
			want:    []string{"one two", "two three", "four five"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithChunkSize(tt.size), WithOverlap(tt.overlap))
			got := s.Split(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplit_HardCutMultibyte(t *testing.T) {
	text := strings.Repeat("가", 2500)

	chunks := New().Split(text)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantLens := []int{1000, 1000, 900}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if n := utf8.RuneCountInString(c); n != wantLens[i] {
			t.Errorf("chunk %d has %d runes, want %d", i, n, wantLens[i])
		}
	}
}

func TestSplit_SizeBoundAndOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 400; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
	}
	text := b.String()

	s := New()
	chunks := s.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > s.ChunkSize() {
			t.Errorf("chunk %d has %d runes, exceeds %d", i, n, s.ChunkSize())
		}
		if strings.TrimSpace(c) != c || c == "" {
			t.Errorf("chunk %d is not trimmed or empty: %q", i, c)
		}
	}

	// Consecutive chunks share text.
	shared := 0
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-20:]
		if strings.Contains(chunks[i], tail) {
			shared++
		}
	}
	if shared == 0 {
		t.Error("expected consecutive chunks to overlap")
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("문서 분할은 결정적이어야 합니다. ", 300)
	s := New(WithChunkSize(300), WithOverlap(50))

	first := s.Split(text)
	second := s.Split(text)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical output for identical input")
	}
}
