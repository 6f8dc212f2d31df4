package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	tests := []struct {
		source string
		index  int
		want   string
	}{
		{"doc1.txt", 0, "doc1.txt_0"},
		{"doc1.txt", 12, "doc1.txt_12"},
		{"report_2024.pdf", 3, "report_2024.pdf_3"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ChunkID(tt.source, tt.index))
		})
	}
}

func TestRelevanceWeight_StrictlyDecreasing(t *testing.T) {
	for _, n := range []int{1, 2, 5, 8} {
		assert.Equal(t, 1.0, RelevanceWeight(0, n))

		prev := 2.0
		for i := 0; i < n; i++ {
			w := RelevanceWeight(i, n)
			assert.Greater(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
			assert.Less(t, w, prev)
			prev = w
		}
		assert.InDelta(t, 1.0/float64(n), RelevanceWeight(n-1, n), 1e-9)
	}
}

func TestRelevanceWeight_OutOfRange(t *testing.T) {
	assert.Equal(t, 0.0, RelevanceWeight(0, 0))
	assert.Equal(t, 0.0, RelevanceWeight(-1, 4))
	assert.Equal(t, 0.0, RelevanceWeight(4, 4))
}

func TestChatState(t *testing.T) {
	assert.Equal(t, "completed", ChatStateCompleted.String())
	assert.True(t, ChatStateCompleted.IsTerminal())
	assert.True(t, ChatStateFailed.IsTerminal())
	assert.False(t, ChatStateReceived.IsTerminal())
	assert.False(t, ChatStatePrompted.IsTerminal())
}
