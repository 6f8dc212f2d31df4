package qdrant

import (
	"testing"

	"github.com/google/uuid"
	qd "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"host and port", "http://localhost:6334", "localhost", 6334, false},
		{"default port", "http://qdrant.internal", "qdrant.internal", defaultPort, false},
		{"https custom port", "https://cloud.example.com:443", "cloud.example.com", 443, false},
		{"no host", "localhost", "", 0, true},
		{"bad port", "http://localhost:grpc", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := parseAddress(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}

func TestPointID(t *testing.T) {
	id := PointID("guide.pdf_0")

	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, PointID("guide.pdf_0"))
	assert.NotEqual(t, id, PointID("guide.pdf_1"))
}

func TestChunkFromPayload(t *testing.T) {
	chunk := chunkFromPayload(map[string]*qd.Value{
		fieldID:      qd.NewValueString("guide.pdf_3"),
		fieldSource:  qd.NewValueString("guide.pdf"),
		fieldChunkID: qd.NewValueInt(3),
		fieldContent: qd.NewValueString("본문"),
	})

	assert.Equal(t, "guide.pdf_3", chunk.ID)
	assert.Equal(t, "guide.pdf", chunk.Source)
	assert.Equal(t, 3, chunk.Index)
	assert.Equal(t, "본문", chunk.Content)
}

func TestChunkFromPayload_MissingFields(t *testing.T) {
	chunk := chunkFromPayload(map[string]*qd.Value{})

	assert.Empty(t, chunk.ID)
	assert.Zero(t, chunk.Index)
}

func TestSourceFilter(t *testing.T) {
	filter := sourceFilter("a.txt")

	require.Len(t, filter.GetMust(), 1)
	match := filter.GetMust()[0].GetField()
	require.NotNil(t, match)
	assert.Equal(t, fieldSource, match.GetKey())
	assert.Equal(t, "a.txt", match.GetMatch().GetKeyword())
}
