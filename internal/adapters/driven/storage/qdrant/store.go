// Package qdrant provides a driven.VectorStore backed by a Qdrant collection.
//
// Point ids are UUIDv5 hashes of chunk ids so re-adding a chunk overwrites it.
// Each point carries the payload {id, source, chunk_id, content}; deletion and
// listing filter on the source field.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	qd "github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// Default configuration values.
const (
	DefaultURL        = "http://localhost:6334"
	DefaultCollection = "documents"
	defaultPort       = 6334
	scrollPageSize    = 256
)

// Payload field names.
const (
	fieldID      = "id"
	fieldSource  = "source"
	fieldChunkID = "chunk_id"
	fieldContent = "content"
)

// pointNamespace scopes the UUIDv5 point ids derived from chunk ids.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("docent/chunks"))

// Config holds Qdrant store configuration.
type Config struct {
	// URL is the gRPC endpoint, e.g. http://localhost:6334.
	URL string

	// APIKey is optional.
	APIKey string

	// Collection is the collection name (default: documents).
	Collection string

	// Dimensions is the vector size. Zero adopts the existing collection's
	// size, or the first added embedding's for a new collection.
	Dimensions int
}

// VectorStore stores chunks as Qdrant points.
type VectorStore struct {
	client     *qd.Client
	collection string

	mu         sync.RWMutex
	dimensions int
}

// NewVectorStore connects to Qdrant and validates or creates the collection.
func NewVectorStore(ctx context.Context, cfg Config) (*VectorStore, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	host, port, err := parseAddress(cfg.URL)
	if err != nil {
		return nil, err
	}

	client, err := qd.NewClient(&qd.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: create client: %w", err)
	}

	s := &VectorStore{
		client:     client,
		collection: cfg.Collection,
	}
	if err := s.ensureCollection(ctx, cfg.Dimensions); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// parseAddress extracts host and gRPC port from a URL.
func parseAddress(raw string) (string, int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, fmt.Errorf("qdrant: invalid URL %q: %w", raw, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", 0, fmt.Errorf("qdrant: URL %q has no host", raw)
	}
	port := defaultPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, fmt.Errorf("qdrant: invalid port %q: %w", p, err)
		}
	}
	return host, port, nil
}

// ensureCollection checks an existing collection's vector params, or creates
// the collection when the dimension is known.
func (s *VectorStore) ensureCollection(ctx context.Context, dimensions int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrant: check collection %s: %w", s.collection, err)
	}

	if !exists {
		if dimensions > 0 {
			if err := s.createCollection(ctx, dimensions); err != nil {
				return err
			}
		}
		s.dimensions = dimensions
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrant: collection info %s: %w", s.collection, err)
	}
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()
	if params == nil {
		return fmt.Errorf("%w: collection %s uses named vectors", domain.ErrIndexMismatch, s.collection)
	}
	if params.GetDistance() != qd.Distance_Cosine {
		return fmt.Errorf("%w: collection %s uses %s distance, expected %s",
			domain.ErrIndexMismatch, s.collection, params.GetDistance(), driven.MetricCosine)
	}
	stored := int(params.GetSize())
	if dimensions > 0 && dimensions != stored {
		return fmt.Errorf("%w: collection %s has %d dimensions, embedding model produces %d",
			domain.ErrIndexMismatch, s.collection, stored, dimensions)
	}
	s.dimensions = stored
	return nil
}

func (s *VectorStore) createCollection(ctx context.Context, dimensions int) error {
	err := s.client.CreateCollection(ctx, &qd.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qd.NewVectorsConfig(&qd.VectorParams{
			Size:     uint64(dimensions),
			Distance: qd.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", s.collection, err)
	}
	return nil
}

// PointID returns the deterministic point id for a chunk id.
func PointID(chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkID)).String()
}

func sourceFilter(source string) *qd.Filter {
	return &qd.Filter{
		Must: []*qd.Condition{qd.NewMatch(fieldSource, source)},
	}
}

// Add upserts chunks as points and waits for the write to be applied.
func (s *VectorStore) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims := s.dimensions
	fresh := dims == 0
	if fresh {
		dims = len(chunks[0].Embedding)
	}
	points := make([]*qd.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		if dims == 0 || len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index has %d",
				domain.ErrIndexMismatch, c.ID, len(c.Embedding), dims)
		}
		points = append(points, &qd.PointStruct{
			Id:      qd.NewIDUUID(PointID(c.ID)),
			Vectors: qd.NewVectorsDense(c.Embedding),
			Payload: map[string]*qd.Value{
				fieldID:      qd.NewValueString(c.ID),
				fieldSource:  qd.NewValueString(c.Source),
				fieldChunkID: qd.NewValueInt(int64(c.Index)),
				fieldContent: qd.NewValueString(c.Content),
			},
		})
	}

	if fresh {
		if err := s.createCollection(ctx, dims); err != nil {
			return err
		}
		s.dimensions = dims
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qd.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search returns the k points nearest to the query vector.
func (s *VectorStore) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	dims := s.dimensions
	s.mu.RUnlock()

	if dims == 0 {
		return nil, nil
	}
	if len(query) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrIndexMismatch, len(query), dims)
	}

	limit := uint64(k)
	points, err := s.client.Query(ctx, &qd.QueryPoints{
		CollectionName: s.collection,
		Query:          qd.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qd.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query: %w", err)
	}

	results := make([]domain.RetrievedChunk, 0, len(points))
	for i, p := range points {
		results = append(results, domain.RetrievedChunk{
			Chunk:      chunkFromPayload(p.GetPayload()),
			Rank:       i,
			Similarity: float64(p.GetScore()),
		})
	}
	return results, nil
}

func chunkFromPayload(payload map[string]*qd.Value) domain.Chunk {
	return domain.Chunk{
		ID:      payload[fieldID].GetStringValue(),
		Source:  payload[fieldSource].GetStringValue(),
		Index:   int(payload[fieldChunkID].GetIntegerValue()),
		Content: payload[fieldContent].GetStringValue(),
	}
}

// DeleteSource removes every point of a document.
func (s *VectorStore) DeleteSource(ctx context.Context, source string) (int, error) {
	if s.Dimensions() == 0 {
		return 0, nil
	}

	exact := true
	n, err := s.client.Count(ctx, &qd.CountPoints{
		CollectionName: s.collection,
		Filter:         sourceFilter(source),
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant: count %s: %w", source, err)
	}
	if n == 0 {
		return 0, nil
	}

	wait := true
	_, err = s.client.Delete(ctx, &qd.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         qd.NewPointsSelectorFilter(sourceFilter(source)),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant: delete %s: %w", source, err)
	}
	return int(n), nil
}

// Documents scrolls every point and tallies chunks per source.
func (s *VectorStore) Documents(ctx context.Context) ([]domain.DocumentInfo, error) {
	if s.Dimensions() == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	var offset *qd.PointId
	for {
		limit := uint32(scrollPageSize)
		points, next, err := s.client.ScrollAndOffset(ctx, &qd.ScrollPoints{
			CollectionName: s.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    qd.NewWithPayloadInclude(fieldSource),
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: scroll: %w", err)
		}
		for _, p := range points {
			counts[p.GetPayload()[fieldSource].GetStringValue()]++
		}
		if next == nil {
			break
		}
		offset = next
	}

	docs := make([]domain.DocumentInfo, 0, len(counts))
	for name, n := range counts {
		docs = append(docs, domain.DocumentInfo{Name: name, ChunkCount: n})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Count returns the number of points in the collection.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	if s.Dimensions() == 0 {
		return 0, nil
	}
	exact := true
	n, err := s.client.Count(ctx, &qd.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant: count: %w", err)
	}
	return int(n), nil
}

// Dimensions returns the collection's vector size, or 0 before it exists.
func (s *VectorStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

// Close closes the gRPC connection.
func (s *VectorStore) Close() error {
	if err := s.client.Close(); err != nil {
		return errors.Join(errors.New("qdrant: close"), err)
	}
	return nil
}
