package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
	"github.com/custodia-labs/docent/internal/logger"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 8

// Retriever turns a question into the context block sent to the model.
type Retriever struct {
	index   *IndexService
	prompts driven.PromptStore
}

// NewRetriever creates a retriever over index. Context entries are formatted
// with the PromptContextEntry template from prompts.
func NewRetriever(index *IndexService, prompts driven.PromptStore) *Retriever {
	return &Retriever{index: index, prompts: prompts}
}

// BuildContext queries the index for the k chunks closest to query and
// formats them, best first, each tagged with its source and rank weight.
// Sources are aggregated in the order they first appear in the results.
func (r *Retriever) BuildContext(ctx context.Context, query string, k int) (domain.RetrievalContext, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	chunks, err := r.index.Query(ctx, query, k)
	if err != nil {
		return domain.RetrievalContext{}, err
	}

	tmpl, err := r.prompts.Load(driven.PromptContextEntry)
	if err != nil {
		return domain.RetrievalContext{}, fmt.Errorf("loading context template: %w", err)
	}

	var (
		b    strings.Builder
		n    = len(chunks)
		aggs = orderedmap.New[string, *domain.SourceAggregate](orderedmap.WithCapacity[string, *domain.SourceAggregate](n))
	)
	for i, c := range chunks {
		weight := domain.RelevanceWeight(i, n)

		fmt.Fprintf(&b, tmpl, c.Source, weight, c.Content)
		b.WriteString("\n\n")

		agg, ok := aggs.Get(c.Source)
		if !ok {
			agg = &domain.SourceAggregate{Name: c.Source}
			aggs.Set(c.Source, agg)
		}
		agg.Score += weight
		agg.Fragments = append(agg.Fragments, c.Content)
	}

	sources := make([]domain.SourceAggregate, 0, aggs.Len())
	for pair := aggs.Oldest(); pair != nil; pair = pair.Next() {
		sources = append(sources, *pair.Value)
	}

	logger.Debug("Retrieved %d chunks from %d documents", n, len(sources))

	return domain.RetrievalContext{
		Text:    b.String(),
		Chunks:  chunks,
		Sources: sources,
	}, nil
}

// SortedAggregates returns a copy of aggs ordered by score, highest first.
// Equal scores keep their first-appearance order.
func SortedAggregates(aggs []domain.SourceAggregate) []domain.SourceAggregate {
	sorted := make([]domain.SourceAggregate, len(aggs))
	copy(sorted, aggs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}
