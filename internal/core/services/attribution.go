package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/docent/internal/core/domain"
)

// AttributionConfig tunes the overlap heuristics used to decide whether an
// answer drew on a retrieved document.
type AttributionConfig struct {
	// WindowSize is the length in characters of the spans compared verbatim.
	WindowSize int

	// WindowStep is how far the span window advances over a fragment.
	WindowStep int

	// KeywordLimit is how many leading words of a fragment are checked.
	KeywordLimit int

	// MinWordLength is the shortest word, in characters, counted as a keyword.
	MinWordLength int

	// KeywordRatio is the share of keywords that must appear in the answer.
	// The ratio must be strictly exceeded.
	KeywordRatio float64
}

// DefaultAttributionConfig returns the standard thresholds.
func DefaultAttributionConfig() AttributionConfig {
	return AttributionConfig{
		WindowSize:    30,
		WindowStep:    10,
		KeywordLimit:  20,
		MinWordLength: 2,
		KeywordRatio:  0.3,
	}
}

// Attributor decides which retrieved documents an answer actually uses.
type Attributor struct {
	cfg AttributionConfig
}

// NewAttributor creates an attributor. Non-positive fields fall back to defaults.
func NewAttributor(cfg AttributionConfig) *Attributor {
	def := DefaultAttributionConfig()
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = def.WindowSize
	}
	if cfg.WindowStep <= 0 {
		cfg.WindowStep = def.WindowStep
	}
	if cfg.KeywordLimit <= 0 {
		cfg.KeywordLimit = def.KeywordLimit
	}
	if cfg.MinWordLength <= 0 {
		cfg.MinWordLength = def.MinWordLength
	}
	if cfg.KeywordRatio <= 0 {
		cfg.KeywordRatio = def.KeywordRatio
	}
	return &Attributor{cfg: cfg}
}

// Attribute returns the names of the sources answer draws on, highest score
// first. When no source matches, the top-scoring source is returned alone.
// An empty aggregate list yields an empty result.
func (a *Attributor) Attribute(answer string, aggs []domain.SourceAggregate) []string {
	if len(aggs) == 0 {
		return []string{}
	}

	sorted := SortedAggregates(aggs)
	compact := stripSpace(answer)

	var used []string
	for _, agg := range sorted {
		if a.uses(answer, compact, agg) {
			used = append(used, agg.Name)
		}
	}
	if len(used) == 0 {
		return []string{sorted[0].Name}
	}
	return used
}

func (a *Attributor) uses(answer, compact string, agg domain.SourceAggregate) bool {
	if agg.Name != "" && strings.Contains(answer, agg.Name) {
		return true
	}
	for _, frag := range agg.Fragments {
		if a.spanMatch(stripSpace(frag), compact) || a.keywordMatch(frag, answer) {
			return true
		}
	}
	return false
}

// spanMatch reports whether any window of fragment appears in answer.
// Both arguments are expected with whitespace removed.
func (a *Attributor) spanMatch(fragment, answer string) bool {
	runes := []rune(fragment)
	for i := 0; i+a.cfg.WindowSize <= len(runes); i += a.cfg.WindowStep {
		if strings.Contains(answer, string(runes[i:i+a.cfg.WindowSize])) {
			return true
		}
	}
	return false
}

func (a *Attributor) keywordMatch(fragment, answer string) bool {
	keywords := make([]string, 0, a.cfg.KeywordLimit)
	for _, w := range strings.Fields(fragment) {
		if utf8.RuneCountInString(w) < a.cfg.MinWordLength {
			continue
		}
		keywords = append(keywords, w)
		if len(keywords) == a.cfg.KeywordLimit {
			break
		}
	}
	if len(keywords) == 0 {
		return false
	}

	hits := 0
	for _, w := range keywords {
		if strings.Contains(answer, w) {
			hits++
		}
	}
	return float64(hits)/float64(len(keywords)) > a.cfg.KeywordRatio
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
