package driven

// Splitter cuts text into bounded, overlapping chunks.
// Implementations must be pure and deterministic.
type Splitter interface {
	Split(text string) []string
}
