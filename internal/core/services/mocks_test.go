package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/docent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
)

// --- Mock implementations ---

var errBoom = errors.New("boom")

// mockEmbedder implements driven.EmbeddingService. Texts found in vectors get
// that vector, everything else gets fallback.
type mockEmbedder struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	fallback   []float32
	failOnCall int // 1-based EmbedBatch call that fails; 0 never fails
	embedErr   error
	batchCalls int
	batchSizes []int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		vectors:  make(map[string][]float32),
		fallback: []float32{1, 0, 0},
	}
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	return m.fallback
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.failOnCall > 0 && m.batchCalls == m.failOnCall {
		return nil, fmt.Errorf("%w: rate limited", domain.ErrEmbeddingService)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vectorFor(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return len(m.fallback) }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockVectorStore wraps the in-memory store with failure injection.
type mockVectorStore struct {
	*memory.VectorStore

	mu          sync.Mutex
	addCalls    int
	failAddOn   int // 1-based Add call that fails; 0 never fails
	deleteCalls []string
	deleteErr   error
	searchErr   error
	docsErr     error
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{VectorStore: memory.NewVectorStore(0)}
}

func (m *mockVectorStore) Add(ctx context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	m.addCalls++
	fail := m.failAddOn > 0 && m.addCalls == m.failAddOn
	m.mu.Unlock()
	if fail {
		return errBoom
	}
	return m.VectorStore.Add(ctx, chunks)
}

func (m *mockVectorStore) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedChunk, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.VectorStore.Search(ctx, query, k)
}

func (m *mockVectorStore) DeleteSource(ctx context.Context, source string) (int, error) {
	m.mu.Lock()
	m.deleteCalls = append(m.deleteCalls, source)
	m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	return m.VectorStore.DeleteSource(ctx, source)
}

func (m *mockVectorStore) Documents(ctx context.Context) ([]domain.DocumentInfo, error) {
	if m.docsErr != nil {
		return nil, m.docsErr
	}
	return m.VectorStore.Documents(ctx)
}

// mockLLM implements driven.LLMService, recording the last request.
type mockLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// mockPrompts implements driven.PromptStore with short, predictable templates.
type mockPrompts struct {
	templates map[string]string
	err       error
	reloads   int
}

func newMockPrompts() *mockPrompts {
	return &mockPrompts{templates: map[string]string{
		driven.PromptChatSystem:   "SYSTEM",
		driven.PromptChatUser:     "CONTEXT:\n%s\nQUESTION: %s",
		driven.PromptContextEntry: "[%s %.2f] %s",
		driven.PromptApology:      "sorry: %s",
	}}
}

func (m *mockPrompts) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	tmpl, ok := m.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return tmpl, nil
}

func (m *mockPrompts) Reload() { m.reloads++ }

// mockExtractor implements driven.TextExtractor returning fixed text per path.
type mockExtractor struct {
	texts map[string]string
	err   error
}

func (m *mockExtractor) Extensions() []string { return []string{".txt", ".pdf"} }

func (m *mockExtractor) Extract(_ context.Context, path string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	text, ok := m.texts[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrExtraction, path)
	}
	return text, nil
}

// lineSplitter implements driven.Splitter by returning one chunk per non-empty line.
type lineSplitter struct{}

func (lineSplitter) Split(text string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			if i > start {
				out = append(out, text[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// failingSessions implements driven.SessionStore with every call failing.
type failingSessions struct{}

func (failingSessions) Append(context.Context, string, domain.Turn) error { return errBoom }
func (failingSessions) History(context.Context, string) ([]domain.Turn, error) {
	return nil, errBoom
}
func (failingSessions) Clear(context.Context, string) error        { return errBoom }
func (failingSessions) Sessions(context.Context) ([]string, error) { return nil, errBoom }
func (failingSessions) Close() error                               { return nil }
