package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/docent/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driving"
	"github.com/custodia-labs/docent/internal/core/services"
	"github.com/custodia-labs/docent/internal/extractors"
	"github.com/custodia-labs/docent/internal/extractors/pdf"
	"github.com/custodia-labs/docent/internal/extractors/plaintext"
)

// mockDocumentService is a hand-written driving.DocumentService.
type mockDocumentService struct {
	docs     []domain.DocumentInfo
	err      error
	chunks   int
	ingested []string
	imported []string
	deleted  []string
}

func (m *mockDocumentService) Ingest(_ context.Context, path string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.ingested = append(m.ingested, path)
	return m.chunks, nil
}

func (m *mockDocumentService) Import(_ context.Context, path string) (string, int, error) {
	if m.err != nil {
		return "", 0, m.err
	}
	name, err := domain.DocumentName(path)
	if err != nil {
		return "", 0, err
	}
	m.imported = append(m.imported, path)
	return name, m.chunks, nil
}

func (m *mockDocumentService) List(_ context.Context) []string {
	names := make([]string, len(m.docs))
	for i, d := range m.docs {
		names[i] = d.Name
	}
	return names
}

func (m *mockDocumentService) Documents(_ context.Context) ([]domain.DocumentInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockDocumentService) Delete(_ context.Context, name string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, name)
	return nil
}

// mockChatService is a hand-written driving.ChatService.
type mockChatService struct {
	answer   domain.Answer
	err      error
	history  map[string][]domain.Turn
	sessions []string
	asked    []string
	resets   []string

	lastSession string
}

func (m *mockChatService) Ask(_ context.Context, sessionID, message string) (domain.Answer, error) {
	m.lastSession = sessionID
	m.asked = append(m.asked, message)
	if m.err != nil {
		return domain.Answer{State: domain.ChatStateFailed}, m.err
	}
	return m.answer, nil
}

func (m *mockChatService) ResetSession(_ context.Context, sessionID string) error {
	m.resets = append(m.resets, sessionID)
	return m.err
}

func (m *mockChatService) History(_ context.Context, sessionID string) ([]domain.Turn, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.history[sessionID], nil
}

func (m *mockChatService) Sessions(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions, nil
}

// Ensure the mocks implement the interfaces.
var (
	_ driving.DocumentService = (*mockDocumentService)(nil)
	_ driving.ChatService     = (*mockChatService)(nil)
)

// setupTestServices installs mock services and an in-memory settings
// service, and restores package state when the test ends.
func setupTestServices(t *testing.T) (*mockDocumentService, *mockChatService) {
	t.Helper()

	docs := &mockDocumentService{chunks: 3}
	chat := &mockChatService{history: make(map[string][]domain.Turn)}

	origDocs, origChat, origSettings := documentService, chatService, settingsService
	origLoader, origSupports := loader, supports

	documentService = docs
	chatService = chat
	settingsService = services.NewSettingsService(memory.NewConfigStore(), nil)
	loader = nil
	supports = extractors.NewRegistry(plaintext.New(), pdf.New()).Supports

	t.Cleanup(func() {
		documentService, chatService, settingsService = origDocs, origChat, origSettings
		loader, supports = origLoader, origSupports
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	return docs, chat
}

// resetFlags restores flag variables, which persist between executions.
func resetFlags() {
	verbose = false
	opts = Options{}
	documentListJSON = false
	ingestInPlace = false
	askSession = defaultSession
	askJSON = false
	chatSession = ""
	chatDelay = 0
	watchSkipExisting = false
	watchDebounce = 0
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
