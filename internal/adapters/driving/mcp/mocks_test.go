package mcp

import (
	"context"

	"github.com/custodia-labs/docent/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer      domain.Answer
	history     []domain.Turn
	sessions    []string
	err         error
	lastSession string
	lastMessage string
}

func (m *mockChatService) Ask(_ context.Context, sessionID, message string) (domain.Answer, error) {
	m.lastSession = sessionID
	m.lastMessage = message
	return m.answer, m.err
}

func (m *mockChatService) ResetSession(_ context.Context, sessionID string) error {
	m.lastSession = sessionID
	return m.err
}

func (m *mockChatService) History(_ context.Context, sessionID string) ([]domain.Turn, error) {
	m.lastSession = sessionID
	return m.history, m.err
}

func (m *mockChatService) Sessions(_ context.Context) ([]string, error) {
	return m.sessions, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	docs     []domain.DocumentInfo
	chunks   int
	err      error
	imported string
	deleted  string
}

func (m *mockDocumentService) Ingest(_ context.Context, _ string) (int, error) {
	return m.chunks, m.err
}

func (m *mockDocumentService) Import(_ context.Context, path string) (string, int, error) {
	m.imported = path
	if m.err != nil {
		return "", 0, m.err
	}
	name, err := domain.DocumentName(path)
	if err != nil {
		return "", 0, err
	}
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
	return m.docs, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, name string) error {
	m.deleted = name
	return m.err
}

func newTestServer(chat *mockChatService, docs *mockDocumentService) *Server {
	s, err := NewServer(&Ports{Chat: chat, Document: docs})
	if err != nil {
		panic(err)
	}
	return s
}
