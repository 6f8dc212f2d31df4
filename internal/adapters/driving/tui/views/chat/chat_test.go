package chat

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docent/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docent/internal/core/domain"
)

// MockChatService implements driving.ChatService for testing.
type MockChatService struct {
	AskFunc     func(ctx context.Context, sessionID, message string) (domain.Answer, error)
	HistoryFunc func(ctx context.Context, sessionID string) ([]domain.Turn, error)
	ResetFunc   func(ctx context.Context, sessionID string) error
}

func (m *MockChatService) Ask(ctx context.Context, sessionID, message string) (domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, sessionID, message)
	}
	return domain.Answer{Text: "ok", Sources: []string{}, State: domain.ChatStateCompleted}, nil
}

func (m *MockChatService) ResetSession(ctx context.Context, sessionID string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockChatService) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *MockChatService) Sessions(_ context.Context) ([]string, error) {
	return nil, nil
}

func newReadyView(svc *MockChatService) *View {
	v := NewView(nil, nil, svc, "s1")
	v.SetDimensions(100, 30)
	return v
}

func typeText(v *View, text string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &MockChatService{}, "s1")

	require.NotNil(t, v)
	assert.Equal(t, "s1", v.Session())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
	assert.NotNil(t, v.Init())
}

func TestView_AskRoundTrip(t *testing.T) {
	var gotSession, gotQuestion string
	svc := &MockChatService{
		AskFunc: func(_ context.Context, sessionID, message string) (domain.Answer, error) {
			gotSession, gotQuestion = sessionID, message
			return domain.Answer{
				Text:    "It is blue.",
				Sources: []string{"sky.pdf"},
				State:   domain.ChatStateCompleted,
			}, nil
		},
	}
	v := newReadyView(svc)

	typeText(v, "  what colour is the sky? ")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Waiting())
	assert.Contains(t, v.View(), "Thinking...")

	msg := cmd()
	answer, ok := msg.(messages.AnswerReceived)
	require.True(t, ok)
	assert.Equal(t, "s1", gotSession)
	assert.Equal(t, "what colour is the sky?", gotQuestion)

	v.Update(answer)

	assert.False(t, v.Waiting())
	require.Len(t, v.Exchanges(), 1)
	assert.Equal(t, "It is blue.", v.Exchanges()[0].Answer)
	assert.Equal(t, status.StateAnswered, v.statusbar.State())
	assert.Equal(t, 1, v.statusbar.SourceCount())

	view := v.View()
	assert.Contains(t, view, "It is blue.")
	assert.Contains(t, view, "Sources: sky.pdf")
}

func TestView_EnterIgnoresBlankAndInFlight(t *testing.T) {
	v := newReadyView(&MockChatService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	typeText(v, "first")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	typeText(v, "second")
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestView_FailedAnswerShowsApology(t *testing.T) {
	v := newReadyView(&MockChatService{})

	v.Update(messages.AnswerReceived{
		Question: "q",
		Answer:   domain.Answer{Text: "sorry: timeout", Sources: []string{}, State: domain.ChatStateFailed},
	})

	require.Len(t, v.Exchanges(), 1)
	assert.True(t, v.Exchanges()[0].Failed)
	assert.Equal(t, status.StateError, v.statusbar.State())
	assert.Contains(t, v.View(), "sorry: timeout")
}

func TestView_AskErrorIsNotRecorded(t *testing.T) {
	v := newReadyView(&MockChatService{})

	v.Update(messages.AnswerReceived{Question: " ", Err: domain.ErrEmptyMessage})

	assert.Empty(t, v.Exchanges())
	assert.ErrorIs(t, v.Err(), domain.ErrEmptyMessage)
	assert.Equal(t, status.StateError, v.statusbar.State())
}

func TestView_NilServiceReportsError(t *testing.T) {
	v := NewView(nil, nil, nil, "s1")
	v.SetDimensions(80, 24)

	typeText(v, "hello")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(messages.ErrorOccurred)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, ErrNoChatService)

	v.Update(msg)
	assert.False(t, v.Waiting())
}

func TestView_ResetSession(t *testing.T) {
	var reset string
	svc := &MockChatService{ResetFunc: func(_ context.Context, id string) error {
		reset = id
		return nil
	}}
	v := newReadyView(svc)
	v.Update(messages.AnswerReceived{Question: "q", Answer: domain.Answer{Text: "a", State: domain.ChatStateCompleted}})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, "s1", reset)

	v.Update(msg)
	assert.Empty(t, v.Exchanges())
	assert.Contains(t, v.View(), "Started a new conversation")
}

func TestView_ResetSessionError(t *testing.T) {
	v := newReadyView(&MockChatService{})

	v.Update(messages.SessionReset{SessionID: "s1", Err: errors.New("store down")})

	assert.EqualError(t, v.Err(), "store down")
}

func TestView_LoadsHistory(t *testing.T) {
	svc := &MockChatService{HistoryFunc: func(_ context.Context, _ string) ([]domain.Turn, error) {
		return []domain.Turn{{User: "earlier question", Assistant: "earlier answer"}}, nil
	}}
	v := newReadyView(svc)

	v.Update(v.loadHistory()())

	require.Len(t, v.Exchanges(), 1)
	assert.Contains(t, v.View(), "earlier answer")
}

func TestView_EscGoesToMenu(t *testing.T) {
	v := newReadyView(&MockChatService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, changed.View)
}

func TestView_SetSession(t *testing.T) {
	v := newReadyView(&MockChatService{})
	v.Update(messages.AnswerReceived{Question: "q", Answer: domain.Answer{Text: "a", State: domain.ChatStateCompleted}})

	v.SetSession("other")

	assert.Equal(t, "other", v.Session())
	assert.Empty(t, v.Exchanges())
}
