package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
	"github.com/custodia-labs/docent/internal/core/ports/driving"
	"github.com/custodia-labs/docent/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// ChatService answers questions from retrieved document context and keeps
// per-session conversation history.
type ChatService struct {
	retriever  *Retriever
	llm        driven.LLMService
	sessions   driven.SessionStore
	prompts    driven.PromptStore
	attributor *Attributor
	settings   domain.ChatSettings
	locks      *keyedMutex
	now        func() time.Time
}

// ChatOption configures a ChatService.
type ChatOption func(*ChatService)

// WithChatSettings overrides retrieval depth, history length and sampling.
// Zero fields keep their defaults.
func WithChatSettings(cs domain.ChatSettings) ChatOption {
	return func(s *ChatService) {
		if cs.TopK > 0 {
			s.settings.TopK = cs.TopK
		}
		if cs.HistoryTurns > 0 {
			s.settings.HistoryTurns = cs.HistoryTurns
		}
		if cs.Temperature > 0 {
			s.settings.Temperature = cs.Temperature
		}
		if cs.MaxTokens > 0 {
			s.settings.MaxTokens = cs.MaxTokens
		}
	}
}

// WithAttributor replaces the default attributor.
func WithAttributor(a *Attributor) ChatOption {
	return func(s *ChatService) {
		if a != nil {
			s.attributor = a
		}
	}
}

// WithSessionLocking runs concurrent asks on the same session one at a time.
func WithSessionLocking() ChatOption {
	return func(s *ChatService) {
		s.locks = newKeyedMutex()
	}
}

// NewChatService creates a chat service. llm may be nil, in which case every
// ask ends in the failed state.
func NewChatService(
	retriever *Retriever,
	llm driven.LLMService,
	sessions driven.SessionStore,
	prompts driven.PromptStore,
	opts ...ChatOption,
) *ChatService {
	s := &ChatService{
		retriever:  retriever,
		llm:        llm,
		sessions:   sessions,
		prompts:    prompts,
		attributor: NewAttributor(DefaultAttributionConfig()),
		settings:   domain.DefaultAppSettings().Chat,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask answers message within the session.
func (s *ChatService) Ask(ctx context.Context, sessionID, message string) (domain.Answer, error) {
	state := domain.ChatStateReceived
	logger.Debug("[%s] %s", sessionID, state)

	if strings.TrimSpace(message) == "" {
		return domain.Answer{State: domain.ChatStateFailed}, domain.ErrEmptyMessage
	}

	if s.locks != nil {
		unlock := s.locks.Lock(sessionID)
		defer unlock()
	}

	rc, err := s.retriever.BuildContext(ctx, message, s.settings.TopK)
	if err != nil {
		logger.Debug("[%s] %s -> %s: %v", sessionID, state, domain.ChatStateFailed, err)
		return domain.Answer{State: domain.ChatStateFailed}, fmt.Errorf("retrieving context: %w", err)
	}
	state = s.transition(sessionID, state, domain.ChatStateRetrieved)

	messages, err := s.buildMessages(ctx, sessionID, rc.Text, message)
	if err != nil {
		return domain.Answer{State: domain.ChatStateFailed}, err
	}
	state = s.transition(sessionID, state, domain.ChatStatePrompted)

	reply, err := s.complete(ctx, messages)
	if err != nil {
		s.transition(sessionID, state, domain.ChatStateFailed)
		logger.Warn("Completion failed for session %s: %v", sessionID, err)
		return domain.Answer{
			Text:    s.apology(err),
			Sources: []string{},
			State:   domain.ChatStateFailed,
		}, nil
	}

	turn := domain.Turn{User: message, Assistant: reply, CreatedAt: s.now()}
	if err := s.sessions.Append(ctx, sessionID, turn); err != nil {
		logger.Error("Recording turn for session %s failed: %v", sessionID, err)
	}

	sources := s.attributor.Attribute(reply, rc.Sources)
	s.transition(sessionID, state, domain.ChatStateCompleted)

	return domain.Answer{
		Text:    reply,
		Sources: sources,
		State:   domain.ChatStateCompleted,
	}, nil
}

// ResetSession discards the session's history. Prompt templates are re-read
// on the next question, so edits on disk apply to the fresh conversation.
func (s *ChatService) ResetSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clearing session %s: %w", sessionID, err)
	}
	s.prompts.Reload()
	return nil
}

// History returns the session's turns in order.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	turns, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	return turns, nil
}

// Sessions lists live session ids.
func (s *ChatService) Sessions(ctx context.Context) ([]string, error) {
	return s.sessions.Sessions(ctx)
}

// buildMessages composes the system persona, the most recent turns and the
// question wrapped with its retrieved context.
func (s *ChatService) buildMessages(
	ctx context.Context, sessionID, contextText, question string,
) ([]driven.ChatMessage, error) {
	system, err := s.prompts.Load(driven.PromptChatSystem)
	if err != nil {
		return nil, fmt.Errorf("loading system prompt: %w", err)
	}
	userTmpl, err := s.prompts.Load(driven.PromptChatUser)
	if err != nil {
		return nil, fmt.Errorf("loading user prompt: %w", err)
	}

	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		logger.Warn("Reading history for session %s failed: %v", sessionID, err)
		history = nil
	}
	if n := s.settings.HistoryTurns; len(history) > n {
		history = history[len(history)-n:]
	}

	messages := make([]driven.ChatMessage, 0, 2*len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: system})
	for _, t := range history {
		messages = append(messages,
			driven.ChatMessage{Role: driven.RoleUser, Content: t.User},
			driven.ChatMessage{Role: driven.RoleAssistant, Content: t.Assistant},
		)
	}
	messages = append(messages, driven.ChatMessage{
		Role:    driven.RoleUser,
		Content: fmt.Sprintf(userTmpl, contextText, question),
	})
	return messages, nil
}

func (s *ChatService) complete(ctx context.Context, messages []driven.ChatMessage) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}
	return s.llm.Chat(ctx, messages, driven.ChatOptions{
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
	})
}

func (s *ChatService) apology(cause error) string {
	tmpl, err := s.prompts.Load(driven.PromptApology)
	if err != nil {
		return cause.Error()
	}
	return fmt.Sprintf(tmpl, cause.Error())
}

func (s *ChatService) transition(sessionID string, from, to domain.ChatState) domain.ChatState {
	logger.Debug("[%s] %s -> %s", sessionID, from, to)
	return to
}
