package cli

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docent/internal/core/domain"
)

func TestAsk_PrintsAnswerAndSources(t *testing.T) {
	_, chat := setupTestServices(t)
	chat.answer = domain.Answer{
		Text:    "Leave is 25 days.",
		Sources: []string{"handbook.pdf"},
		State:   domain.ChatStateCompleted,
	}

	out, err := execute(t, "ask", "how", "much", "leave?")

	require.NoError(t, err)
	assert.Equal(t, []string{"how much leave?"}, chat.asked)
	assert.Equal(t, defaultSession, chat.lastSession)
	assert.Contains(t, out, "Leave is 25 days.")
	assert.Contains(t, out, "Sources: handbook.pdf")
}

func TestAsk_NoSourcesLine(t *testing.T) {
	_, chat := setupTestServices(t)
	chat.answer = domain.Answer{Text: "Hello.", State: domain.ChatStateCompleted}

	out, err := execute(t, "ask", "hi")

	require.NoError(t, err)
	assert.NotContains(t, out, "Sources:")
}

func TestAsk_Session(t *testing.T) {
	_, chat := setupTestServices(t)

	_, err := execute(t, "ask", "--session", "work", "question")

	require.NoError(t, err)
	assert.Equal(t, "work", chat.lastSession)
}

func TestAsk_JSON(t *testing.T) {
	_, chat := setupTestServices(t)
	chat.answer = domain.Answer{Text: "Sorry.", State: domain.ChatStateFailed}

	out, err := execute(t, "ask", "--json", "question")
	require.NoError(t, err)

	var got answerJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Sorry.", got.Answer)
	assert.Equal(t, []string{}, got.Sources)
	assert.Equal(t, domain.ChatStateFailed.String(), got.State)
}

func TestAsk_Error(t *testing.T) {
	_, chat := setupTestServices(t)
	chat.err = domain.ErrEmbeddingUnavailable

	_, err := execute(t, "ask", "question")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
}

func TestAsk_NoService(t *testing.T) {
	setupTestServices(t)
	chatService = nil

	_, err := execute(t, "ask", "question")

	assert.ErrorContains(t, err, "chat service not configured")
}
