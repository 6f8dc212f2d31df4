package driving

import (
	"context"

	"github.com/custodia-labs/docent/internal/core/domain"
)

// ChatService answers questions grounded in the indexed documents.
type ChatService interface {
	// Ask answers message within the session. A blank message returns
	// domain.ErrEmptyMessage. A failed completion is not an error: the answer
	// carries an apology and State domain.ChatStateFailed.
	Ask(ctx context.Context, sessionID, message string) (domain.Answer, error)

	// ResetSession discards the session's history and reloads prompt templates.
	ResetSession(ctx context.Context, sessionID string) error

	// History returns the session's turns in order.
	History(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Sessions lists live session ids.
	Sessions(ctx context.Context) ([]string, error)
}
