package driven

import (
	"context"

	"github.com/custodia-labs/docent/internal/core/domain"
)

// SessionStore keeps the ordered turns of each conversation.
// Sessions are created lazily on first use and may be evicted when idle.
type SessionStore interface {
	// Append records a completed turn at the end of the session.
	Append(ctx context.Context, sessionID string, turn domain.Turn) error

	// History returns every retained turn in order. Unknown sessions
	// return an empty history.
	History(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Clear discards the session. Unknown sessions are a no-op.
	Clear(ctx context.Context, sessionID string) error

	// Sessions lists the ids of live sessions.
	Sessions(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
