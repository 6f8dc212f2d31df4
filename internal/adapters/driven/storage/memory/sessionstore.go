package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStoreConfig bounds how long and how many sessions are retained.
type SessionStoreConfig struct {
	// TTL evicts sessions idle for longer than this. Zero disables.
	TTL time.Duration

	// MaxSessions evicts the least recently used sessions beyond this count. Zero disables.
	MaxSessions int
}

// SessionStore is an in-memory implementation of driven.SessionStore with
// idle expiry and LRU capacity eviction.
type SessionStore struct {
	// mu serialises read-modify-write of a session's turns.
	mu    sync.Mutex
	cache *expirable.LRU[string, []domain.Turn]
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(cfg SessionStoreConfig) *SessionStore {
	return &SessionStore{
		cache: expirable.NewLRU[string, []domain.Turn](cfg.MaxSessions, nil, cfg.TTL),
	}
}

// Append records a turn at the end of the session.
func (s *SessionStore) Append(_ context.Context, sessionID string, turn domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, _ := s.cache.Peek(sessionID)
	s.cache.Add(sessionID, append(turns, turn))
	return nil
}

// History returns a copy of the session's turns. Reading a session counts as
// activity: it is created if absent and its idle timer restarts.
func (s *SessionStore) History(_ context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, _ := s.cache.Peek(sessionID)
	// Re-adding restarts the expiry and marks the session most recently used.
	s.cache.Add(sessionID, turns)

	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Clear discards the session.
func (s *SessionStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Remove(sessionID)
	return nil
}

// Sessions lists live session ids, sorted.
func (s *SessionStore) Sessions(_ context.Context) ([]string, error) {
	ids := s.cache.Keys()
	sort.Strings(ids)
	return ids, nil
}

// Close releases resources.
func (s *SessionStore) Close() error {
	s.cache.Purge()
	return nil
}
