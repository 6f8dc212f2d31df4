// Package badger provides a persistent driven.SessionStore backed by BadgerDB.
// Each session is one key holding its JSON-encoded turns; idle expiry is
// delegated to Badger entry TTLs and refreshed on every access.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/custodia-labs/docent/internal/core/domain"
	"github.com/custodia-labs/docent/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

const keyPrefix = "session/"

// Config configures the Badger session store.
type Config struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps the database in memory (tests).
	InMemory bool

	// TTL evicts sessions idle for longer than this. Zero disables.
	TTL time.Duration

	// MaxSessions evicts the least recently used sessions beyond this count. Zero disables.
	MaxSessions int
}

type record struct {
	Turns      []domain.Turn `json:"turns"`
	LastAccess time.Time     `json:"last_access"`
}

// SessionStore persists session turns in BadgerDB.
type SessionStore struct {
	db  *badger.DB
	cfg Config
	now func() time.Time

	// mu serialises read-modify-write cycles on session records.
	mu sync.Mutex
}

// NewSessionStore opens the Badger database described by cfg.
func NewSessionStore(cfg Config) (*SessionStore, error) {
	opts := badger.DefaultOptions(cfg.Dir).WithLogger(nil)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	} else if cfg.Dir == "" {
		return nil, errors.New("badger: session directory is required")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}
	return &SessionStore{db: db, cfg: cfg, now: time.Now}, nil
}

func key(sessionID string) []byte {
	return []byte(keyPrefix + sessionID)
}

func (s *SessionStore) load(txn *badger.Txn, sessionID string) (record, bool, error) {
	var rec record
	item, err := txn.Get(key(sessionID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err == nil, err
}

func (s *SessionStore) save(txn *badger.Txn, sessionID string, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	entry := badger.NewEntry(key(sessionID), data)
	if s.cfg.TTL > 0 {
		entry = entry.WithTTL(s.cfg.TTL)
	}
	return txn.SetEntry(entry)
}

// update loads the session, applies fn and writes it back with a refreshed TTL.
func (s *SessionStore) update(sessionID string, fn func(*record)) (record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out record
	created := false
	err := s.db.Update(func(txn *badger.Txn) error {
		rec, found, err := s.load(txn, sessionID)
		if err != nil {
			return err
		}
		created = !found
		fn(&rec)
		rec.LastAccess = s.now()
		out = rec
		return s.save(txn, sessionID, rec)
	})
	if err != nil {
		return record{}, fmt.Errorf("badger: session %s: %w", sessionID, err)
	}

	if created && s.cfg.MaxSessions > 0 {
		if err := s.evictOverflow(); err != nil {
			return record{}, err
		}
	}
	return out, nil
}

// evictOverflow removes least recently used sessions beyond MaxSessions.
// Caller must hold s.mu.
func (s *SessionStore) evictOverflow() error {
	type entry struct {
		id         string
		lastAccess time.Time
	}
	var entries []entry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var rec record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			id := strings.TrimPrefix(string(item.Key()), keyPrefix)
			entries = append(entries, entry{id: id, lastAccess: rec.LastAccess})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger: scan sessions: %w", err)
	}

	overflow := len(entries) - s.cfg.MaxSessions
	if overflow <= 0 {
		return nil
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].lastAccess.Before(entries[j].lastAccess)
	})

	return s.db.Update(func(txn *badger.Txn) error {
		for _, e := range entries[:overflow] {
			if err := txn.Delete(key(e.id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Append records a turn at the end of the session.
func (s *SessionStore) Append(_ context.Context, sessionID string, turn domain.Turn) error {
	_, err := s.update(sessionID, func(rec *record) {
		rec.Turns = append(rec.Turns, turn)
	})
	return err
}

// History returns the session's turns, creating the session if needed.
func (s *SessionStore) History(_ context.Context, sessionID string) ([]domain.Turn, error) {
	rec, err := s.update(sessionID, func(*record) {})
	if err != nil {
		return nil, err
	}
	if rec.Turns == nil {
		return []domain.Turn{}, nil
	}
	return rec.Turns, nil
}

// Clear discards the session.
func (s *SessionStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(sessionID))
	})
	if err != nil {
		return fmt.Errorf("badger: clear session %s: %w", sessionID, err)
	}
	return nil
}

// Sessions lists live session ids, sorted.
func (s *SessionStore) Sessions(_ context.Context) ([]string, error) {
	ids := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: list sessions: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close closes the database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}
