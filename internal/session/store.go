// internal/session/store.go
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutrifacil/internal/flow"
)

type entry struct {
	session  *flow.Session
	lastSeen time.Time
}

// Store keeps sessions in memory. Nothing survives a restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Store) Create() *flow.Session {
	id := uuid.NewString()
	created := flow.NewSession(id, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{session: created, lastSeen: s.now()}

	s.logger.Debug("session created", "session", id)
	return created
}

// Get returns the live session for id and refreshes its expiry.
func (s *Store) Get(id string) (*flow.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(found.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	found.lastSeen = now
	return found.session, true
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if found, ok := s.sessions[id]; ok {
		found.session.CancelGeneration()
		delete(s.sessions, id)
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL, cancelling any
// generation they still have running. Returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, found := range s.sessions {
		if now.Sub(found.lastSeen) <= s.ttl {
			continue
		}
		found.session.CancelGeneration()
		delete(s.sessions, id)
		removed++
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(s.now()); removed > 0 {
				s.logger.Info("expired sessions removed", "count", removed, "remaining", s.Len())
			}
		}
	}
}
