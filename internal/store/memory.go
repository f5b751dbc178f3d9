// internal/store/memory.go
//
// In-memory registry of running game sessions.
//
// Characteristics:
//   - Stores *session.Session values keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Delete and Sweep close the sessions they remove.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/snake/internal/session"
)

// ErrNotFound is returned by Get and Delete for unknown IDs.
var ErrNotFound = errors.New("not found")

// Store defines the lookup interface for live sessions.
type Store interface {
	// Save registers or replaces a session.
	Save(ctx context.Context, s *session.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete closes and removes a session.
	Delete(ctx context.Context, id string) error

	// Sweep closes and removes sessions idle for longer than ttl and returns
	// how many were removed.
	Sweep(now time.Time, ttl time.Duration) int

	// Len is the number of registered sessions.
	Len() int

	// Close closes every session.
	Close()
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*session.Session)}
}

func (m *memory) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	old, ok := m.sessions[s.ID]
	m.sessions[s.ID] = s
	m.mu.Unlock()
	if ok && old != s {
		old.Close()
	}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

func (m *memory) Sweep(now time.Time, ttl time.Duration) int {
	var expired []*session.Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Expired(now, ttl) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	// closing waits on each loop, so do it outside the lock
	for _, s := range expired {
		s.Close()
		log.Debug().Str("gameId", s.ID).Msg("session expired")
	}
	return len(expired)
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *memory) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*session.Session)
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, st Store, interval, ttl time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := st.Sweep(now, ttl); n > 0 {
				log.Info().Int("removed", n).Int("live", st.Len()).Msg("swept idle sessions")
			}
		}
	}
}
