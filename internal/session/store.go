// Package session keeps one contact form per visitor in memory.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwedajie/portfolio/internal/contact"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

type entry struct {
	mu       sync.Mutex
	ctrl     *contact.Controller
	lastSeen time.Time
}

// Store maps session ids to contact controllers. Each visitor's operations
// are serialized through Do; different visitors never share state.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	factory  func() *contact.Controller
}

// NewStore returns a Store that builds controllers with factory.
func NewStore(ttl time.Duration, factory func() *contact.Controller) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
		factory:  factory,
	}
}

// Do runs fn with the controller for id while holding that session's lock.
// An empty, malformed or unknown id starts a new session. The id in use is
// returned so the caller can hand it back to the visitor.
func (s *Store) Do(id string, fn func(*contact.Controller)) string {
	id, e := s.lookup(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.ctrl)
	return id
}

func (s *Store) lookup(id string) (string, *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, err := uuid.Parse(id); err == nil {
		if e, ok := s.sessions[id]; ok && now.Sub(e.lastSeen) < s.ttl {
			e.lastSeen = now
			return id, e
		}
	}
	id = uuid.NewString()
	e := &entry{ctrl: s.factory(), lastSeen: now}
	s.sessions[id] = e
	return id, e
}

// Sweep drops sessions idle for longer than the TTL and reports how many.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) >= s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
