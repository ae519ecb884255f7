package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session defaults used when the configured values are not positive.
const (
	DefaultSessionTTL  = 2 * time.Hour
	DefaultMaxSessions = 1000
)

type session struct {
	workspace *Workspace
	lastSeen  time.Time
}

// Sessions owns one Workspace per browser session. Each workspace is only
// ever touched by its own session; the lock guards the session map itself
// because HTTP requests are served concurrently.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*session
	ttl   time.Duration
	max   int
	now   func() time.Time
}

// NewSessions creates a session table. Sessions idle longer than ttl are
// dropped by Evict; at most max sessions exist at once.
func NewSessions(ttl time.Duration, max int) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Sessions{
		items: make(map[string]*session),
		ttl:   ttl,
		max:   max,
		now:   time.Now,
	}
}

// Get returns the workspace for id and marks the session as active.
// Expired sessions are treated as unknown.
func (s *Sessions) Get(id string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.items[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.items, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess.workspace, true
}

// Create starts a new session with an empty workspace. When the table is
// full, expired sessions are evicted first; if it is still full the call
// fails with ErrTooManySessions.
func (s *Sessions) Create() (string, *Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) >= s.max {
		s.evictLocked()
		if len(s.items) >= s.max {
			return "", nil, ErrTooManySessions
		}
	}

	id := uuid.NewString()
	ws := NewWorkspace()
	s.items[id] = &session{workspace: ws, lastSeen: s.now()}
	return id, ws, nil
}

// Delete ends a session.
func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Evict drops sessions idle longer than the TTL and returns how many went.
func (s *Sessions) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

func (s *Sessions) evictLocked() int {
	now := s.now()
	n := 0
	for id, sess := range s.items {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.items, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TTL returns the idle timeout.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}
