package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps sessions in memory and expires them after ttl of inactivity
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	address  string
	init     func(*Session)
	now      func() time.Time
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithDefaultAddress sets the manager address new sessions start with
func WithDefaultAddress(address string) StoreOption {
	return func(s *Store) { s.address = address }
}

// WithInit runs fn on every new session, before it is handed out
func WithInit(fn func(*Session)) StoreOption {
	return func(s *Store) { s.init = fn }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a live session and refreshes its expiry
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if sess.idleSince(now) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

// Create starts a new session with a random id
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.address, s.now())
	if s.init != nil {
		s.init(sess)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// GetOrCreate returns the session for id, or a new one when id is unknown or expired
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

// Delete drops a session
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sweep removes expired sessions and returns how many were removed
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince(now) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
