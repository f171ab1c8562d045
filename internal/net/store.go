package net

import "github.com/sasha-s/go-deadlock"

// SessionStore tracks every live session by id. InputSystem owns the
// writes; OutputSystem and shutdown only read.
type SessionStore struct {
	mu       deadlock.RWMutex
	sessions map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session)}
}

func (s *SessionStore) Add(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}

func (s *SessionStore) Remove(id uint64) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *SessionStore) Get(id uint64) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Snapshot returns the current sessions; callers may add or remove while
// iterating it.
func (s *SessionStore) Snapshot() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// ForEach calls fn for every session.
func (s *SessionStore) ForEach(fn func(*Session)) {
	for _, sess := range s.Snapshot() {
		fn(sess)
	}
}
