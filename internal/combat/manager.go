package combat

import (
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"github.com/l1jgo/battlecore/internal/world"
)

// Manager owns every live combat session, keyed by combatant id.
type Manager struct {
	deps *Deps
	log  *zap.Logger

	mu       deadlock.RWMutex
	sessions map[uint32]*Session
}

// NewManager creates a manager. When deps has no ActivityChecker the
// manager itself answers IsActive.
func NewManager(deps *Deps) *Manager {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Dice == nil {
		deps.Dice = RandomDice{}
	}
	m := &Manager{
		deps:     deps,
		log:      deps.Log.Named("combat"),
		sessions: make(map[uint32]*Session),
	}
	if deps.Sessions == nil {
		deps.Sessions = m
	}
	return m
}

// Attach creates (or returns the existing) session for c.
func (m *Manager) Attach(c *world.Combatant) (*Session, error) {
	if s := m.Get(c.ID); s != nil {
		return s, nil
	}
	s, err := NewSession(c, m.deps)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if old, ok := m.sessions[c.ID]; ok {
		m.mu.Unlock()
		return old, nil
	}
	m.sessions[c.ID] = s
	m.mu.Unlock()
	m.log.Debug("session attached", zap.Uint32("combatant", c.ID), zap.Stringer("kind", c.Kind))
	return s, nil
}

// Detach cancels and removes a session, saving its records.
func (m *Manager) Detach(id uint32) *Session {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if s == nil {
		return nil
	}
	s.Abort(false)
	s.Save()
	return s
}

func (m *Manager) Get(id uint32) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IsActive reports whether id's session is casting or swinging.
func (m *Manager) IsActive(id uint32) bool {
	s := m.Get(id)
	return s != nil && s.IsActive()
}

// Tick runs OnTick for every session.
func (m *Manager) Tick() {
	for _, s := range m.snapshot() {
		s.OnTick()
	}
}

// SaveAll persists the records of every session.
func (m *Manager) SaveAll() {
	for _, s := range m.snapshot() {
		s.Save()
	}
}

func (m *Manager) snapshot() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	return out
}
