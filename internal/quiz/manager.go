package quiz

import "sync"

// Manager owns at most one live session per user. Creating a new session
// supersedes the old one: its timer is stopped and its epoch bumped so
// in-flight synchronization results cannot touch the replacement.
type Manager struct {
	mu       sync.Mutex
	sessions map[int]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[int]*Session)}
}

// Put registers s as the user's current session, tearing down any prior one.
func (m *Manager) Put(userID int, s *Session) {
	m.mu.Lock()
	old := m.sessions[userID]
	m.sessions[userID] = s
	m.mu.Unlock()

	if old != nil {
		old.Teardown()
	}
}

// Get returns the user's current session, or nil.
func (m *Manager) Get(userID int) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// Remove tears down and forgets the user's current session.
func (m *Manager) Remove(userID int) {
	m.mu.Lock()
	s := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if s != nil {
		s.Teardown()
	}
}

// Shutdown tears down every live session. Called on server shutdown so no
// timer goroutine outlives the process teardown sequence.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[int]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Teardown()
	}
}
