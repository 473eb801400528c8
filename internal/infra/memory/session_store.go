package memory

import (
	"sync"

	"askme-quiz-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Machine
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Machine),
	}
}

func (s *SessionStore) GetOrCreate(tabID string, build func() *app.Machine) *app.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.sessions[tabID]; ok {
		return m
	}
	m := build()
	s.sessions[tabID] = m
	return m
}

func (s *SessionStore) Get(tabID string) (*app.Machine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.sessions[tabID]
	return m, ok
}

func (s *SessionStore) Delete(tabID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tabID)
}

// Len reports how many tabs are open.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
