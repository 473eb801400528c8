package redis

import (
	"context"
	"sync"
	"time"

	"askme-quiz-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Machines stay in process memory (they hold live subscribers); Redis only carries a
// best-effort liveness marker per open tab so operators can count tabs across instances.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Machine
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(tabID), "1", s.ttl).Err()
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
	if _, ok := s.sessions[tabID]; !ok {
		return
	}
	delete(s.sessions, tabID)
	_ = s.client.Del(context.Background(), s.key(tabID)).Err()
}

func (s *SessionStore) key(tabID string) string {
	return "askme:tab:" + tabID
}
