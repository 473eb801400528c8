package app

import (
	"context"

	"askme-quiz-service/internal/domain"
)

// SessionRepository abstracts where per-tab machines live (in-memory, Redis-marked, etc).
type SessionRepository interface {
	GetOrCreate(tabID string, build func() *Machine) *Machine
	Get(tabID string) (*Machine, bool)
	Delete(tabID string)
}

// QuizService contains the quiz use cases, one Machine per open tab.
type QuizService struct {
	sessions  SessionRepository
	generator Generator
}

func NewQuizService(store SessionRepository, generator Generator) *QuizService {
	return &QuizService{sessions: store, generator: generator}
}

// Open returns the machine for tabID, creating an Empty one on first use.
func (s *QuizService) Open(tabID string, mode domain.Mode) *Machine {
	return s.sessions.GetOrCreate(tabID, func() *Machine {
		return NewMachine(tabID, mode, s.generator)
	})
}

// Close discards the tab's quiz; nothing about it survives.
func (s *QuizService) Close(tabID string) {
	s.sessions.Delete(tabID)
}

// Generate runs one generation for the tab. It blocks until the gateway resolves.
func (s *QuizService) Generate(ctx context.Context, tabID, topic string) error {
	m, ok := s.sessions.Get(tabID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return m.StartGeneration(ctx, topic)
}

// SetInput stores the tab's in-progress topic text.
func (s *QuizService) SetInput(tabID, text string) error {
	m, ok := s.sessions.Get(tabID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	m.SetInput(text)
	return nil
}

// Answer records an answer for the tab's live session.
func (s *QuizService) Answer(tabID string, questionIndex int, option string) (domain.SessionView, error) {
	m, ok := s.sessions.Get(tabID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return m.RecordAnswer(questionIndex, option)
}

// Advance moves the tab's cursor in single-question mode.
func (s *QuizService) Advance(tabID string, dir domain.Direction) (domain.SessionView, error) {
	m, ok := s.sessions.Get(tabID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return m.Advance(dir)
}

// Snapshot returns the tab's current view.
func (s *QuizService) Snapshot(tabID string) (domain.SessionView, error) {
	m, ok := s.sessions.Get(tabID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	return m.View(), nil
}

// Subscribe returns a channel of views for a tab, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, tabID string) (<-chan domain.SessionView, func(), error) {
	m, ok := s.sessions.Get(tabID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := m.subscribe()
	return ch, cancel, nil
}
