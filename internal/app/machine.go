package app

import (
	"context"
	"strings"
	"sync"

	"askme-quiz-service/internal/domain"
)

// GenerationFailedMessage is shown for every gateway failure, whatever the cause.
const GenerationFailedMessage = "Failed to generate quiz. Please try again."

// Generator turns a topic into questions (the completion-service gateway).
type Generator interface {
	Generate(ctx context.Context, topic string) ([]domain.QuizQuestion, error)
}

// Machine is the per-tab quiz state machine: Empty -> Loading -> Ready, re-enterable.
// While Loading the previous session (if any) stays readable and answerable; it is only
// replaced once the new generation succeeds.
type Machine struct {
	id   string
	mode domain.Mode
	gen  Generator

	mu          sync.RWMutex
	session     *QuizSession
	loading     bool
	input       string
	errMsg      string
	subscribers map[chan domain.SessionView]struct{}
}

// NewMachine returns an Empty machine for tab id.
func NewMachine(id string, mode domain.Mode, gen Generator) *Machine {
	return &Machine{
		id:          id,
		mode:        mode,
		gen:         gen,
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
}

func (m *Machine) ID() string { return m.id }

// State reports the current lifecycle state.
func (m *Machine) State() domain.SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

func (m *Machine) stateLocked() domain.SessionState {
	switch {
	case m.loading:
		return domain.StateLoading
	case m.session != nil:
		return domain.StateReady
	default:
		return domain.StateEmpty
	}
}

// Loading reports whether a generation is outstanding.
func (m *Machine) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Session returns the live session, nil while Empty.
func (m *Machine) Session() *QuizSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Input returns the text currently typed into the topic box.
func (m *Machine) Input() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.input
}

// ErrorMessage returns the last user-facing generation error, if any.
func (m *Machine) ErrorMessage() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errMsg
}

// SetInput records what the user has typed so far.
func (m *Machine) SetInput(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = text
	m.broadcastLocked()
}

// StartGeneration validates topic, enters Loading and blocks on the gateway.
// A blank topic fails with ErrBlankTopic before anything changes. A call while another
// generation is outstanding fails with ErrGenerationInFlight. On success the session is
// replaced wholesale and the input cleared; on failure the prior session and the input
// are kept and the error message is set.
func (m *Machine) StartGeneration(ctx context.Context, topic string) error {
	if strings.TrimSpace(topic) == "" {
		return domain.ErrBlankTopic
	}

	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return domain.ErrGenerationInFlight
	}
	m.loading = true
	m.input = topic
	m.errMsg = ""
	m.broadcastLocked()
	m.mu.Unlock()

	questions, err := m.gen.Generate(ctx, topic)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.errMsg = GenerationFailedMessage
		m.broadcastLocked()
		return err
	}
	m.session = NewQuizSession(questions, m.mode)
	m.input = ""
	m.broadcastLocked()
	return nil
}

// RecordAnswer locks in an answer on the live session.
func (m *Machine) RecordAnswer(questionIndex int, option string) (domain.SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return m.snapshotLocked(), domain.ErrNoSession
	}
	applied, err := m.session.RecordAnswer(questionIndex, option)
	if err != nil {
		return m.snapshotLocked(), err
	}
	if applied {
		return m.broadcastLocked(), nil
	}
	return m.snapshotLocked(), nil
}

// Advance moves the single-question cursor.
func (m *Machine) Advance(dir domain.Direction) (domain.SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return m.snapshotLocked(), domain.ErrNoSession
	}
	moved, err := m.session.Advance(dir)
	if err != nil {
		return m.snapshotLocked(), err
	}
	if moved {
		return m.broadcastLocked(), nil
	}
	return m.snapshotLocked(), nil
}

// View returns a point-in-time snapshot.
func (m *Machine) View() domain.SessionView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Machine) subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	ch <- m.snapshotLocked()
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

func (m *Machine) broadcastLocked() domain.SessionView {
	view := m.snapshotLocked()
	for ch := range m.subscribers {
		select {
		case ch <- view:
		default:
			// Slow reader: drop its oldest pending view so the newest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	return view
}

func (m *Machine) snapshotLocked() domain.SessionView {
	view := domain.SessionView{
		State:     m.stateLocked(),
		Mode:      m.mode,
		Input:     m.input,
		Error:     m.errMsg,
		Questions: []domain.QuestionView{},
	}
	if m.session != nil {
		view.Questions = m.session.questionViews()
		view.Score = m.session.Score()
		view.AnsweredCount = m.session.AnsweredCount()
		view.Total = m.session.Len()
		view.Cursor = m.session.Cursor()
	}
	return view
}
