package app

import (
	"fmt"

	"askme-quiz-service/internal/domain"
	"github.com/samber/lo"
)

// QuizSession is the scorable state over one generated list of questions.
// It is created whole on a successful generation and only mutated by RecordAnswer
// and Advance; a regeneration swaps in a brand-new value.
type QuizSession struct {
	questions []domain.QuizQuestion
	answers   []string
	answered  []bool
	score     int
	cursor    int
	mode      domain.Mode
}

// NewQuizSession initializes an all-unanswered session with score 0 and cursor 0.
func NewQuizSession(questions []domain.QuizQuestion, mode domain.Mode) *QuizSession {
	owned := make([]domain.QuizQuestion, len(questions))
	for i, q := range questions {
		owned[i] = domain.QuizQuestion{
			Question: q.Question,
			Options:  append([]string(nil), q.Options...),
			Answer:   q.Answer,
		}
	}
	return &QuizSession{
		questions: owned,
		answers:   make([]string, len(questions)),
		answered:  make([]bool, len(questions)),
		mode:      mode,
	}
}

// Len returns the number of questions.
func (s *QuizSession) Len() int { return len(s.questions) }

func (s *QuizSession) Mode() domain.Mode { return s.mode }

func (s *QuizSession) Cursor() int { return s.cursor }

func (s *QuizSession) Score() int { return s.score }

// Question returns a copy of question i.
func (s *QuizSession) Question(i int) (domain.QuizQuestion, error) {
	if i < 0 || i >= len(s.questions) {
		return domain.QuizQuestion{}, domain.ErrQuestionOutOfRange
	}
	q := s.questions[i]
	q.Options = append([]string(nil), q.Options...)
	return q, nil
}

// Answer returns the locked-in option for question i, if any.
func (s *QuizSession) Answer(i int) (string, bool) {
	if i < 0 || i >= len(s.questions) || !s.answered[i] {
		return "", false
	}
	return s.answers[i], true
}

// AnsweredCount is the number of locked-in questions.
func (s *QuizSession) AnsweredCount() int {
	return lo.Count(s.answered, true)
}

// RecomputeScore derives the score from answers alone; Score must always equal it.
func (s *QuizSession) RecomputeScore() int {
	score := 0
	for i, q := range s.questions {
		if s.answered[i] && s.answers[i] == q.Answer {
			score++
		}
	}
	return score
}

// RecordAnswer locks in option for question i. The first answer wins: a second call
// for the same question is a no-op and reports applied=false. An option outside the
// question's choices is accepted and simply scores as wrong.
func (s *QuizSession) RecordAnswer(i int, option string) (applied bool, err error) {
	if i < 0 || i >= len(s.questions) {
		return false, domain.ErrQuestionOutOfRange
	}
	if s.answered[i] {
		return false, nil
	}
	s.answers[i] = option
	s.answered[i] = true
	if option == s.questions[i].Answer {
		s.score++
	}
	return true, nil
}

// Advance moves the cursor one step, clamped to [0, N-1]. It never touches answers.
func (s *QuizSession) Advance(dir domain.Direction) (moved bool, err error) {
	if s.mode != domain.ModeSingle {
		return false, domain.ErrNavigationUnavailable
	}
	switch dir {
	case domain.DirectionNext:
		if s.cursor < len(s.questions)-1 {
			s.cursor++
			return true, nil
		}
	case domain.DirectionPrevious:
		if s.cursor > 0 {
			s.cursor--
			return true, nil
		}
	default:
		return false, fmt.Errorf("unknown direction %q", dir)
	}
	return false, nil
}

// OptionStyle reports how option of question i renders.
func (s *QuizSession) OptionStyle(i int, option string) domain.OptionStyle {
	if i < 0 || i >= len(s.questions) {
		return domain.StyleNeutral
	}
	return domain.StyleFor(s.answered[i], option, s.answers[i], s.questions[i].Answer)
}

func (s *QuizSession) questionViews() []domain.QuestionView {
	views := make([]domain.QuestionView, 0, len(s.questions))
	for i, q := range s.questions {
		view := domain.QuestionView{
			Index:    i,
			Question: q.Question,
			Options:  make([]domain.OptionView, 0, len(q.Options)),
			Answered: s.answered[i],
		}
		if s.answered[i] {
			view.Selection = s.answers[i]
		}
		for j, opt := range q.Options {
			view.Options = append(view.Options, domain.OptionView{
				Letter:  domain.OptionLetter(j),
				Text:    opt,
				Style:   s.OptionStyle(i, opt),
				Correct: s.answered[i] && opt == q.Answer,
			})
		}
		views = append(views, view)
	}
	return views
}
