package domain

import "strings"

// QuestionsPerQuiz is the number of questions requested from the completion service.
const QuestionsPerQuiz = 10

// OptionsPerQuestion is the number of answer choices requested per question.
const OptionsPerQuestion = 4

// QuizQuestion is one multiple-choice item as returned by the completion service.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// SessionState is the lifecycle state of a tab's quiz.
type SessionState string

const (
	StateEmpty   SessionState = "empty"
	StateLoading SessionState = "loading"
	StateReady   SessionState = "ready"
)

// Mode selects how questions are presented.
type Mode string

const (
	// ModeList shows every question at once.
	ModeList Mode = "list"
	// ModeSingle shows one question at a time behind a cursor.
	ModeSingle Mode = "single"
)

// ParseMode returns the mode named by raw, defaulting to ModeList.
func ParseMode(raw string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(raw))) == ModeSingle {
		return ModeSingle
	}
	return ModeList
}

// Direction is a navigation step in single-question mode.
type Direction string

const (
	DirectionNext     Direction = "next"
	DirectionPrevious Direction = "previous"
)

// OptionStyle is the display outcome of one option, computed on read.
type OptionStyle string

const (
	StyleNeutral         OptionStyle = "neutral"
	StyleCorrect         OptionStyle = "correct"
	StyleIncorrectChosen OptionStyle = "incorrect"
)

// StyleFor decides how an option renders given whether its question is answered,
// what the user picked and what the correct answer is.
func StyleFor(answered bool, option, selection, answer string) OptionStyle {
	if !answered {
		return StyleNeutral
	}
	if option == answer {
		return StyleCorrect
	}
	if option == selection && selection != answer {
		return StyleIncorrectChosen
	}
	return StyleNeutral
}

// OptionLetter returns the display letter for the option at index i (A, B, C, ...).
func OptionLetter(i int) string {
	return string(rune('A' + i))
}
