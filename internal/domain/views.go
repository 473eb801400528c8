package domain

// OptionView is a rendered answer choice.
type OptionView struct {
	Letter  string      `json:"letter"`
	Text    string      `json:"text"`
	Style   OptionStyle `json:"style"`
	Correct bool        `json:"correct,omitempty"`
}

// QuestionView is a rendered question. Selection is only set once answered.
type QuestionView struct {
	Index     int          `json:"index"`
	Question  string       `json:"question"`
	Options   []OptionView `json:"options"`
	Answered  bool         `json:"answered"`
	Selection string       `json:"selection,omitempty"`
}

// SessionView is the snapshot pushed to a tab after every transition.
type SessionView struct {
	State         SessionState   `json:"state"`
	Mode          Mode           `json:"mode"`
	Input         string         `json:"input"`
	Error         string         `json:"error,omitempty"`
	Questions     []QuestionView `json:"questions"`
	Score         int            `json:"score"`
	AnsweredCount int            `json:"answeredCount"`
	Total         int            `json:"total"`
	Cursor        int            `json:"cursor"`
}
