package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBlankTopic is returned when a generation is requested without any non-whitespace input.
	ErrBlankTopic = errors.New("topic must not be blank")
	// ErrGenerationInFlight is returned when a generation is requested while another is outstanding.
	ErrGenerationInFlight = errors.New("quiz generation already in progress")
	// ErrNoSession is returned when an answer or navigation targets a tab with no questions loaded.
	ErrNoSession = errors.New("no quiz loaded")
	// ErrQuestionOutOfRange indicates a question index outside the loaded quiz.
	ErrQuestionOutOfRange = errors.New("question index out of range")
	// ErrNavigationUnavailable is returned by Advance outside single-question mode.
	ErrNavigationUnavailable = errors.New("navigation is only available in single-question mode")
	// ErrSessionNotFound is returned when a tab id is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrMissingCredential indicates the completion service API key was not supplied.
	ErrMissingCredential = errors.New("completion service api key not configured")
	// ErrInvalidTheme is returned for theme values other than dark or light.
	ErrInvalidTheme = errors.New("theme must be dark or light")
)

// GenerationKind classifies why a generation call failed.
type GenerationKind string

const (
	GenerationTransport GenerationKind = "transport"
	GenerationUpstream  GenerationKind = "upstream"
	GenerationParse     GenerationKind = "parse"
	GenerationSchema    GenerationKind = "schema"
	GenerationConfig    GenerationKind = "config"
)

// GenerationError wraps any failure of the quiz generation gateway.
type GenerationError struct {
	Kind GenerationKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("quiz generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError builds a GenerationError of the given kind.
func NewGenerationError(kind GenerationKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

// IsConfigurationError reports whether err stems from missing or invalid credentials.
func IsConfigurationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr) && genErr.Kind == GenerationConfig
}
