package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionFinished is returned when a mutation is attempted on a
	// session that has already produced its result.
	ErrSessionFinished = errors.New("session already finished")
	// ErrSessionEmpty is returned when an operation needs an active session.
	ErrSessionEmpty = errors.New("no active session")
	// ErrUnknownQuestion is returned when an answer targets a question that
	// is not part of the session.
	ErrUnknownQuestion = errors.New("question not in session")
)

// ConfigurationError reports invalid preferences before generation is
// attempted.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid preferences: %s: %s", e.Field, e.Reason)
}

// GenerationError wraps a provider failure or unusable provider output. The
// session stays empty when generation fails.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("question generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// EvaluationError means the free-text evaluator was unavailable. Scoring
// recovers by falling back to exact matching, so this never fails a session.
type EvaluationError struct {
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("answer evaluation failed: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
