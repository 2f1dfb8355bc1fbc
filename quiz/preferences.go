package quiz

import "fmt"

type Mode string

const (
	ModePractice Mode = "practice"
	ModeExam     Mode = "exam"
)

type AnswerMode string

const (
	// AnswerImmediate reveals correctness after each submitted answer.
	AnswerImmediate AnswerMode = "immediate"
	// AnswerAtEnd withholds all feedback until the quiz is finished.
	AnswerAtEnd AnswerMode = "end"
)

// Preferences scope a single quiz attempt. They are edited before generation
// and read-only to the engine while a session is running.
type Preferences struct {
	Topic            string         `json:"topic"`
	Subtopic         string         `json:"subtopic,omitempty"`
	Difficulty       Difficulty     `json:"difficulty"`
	QuestionCount    int            `json:"question_count"`
	QuestionTypes    []QuestionType `json:"question_types"`
	Language         string         `json:"language"`
	Mode             Mode           `json:"mode"`
	TimeLimitEnabled bool           `json:"time_limit_enabled"`
	// TimeLimit is seconds per question; TotalTimeLimit is seconds for the
	// whole quiz. At most one may be set.
	TimeLimit       int     `json:"time_limit,omitempty"`
	TotalTimeLimit  int     `json:"total_time_limit,omitempty"`
	NegativeMarking bool    `json:"negative_marking"`
	NegativeMarks   float64 `json:"negative_marks,omitempty"`
}

// DefaultPreferences returns the configuration used when a user has never
// saved any.
func DefaultPreferences() Preferences {
	return Preferences{
		Difficulty:    Intermediate,
		QuestionCount: 10,
		QuestionTypes: []QuestionType{MultipleChoice, TrueFalse},
		Language:      "English",
		Mode:          ModePractice,
	}
}

// AnswerMode is derived from the mode: practice gives immediate feedback,
// exam defers it to the end.
func (p Preferences) AnswerMode() AnswerMode {
	if p.Mode == ModeExam {
		return AnswerAtEnd
	}
	return AnswerImmediate
}

// Validate checks the preferences before generation. It returns a
// *ConfigurationError describing the first violation found.
func (p Preferences) Validate() error {
	if p.Topic == "" {
		return &ConfigurationError{Field: "topic", Reason: "topic is required"}
	}
	if p.QuestionCount < 1 {
		return &ConfigurationError{Field: "question_count", Reason: "must generate at least one question"}
	}
	if len(p.QuestionTypes) == 0 {
		return &ConfigurationError{Field: "question_types", Reason: "at least one question type is required"}
	}
	for _, t := range p.QuestionTypes {
		if !t.Valid() {
			return &ConfigurationError{Field: "question_types", Reason: fmt.Sprintf("unknown question type %q", t)}
		}
	}
	if p.Mode != "" && p.Mode != ModePractice && p.Mode != ModeExam {
		return &ConfigurationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", p.Mode)}
	}
	if p.TimeLimitEnabled {
		if p.TimeLimit > 0 && p.TotalTimeLimit > 0 {
			return &ConfigurationError{Field: "time_limit", Reason: "per-question and whole-quiz limits cannot both be set"}
		}
		if p.TimeLimit <= 0 && p.TotalTimeLimit <= 0 {
			return &ConfigurationError{Field: "time_limit", Reason: "time limit enabled but no limit configured"}
		}
	}
	if p.NegativeMarking && p.NegativeMarks > 0 {
		return &ConfigurationError{Field: "negative_marks", Reason: "negative marks must be zero or below"}
	}
	return nil
}

// ToggleQuestionType adds the type if absent and removes it if present.
// Removing the last remaining type is a no-op: a session always needs at
// least one type to generate.
func (p *Preferences) ToggleQuestionType(t QuestionType) {
	for i, existing := range p.QuestionTypes {
		if existing == t {
			if len(p.QuestionTypes) == 1 {
				return
			}
			p.QuestionTypes = append(p.QuestionTypes[:i], p.QuestionTypes[i+1:]...)
			return
		}
	}
	p.QuestionTypes = append(p.QuestionTypes, t)
}

// TimerMode reports which countdown applies to a session with these
// preferences.
func (p Preferences) TimerMode() TimerMode {
	if !p.TimeLimitEnabled {
		return TimerOff
	}
	if p.TotalTimeLimit > 0 {
		return TimerWholeQuiz
	}
	if p.TimeLimit > 0 {
		return TimerPerQuestion
	}
	return TimerOff
}
