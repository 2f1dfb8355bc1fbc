package quiz

import "context"

// QuestionProvider generates the question list for a session. Implementations
// should return a *GenerationError when the upstream output is malformed or
// empty.
type QuestionProvider interface {
	Generate(ctx context.Context, prefs Preferences) ([]Question, error)
}

// Verdict is the evaluator's judgement of a free-text answer.
type Verdict struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
	Score     int    `json:"score"` // 0..100
}

// AnswerEvaluator grades open-ended answers. On error the scorer falls back
// to exact string matching and omits feedback.
type AnswerEvaluator interface {
	EvaluateAnswer(ctx context.Context, q Question, userAnswer string, language string) (Verdict, error)
}
