package quiz

import (
	"context"
	"log"
	"time"
)

// ReviewQuestion pairs a question with the answer the user gave, for the
// review screen after a quiz is finished.
type ReviewQuestion struct {
	Question
	UserAnswer string `json:"user_answer"`
	Attempted  bool   `json:"attempted"`
	Correct    bool   `json:"correct"`
	Feedback   string `json:"feedback,omitempty"`
}

// Result is the terminal snapshot of a finished session.
type Result struct {
	TotalQuestions int              `json:"total_questions"`
	CorrectAnswers int              `json:"correct_answers"`
	RawScore       float64          `json:"raw_score"`
	Percentage     float64          `json:"percentage"`
	Message        string           `json:"message"`
	Questions      []ReviewQuestion `json:"questions"`
	CompletedAt    time.Time        `json:"completed_at"`
}

// Scorer evaluates answers and aggregates them into a Result. The evaluator
// is optional; without one, free-text questions are graded by exact match.
type Scorer struct {
	evaluator AnswerEvaluator
}

func NewScorer(evaluator AnswerEvaluator) *Scorer {
	return &Scorer{evaluator: evaluator}
}

// Grade evaluates a single answer, consulting the evaluator for free-text
// questions when one is configured. Evaluator failures degrade to exact
// matching rather than failing the question.
func (sc *Scorer) Grade(ctx context.Context, q Question, a Answer, language string) (bool, string) {
	if sc.evaluator != nil && q.Type.FreeText() && !a.IsEmpty() {
		verdict, err := sc.evaluator.EvaluateAnswer(ctx, q, a.Encode(), language)
		if err == nil {
			return verdict.IsCorrect, verdict.Feedback
		}
		log.Printf("Evaluator unavailable for question %d, falling back to exact match: %v", q.ID, err)
	}
	return q.Evaluate(a), ""
}

// Score computes the Result for a full set of questions and answers.
//
// Each correct answer contributes +1. Under negative marking a wrong
// *attempted* answer contributes the configured non-positive penalty;
// unanswered questions always contribute 0. The percentage is the raw score
// over the question count, floored at 0.
func (sc *Scorer) Score(ctx context.Context, questions []Question, answers map[int]Answer, prefs Preferences) *Result {
	result := &Result{
		TotalQuestions: len(questions),
		Questions:      make([]ReviewQuestion, 0, len(questions)),
		CompletedAt:    time.Now(),
	}

	raw := 0.0
	for _, q := range questions {
		answer, attempted := answers[q.ID]
		if attempted && answer.IsEmpty() {
			attempted = false
		}

		correct := false
		feedback := ""
		if attempted {
			correct, feedback = sc.Grade(ctx, q, answer, prefs.Language)
		}

		switch {
		case correct:
			result.CorrectAnswers++
			raw += 1
		case attempted && prefs.NegativeMarking:
			raw += prefs.NegativeMarks
		}

		result.Questions = append(result.Questions, ReviewQuestion{
			Question:   q,
			UserAnswer: answer.Encode(),
			Attempted:  attempted,
			Correct:    correct,
			Feedback:   feedback,
		})
	}

	result.RawScore = raw
	result.Percentage = clampPercentage(raw, len(questions))
	result.Message = ScoreMessage(result.Percentage)
	return result
}

func clampPercentage(raw float64, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := raw / float64(total) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ScoreMessage maps a percentage to the congratulation line shown on the
// result screen.
func ScoreMessage(percentage float64) string {
	switch {
	case percentage >= 90:
		return "Excellent!"
	case percentage >= 80:
		return "Great job!"
	case percentage >= 70:
		return "Good work!"
	case percentage >= 60:
		return "Not bad!"
	case percentage >= 50:
		return "You passed!"
	default:
		return "Keep studying!"
	}
}
