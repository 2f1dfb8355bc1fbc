package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourChoiceQuestions() []Question {
	return []Question{
		{ID: 1, Type: MultipleChoice, CorrectAnswer: "A"},
		{ID: 2, Type: MultipleChoice, CorrectAnswer: "B"},
		{ID: 3, Type: MultipleChoice, CorrectAnswer: "C"},
		{ID: 4, Type: MultipleChoice, CorrectAnswer: "D"},
	}
}

func TestScoreExactMatch(t *testing.T) {
	questions := fourChoiceQuestions()
	answers := map[int]Answer{
		1: Single("A"),
		2: Single("x"),
		3: Single("C"),
		4: Single("D"),
	}
	prefs := Preferences{Topic: "t", QuestionCount: 4, QuestionTypes: []QuestionType{MultipleChoice}}

	result := NewScorer(nil).Score(context.Background(), questions, answers, prefs)

	assert.Equal(t, 4, result.TotalQuestions)
	assert.Equal(t, 3, result.CorrectAnswers)
	assert.InDelta(t, 75.0, result.Percentage, 1e-9)
	assert.Equal(t, "Good work!", result.Message)
}

func TestScoreNegativeMarking(t *testing.T) {
	questions := fourChoiceQuestions()
	answers := map[int]Answer{
		1: Single("A"),
		2: Single("x"),
		3: Single("C"),
		4: Single("D"),
	}
	prefs := Preferences{NegativeMarking: true, NegativeMarks: -0.25}

	result := NewScorer(nil).Score(context.Background(), questions, answers, prefs)

	assert.InDelta(t, 2.75, result.RawScore, 1e-9)
	assert.InDelta(t, 68.75, result.Percentage, 1e-9)
}

func TestScoreSkippedQuestionIsNotPenalized(t *testing.T) {
	questions := fourChoiceQuestions()
	answers := map[int]Answer{
		1: Single("A"),
		3: Single("C"),
		4: Single("D"),
	}
	prefs := Preferences{NegativeMarking: true, NegativeMarks: -0.25}

	result := NewScorer(nil).Score(context.Background(), questions, answers, prefs)

	assert.InDelta(t, 3.0, result.RawScore, 1e-9)
	assert.InDelta(t, 75.0, result.Percentage, 1e-9)
	assert.False(t, result.Questions[1].Attempted)
}

func TestScoreEmptyAnswerCountsAsSkip(t *testing.T) {
	questions := fourChoiceQuestions()
	answers := map[int]Answer{
		1: Single(""),
	}
	prefs := Preferences{NegativeMarking: true, NegativeMarks: -1}

	result := NewScorer(nil).Score(context.Background(), questions, answers, prefs)

	assert.Equal(t, 0.0, result.RawScore, "a recorded empty answer is not an attempt")
}

func TestScorePercentageFlooredAtZero(t *testing.T) {
	questions := fourChoiceQuestions()
	answers := map[int]Answer{
		1: Single("wrong"),
		2: Single("wrong"),
		3: Single("wrong"),
		4: Single("wrong"),
	}
	prefs := Preferences{NegativeMarking: true, NegativeMarks: -2}

	result := NewScorer(nil).Score(context.Background(), questions, answers, prefs)

	assert.Equal(t, 0.0, result.Percentage)
	assert.Equal(t, "Keep studying!", result.Message)
}

func TestScoreMessageBoundaries(t *testing.T) {
	cases := map[float64]string{
		100:  "Excellent!",
		90:   "Excellent!",
		89.9: "Great job!",
		80:   "Great job!",
		70:   "Good work!",
		60:   "Not bad!",
		50:   "You passed!",
		49.9: "Keep studying!",
		0:    "Keep studying!",
	}
	for pct, want := range cases {
		assert.Equal(t, want, ScoreMessage(pct), "percentage %v", pct)
	}
}

type fakeEvaluator struct {
	verdict Verdict
	err     error
	calls   int
}

func (f *fakeEvaluator) EvaluateAnswer(_ context.Context, _ Question, _ string, _ string) (Verdict, error) {
	f.calls++
	return f.verdict, f.err
}

func TestScoreConsultsEvaluatorForFreeText(t *testing.T) {
	ev := &fakeEvaluator{verdict: Verdict{IsCorrect: true, Feedback: "well reasoned", Score: 90}}
	questions := []Question{{ID: 1, Type: ShortAnswer, CorrectAnswer: "mitochondria"}}
	answers := map[int]Answer{1: Single("the powerhouse of the cell")}

	result := NewScorer(ev).Score(context.Background(), questions, answers, Preferences{Language: "English"})

	require.Equal(t, 1, ev.calls)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, "well reasoned", result.Questions[0].Feedback)
}

func TestScoreEvaluatorFailureFallsBackToExactMatch(t *testing.T) {
	ev := &fakeEvaluator{err: &EvaluationError{Err: errors.New("upstream down")}}
	questions := []Question{{ID: 1, Type: FillBlank, CorrectAnswer: "osmosis"}}
	answers := map[int]Answer{1: Single("Osmosis")}

	result := NewScorer(ev).Score(context.Background(), questions, answers, Preferences{})

	assert.Equal(t, 1, result.CorrectAnswers, "fallback grades by case-insensitive equality")
	assert.Empty(t, result.Questions[0].Feedback, "feedback is omitted on evaluator failure")
}

func TestScoreEvaluatorNotCalledForChoiceTypes(t *testing.T) {
	ev := &fakeEvaluator{verdict: Verdict{IsCorrect: true}}
	questions := []Question{{ID: 1, Type: MultipleChoice, CorrectAnswer: "A"}}
	answers := map[int]Answer{1: Single("B")}

	result := NewScorer(ev).Score(context.Background(), questions, answers, Preferences{})

	assert.Zero(t, ev.calls)
	assert.Zero(t, result.CorrectAnswers)
}
