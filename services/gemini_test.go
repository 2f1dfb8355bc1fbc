package services

import (
	"testing"

	"quizgenius/quiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneratedQuiz(t *testing.T) {
	payload := `{
		"title": "Go Basics",
		"questions": [
			{
				"text": "Which keyword declares a constant?",
				"type": "multiple-choice",
				"options": ["const", "let", "var", "def"],
				"correct_answer": "const",
				"difficulty": "basic",
				"explanation": "Constants are declared with const."
			},
			{
				"text": "Go has classes.",
				"type": "true-false",
				"correct_answer": "False",
				"difficulty": "basic",
				"explanation": "Go has types and methods, not classes."
			}
		]
	}`

	questions, title, err := ParseGeneratedQuiz(payload)
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", title)
	require.Len(t, questions, 2)

	assert.Equal(t, 1, questions[0].ID)
	assert.Equal(t, quiz.MultipleChoice, questions[0].Type)
	assert.Equal(t, "const", questions[0].CorrectAnswer)
	assert.Equal(t, 2, questions[1].ID)
	assert.Equal(t, quiz.TrueFalse, questions[1].Type)
}

func TestParseGeneratedQuizStripsFences(t *testing.T) {
	payload := "```json\n{\"title\":\"T\",\"questions\":[{\"text\":\"Q?\",\"type\":\"true-false\",\"correct_answer\":\"True\"}]}\n```"

	questions, _, err := ParseGeneratedQuiz(payload)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Q?", questions[0].Text)
}

func TestParseGeneratedQuizSkipsUnknownTypesAndRekeys(t *testing.T) {
	payload := `{
		"title": "Mixed",
		"questions": [
			{"text": "Bad", "type": "essay", "correct_answer": "x"},
			{"text": "Good", "type": "true-false", "correct_answer": "True"}
		]
	}`

	questions, _, err := ParseGeneratedQuiz(payload)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Good", questions[0].Text)
	assert.Equal(t, 1, questions[0].ID)
}

func TestParseGeneratedQuizShufflesSequencePresentation(t *testing.T) {
	payload := `{
		"title": "Order",
		"questions": [
			{
				"text": "Order the phases.",
				"type": "sequence",
				"correct_sequence": ["parse", "compile", "link", "run"]
			}
		]
	}`

	questions, _, err := ParseGeneratedQuiz(payload)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	// The presentation order holds the same items; the answer key keeps the
	// true order.
	assert.ElementsMatch(t, questions[0].CorrectSequence, questions[0].Sequence)
	assert.Equal(t, []string{"parse", "compile", "link", "run"}, questions[0].CorrectSequence)
}

func TestParseGeneratedQuizErrors(t *testing.T) {
	_, _, err := ParseGeneratedQuiz("")
	assert.Error(t, err)

	_, _, err = ParseGeneratedQuiz("not json")
	assert.Error(t, err)

	_, _, err = ParseGeneratedQuiz(`{"title":"Empty","questions":[]}`)
	assert.Error(t, err)

	// All questions unusable is as bad as none.
	_, _, err = ParseGeneratedQuiz(`{"questions":[{"text":"x","type":"essay"}]}`)
	assert.Error(t, err)
}

func TestParseVerdict(t *testing.T) {
	verdict, err := ParseVerdict(`{"is_correct": true, "feedback": "Well reasoned.", "score": 85}`)
	require.NoError(t, err)
	assert.True(t, verdict.IsCorrect)
	assert.Equal(t, "Well reasoned.", verdict.Feedback)
	assert.Equal(t, 85, verdict.Score)
}

func TestParseVerdictClampsScore(t *testing.T) {
	verdict, err := ParseVerdict(`{"is_correct": true, "score": 150}`)
	require.NoError(t, err)
	assert.Equal(t, 100, verdict.Score)

	verdict, err = ParseVerdict(`{"is_correct": false, "score": -10}`)
	require.NoError(t, err)
	assert.Equal(t, 0, verdict.Score)
}

func TestParseVerdictMalformed(t *testing.T) {
	_, err := ParseVerdict("the answer is probably fine")
	assert.Error(t, err)
}

func TestBuildGenerationPrompt(t *testing.T) {
	prefs := quiz.DefaultPreferences()
	prefs.Topic = "photosynthesis"
	prefs.Subtopic = "light reactions"
	prefs.QuestionCount = 5
	prefs.Language = "Spanish"

	prompt := buildGenerationPrompt(prefs)

	assert.Contains(t, prompt, "Topic: photosynthesis")
	assert.Contains(t, prompt, "Subtopic: light reactions")
	assert.Contains(t, prompt, "Number of questions: 5")
	assert.Contains(t, prompt, "multiple-choice, true-false")
	assert.Contains(t, prompt, "Language: Spanish")
}

func TestStripJSONFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripJSONFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripJSONFences(`{"a":1}`))
}
