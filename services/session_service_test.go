package services

import (
	"context"
	"testing"

	"quizgenius/quiz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPreferences(mode quiz.Mode) quiz.Preferences {
	prefs := quiz.DefaultPreferences()
	prefs.Topic = "Go concurrency"
	prefs.Mode = mode
	return prefs
}

func testQuestions() []quiz.Question {
	return []quiz.Question{
		{
			ID:            1,
			Text:          "What does a buffered channel do when full?",
			Type:          quiz.MultipleChoice,
			Options:       []string{"Blocks senders", "Drops values", "Panics", "Grows"},
			CorrectAnswer: "Blocks senders",
		},
		{
			ID:            2,
			Text:          "A sync.Mutex is reentrant.",
			Type:          quiz.TrueFalse,
			CorrectAnswer: "False",
		},
		{
			ID:            3,
			Text:          "Which keyword starts a goroutine?",
			Type:          quiz.MultipleChoice,
			Options:       []string{"go", "run", "spawn", "async"},
			CorrectAnswer: "go",
		},
	}
}

func TestSessionServiceStart(t *testing.T) {
	svc := NewSessionService(nil, nil, nil)

	view, err := svc.Start(1, 10, testPreferences(quiz.ModePractice), testQuestions())
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, quiz.StateInProgress, view.State)
	assert.Equal(t, 0, view.CurrentIndex)
	assert.Equal(t, 3, view.TotalQuestions)

	// The served question never leaks the answer key.
	require.NotNil(t, view.Question)
	assert.Empty(t, view.Question.CorrectAnswer)
	assert.Empty(t, view.Question.Explanation)
}

func TestSessionServiceStartReplacesPrevious(t *testing.T) {
	svc := NewSessionService(nil, nil, nil)

	first, err := svc.Start(1, 10, testPreferences(quiz.ModePractice), testQuestions())
	require.NoError(t, err)

	second, err := svc.Start(1, 10, testPreferences(quiz.ModePractice), testQuestions())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = svc.Get(first.ID, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Get(second.ID, 1)
	assert.NoError(t, err)
}

func TestSessionServiceLookupIsPerUser(t *testing.T) {
	svc := NewSessionService(nil, nil, nil)

	view, err := svc.Start(1, 10, testPreferences(quiz.ModePractice), testQuestions())
	require.NoError(t, err)

	_, err = svc.Get(view.ID, 2)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Get("no-such-session", 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionServiceAnswerPracticeMode(t *testing.T) {
	svc := NewSessionService(nil, nil, nil)

	view, err := svc.Start(1, 10, testPreferences(quiz.ModePractice), testQuestions())
	require.NoError(t, err)

	feedback, err := svc.Answer(context.Background(), view.ID, 1, 1, "Blocks senders")
	require.NoError(t, err)
	assert.True(t, feedback.Recorded)
	require.NotNil(t, feedback.Correct)
	assert.True(t, *feedback.Correct)
	assert.Equal(t, "Blocks senders", feedback.CorrectAnswer)

	feedback, err = svc.Answer(context.Background(), view.ID, 1, 2, "True")
	require.NoError(t, err)
	require.NotNil(t, feedback.Correct)
	assert.False(t, *feedback.Correct)
}

func TestSessionServiceAnswerExamModeWithholdsFeedback(t *testing.T) {
	svc := NewSessionService(nil, nil, nil)

	view, err := svc.Start(1, 10, testPreferences(quiz.ModeExam), testQuestions())
	require.NoError(t, err)

	feedback, err := svc.Answer(context.Background(), view.ID, 1, 1, "Blocks senders")
	require.NoError(t, err)
	assert.True(t, feedback.Recorded)
	assert.Nil(t, feedback.Correct)
	assert.Empty(t, feedback.CorrectAnswer)
}

func TestSessionServiceAnswerUnknownQuestion(t *testing.T) {
	svc := NewSessionService(nil, nil, nil)

	view, err := svc.Start(1, 10, testPreferences(quiz.ModePractice), testQuestions())
	require.NoError(t, err)

	_, err = svc.Answer(context.Background(), view.ID, 1, 99, "anything")
	assert.ErrorIs(t, err, quiz.ErrUnknownQuestion)
}

func TestSessionServiceNavigation(t *testing.T) {
	svc := NewSessionService(nil, nil, nil)

	view, err := svc.Start(1, 10, testPreferences(quiz.ModePractice), testQuestions())
	require.NoError(t, err)

	view, err = svc.Next(view.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.CurrentIndex)

	view, err = svc.Previous(view.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentIndex)

	// Clamped at the first question.
	view, err = svc.Previous(view.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, view.CurrentIndex)
}

func TestSessionServiceFinishIsIdempotent(t *testing.T) {
	svc := NewSessionService(nil, nil, nil)

	view, err := svc.Start(1, 10, testPreferences(quiz.ModeExam), testQuestions())
	require.NoError(t, err)

	_, err = svc.Answer(context.Background(), view.ID, 1, 1, "Blocks senders")
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), view.ID, 1, 2, "False")
	require.NoError(t, err)

	first, err := svc.Finish(context.Background(), view.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, first.CorrectAnswers)

	second, err := svc.Finish(context.Background(), view.ID, 1)
	require.NoError(t, err)
	assert.Same(t, first, second)

	// Answers after finish are rejected.
	_, err = svc.Answer(context.Background(), view.ID, 1, 3, "go")
	assert.ErrorIs(t, err, quiz.ErrSessionFinished)

	// But the finished session is still readable.
	done, err := svc.Get(view.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, quiz.StateCompleted, done.State)
	require.NotNil(t, done.Result)
}

func TestSessionServiceAbandon(t *testing.T) {
	svc := NewSessionService(nil, nil, nil)

	view, err := svc.Start(1, 10, testPreferences(quiz.ModePractice), testQuestions())
	require.NoError(t, err)

	require.NoError(t, svc.Abandon(view.ID, 1))

	_, err = svc.Get(view.ID, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// A fresh session can be started afterwards.
	_, err = svc.Start(1, 10, testPreferences(quiz.ModePractice), testQuestions())
	assert.NoError(t, err)
}

func TestSessionServiceRejectsInvalidPreferences(t *testing.T) {
	svc := NewSessionService(nil, nil, nil)

	prefs := testPreferences(quiz.ModePractice)
	prefs.Topic = ""

	_, err := svc.Start(1, 10, prefs, testQuestions())
	require.Error(t, err)

	var cfgErr *quiz.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
