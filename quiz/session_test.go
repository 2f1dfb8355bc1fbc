package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrefs() Preferences {
	return Preferences{
		Topic:         "biology",
		QuestionCount: 4,
		QuestionTypes: []QuestionType{MultipleChoice},
		Language:      "English",
		Mode:          ModePractice,
	}
}

func newTestSession(t *testing.T, prefs Preferences, opts ...SessionOption) *Session {
	t.Helper()
	s, err := NewSession(prefs, fourChoiceQuestions(), opts...)
	require.NoError(t, err)
	return s
}

func TestNewSessionRejectsInvalidPreferences(t *testing.T) {
	_, err := NewSession(Preferences{}, fourChoiceQuestions())
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewSessionRejectsEmptyQuestionList(t *testing.T) {
	_, err := NewSession(testPrefs(), nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestNavigationClampsAtBounds(t *testing.T) {
	s := newTestSession(t, testPrefs())

	assert.Equal(t, 0, s.Previous(), "previous at the first question is a no-op")

	assert.Equal(t, 1, s.Next())
	assert.Equal(t, 2, s.Next())
	assert.Equal(t, 3, s.Next())
	assert.Equal(t, 3, s.Next(), "next at the last question is a no-op")
}

func TestAnswerUpsertsAndValidatesQuestionID(t *testing.T) {
	s := newTestSession(t, testPrefs())

	require.NoError(t, s.Answer(1, Single("A")))
	require.NoError(t, s.Answer(1, Single("B")), "answers can be replaced")

	got, ok := s.AnswerFor(1)
	require.True(t, ok)
	assert.Equal(t, "B", got.Encode())

	assert.ErrorIs(t, s.Answer(99, Single("A")), ErrUnknownQuestion)
}

func TestFinishIsIdempotent(t *testing.T) {
	s := newTestSession(t, testPrefs())
	require.NoError(t, s.Answer(1, Single("A")))

	first, err := s.Finish(context.Background())
	require.NoError(t, err)

	second, err := s.Finish(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second, "a repeated finish returns the original result")
	assert.Equal(t, StateCompleted, s.State())
}

func TestFinishFromAnyPosition(t *testing.T) {
	s := newTestSession(t, testPrefs())
	require.NoError(t, s.Answer(1, Single("A")))
	s.Next()

	result, err := s.Finish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 4, result.TotalQuestions, "unanswered questions still count in the total")
}

func TestAnswerAfterFinishIsRejected(t *testing.T) {
	s := newTestSession(t, testPrefs())
	_, err := s.Finish(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Answer(1, Single("A")), ErrSessionFinished)
	assert.Equal(t, 0, s.Next(), "navigation after finish is a no-op")
}

func TestResetReturnsToEmpty(t *testing.T) {
	s := newTestSession(t, testPrefs())
	require.NoError(t, s.Answer(1, Single("A")))

	s.Reset()

	assert.Equal(t, StateEmpty, s.State())
	assert.ErrorIs(t, s.Answer(1, Single("A")), ErrSessionEmpty)
	_, err := s.Finish(context.Background())
	assert.ErrorIs(t, err, ErrSessionEmpty)
}

func TestFinishCallbackFiresOnce(t *testing.T) {
	calls := 0
	s := newTestSession(t, testPrefs(), WithFinishFunc(func(*Result) { calls++ }))

	_, err := s.Finish(context.Background())
	require.NoError(t, err)
	_, err = s.Finish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func perQuestionPrefs(limit int) Preferences {
	p := testPrefs()
	p.TimeLimitEnabled = true
	p.TimeLimit = limit
	return p
}

func wholeQuizPrefs(limit int) Preferences {
	p := testPrefs()
	p.TimeLimitEnabled = true
	p.TotalTimeLimit = limit
	return p
}

func TestTickDecrementsWithoutGoingNegative(t *testing.T) {
	s := newTestSession(t, wholeQuizPrefs(2))

	assert.Equal(t, 2, s.TimeLeft())
	s.tick()
	assert.Equal(t, 1, s.TimeLeft())
	s.tick()
	assert.Equal(t, 0, s.TimeLeft())
	assert.Equal(t, StateCompleted, s.State(), "whole-quiz expiry finishes immediately")
}

func TestPerQuestionExpiryAutoAdvances(t *testing.T) {
	var advancedTo []int
	s := newTestSession(t, perQuestionPrefs(1), WithAutoAdvanceFunc(func(i int) {
		advancedTo = append(advancedTo, i)
	}))

	s.tick()

	_, index, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, index, "expiry records the (possibly empty) answer and advances")
	assert.Equal(t, []int{1}, advancedTo)
	assert.Equal(t, 1, s.TimeLeft(), "timer restarts at the configured limit")
	assert.Equal(t, StateInProgress, s.State())
}

func TestPerQuestionExpiryOnLastQuestionFinishes(t *testing.T) {
	s := newTestSession(t, perQuestionPrefs(1))
	s.Next()
	s.Next()
	s.Next()

	s.tick()

	assert.Equal(t, StateCompleted, s.State(), "expiry at the last question finishes instead of advancing")
	require.NotNil(t, s.Result())
	assert.Equal(t, 4, s.Result().TotalQuestions)
}

func TestNavigationRestartsPerQuestionTimer(t *testing.T) {
	s := newTestSession(t, perQuestionPrefs(10))

	s.tick()
	s.tick()
	assert.Equal(t, 8, s.TimeLeft())

	s.Next()
	assert.Equal(t, 10, s.TimeLeft(), "changing questions restarts the countdown")
}

func TestNavigationKeepsWholeQuizTimerRunning(t *testing.T) {
	s := newTestSession(t, wholeQuizPrefs(10))

	s.tick()
	s.Next()
	s.Previous()
	assert.Equal(t, 9, s.TimeLeft(), "the whole-quiz countdown is monotonic across navigation")
}

func TestWholeQuizExpiryFinishesFromAnyQuestion(t *testing.T) {
	s := newTestSession(t, wholeQuizPrefs(1))
	s.Next()
	require.NoError(t, s.Answer(1, Single("A")))

	s.tick()

	require.NotNil(t, s.Result())
	assert.Equal(t, 1, s.Result().CorrectAnswers)
}

func TestTimerExpiryRacingManualFinish(t *testing.T) {
	s := newTestSession(t, wholeQuizPrefs(1))

	manual, err := s.Finish(context.Background())
	require.NoError(t, err)

	s.tick() // late expiry after a manual finish must be a no-op

	assert.Same(t, manual, s.Result())
}

func TestStartClockDrivesSessionToCompletion(t *testing.T) {
	done := make(chan *Result, 1)
	s := newTestSession(t, wholeQuizPrefs(2),
		withTickInterval(5*time.Millisecond),
		WithFinishFunc(func(r *Result) { done <- r }),
	)

	s.StartClock()

	select {
	case r := <-done:
		assert.Equal(t, 4, r.TotalQuestions)
	case <-time.After(2 * time.Second):
		t.Fatal("clock never finished the session")
	}
}

func TestResetCancelsRunningClock(t *testing.T) {
	s := newTestSession(t, wholeQuizPrefs(60), withTickInterval(time.Millisecond))
	s.StartClock()

	s.Reset()

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, StateEmpty, s.State())
	assert.Nil(t, s.Result())
}

func TestQuestionsAndPreferencesAreSafeAgainstConcurrentReset(t *testing.T) {
	s := newTestSession(t, testPrefs())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			_ = s.Questions()
			_ = s.Preferences()
		}
	}()

	for i := 0; i < 1000; i++ {
		s.Reset()
	}
	<-done

	assert.Empty(t, s.Questions())
}

func TestQuestionsReturnsACopy(t *testing.T) {
	s := newTestSession(t, testPrefs())

	questions := s.Questions()
	s.Reset()

	assert.Len(t, questions, 4, "a caller's copy survives a reset")
}

func TestSnapshotReflectsState(t *testing.T) {
	s := newTestSession(t, perQuestionPrefs(30))
	require.NoError(t, s.Answer(1, Single("A")))
	s.Next()

	snap := s.Snapshot()

	assert.Equal(t, StateInProgress, snap.State)
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Equal(t, 4, snap.TotalQuestions)
	require.NotNil(t, snap.TimeLeft)
	assert.Equal(t, 30, *snap.TimeLeft)
	assert.Equal(t, map[int]string{1: "A"}, snap.Answers)
}
