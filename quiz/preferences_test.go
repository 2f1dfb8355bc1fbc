package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequiresTopicAndTypes(t *testing.T) {
	p := DefaultPreferences()
	err := p.Validate()
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "topic", cfgErr.Field)

	p.Topic = "history"
	p.QuestionTypes = nil
	require.ErrorAs(t, p.Validate(), &cfgErr)
	assert.Equal(t, "question_types", cfgErr.Field)
}

func TestValidateRejectsUnknownType(t *testing.T) {
	p := DefaultPreferences()
	p.Topic = "history"
	p.QuestionTypes = []QuestionType{"essay"}

	var cfgErr *ConfigurationError
	require.ErrorAs(t, p.Validate(), &cfgErr)
}

func TestValidateRejectsBothTimerModes(t *testing.T) {
	p := DefaultPreferences()
	p.Topic = "history"
	p.TimeLimitEnabled = true
	p.TimeLimit = 30
	p.TotalTimeLimit = 600

	var cfgErr *ConfigurationError
	require.ErrorAs(t, p.Validate(), &cfgErr)
	assert.Equal(t, "time_limit", cfgErr.Field)
}

func TestValidateRejectsPositiveNegativeMarks(t *testing.T) {
	p := DefaultPreferences()
	p.Topic = "history"
	p.NegativeMarking = true
	p.NegativeMarks = 0.25

	var cfgErr *ConfigurationError
	require.ErrorAs(t, p.Validate(), &cfgErr)
}

func TestAnswerModeDerivedFromMode(t *testing.T) {
	p := Preferences{Mode: ModePractice}
	assert.Equal(t, AnswerImmediate, p.AnswerMode())

	p.Mode = ModeExam
	assert.Equal(t, AnswerAtEnd, p.AnswerMode())
}

func TestToggleQuestionTypeKeepsAtLeastOne(t *testing.T) {
	p := Preferences{QuestionTypes: []QuestionType{MultipleChoice}}

	p.ToggleQuestionType(MultipleChoice)
	assert.Equal(t, []QuestionType{MultipleChoice}, p.QuestionTypes, "removing the last type is a no-op")

	p.ToggleQuestionType(TrueFalse)
	assert.Len(t, p.QuestionTypes, 2)

	p.ToggleQuestionType(MultipleChoice)
	assert.Equal(t, []QuestionType{TrueFalse}, p.QuestionTypes)
}

func TestTimerModeSelection(t *testing.T) {
	assert.Equal(t, TimerOff, Preferences{}.TimerMode())
	assert.Equal(t, TimerOff, Preferences{TimeLimit: 30}.TimerMode(), "limits are ignored unless enabled")
	assert.Equal(t, TimerPerQuestion, Preferences{TimeLimitEnabled: true, TimeLimit: 30}.TimerMode())
	assert.Equal(t, TimerWholeQuiz, Preferences{TimeLimitEnabled: true, TotalTimeLimit: 600}.TimerMode())
}
