package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateMultipleChoice(t *testing.T) {
	q := Question{ID: 1, Type: MultipleChoice, Options: []string{"Paris", "London"}, CorrectAnswer: "Paris"}

	assert.True(t, q.Evaluate(Single("Paris")))
	assert.True(t, q.Evaluate(Single("paris")), "comparison is case-insensitive")
	assert.False(t, q.Evaluate(Single("London")))
	assert.False(t, q.Evaluate(Single("")), "empty answers are never correct")
}

func TestEvaluateTrueFalse(t *testing.T) {
	q := Question{ID: 2, Type: TrueFalse, CorrectAnswer: "True"}

	assert.True(t, q.Evaluate(Single("true")))
	assert.False(t, q.Evaluate(Single("False")))
}

func TestEvaluateMultiSelectSetEquality(t *testing.T) {
	q := Question{
		ID:             3,
		Type:           MultiSelect,
		Options:        []string{"A", "B", "C", "D"},
		CorrectOptions: []string{"A", "C"},
	}

	assert.True(t, q.Evaluate(MultiSet("C", "A")), "order must not matter")
	assert.False(t, q.Evaluate(MultiSet("A")), "subset is not enough")
	assert.False(t, q.Evaluate(MultiSet("A", "C", "D")), "extra picks are wrong")
	assert.False(t, q.Evaluate(Single("A,C")), "wrong answer shape is never correct")
}

func TestEvaluateSequenceExactOrder(t *testing.T) {
	q := Question{
		ID:              4,
		Type:            Sequence,
		CorrectSequence: []string{"X", "Y", "Z"},
	}

	assert.True(t, q.Evaluate(Ordered("X", "Y", "Z")))
	assert.False(t, q.Evaluate(Ordered("X", "Z", "Y")))
	assert.False(t, q.Evaluate(Ordered("X", "Y")))
}

func TestEvaluateFreeTextFallsBackToExactMatch(t *testing.T) {
	q := Question{ID: 5, Type: ShortAnswer, CorrectAnswer: "Photosynthesis"}

	assert.True(t, q.Evaluate(Single("  photosynthesis ")))
	assert.False(t, q.Evaluate(Single("respiration")))
}

func TestEvaluateMissingCorrectAnswer(t *testing.T) {
	q := Question{ID: 6, Type: MultipleChoice}
	assert.False(t, q.Evaluate(Single("anything")))

	multi := Question{ID: 7, Type: MultiSelect}
	assert.False(t, multi.Evaluate(MultiSet("A")))
}

func TestParseAnswerByType(t *testing.T) {
	multi := ParseAnswer(MultiSelect, "A, C")
	assert.Equal(t, "A,C", multi.Encode())

	seq := ParseAnswer(Sequence, "X,Y,Z")
	assert.Equal(t, "X,Y,Z", seq.Encode())

	single := ParseAnswer(MultipleChoice, "Paris")
	assert.Equal(t, "Paris", single.Encode())

	assert.True(t, ParseAnswer(MultiSelect, "").IsEmpty())
	assert.True(t, ParseAnswer(ShortAnswer, "   ").IsEmpty())
}
