package quiz

import "strings"

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	MultiSelect    QuestionType = "multi-select"
	Sequence       QuestionType = "sequence"
	FillBlank      QuestionType = "fill-blank"
	ShortAnswer    QuestionType = "short-answer"
	CaseStudy      QuestionType = "case-study"
	Situation      QuestionType = "situation"
)

// AllQuestionTypes lists every supported type in display order.
var AllQuestionTypes = []QuestionType{
	MultipleChoice, TrueFalse, MultiSelect, Sequence,
	FillBlank, ShortAnswer, CaseStudy, Situation,
}

func (t QuestionType) Valid() bool {
	for _, known := range AllQuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// FreeText reports whether answers of this type are open-ended and may be
// graded by an external evaluator instead of exact matching.
func (t QuestionType) FreeText() bool {
	return t == FillBlank || t == ShortAnswer
}

type Difficulty string

const (
	Basic        Difficulty = "basic"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Question is a single quiz item. Questions are created once by the
// generation provider and never mutated by the engine.
type Question struct {
	ID              int          `json:"id"`
	Text            string       `json:"text"`
	Type            QuestionType `json:"type"`
	Options         []string     `json:"options,omitempty"`
	CorrectAnswer   string       `json:"correct_answer,omitempty"`
	CorrectOptions  []string     `json:"correct_options,omitempty"`
	CorrectSequence []string     `json:"correct_sequence,omitempty"`
	Sequence        []string     `json:"sequence,omitempty"`
	Difficulty      Difficulty   `json:"difficulty,omitempty"`
	Explanation     string       `json:"explanation,omitempty"`
	Keywords        []string     `json:"keywords,omitempty"`
}

type answerKind int

const (
	answerNone answerKind = iota
	answerSingle
	answerMultiSet
	answerOrdered
)

// Answer is a tagged union over the three answer shapes: a single value for
// choice/text questions, an unordered set for multi-select, and an ordered
// list for sequence questions.
type Answer struct {
	kind   answerKind
	single string
	items  []string
}

func Single(value string) Answer {
	return Answer{kind: answerSingle, single: value}
}

func MultiSet(items ...string) Answer {
	return Answer{kind: answerMultiSet, items: items}
}

func Ordered(items ...string) Answer {
	return Answer{kind: answerOrdered, items: items}
}

// ParseAnswer decodes the wire form of an answer for the given question type.
// Multi-select and sequence answers arrive comma-joined.
func ParseAnswer(t QuestionType, raw string) Answer {
	switch t {
	case MultiSelect:
		return MultiSet(splitAnswer(raw)...)
	case Sequence:
		return Ordered(splitAnswer(raw)...)
	default:
		return Single(raw)
	}
}

func splitAnswer(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// Encode renders the answer back to its wire form.
func (a Answer) Encode() string {
	switch a.kind {
	case answerSingle:
		return a.single
	case answerMultiSet, answerOrdered:
		return strings.Join(a.items, ",")
	default:
		return ""
	}
}

// IsEmpty reports whether the answer carries no attempt. Empty answers are
// never correct and never penalized under negative marking.
func (a Answer) IsEmpty() bool {
	switch a.kind {
	case answerSingle:
		return strings.TrimSpace(a.single) == ""
	case answerMultiSet, answerOrdered:
		return len(a.items) == 0
	default:
		return true
	}
}

// Evaluate applies the correctness rule for the question's type. It is pure
// and covers every type except the evaluator-assisted free-text path, which
// the scorer layers on top.
func (q *Question) Evaluate(a Answer) bool {
	if a.IsEmpty() {
		return false
	}
	switch q.Type {
	case MultiSelect:
		if a.kind != answerMultiSet || len(q.CorrectOptions) == 0 {
			return false
		}
		return equalSets(a.items, q.CorrectOptions)
	case Sequence:
		if a.kind != answerOrdered || len(q.CorrectSequence) == 0 {
			return false
		}
		return equalOrdered(a.items, q.CorrectSequence)
	default:
		if a.kind != answerSingle || q.CorrectAnswer == "" {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(a.single), strings.TrimSpace(q.CorrectAnswer))
	}
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[normalizeOption(s)]++
	}
	for _, s := range b {
		seen[normalizeOption(s)]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}

func equalOrdered(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if normalizeOption(a[i]) != normalizeOption(b[i]) {
			return false
		}
	}
	return true
}

func normalizeOption(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
