package models

import (
	"time"

	"gorm.io/gorm"

	"quizgenius/quiz"
)

// Question is the persisted form of a generated quiz item. List-valued
// fields are stored as JSON columns; the engine's comma-free Answer types
// are reconstructed from them on load.
type Question struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	QuizID          uint           `json:"quiz_id" gorm:"not null"`
	Position        int            `json:"position" gorm:"not null"`
	Text            string         `json:"text" gorm:"not null"`
	Type            string         `json:"type" gorm:"not null"`
	Options         []string       `json:"options,omitempty" gorm:"serializer:json"`
	CorrectAnswer   string         `json:"correct_answer,omitempty"`
	CorrectOptions  []string       `json:"correct_options,omitempty" gorm:"serializer:json"`
	CorrectSequence []string       `json:"correct_sequence,omitempty" gorm:"serializer:json"`
	Sequence        []string       `json:"sequence,omitempty" gorm:"serializer:json"`
	Difficulty      string         `json:"difficulty"`
	Explanation     string         `json:"explanation,omitempty"`
	Keywords        []string       `json:"keywords,omitempty" gorm:"serializer:json"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Quiz Quiz `json:"quiz,omitempty"`
}

// ToEngine converts the row into the engine's question type, keyed by its
// 1-based position within the quiz.
func (q *Question) ToEngine() quiz.Question {
	return quiz.Question{
		ID:              q.Position,
		Text:            q.Text,
		Type:            quiz.QuestionType(q.Type),
		Options:         q.Options,
		CorrectAnswer:   q.CorrectAnswer,
		CorrectOptions:  q.CorrectOptions,
		CorrectSequence: q.CorrectSequence,
		Sequence:        q.Sequence,
		Difficulty:      quiz.Difficulty(q.Difficulty),
		Explanation:     q.Explanation,
		Keywords:        q.Keywords,
	}
}

// FromEngineQuestion builds a row for a freshly generated question.
func FromEngineQuestion(quizID uint, q quiz.Question) Question {
	return Question{
		QuizID:          quizID,
		Position:        q.ID,
		Text:            q.Text,
		Type:            string(q.Type),
		Options:         q.Options,
		CorrectAnswer:   q.CorrectAnswer,
		CorrectOptions:  q.CorrectOptions,
		CorrectSequence: q.CorrectSequence,
		Sequence:        q.Sequence,
		Difficulty:      string(q.Difficulty),
		Explanation:     q.Explanation,
		Keywords:        q.Keywords,
	}
}

// Sanitized strips every answer-revealing field for delivery to an active
// session or game.
func (q Question) Sanitized() Question {
	q.CorrectAnswer = ""
	q.CorrectOptions = nil
	q.CorrectSequence = nil
	q.Explanation = ""
	q.Keywords = nil
	return q
}
