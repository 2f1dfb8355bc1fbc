package models

import (
	"time"

	"gorm.io/gorm"

	"quizgenius/quiz"
)

// QuizResult is the stored summary of a finished session, kept for the
// user's history screen. The full per-question review lives in the Review
// JSON column.
type QuizResult struct {
	ID             uint                  `json:"id" gorm:"primaryKey"`
	UserID         uint                  `json:"user_id" gorm:"not null;index"`
	QuizID         uint                  `json:"quiz_id" gorm:"not null"`
	Topic          string                `json:"topic"`
	Mode           string                `json:"mode"`
	TotalQuestions int                   `json:"total_questions" gorm:"not null"`
	CorrectAnswers int                   `json:"correct_answers" gorm:"not null"`
	RawScore       float64               `json:"raw_score" gorm:"not null"`
	Percentage     float64               `json:"percentage" gorm:"not null"`
	Message        string                `json:"message"`
	Review         []quiz.ReviewQuestion `json:"review,omitempty" gorm:"serializer:json"`
	CompletedAt    time.Time             `json:"completed_at"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	DeletedAt      gorm.DeletedAt        `json:"-" gorm:"index"`

	// Relationships
	User User `json:"user,omitempty"`
	Quiz Quiz `json:"quiz,omitempty"`
}

// FromEngineResult builds the history row for a finished session.
func FromEngineResult(userID, quizID uint, prefs quiz.Preferences, r *quiz.Result) QuizResult {
	return QuizResult{
		UserID:         userID,
		QuizID:         quizID,
		Topic:          prefs.Topic,
		Mode:           string(prefs.Mode),
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		RawScore:       r.RawScore,
		Percentage:     r.Percentage,
		Message:        r.Message,
		Review:         r.Questions,
		CompletedAt:    r.CompletedAt,
	}
}
