package models

import (
	"time"

	"gorm.io/gorm"

	"quizgenius/quiz"
)

// UserPreferences is the persisted quiz configuration for a user, one row
// per user. A missing row means "use defaults".
type UserPreferences struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	UserID           uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	Topic            string         `json:"topic"`
	Subtopic         string         `json:"subtopic"`
	Difficulty       string         `json:"difficulty" gorm:"not null;default:'intermediate'"`
	QuestionCount    int            `json:"question_count" gorm:"not null;default:10"`
	QuestionTypes    []string       `json:"question_types" gorm:"serializer:json"`
	Language         string         `json:"language" gorm:"not null;default:'English'"`
	Mode             string         `json:"mode" gorm:"not null;default:'practice'"`
	TimeLimitEnabled bool           `json:"time_limit_enabled" gorm:"not null;default:false"`
	TimeLimit        int            `json:"time_limit"`
	TotalTimeLimit   int            `json:"total_time_limit"`
	NegativeMarking  bool           `json:"negative_marking" gorm:"not null;default:false"`
	NegativeMarks    float64        `json:"negative_marks"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// ToEngine converts the row into engine preferences.
func (p *UserPreferences) ToEngine() quiz.Preferences {
	types := make([]quiz.QuestionType, 0, len(p.QuestionTypes))
	for _, t := range p.QuestionTypes {
		types = append(types, quiz.QuestionType(t))
	}
	return quiz.Preferences{
		Topic:            p.Topic,
		Subtopic:         p.Subtopic,
		Difficulty:       quiz.Difficulty(p.Difficulty),
		QuestionCount:    p.QuestionCount,
		QuestionTypes:    types,
		Language:         p.Language,
		Mode:             quiz.Mode(p.Mode),
		TimeLimitEnabled: p.TimeLimitEnabled,
		TimeLimit:        p.TimeLimit,
		TotalTimeLimit:   p.TotalTimeLimit,
		NegativeMarking:  p.NegativeMarking,
		NegativeMarks:    p.NegativeMarks,
	}
}

// ApplyEngine copies engine preferences into the row for saving.
func (p *UserPreferences) ApplyEngine(prefs quiz.Preferences) {
	types := make([]string, 0, len(prefs.QuestionTypes))
	for _, t := range prefs.QuestionTypes {
		types = append(types, string(t))
	}
	p.Topic = prefs.Topic
	p.Subtopic = prefs.Subtopic
	p.Difficulty = string(prefs.Difficulty)
	p.QuestionCount = prefs.QuestionCount
	p.QuestionTypes = types
	p.Language = prefs.Language
	p.Mode = string(prefs.Mode)
	p.TimeLimitEnabled = prefs.TimeLimitEnabled
	p.TimeLimit = prefs.TimeLimit
	p.TotalTimeLimit = prefs.TotalTimeLimit
	p.NegativeMarking = prefs.NegativeMarking
	p.NegativeMarks = prefs.NegativeMarks
}
