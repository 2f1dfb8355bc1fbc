package models

import (
	"time"

	"gorm.io/gorm"
)

// GameAnswer is one player's submission for one question in a live game.
// Answer carries the wire form of the submission (a single value, or the
// comma-joined encoding for multi-select and sequence questions).
type GameAnswer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	GameID     uint           `json:"game_id" gorm:"not null"`
	PlayerID   uint           `json:"player_id" gorm:"not null"`
	QuestionID uint           `json:"question_id" gorm:"not null"`
	Answer     string         `json:"answer" gorm:"not null"`
	IsCorrect  bool           `json:"is_correct" gorm:"not null"`
	TimeSpent  int            `json:"time_spent" gorm:"not null"` // seconds
	Points     int            `json:"points" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Game     Game     `json:"game,omitempty"`
	Player   Player   `json:"player,omitempty"`
	Question Question `json:"question,omitempty"`
}
