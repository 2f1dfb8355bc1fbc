package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Quizzes     []Quiz           `json:"quizzes,omitempty" gorm:"foreignKey:UserID"`
	Preferences *UserPreferences `json:"preferences,omitempty" gorm:"foreignKey:UserID"`
	Results     []QuizResult     `json:"results,omitempty" gorm:"foreignKey:UserID"`
}
