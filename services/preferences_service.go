package services

import (
	"errors"

	"quizgenius/models"
	"quizgenius/quiz"

	"gorm.io/gorm"
)

type PreferencesService struct {
	db *gorm.DB
}

func NewPreferencesService(db *gorm.DB) *PreferencesService {
	return &PreferencesService{db: db}
}

// Load returns the user's saved preferences, or the defaults when none have
// been saved yet.
func (s *PreferencesService) Load(userID uint) (quiz.Preferences, error) {
	var row models.UserPreferences
	err := s.db.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return quiz.DefaultPreferences(), nil
	}
	if err != nil {
		return quiz.Preferences{}, err
	}
	return row.ToEngine(), nil
}

// Save validates and upserts the user's preferences.
func (s *PreferencesService) Save(userID uint, prefs quiz.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}

	var row models.UserPreferences
	err := s.db.Where("user_id = ?", userID).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row.UserID = userID
	row.ApplyEngine(prefs)
	return s.db.Save(&row).Error
}
