package services

import (
	"context"
	"strings"

	"quizgenius/models"
	"quizgenius/quiz"

	"gorm.io/gorm"
)

// QuizProvider is the generation collaborator the quiz service depends on.
// GeminiClient is the production implementation.
type QuizProvider interface {
	quiz.QuestionProvider
	GenerateTitled(ctx context.Context, prefs quiz.Preferences) (string, []quiz.Question, error)
}

type QuizService struct {
	db       *gorm.DB
	provider QuizProvider
}

func NewQuizService(db *gorm.DB, provider QuizProvider) *QuizService {
	return &QuizService{db: db, provider: provider}
}

// Generate validates the preferences, asks the provider for questions, and
// persists the quiz with its questions in one transaction.
func (s *QuizService) Generate(ctx context.Context, userID uint, prefs quiz.Preferences) (*models.Quiz, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}

	title, questions, err := s.provider.GenerateTitled(ctx, prefs)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = defaultTitle(prefs)
	}

	// Start transaction
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	q := models.Quiz{
		Title:      title,
		Topic:      prefs.Topic,
		Subtopic:   prefs.Subtopic,
		Difficulty: string(prefs.Difficulty),
		Language:   prefs.Language,
		UserID:     userID,
	}

	if err := tx.Create(&q).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, eq := range questions {
		row := models.FromEngineQuestion(q.ID, eq)
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return s.GetQuizByID(q.ID, userID)
}

func (s *QuizService) GetUserQuizzes(userID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.Where("user_id = ?", userID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position")
		}).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (s *QuizService) GetQuizByID(quizID uint, userID uint) (*models.Quiz, error) {
	var q models.Quiz
	err := s.db.Where("id = ? AND user_id = ?", quizID, userID).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position")
		}).
		First(&q).Error
	return &q, err
}

// GetSanitizedQuiz returns the quiz with answer-revealing fields stripped,
// for delivery to a client mid-session.
func (s *QuizService) GetSanitizedQuiz(quizID uint, userID uint) (*models.Quiz, error) {
	q, err := s.GetQuizByID(quizID, userID)
	if err != nil {
		return nil, err
	}
	for i := range q.Questions {
		q.Questions[i] = q.Questions[i].Sanitized()
	}
	return q, nil
}

// EngineQuestions loads the quiz's questions in engine form, ordered by
// position.
func (s *QuizService) EngineQuestions(quizID uint, userID uint) ([]quiz.Question, error) {
	q, err := s.GetQuizByID(quizID, userID)
	if err != nil {
		return nil, err
	}
	questions := make([]quiz.Question, 0, len(q.Questions))
	for i := range q.Questions {
		questions = append(questions, q.Questions[i].ToEngine())
	}
	return questions, nil
}

func (s *QuizService) DeleteQuiz(quizID uint, userID uint) error {
	// Check if quiz exists and belongs to user
	if _, err := s.GetQuizByID(quizID, userID); err != nil {
		return err
	}

	return s.db.Delete(&models.Quiz{}, quizID).Error
}

func defaultTitle(prefs quiz.Preferences) string {
	topic := capitalize(prefs.Topic)
	if prefs.Subtopic != "" {
		return topic + ": " + prefs.Subtopic
	}
	return topic + " Quiz"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
