package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"quizgenius/quiz"
	"quizgenius/services"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizService        *services.QuizService
	preferencesService *services.PreferencesService
}

func NewQuizHandler(quizService *services.QuizService, preferencesService *services.PreferencesService) *QuizHandler {
	return &QuizHandler{
		quizService:        quizService,
		preferencesService: preferencesService,
	}
}

// GenerateQuiz creates a quiz from the preferences in the request body, or
// from the user's saved preferences when the body is empty.
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var prefs quiz.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil || prefs.Topic == "" {
		saved, loadErr := h.preferencesService.Load(userID.(uint))
		if loadErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": loadErr.Error()})
			return
		}
		prefs = saved
	}

	generated, err := h.quizService.Generate(c.Request.Context(), userID.(uint), prefs)
	if err != nil {
		var cfgErr *quiz.ConfigurationError
		var genErr *quiz.GenerationError
		switch {
		case errors.As(err, &cfgErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": cfgErr.Error()})
		case errors.As(err, &genErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": genErr.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	// Strip answers before handing the quiz to the client.
	for i := range generated.Questions {
		generated.Questions[i] = generated.Questions[i].Sanitized()
	}

	c.JSON(http.StatusCreated, generated)
}

func (h *QuizHandler) GetUserQuizzes(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	quizzes, err := h.quizService.GetUserQuizzes(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

func (h *QuizHandler) GetQuizByID(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	quizID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz ID"})
		return
	}

	q, err := h.quizService.GetSanitizedQuiz(uint(quizID), userID.(uint))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}

	c.JSON(http.StatusOK, q)
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	quizID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz ID"})
		return
	}

	if err := h.quizService.DeleteQuiz(uint(quizID), userID.(uint)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}
