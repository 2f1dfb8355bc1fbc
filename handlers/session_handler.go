package handlers

import (
	"errors"
	"net/http"

	"quizgenius/quiz"
	"quizgenius/services"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService     *services.SessionService
	quizService        *services.QuizService
	preferencesService *services.PreferencesService
}

func NewSessionHandler(
	sessionService *services.SessionService,
	quizService *services.QuizService,
	preferencesService *services.PreferencesService,
) *SessionHandler {
	return &SessionHandler{
		sessionService:     sessionService,
		quizService:        quizService,
		preferencesService: preferencesService,
	}
}

type StartSessionRequest struct {
	QuizID uint `json:"quiz_id" binding:"required"`
	// Preferences override the user's saved ones for this attempt.
	Preferences *quiz.Preferences `json:"preferences,omitempty"`
}

type AnswerRequest struct {
	QuestionID int    `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prefs := quiz.Preferences{}
	if req.Preferences != nil {
		prefs = *req.Preferences
	} else {
		saved, err := h.preferencesService.Load(userID.(uint))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		prefs = saved
	}

	questions, err := h.quizService.EngineQuestions(req.QuizID, userID.(uint))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
		return
	}
	if prefs.Topic == "" {
		// Sessions started from a stored quiz inherit its topic.
		if q, err := h.quizService.GetQuizByID(req.QuizID, userID.(uint)); err == nil {
			prefs.Topic = q.Topic
		}
	}

	view, err := h.sessionService.Start(userID.(uint), req.QuizID, prefs, questions)
	if err != nil {
		var cfgErr *quiz.ConfigurationError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": cfgErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	view, err := h.sessionService.Get(sessionID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) AnswerQuestion(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feedback, err := h.sessionService.Answer(c.Request.Context(), sessionID, userID, req.QuestionID, req.Answer)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, feedback)
}

func (h *SessionHandler) NextQuestion(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	view, err := h.sessionService.Next(sessionID, userID)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) PreviousQuestion(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	view, err := h.sessionService.Previous(sessionID, userID)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) FinishSession(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Finish(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) AbandonSession(c *gin.Context) {
	userID, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	if err := h.sessionService.Abandon(sessionID, userID); err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session abandoned"})
}

func (h *SessionHandler) GetResults(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	results, err := h.sessionService.Results(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *SessionHandler) sessionParams(c *gin.Context) (uint, string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, "", false
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID required"})
		return 0, "", false
	}

	return userID.(uint), sessionID, true
}

func (h *SessionHandler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, quiz.ErrSessionFinished):
		c.JSON(http.StatusConflict, gin.H{"error": "Session already finished"})
	case errors.Is(err, quiz.ErrUnknownQuestion):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question not in session"})
	case errors.Is(err, quiz.ErrSessionEmpty):
		c.JSON(http.StatusConflict, gin.H{"error": "No active session"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
