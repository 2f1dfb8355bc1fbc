package routes

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"quizgenius/handlers"
	"quizgenius/middleware"
	"quizgenius/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	quizHandler *handlers.QuizHandler,
	preferencesHandler *handlers.PreferencesHandler,
	sessionHandler *handlers.SessionHandler,
	gameHandler *handlers.GameHandler,
	hub *services.Hub,
	gameService *services.GameService,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// User profile
			protected.GET("/auth/profile", authHandler.GetProfile)

			// Quiz preferences
			preferences := protected.Group("/preferences")
			{
				preferences.GET("", preferencesHandler.GetPreferences)
				preferences.PUT("", preferencesHandler.SavePreferences)
			}

			// Quiz routes
			quizzes := protected.Group("/quizzes")
			{
				quizzes.GET("", quizHandler.GetUserQuizzes)
				quizzes.POST("/generate", quizHandler.GenerateQuiz)
				quizzes.GET("/:id", quizHandler.GetQuizByID)
				quizzes.DELETE("/:id", quizHandler.DeleteQuiz)
			}

			// Solo session routes
			sessions := protected.Group("/sessions")
			{
				sessions.POST("", sessionHandler.StartSession)
				sessions.GET("/:id", sessionHandler.GetSession)
				sessions.POST("/:id/answer", sessionHandler.AnswerQuestion)
				sessions.POST("/:id/next", sessionHandler.NextQuestion)
				sessions.POST("/:id/previous", sessionHandler.PreviousQuestion)
				sessions.POST("/:id/finish", sessionHandler.FinishSession)
				sessions.DELETE("/:id", sessionHandler.AbandonSession)
			}

			// Past results
			protected.GET("/results", sessionHandler.GetResults)

			// Game routes
			games := protected.Group("/games")
			{
				games.POST("", gameHandler.StartGame)
				games.POST("/:pin/start", gameHandler.StartQuiz)
				games.POST("/:pin/next", gameHandler.NextQuestion)
			}
		}

		// Public game routes
		games := api.Group("/games")
		{
			games.POST("/:pin/join", gameHandler.JoinGame)
			games.GET("/:pin", gameHandler.GetGameByPin)
			games.POST("/:pin/answer", gameHandler.SubmitAnswer)
		}
	}

	// WebSocket endpoint for real-time game communication
	router.GET("/ws/:gamePin/:playerID", func(c *gin.Context) {
		gamePin := strings.ToLower(c.Param("gamePin"))
		playerIDStr := c.Param("playerID")
		playerName := c.Query("playerName")

		// Parse player ID (user ID for the host, player ID for players)
		var playerID uint
		if _, err := fmt.Sscanf(playerIDStr, "%d", &playerID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
			return
		}

		// Validate that the player exists in the game before upgrading
		if err := validatePlayerAccess(gameService, gamePin, playerID); err != nil {
			log.Printf("Player access validation failed for game %s, player %d: %v", gamePin, playerID, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Player not found in game"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for game %s, player %s: %v", gamePin, playerIDStr, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}

		if playerName == "" {
			if player, err := gameService.GetPlayerByID(playerID); err == nil {
				playerName = player.Name
			} else {
				playerName = "Unknown Player"
			}
		}

		log.Printf("WebSocket connected for game %s, player %d (%s)", gamePin, playerID, playerName)

		// Register client with hub - this will handle all message processing
		hub.RegisterClient(conn, gamePin, playerID, playerName)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// validatePlayerAccess checks if a player has access to a specific game
func validatePlayerAccess(gameService *services.GameService, gamePin string, playerID uint) error {
	gamePin = strings.ToLower(gamePin)

	game, err := gameService.GetGameByPin(gamePin)
	if err != nil {
		return fmt.Errorf("game not found: %v", err)
	}

	for _, player := range game.Players {
		if player.ID == playerID {
			return nil
		}
	}

	// Not a player: this might be the host (quiz creator) connecting
	if game.Quiz.UserID == playerID {
		return nil
	}

	return fmt.Errorf("player %d not found in game %s", playerID, gamePin)
}
