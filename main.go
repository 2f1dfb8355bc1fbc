package main

import (
	"context"
	"log"

	"quizgenius/config"
	"quizgenius/handlers"
	"quizgenius/middleware"
	"quizgenius/models"
	"quizgenius/routes"
	"quizgenius/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.UserPreferences{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizResult{},
		&models.Game{},
		&models.Player{},
		&models.GameAnswer{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Gemini backs both question generation and free-text grading
	gemini, err := services.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	preferencesService := services.NewPreferencesService(db)
	quizService := services.NewQuizService(db, gemini)
	sessionService := services.NewSessionService(db, redisClient, gemini)
	gameService := services.NewGameService(db, redisClient)

	// Initialize WebSocket hub
	hub := services.NewHub(gameService)
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	quizHandler := handlers.NewQuizHandler(quizService, preferencesService)
	preferencesHandler := handlers.NewPreferencesHandler(preferencesService)
	sessionHandler := handlers.NewSessionHandler(sessionService, quizService, preferencesService)
	gameHandler := handlers.NewGameHandler(gameService, hub)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, quizHandler, preferencesHandler, sessionHandler, gameHandler, hub, gameService, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
