package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"quizgenius/models"
	"quizgenius/quiz"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Multiplayer scoring constants: a flat base for a correct answer, a linear
// time bonus, and a streak bonus of 5% of base per consecutive correct
// answer capped at 50%.
const (
	basePoints         = 100
	maxTimeBonus       = 50
	streakBonusPercent = 0.05
	maxStreakBonus     = 0.50
)

type GameService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewGameService(db *gorm.DB, redis *redis.Client) *GameService {
	return &GameService{
		db:    db,
		redis: redis,
	}
}

type StartGameRequest struct {
	QuizID       uint `json:"quiz_id" binding:"required"`
	QuestionTime int  `json:"question_time" binding:"omitempty,min=5,max=300"`
}

type JoinGameRequest struct {
	Pin  string `json:"pin" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type SubmitAnswerRequest struct {
	PlayerID   uint   `json:"player_id" binding:"required"`
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
	TimeSpent  int    `json:"time_spent"`
}

type GameState struct {
	GameID               uint          `json:"game_id"`
	QuizID               uint          `json:"quiz_id"`
	Pin                  string        `json:"pin"`
	Status               string        `json:"status"`
	CurrentQuestion      *GameQuestion `json:"current_question,omitempty"`
	CurrentQuestionIndex int           `json:"current_question_index"`
	Players              []GamePlayer  `json:"players"`
	TotalQuestions       int           `json:"total_questions"`
}

// GameQuestion is the sanitized view of a question broadcast while it is
// live; correct answers are withheld until the question ends.
type GameQuestion struct {
	ID        uint     `json:"id"`
	Text      string   `json:"text"`
	Type      string   `json:"type"`
	TimeLimit int      `json:"time_limit"`
	Options   []string `json:"options,omitempty"`
	Sequence  []string `json:"sequence,omitempty"`
	TimeLeft  int      `json:"time_left"`
}

type GamePlayer struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Streak int    `json:"streak"`
}

func (s *GameService) StartGame(userID uint, req *StartGameRequest) (*models.Game, error) {
	// Check if quiz exists and belongs to user
	var q models.Quiz
	if err := s.db.Where("id = ? AND user_id = ?", req.QuizID, userID).
		Preload("Questions").
		First(&q).Error; err != nil {
		return nil, errors.New("quiz not found")
	}

	questionTime := req.QuestionTime
	if questionTime == 0 {
		questionTime = 30
	}

	game := models.Game{
		QuizID:       req.QuizID,
		Pin:          s.generatePin(),
		Status:       "waiting",
		QuestionTime: questionTime,
	}

	if err := s.db.Create(&game).Error; err != nil {
		return nil, err
	}

	gameState := &GameState{
		GameID:               game.ID,
		QuizID:               game.QuizID,
		Pin:                  game.Pin,
		Status:               game.Status,
		CurrentQuestionIndex: -1, // -1 means no question active yet
		Players:              []GamePlayer{},
		TotalQuestions:       len(q.Questions),
	}

	normalizedPin := strings.ToLower(game.Pin)
	if err := s.storeGameState(normalizedPin, gameState); err != nil {
		log.Printf("Failed to store game state in Redis: %v", err)
	}

	return &game, nil
}

func (s *GameService) StartQuiz(gamePin string, userID uint) (*models.Game, error) {
	normalizedPin := strings.ToLower(gamePin)

	var game models.Game
	if err := s.db.Where("LOWER(pin) = ?", normalizedPin).
		Preload("Quiz").
		Preload("Quiz.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position")
		}).
		First(&game).Error; err != nil {
		return nil, errors.New("game not found")
	}

	// Check if user owns the quiz
	var q models.Quiz
	if err := s.db.Where("id = ? AND user_id = ?", game.QuizID, userID).First(&q).Error; err != nil {
		return nil, errors.New("unauthorized to start this game")
	}

	now := time.Now()
	if err := s.db.Model(&game).Updates(map[string]interface{}{"status": "active", "started_at": &now}).Error; err != nil {
		return nil, err
	}

	var players []models.Player
	s.db.Where("game_id = ?", game.ID).Find(&players)

	gameState := s.getGameState(normalizedPin)
	if gameState == nil {
		gameState = &GameState{
			GameID:               game.ID,
			QuizID:               game.QuizID,
			Pin:                  normalizedPin,
			Status:               "active",
			CurrentQuestionIndex: -1, // first question starts separately
			Players:              []GamePlayer{},
			TotalQuestions:       len(game.Quiz.Questions),
		}
	} else {
		gameState.Status = "active"
		gameState.TotalQuestions = len(game.Quiz.Questions)
	}

	gameState.Players = playersToState(players)

	if err := s.storeGameState(normalizedPin, gameState); err != nil {
		log.Printf("Failed to update game state in Redis: %v", err)
		return nil, errors.New("failed to update game state")
	}

	log.Printf("Quiz started for game %s with %d questions", normalizedPin, len(game.Quiz.Questions))
	return &game, nil
}

// StartQuestion makes a question live and launches its countdown.
func (s *GameService) StartQuestion(gamePin string, questionIndex int, hub *Hub) error {
	normalizedPin := strings.ToLower(gamePin)

	var game models.Game
	if err := s.db.Where("LOWER(pin) = ?", normalizedPin).
		Preload("Quiz").
		Preload("Quiz.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position")
		}).
		First(&game).Error; err != nil {
		return errors.New("game not found")
	}

	if questionIndex >= len(game.Quiz.Questions) {
		return errors.New("question index out of range")
	}

	question := game.Quiz.Questions[questionIndex]

	gameState := s.getGameState(normalizedPin)
	if gameState == nil {
		return errors.New("game state not found in Redis")
	}

	gameState.CurrentQuestionIndex = questionIndex
	gameState.CurrentQuestion = liveQuestion(question, game.QuestionTime)

	if err := s.storeGameState(normalizedPin, gameState); err != nil {
		log.Printf("Failed to store game state: %v", err)
		return errors.New("failed to update game state")
	}

	if hub != nil {
		log.Printf("Broadcasting question start to game %s: question %d", normalizedPin, questionIndex)

		hub.BroadcastToGame(normalizedPin, "question_start", gin.H{
			"question_index":  questionIndex,
			"question":        gameState.CurrentQuestion,
			"total_questions": len(game.Quiz.Questions),
		})

		go s.runQuestionTimer(normalizedPin, questionIndex, game.QuestionTime, hub)
	}

	return nil
}

// NextQuestion advances to the next question or ends the game.
func (s *GameService) NextQuestion(gamePin string, hub *Hub) error {
	normalizedPin := strings.ToLower(gamePin)

	gameState := s.getGameState(normalizedPin)
	if gameState == nil {
		log.Printf("Game state not found for pin: %s", normalizedPin)
		return errors.New("game state not found")
	}

	var game models.Game
	if err := s.db.Where("LOWER(pin) = ?", normalizedPin).
		Preload("Quiz").
		Preload("Quiz.Questions").
		First(&game).Error; err != nil {
		log.Printf("Game not found in database for pin: %s", normalizedPin)
		return errors.New("game not found")
	}

	nextQuestionIndex := gameState.CurrentQuestionIndex + 1

	if nextQuestionIndex >= len(game.Quiz.Questions) {
		log.Printf("Game finished for %s", normalizedPin)

		now := time.Now()
		if err := s.db.Model(&game).Updates(map[string]interface{}{"status": "finished", "ended_at": &now}).Error; err != nil {
			return err
		}

		gameState.Status = "finished"
		gameState.CurrentQuestion = nil
		gameState.CurrentQuestionIndex = len(game.Quiz.Questions)

		if err := s.storeGameState(normalizedPin, gameState); err != nil {
			log.Printf("Failed to store final game state: %v", err)
		}

		var players []models.Player
		s.db.Where("game_id = ?", game.ID).Order("score DESC").Find(&players)

		if hub != nil {
			hub.BroadcastToGame(normalizedPin, "game_end", gin.H{
				"message":           "Quiz completed! Here are the final results:",
				"final_leaderboard": playersToState(players),
				"total_questions":   len(game.Quiz.Questions),
			})
		}

		return nil
	}

	return s.StartQuestion(normalizedPin, nextQuestionIndex, hub)
}

// runQuestionTimer counts a live question down and ends it on expiry.
func (s *GameService) runQuestionTimer(gamePin string, questionIndex int, timeLimit int, hub *Hub) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	timeLeft := timeLimit
	normalizedPin := strings.ToLower(gamePin)
	log.Printf("Starting timer for question %d in game %s: %d seconds", questionIndex, normalizedPin, timeLimit)

	for timeLeft > 0 {
		<-ticker.C
		timeLeft--

		gameState := s.getGameState(normalizedPin)
		if gameState == nil || gameState.CurrentQuestionIndex != questionIndex {
			// The host moved on (or the game ended); this countdown is stale.
			log.Printf("Timer for question %d in game %s cancelled", questionIndex, normalizedPin)
			return
		}
		if gameState.CurrentQuestion != nil {
			gameState.CurrentQuestion.TimeLeft = timeLeft
			s.storeGameState(normalizedPin, gameState)
		}

		if hub != nil {
			hub.BroadcastToGame(normalizedPin, "timer_update", gin.H{
				"question_index": questionIndex,
				"time_left":      timeLeft,
			})
		}
	}

	log.Printf("Timer expired for question %d in game %s", questionIndex, normalizedPin)

	if hub != nil {
		s.EndQuestion(normalizedPin, hub, questionIndex)
	}
}

// EndQuestion closes the current question and reveals the correct answer
// with everyone's submissions.
func (s *GameService) EndQuestion(gamePin string, hub *Hub, questionIndex int) error {
	normalizedPin := strings.ToLower(gamePin)

	var game models.Game
	if err := s.db.Where("LOWER(pin) = ?", normalizedPin).
		Preload("Quiz").
		Preload("Quiz.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position")
		}).
		First(&game).Error; err != nil {
		return errors.New("game not found")
	}

	if questionIndex >= len(game.Quiz.Questions) {
		return errors.New("invalid question index")
	}

	question := game.Quiz.Questions[questionIndex]

	var gameAnswers []models.GameAnswer
	if err := s.db.Where("game_id = ? AND question_id = ?", game.ID, question.ID).
		Preload("Player").
		Find(&gameAnswers).Error; err != nil {
		log.Printf("Error fetching answers: %v", err)
	}

	answerResults := []gin.H{}
	for _, answer := range gameAnswers {
		answerResults = append(answerResults, gin.H{
			"player_id":   answer.PlayerID,
			"player_name": answer.Player.Name,
			"answer":      answer.Answer,
			"is_correct":  answer.IsCorrect,
			"points":      answer.Points,
			"time_spent":  answer.TimeSpent,
		})
	}

	if hub != nil {
		hub.BroadcastToGame(normalizedPin, "question_end", gin.H{
			"question_index":  questionIndex,
			"question":        question, // full row, correct answers included
			"correct_answer":  revealedAnswer(question),
			"answers":         answerResults,
			"total_questions": len(game.Quiz.Questions),
		})
	}

	return nil
}

func (s *GameService) JoinGame(req *JoinGameRequest) (*models.Player, error) {
	pin := strings.ToLower(req.Pin)

	var game models.Game
	if err := s.db.Where("LOWER(pin) = ?", pin).First(&game).Error; err != nil {
		return nil, errors.New("game not found")
	}

	if game.Status != "waiting" && game.Status != "active" {
		return nil, fmt.Errorf("game has status '%s' - cannot join", game.Status)
	}

	// Check if player name is already taken in this game
	var existingPlayer models.Player
	if err := s.db.Where("game_id = ? AND name = ?", game.ID, req.Name).First(&existingPlayer).Error; err == nil {
		return nil, errors.New("player name already taken")
	}

	player := models.Player{
		GameID:   game.ID,
		Name:     req.Name,
		Score:    0,
		JoinedAt: time.Now(),
	}

	if err := s.db.Create(&player).Error; err != nil {
		return nil, err
	}

	normalizedPin := strings.ToLower(game.Pin)
	gameState := s.getGameState(normalizedPin)
	if gameState == nil {
		gameState = &GameState{
			GameID:               game.ID,
			QuizID:               game.QuizID,
			Pin:                  normalizedPin,
			Status:               game.Status,
			CurrentQuestionIndex: -1,
			Players:              []GamePlayer{},
		}
	}

	gameState.Players = append(gameState.Players, GamePlayer{
		ID:   player.ID,
		Name: player.Name,
	})
	s.storeGameState(normalizedPin, gameState)

	return &player, nil
}

func (s *GameService) GetGameByPin(pin string) (*models.Game, error) {
	var game models.Game
	err := s.db.Where("LOWER(pin) = ?", strings.ToLower(pin)).
		Preload("Quiz").
		Preload("Quiz.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position")
		}).
		Preload("Players").
		First(&game).Error
	return &game, err
}

func (s *GameService) GetPlayerByID(playerID uint) (*models.Player, error) {
	var player models.Player
	err := s.db.First(&player, playerID).Error
	return &player, err
}

func (s *GameService) SubmitAnswer(gamePin string, playerID uint, req *SubmitAnswerRequest, hub *Hub) error {
	normalizedPin := strings.ToLower(gamePin)

	game, err := s.GetGameByPin(normalizedPin)
	if err != nil {
		return errors.New("game not found")
	}

	if game.Status != "active" {
		return errors.New("game is not active")
	}

	// One submission per player per question
	var existingAnswer models.GameAnswer
	if err := s.db.Where("game_id = ? AND player_id = ? AND question_id = ?",
		game.ID, playerID, req.QuestionID).First(&existingAnswer).Error; err == nil {
		return errors.New("answer already submitted")
	}

	var question models.Question
	if err := s.db.First(&question, req.QuestionID).Error; err != nil {
		return errors.New("question not found")
	}

	var player models.Player
	if err := s.db.First(&player, playerID).Error; err != nil {
		return errors.New("player not found")
	}

	timeSpent := req.TimeSpent
	if timeSpent == 0 {
		timeSpent = game.QuestionTime
	}

	engineQuestion := question.ToEngine()
	isCorrect := engineQuestion.Evaluate(quiz.ParseAnswer(engineQuestion.Type, req.Answer))

	points := calculatePoints(timeSpent, game.QuestionTime, isCorrect, player.Streak)

	gameAnswer := models.GameAnswer{
		GameID:     game.ID,
		PlayerID:   playerID,
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
		IsCorrect:  isCorrect,
		TimeSpent:  timeSpent,
		Points:     points,
	}

	if err := s.db.Create(&gameAnswer).Error; err != nil {
		return err
	}

	newStreak := 0
	if isCorrect {
		newStreak = player.Streak + 1
	}
	if err := s.db.Model(&models.Player{}).Where("id = ?", playerID).
		Updates(map[string]interface{}{
			"score":  gorm.Expr("score + ?", points),
			"streak": newStreak,
		}).Error; err != nil {
		return err
	}

	gameState := s.getGameState(normalizedPin)
	if gameState != nil {
		for i, p := range gameState.Players {
			if p.ID == playerID {
				gameState.Players[i].Score += points
				gameState.Players[i].Streak = newStreak
				break
			}
		}
		s.storeGameState(normalizedPin, gameState)
	}

	var updatedPlayers []models.Player
	s.db.Where("game_id = ?", game.ID).Find(&updatedPlayers)

	// Broadcast the score change without revealing correctness yet
	if hub != nil {
		hub.BroadcastToGame(normalizedPin, "score_update", gin.H{
			"players":          playersToState(updatedPlayers),
			"player_id":        playerID,
			"points_earned":    points,
			"answer_submitted": true,
		})
	}

	return nil
}

// UpdateGameStatus sets the game's status, used when the host disconnects.
func (s *GameService) UpdateGameStatus(gamePin string, status string) error {
	normalizedPin := strings.ToLower(gamePin)

	var game models.Game
	if err := s.db.Where("LOWER(pin) = ?", normalizedPin).First(&game).Error; err != nil {
		return errors.New("game not found")
	}

	if err := s.db.Model(&game).Update("status", status).Error; err != nil {
		return err
	}

	if gameState := s.getGameState(normalizedPin); gameState != nil {
		gameState.Status = status
		if status == "finished" {
			gameState.CurrentQuestion = nil
		}
		s.storeGameState(normalizedPin, gameState)
	}

	return nil
}

func (s *GameService) generatePin() string {
	bytes := make([]byte, 3)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:6]
}

// calculatePoints awards base points plus a linear time bonus and a streak
// bonus for consecutive correct answers.
func calculatePoints(timeSpent, timeLimit int, isCorrect bool, currentStreak int) int {
	if !isCorrect {
		return 0
	}

	points := basePoints

	if timeLimit > 0 {
		remaining := timeLimit - timeSpent
		if remaining < 0 {
			remaining = 0
		}
		points += maxTimeBonus * remaining / timeLimit
	}

	if currentStreak > 0 {
		multiplier := float64(currentStreak) * streakBonusPercent
		if multiplier > maxStreakBonus {
			multiplier = maxStreakBonus
		}
		points += int(float64(basePoints) * multiplier)
	}

	return points
}

func (s *GameService) storeGameState(pin string, state *GameState) error {
	normalizedPin := strings.ToLower(pin)

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %v", err)
	}

	// Store in Redis with expiration (2 hours)
	err = s.redis.Set(context.Background(), "game:"+normalizedPin, data, 2*time.Hour).Err()
	if err != nil {
		return fmt.Errorf("failed to store in Redis: %v", err)
	}

	return nil
}

func (s *GameService) getGameState(pin string) *GameState {
	normalizedPin := strings.ToLower(pin)

	data, err := s.redis.Get(context.Background(), "game:"+normalizedPin).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error getting game state for %s: %v", normalizedPin, err)
		}
		return nil
	}

	var state GameState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		log.Printf("Failed to unmarshal game state for %s: %v", normalizedPin, err)
		return nil
	}

	return &state
}

// CheckGameOwnership checks if a user owns a specific game.
func (s *GameService) CheckGameOwnership(gamePin string, userID uint) error {
	normalizedPin := strings.ToLower(gamePin)
	var game models.Game
	if err := s.db.Where("LOWER(pin) = ?", normalizedPin).First(&game).Error; err != nil {
		return errors.New("game not found")
	}

	var q models.Quiz
	if err := s.db.Where("id = ? AND user_id = ?", game.QuizID, userID).First(&q).Error; err != nil {
		return errors.New("unauthorized to control this game")
	}

	return nil
}

// GetCurrentGameState returns the current game state for WebSocket sync.
func (s *GameService) GetCurrentGameState(gamePin string) (*GameState, error) {
	normalizedPin := strings.ToLower(gamePin)

	gameState := s.getGameState(normalizedPin)
	if gameState != nil {
		// Refresh player data from the database
		if gameState.GameID > 0 {
			var players []models.Player
			s.db.Where("game_id = ?", gameState.GameID).Find(&players)
			gameState.Players = playersToState(players)
		}
		return gameState, nil
	}

	// Fallback: rebuild from the database
	game, err := s.GetGameByPin(normalizedPin)
	if err != nil {
		return nil, err
	}

	newGameState := &GameState{
		GameID:               game.ID,
		QuizID:               game.QuizID,
		Pin:                  normalizedPin,
		Status:               game.Status,
		CurrentQuestionIndex: -1, // no active question
		Players:              playersToState(game.Players),
		TotalQuestions:       len(game.Quiz.Questions),
	}

	s.storeGameState(normalizedPin, newGameState)
	return newGameState, nil
}

func playersToState(players []models.Player) []GamePlayer {
	out := make([]GamePlayer, 0, len(players))
	for _, p := range players {
		out = append(out, GamePlayer{
			ID:     p.ID,
			Name:   p.Name,
			Score:  p.Score,
			Streak: p.Streak,
		})
	}
	return out
}

// liveQuestion builds the sanitized broadcast view of a question.
func liveQuestion(q models.Question, timeLimit int) *GameQuestion {
	return &GameQuestion{
		ID:        q.ID,
		Text:      q.Text,
		Type:      q.Type,
		TimeLimit: timeLimit,
		Options:   q.Options,
		Sequence:  q.Sequence,
		TimeLeft:  timeLimit,
	}
}

// revealedAnswer renders the canonical answer for the question-end reveal.
func revealedAnswer(q models.Question) string {
	engine := q.ToEngine()
	switch engine.Type {
	case quiz.MultiSelect:
		return quiz.MultiSet(engine.CorrectOptions...).Encode()
	case quiz.Sequence:
		return quiz.Ordered(engine.CorrectSequence...).Encode()
	default:
		return engine.CorrectAnswer
	}
}
