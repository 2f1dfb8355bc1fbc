package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"quizgenius/models"
	"quizgenius/quiz"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionService owns the active solo quiz sessions. Each session is an
// engine quiz.Session held in memory; snapshots are mirrored to Redis so a
// client can poll state cheaply, and the final result is persisted through
// gorm. Both stores are optional (nil-checked), which also keeps the service
// testable without infrastructure.
type SessionService struct {
	db        *gorm.DB
	redis     *redis.Client
	evaluator quiz.AnswerEvaluator

	mu       sync.RWMutex
	sessions map[string]*activeSession
	byUser   map[uint]string
}

type activeSession struct {
	id      string
	userID  uint
	quizID  uint
	prefs   quiz.Preferences
	session *quiz.Session
}

func NewSessionService(db *gorm.DB, redisClient *redis.Client, evaluator quiz.AnswerEvaluator) *SessionService {
	return &SessionService{
		db:        db,
		redis:     redisClient,
		evaluator: evaluator,
		sessions:  make(map[string]*activeSession),
		byUser:    make(map[uint]string),
	}
}

// SessionView is the client-facing state of a session. The current question
// is always sanitized; correct answers only appear in the final result.
type SessionView struct {
	ID             string          `json:"id"`
	State          quiz.State      `json:"state"`
	Mode           quiz.Mode       `json:"mode"`
	AnswerMode     quiz.AnswerMode `json:"answer_mode"`
	CurrentIndex   int             `json:"current_index"`
	TotalQuestions int             `json:"total_questions"`
	TimeLeft       *int            `json:"time_left,omitempty"`
	Question       *quiz.Question  `json:"question,omitempty"`
	Answers        map[int]string  `json:"answers"`
	Result         *quiz.Result    `json:"result,omitempty"`
}

// AnswerFeedback acknowledges a recorded answer. Correctness details are
// only populated in practice (immediate-feedback) mode.
type AnswerFeedback struct {
	Recorded      bool   `json:"recorded"`
	Correct       *bool  `json:"correct,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
	Feedback      string `json:"feedback,omitempty"`
}

// Start creates a session over the given questions. A user has at most one
// active session; starting a new one abandons the previous.
func (s *SessionService) Start(userID, quizID uint, prefs quiz.Preferences, questions []quiz.Question) (*SessionView, error) {
	id := generateSessionID()

	active := &activeSession{
		id:     id,
		userID: userID,
		quizID: quizID,
		prefs:  prefs,
	}

	session, err := quiz.NewSession(prefs, questions,
		quiz.WithEvaluator(s.evaluator),
		quiz.WithFinishFunc(func(r *quiz.Result) {
			s.onSessionFinished(active, r)
		}),
		quiz.WithTickFunc(func(questionIndex, timeLeft int) {
			s.mirrorTick(id, questionIndex, timeLeft)
		}),
	)
	if err != nil {
		return nil, err
	}
	active.session = session

	s.mu.Lock()
	if previousID, ok := s.byUser[userID]; ok {
		if previous, ok := s.sessions[previousID]; ok {
			previous.session.Reset()
			delete(s.sessions, previousID)
			s.dropMirror(previousID)
			log.Printf("Abandoned session %s for user %d (new session started)", previousID, userID)
		}
	}
	s.sessions[id] = active
	s.byUser[userID] = id
	s.mu.Unlock()

	session.StartClock()
	s.mirrorSnapshot(id, session.Snapshot())

	return s.view(active), nil
}

// Get returns the current state of the session.
func (s *SessionService) Get(sessionID string, userID uint) (*SessionView, error) {
	active, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.view(active), nil
}

// Answer records the raw answer for a question. In practice mode it also
// grades immediately and returns feedback; in exam mode feedback is withheld
// until finish.
func (s *SessionService) Answer(ctx context.Context, sessionID string, userID uint, questionID int, raw string) (*AnswerFeedback, error) {
	active, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}

	question, ok := findQuestion(active.session.Questions(), questionID)
	if !ok {
		return nil, quiz.ErrUnknownQuestion
	}

	answer := quiz.ParseAnswer(question.Type, raw)
	if err := active.session.Answer(questionID, answer); err != nil {
		return nil, err
	}
	s.mirrorSnapshot(sessionID, active.session.Snapshot())

	feedback := &AnswerFeedback{Recorded: true}
	if active.prefs.AnswerMode() == quiz.AnswerImmediate && !answer.IsEmpty() {
		correct, evaluatorFeedback := quiz.NewScorer(s.evaluator).Grade(ctx, question, answer, active.prefs.Language)
		feedback.Correct = &correct
		feedback.CorrectAnswer = correctAnswerText(question)
		feedback.Explanation = question.Explanation
		feedback.Feedback = evaluatorFeedback
	}
	return feedback, nil
}

// Next advances the session to the following question.
func (s *SessionService) Next(sessionID string, userID uint) (*SessionView, error) {
	active, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	active.session.Next()
	s.mirrorSnapshot(sessionID, active.session.Snapshot())
	return s.view(active), nil
}

// Previous moves the session back one question.
func (s *SessionService) Previous(sessionID string, userID uint) (*SessionView, error) {
	active, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	active.session.Previous()
	s.mirrorSnapshot(sessionID, active.session.Snapshot())
	return s.view(active), nil
}

// Finish scores the session and returns the result. Finishing an already
// finished session returns the same result.
func (s *SessionService) Finish(ctx context.Context, sessionID string, userID uint) (*quiz.Result, error) {
	active, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return active.session.Finish(ctx)
}

// Abandon resets and removes the session.
func (s *SessionService) Abandon(sessionID string, userID uint) error {
	active, err := s.lookup(sessionID, userID)
	if err != nil {
		return err
	}

	active.session.Reset()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	if s.byUser[userID] == sessionID {
		delete(s.byUser, userID)
	}
	s.mu.Unlock()

	s.dropMirror(sessionID)
	return nil
}

// Results lists the user's stored result history, newest first.
func (s *SessionService) Results(userID uint) ([]models.QuizResult, error) {
	if s.db == nil {
		return nil, nil
	}
	var results []models.QuizResult
	err := s.db.Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&results).Error
	return results, err
}

func (s *SessionService) lookup(sessionID string, userID uint) (*activeSession, error) {
	s.mu.RLock()
	active, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || active.userID != userID {
		return nil, ErrSessionNotFound
	}
	return active, nil
}

func (s *SessionService) view(active *activeSession) *SessionView {
	snap := active.session.Snapshot()
	view := &SessionView{
		ID:             active.id,
		State:          snap.State,
		Mode:           active.prefs.Mode,
		AnswerMode:     active.prefs.AnswerMode(),
		CurrentIndex:   snap.CurrentIndex,
		TotalQuestions: snap.TotalQuestions,
		TimeLeft:       snap.TimeLeft,
		Answers:        snap.Answers,
		Result:         snap.Result,
	}
	if snap.State == quiz.StateInProgress {
		questions := active.session.Questions()
		if snap.CurrentIndex < len(questions) {
			sanitized := sanitizeQuestion(questions[snap.CurrentIndex])
			view.Question = &sanitized
		}
	}
	return view
}

// onSessionFinished runs once per session, whether the finish came from the
// user or from timer expiry. Result persistence is non-fatal.
func (s *SessionService) onSessionFinished(active *activeSession, r *quiz.Result) {
	if s.db != nil {
		row := models.FromEngineResult(active.userID, active.quizID, active.prefs, r)
		if err := s.db.Create(&row).Error; err != nil {
			log.Printf("Failed to save result for session %s: %v", active.id, err)
		}
	}

	snap := quiz.Snapshot{
		State:          quiz.StateCompleted,
		Mode:           active.prefs.Mode,
		TotalQuestions: r.TotalQuestions,
		Result:         r,
	}
	s.mirrorSnapshot(active.id, snap)
}

func (s *SessionService) mirrorSnapshot(sessionID string, snap quiz.Snapshot) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("Failed to marshal session state: %v", err)
		return
	}
	if err := s.redis.Set(context.Background(), "session:"+sessionID, data, 2*time.Hour).Err(); err != nil {
		log.Printf("Failed to store session state in Redis: %v", err)
	}
}

func (s *SessionService) mirrorTick(sessionID string, questionIndex, timeLeft int) {
	if s.redis == nil {
		return
	}
	err := s.redis.HSet(context.Background(), "session:"+sessionID+":clock",
		"question_index", questionIndex, "time_left", timeLeft).Err()
	if err != nil {
		log.Printf("Failed to store session clock in Redis: %v", err)
	}
}

func (s *SessionService) dropMirror(sessionID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(context.Background(), "session:"+sessionID, "session:"+sessionID+":clock").Err(); err != nil {
		log.Printf("Failed to drop session state from Redis: %v", err)
	}
}

func findQuestion(questions []quiz.Question, id int) (quiz.Question, bool) {
	for _, q := range questions {
		if q.ID == id {
			return q, true
		}
	}
	return quiz.Question{}, false
}

func sanitizeQuestion(q quiz.Question) quiz.Question {
	q.CorrectAnswer = ""
	q.CorrectOptions = nil
	q.CorrectSequence = nil
	q.Explanation = ""
	q.Keywords = nil
	return q
}

func correctAnswerText(q quiz.Question) string {
	switch q.Type {
	case quiz.MultiSelect:
		return quiz.MultiSet(q.CorrectOptions...).Encode()
	case quiz.Sequence:
		return quiz.Ordered(q.CorrectSequence...).Encode()
	default:
		return q.CorrectAnswer
	}
}

func generateSessionID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
