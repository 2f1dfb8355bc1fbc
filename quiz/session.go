package quiz

import (
	"context"
	"sync"
	"time"
)

type State string

const (
	StateEmpty      State = "empty"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Session drives one quiz attempt: the fixed question list, the current
// position, the answer map, the countdown, and finally the Result. It is
// owned by a single attempt but guarded by a mutex because the timer
// goroutine and the caller both touch it.
type Session struct {
	mu sync.Mutex

	prefs     Preferences
	questions []Question
	current   int
	answers   map[int]Answer
	state     State
	result    *Result

	scorer       *Scorer
	timerMode    TimerMode
	timeLeft     int
	tickInterval time.Duration
	clockStop    chan struct{}

	onTick        func(questionIndex, timeLeft int)
	onAutoAdvance func(questionIndex int)
	onFinish      func(*Result)
}

// SessionOption configures a session at construction time.
type SessionOption func(*Session)

// WithEvaluator installs a free-text answer evaluator used at scoring time.
func WithEvaluator(ev AnswerEvaluator) SessionOption {
	return func(s *Session) { s.scorer = NewScorer(ev) }
}

// WithTickFunc is called on every clock tick with the current question index
// and the seconds remaining.
func WithTickFunc(fn func(questionIndex, timeLeft int)) SessionOption {
	return func(s *Session) { s.onTick = fn }
}

// WithAutoAdvanceFunc is called when a per-question timer expiry moves the
// session to the given question index.
func WithAutoAdvanceFunc(fn func(questionIndex int)) SessionOption {
	return func(s *Session) { s.onAutoAdvance = fn }
}

// WithFinishFunc is called exactly once when the session completes, whether
// by explicit finish or by timer expiry.
func WithFinishFunc(fn func(*Result)) SessionOption {
	return func(s *Session) { s.onFinish = fn }
}

// withTickInterval shortens the clock for tests.
func withTickInterval(d time.Duration) SessionOption {
	return func(s *Session) { s.tickInterval = d }
}

// NewSession validates the preferences and builds an in-progress session
// around the generated questions.
func NewSession(prefs Preferences, questions []Question, opts ...SessionOption) (*Session, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, &GenerationError{Err: ErrSessionEmpty}
	}

	s := &Session{
		prefs:        prefs,
		questions:    questions,
		answers:      make(map[int]Answer),
		state:        StateInProgress,
		scorer:       NewScorer(nil),
		timerMode:    prefs.TimerMode(),
		tickInterval: time.Second,
	}
	switch s.timerMode {
	case TimerPerQuestion:
		s.timeLeft = prefs.TimeLimit
	case TimerWholeQuiz:
		s.timeLeft = prefs.TotalTimeLimit
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Preferences returns the read-only preferences the session was built with.
func (s *Session) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Questions returns a copy of the question list. Reset clears the underlying
// slice, so callers get their own copy rather than a view into it.
func (s *Session) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Current returns the active question and its index.
func (s *Session) Current() (Question, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEmpty {
		return Question{}, 0, ErrSessionEmpty
	}
	return s.questions[s.current], s.current, nil
}

// TimeLeft reports the remaining seconds of the active countdown, or -1 when
// no timer is configured.
func (s *Session) TimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timerMode == TimerOff {
		return -1
	}
	return s.timeLeft
}

// Answer records (or replaces) the answer for a question. The value's shape
// is not validated here; correctness is the scorer's concern.
func (s *Session) Answer(questionID int, a Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateEmpty:
		return ErrSessionEmpty
	case StateCompleted:
		return ErrSessionFinished
	}
	if !s.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}
	s.answers[questionID] = a
	return nil
}

// AnswerFor returns the recorded answer for a question, if any.
func (s *Session) AnswerFor(questionID int) (Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[questionID]
	return a, ok
}

// Next advances to the following question, clamped at the last one. A
// per-question timer restarts for the new question.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.current
	}
	if s.current < len(s.questions)-1 {
		s.current++
		s.restartQuestionTimerLocked()
	}
	return s.current
}

// Previous moves back one question, clamped at the first one.
func (s *Session) Previous() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return s.current
	}
	if s.current > 0 {
		s.current--
		s.restartQuestionTimerLocked()
	}
	return s.current
}

func (s *Session) restartQuestionTimerLocked() {
	// A whole-quiz countdown keeps running monotonically across navigation.
	if s.timerMode == TimerPerQuestion {
		s.timeLeft = s.prefs.TimeLimit
	}
}

// Finish scores the session and transitions it to Completed. It is
// idempotent: repeated calls (including the timer racing a manual finish)
// return the same Result.
func (s *Session) Finish(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEmpty {
		return nil, ErrSessionEmpty
	}
	if s.result != nil {
		return s.result, nil
	}
	s.finishContextLocked(ctx)
	return s.result, nil
}

// Result returns the finished result, or nil while the session is running.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) finishLocked() {
	s.finishContextLocked(context.Background())
}

func (s *Session) finishContextLocked(ctx context.Context) {
	if s.result != nil {
		return
	}
	s.stopClockLocked()
	s.result = s.scorer.Score(ctx, s.questions, s.answers, s.prefs)
	s.state = StateCompleted
	if s.onFinish != nil {
		s.onFinish(s.result)
	}
}

// Reset abandons the attempt: questions, answers, position, and result are
// all cleared and any countdown is cancelled.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopClockLocked()
	s.questions = nil
	s.answers = make(map[int]Answer)
	s.current = 0
	s.result = nil
	s.timeLeft = 0
	s.state = StateEmpty
}

func (s *Session) hasQuestion(id int) bool {
	for i := range s.questions {
		if s.questions[i].ID == id {
			return true
		}
	}
	return false
}

// Snapshot is a serializable view of the session for clients and for the
// Redis mirror.
type Snapshot struct {
	State          State          `json:"state"`
	Mode           Mode           `json:"mode"`
	CurrentIndex   int            `json:"current_index"`
	TotalQuestions int            `json:"total_questions"`
	TimeLeft       *int           `json:"time_left,omitempty"`
	Answers        map[int]string `json:"answers"`
	Result         *Result        `json:"result,omitempty"`
}

// Snapshot captures the current state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:          s.state,
		Mode:           s.prefs.Mode,
		CurrentIndex:   s.current,
		TotalQuestions: len(s.questions),
		Answers:        make(map[int]string, len(s.answers)),
		Result:         s.result,
	}
	if s.timerMode != TimerOff {
		left := s.timeLeft
		snap.TimeLeft = &left
	}
	for id, a := range s.answers {
		snap.Answers[id] = a.Encode()
	}
	return snap
}
