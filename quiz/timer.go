package quiz

import "time"

// TimerMode selects which countdown, if any, drives a session. Exactly one
// mode is active per session, chosen by the preferences.
type TimerMode int

const (
	TimerOff TimerMode = iota
	// TimerPerQuestion restarts the countdown every time the displayed
	// question changes and auto-advances on expiry.
	TimerPerQuestion
	// TimerWholeQuiz runs one continuous countdown from session start and
	// finishes the quiz on expiry.
	TimerWholeQuiz
)

// StartClock launches the countdown goroutine for the session's timer mode.
// It is a no-op when no time limit is configured or a clock is already
// running. The clock stops on finish, reset, or StopClock.
func (s *Session) StartClock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timerMode == TimerOff || s.state != StateInProgress || s.clockStop != nil {
		return
	}
	stop := make(chan struct{})
	s.clockStop = stop

	go func() {
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !s.tick() {
					return
				}
			}
		}
	}()
}

// StopClock cancels any running countdown without touching session state.
func (s *Session) StopClock() {
	s.mu.Lock()
	s.stopClockLocked()
	s.mu.Unlock()
}

func (s *Session) stopClockLocked() {
	if s.clockStop != nil {
		close(s.clockStop)
		s.clockStop = nil
	}
}

// tick advances the countdown by one second. It returns false once the
// session no longer needs ticks.
func (s *Session) tick() bool {
	s.mu.Lock()

	if s.state != StateInProgress || s.timerMode == TimerOff {
		s.mu.Unlock()
		return false
	}
	if s.timeLeft > 0 {
		s.timeLeft--
	}

	left := s.timeLeft
	index := s.current
	onTick := s.onTick
	expired := left <= 0
	if !expired {
		s.mu.Unlock()
		if onTick != nil {
			onTick(index, left)
		}
		return true
	}

	// Expiry handling while still holding the lock keeps the auto-submit
	// atomic with respect to a concurrent manual finish.
	switch s.timerMode {
	case TimerPerQuestion:
		s.autoAdvanceLocked()
		running := s.state == StateInProgress
		s.mu.Unlock()
		if onTick != nil {
			onTick(index, 0)
		}
		return running
	case TimerWholeQuiz:
		s.finishLocked()
		s.mu.Unlock()
		return false
	default:
		s.mu.Unlock()
		return false
	}
}

// autoAdvanceLocked is the per-question expiry transition: the answer map
// already holds whatever the user submitted for the current question, so the
// implicit submit is just an advance, or a finish on the last question.
func (s *Session) autoAdvanceLocked() {
	index := s.current
	if index >= len(s.questions)-1 {
		s.finishLocked()
		return
	}
	s.current = index + 1
	s.timeLeft = s.prefs.TimeLimit
	if s.onAutoAdvance != nil {
		s.onAutoAdvance(s.current)
	}
}
