package entities

import "time"

// SessionState is the current phase of a quiz run.
type SessionState string

const (
	StateAwaitingAnswer  SessionState = "awaiting_answer"  // question shown, countdown running
	StateShowingFeedback SessionState = "showing_feedback" // feedback shown, auto-advance pending
	StatePaused          SessionState = "paused"           // only restart is accepted
	StateCompleted       SessionState = "completed"        // results shown, session about to be cleared
)

// ScheduledTask is a cancellable continuation owned by a session (a countdown
// or a pending auto-advance). Stop is idempotent.
type ScheduledTask interface {
	Stop()
}

// QuizSession tracks one user's progress through a quiz run.
// It holds a snapshot of the question currently on screen, the message ids of
// the question and countdown messages (opaque handles used only for cleanup),
// and the session's live scheduled tasks. At most one countdown may be live
// per session at any time; starting a new one always stops the previous one.
type QuizSession struct {
	UserID         int64        // Telegram user ID
	ChatID         int64        // chat the quiz runs in
	LevelKey       string       // selected level (A1..C2) or topic id
	Questions      []Question   // this run's question set, fixed at creation
	QuestionIndex  int          // 0-based index of the current question
	CorrectAnswers int          // correct answers so far
	TotalQuestions int          // total questions in this run
	State          SessionState // current phase
	Current        *Question    // snapshot of the displayed question
	QuestionMsgID  int          // message id of the question UI, 0 if none
	TimerMsgID     int          // message id of the countdown UI, 0 if none
	Timer          ScheduledTask
	AutoAdvance    ScheduledTask
	Epoch          int64 // bumped on every transition; stale continuations check it
	StartedAt      time.Time
}

// NewQuizSession creates a fresh session at question 0 with score 0.
func NewQuizSession(userID, chatID int64, levelKey string, questions []Question) *QuizSession {
	return &QuizSession{
		UserID:         userID,
		ChatID:         chatID,
		LevelKey:       levelKey,
		Questions:      questions,
		TotalQuestions: len(questions),
		State:          StateAwaitingAnswer,
		StartedAt:      time.Now(),
	}
}

// BumpEpoch invalidates every continuation scheduled so far and returns the
// new epoch for the next one.
func (s *QuizSession) BumpEpoch() int64 {
	s.Epoch++
	return s.Epoch
}

// StopTimer stops the live countdown, if any. Safe to call repeatedly.
func (s *QuizSession) StopTimer() {
	if s.Timer != nil {
		s.Timer.Stop()
		s.Timer = nil
	}
}

// StopAutoAdvance cancels the pending post-feedback advance, if any.
func (s *QuizSession) StopAutoAdvance() {
	if s.AutoAdvance != nil {
		s.AutoAdvance.Stop()
		s.AutoAdvance = nil
	}
}

// Percent returns the score as a rounded percentage.
func (s *QuizSession) Percent() int {
	if s.TotalQuestions == 0 {
		return 0
	}
	return (s.CorrectAnswers*100 + s.TotalQuestions/2) / s.TotalQuestions
}
