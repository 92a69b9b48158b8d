package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
)

type QuestionBank interface {
	QuestionsFor(key string) ([]entities.Question, error)
}

type SessionStore interface {
	Put(session *entities.QuizSession)
	Get(userID int64) (*entities.QuizSession, error)
	Delete(userID int64)
}

type ScoreRecorder interface {
	RecordAttempt(ctx context.Context, userID int64, score int) error
}

// Timing groups the countdown and delay settings of a quiz run.
type Timing struct {
	QuestionDuration time.Duration // standard questions
	ReadingDuration  time.Duration // reading-comprehension questions
	FeedbackDelay    time.Duration // pause before auto-advancing past feedback
	TickInterval     time.Duration // countdown check interval
}

// QuizService is the per-user quiz state machine. All mutations of one
// session happen inside its event methods, which are serialized per user, so
// a timer expiry and a user answer racing for the same question can never
// both be applied. Scheduled continuations (countdown expiry, post-feedback
// auto-advance) capture the session epoch at scheduling time and are dropped
// if the session has moved on by the time they fire.
type QuizService struct {
	bank      QuestionBank
	sessions  SessionStore
	scores    ScoreRecorder
	messenger Messenger
	timing    Timing
	logger    *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewQuizService(
	bank QuestionBank,
	sessions SessionStore,
	scores ScoreRecorder,
	messenger Messenger,
	timing Timing,
	logger *zap.Logger,
) *QuizService {
	if timing.TickInterval <= 0 {
		timing.TickInterval = 500 * time.Millisecond
	}
	return &QuizService{
		bank:      bank,
		sessions:  sessions,
		scores:    scores,
		messenger: messenger,
		timing:    timing,
		logger:    logger,
		locks:     make(map[int64]*sync.Mutex),
	}
}

// userLock returns the mutex serializing events for one user's session.
// Locks are never removed; the map is bounded by the number of distinct users.
func (s *QuizService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// SelectLevel starts a quiz run for a level, reading test or topic. If the
// user already has an active session it is discarded first, so selecting a
// level mid-run acts as a restart for the new level.
func (s *QuizService) SelectLevel(ctx context.Context, userID, chatID int64, key string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	questions, err := s.bank.QuestionsFor(key)
	if err != nil {
		return err
	}

	if old, err := s.sessions.Get(userID); err == nil {
		s.teardown(old)
		s.sessions.Delete(userID)
	}

	session := entities.NewQuizSession(userID, chatID, key, questions)
	s.sessions.Put(session)

	s.logger.Info("quiz started",
		zap.Int64("user_id", userID),
		zap.String("level", key),
		zap.Int("total", session.TotalQuestions),
	)

	s.askCurrent(ctx, session)
	return nil
}

// Answer processes an answer button press. Only valid while a question is on
// screen; duplicate or late presses for an already resolved question are
// ignored without touching the score or the index.
func (s *QuizService) Answer(ctx context.Context, userID int64, letter string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.Get(userID)
	if err != nil {
		return err
	}
	if session.State != entities.StateAwaitingAnswer {
		return nil
	}

	chosen := entities.LetterIndex(letter)
	if chosen < 0 || chosen >= len(session.Current.Options) {
		return nil
	}

	session.StopTimer()
	session.BumpEpoch()
	s.resolveAnswer(ctx, session, chosen, false)
	return nil
}

// Next skips the rest of the feedback delay and advances immediately.
func (s *QuizService) Next(ctx context.Context, userID int64) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.Get(userID)
	if err != nil {
		return err
	}
	if session.State != entities.StateShowingFeedback {
		return nil
	}

	session.StopAutoAdvance()
	session.BumpEpoch()
	s.advance(ctx, session)
	return nil
}

// Pause freezes the run on the current question. A paused session accepts
// only Restart; everything else is a no-op.
func (s *QuizService) Pause(ctx context.Context, userID int64) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.Get(userID)
	if err != nil {
		return err
	}
	if session.State != entities.StateAwaitingAnswer {
		return nil
	}

	session.StopTimer()
	session.BumpEpoch()
	session.State = entities.StatePaused

	if session.TimerMsgID != 0 {
		s.deleteMessage(session.ChatID, session.TimerMsgID)
		session.TimerMsgID = 0
	}
	if session.QuestionMsgID != 0 {
		if err := s.messenger.ShowPausedControls(session.ChatID, session.QuestionMsgID); err != nil {
			s.logger.Warn("failed to show paused controls",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("quiz paused",
		zap.Int64("user_id", userID),
		zap.Int("question_index", session.QuestionIndex),
	)
	return nil
}

// Restart discards the current run and begins again at question 0 with score
// 0 for the same level. Valid from any state.
func (s *QuizService) Restart(ctx context.Context, userID int64) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.Get(userID)
	if err != nil {
		return err
	}

	s.teardown(session)

	fresh := entities.NewQuizSession(session.UserID, session.ChatID, session.LevelKey, session.Questions)
	s.sessions.Put(fresh)

	s.logger.Info("quiz restarted",
		zap.Int64("user_id", userID),
		zap.String("level", fresh.LevelKey),
	)

	s.askCurrent(ctx, fresh)
	return nil
}

// Clear drops any active session for the user, e.g. on /start.
func (s *QuizService) Clear(userID int64) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if session, err := s.sessions.Get(userID); err == nil {
		s.teardown(session)
		s.sessions.Delete(userID)
	}
}

// handleTimerExpired is the internally generated TimerExpired event. The
// epoch check drops expiries that lost the race against an answer, a pause
// or a restart.
func (s *QuizService) handleTimerExpired(ctx context.Context, userID, epoch int64) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.Get(userID)
	if err != nil {
		return
	}
	if session.Epoch != epoch || session.State != entities.StateAwaitingAnswer {
		return
	}

	session.StopTimer()
	session.BumpEpoch()
	s.resolveAnswer(ctx, session, -1, true)
}

// handleAutoAdvance fires when the feedback delay elapses without an explicit
// Next press.
func (s *QuizService) handleAutoAdvance(ctx context.Context, userID, epoch int64) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.sessions.Get(userID)
	if err != nil {
		return
	}
	if session.Epoch != epoch || session.State != entities.StateShowingFeedback {
		return
	}

	session.StopAutoAdvance()
	session.BumpEpoch()
	s.advance(ctx, session)
}

// askCurrent shows the current question with its countdown.
// Caller holds the user lock.
func (s *QuizService) askCurrent(ctx context.Context, session *entities.QuizSession) {
	s.clearQuizUI(session)

	q := session.Questions[session.QuestionIndex]
	session.Current = &q
	session.State = entities.StateAwaitingAnswer
	epoch := session.BumpEpoch()

	view := QuestionView{
		Index:   session.QuestionIndex,
		Total:   session.TotalQuestions,
		Prompt:  q.Prompt,
		Passage: q.Passage,
		Options: q.Options,
	}
	if msgID, err := s.messenger.ShowQuestion(session.ChatID, view); err != nil {
		s.logger.Warn("failed to show question",
			zap.Int64("user_id", session.UserID),
			zap.Error(err),
		)
	} else {
		session.QuestionMsgID = msgID
	}

	duration := s.timing.QuestionDuration
	if q.Kind == entities.KindReading {
		duration = s.timing.ReadingDuration
	}
	total := int(duration / time.Second)

	if msgID, err := s.messenger.ShowTimer(session.ChatID, total, total); err != nil {
		s.logger.Warn("failed to show countdown",
			zap.Int64("user_id", session.UserID),
			zap.Error(err),
		)
	} else {
		session.TimerMsgID = msgID
	}

	// The tick closure only touches the countdown message; it never mutates
	// the session, so it needs no lock.
	chatID := session.ChatID
	userID := session.UserID
	timerMsgID := session.TimerMsgID
	session.Timer = StartCountdown(duration, s.timing.TickInterval,
		func(remaining int) {
			if timerMsgID == 0 {
				return
			}
			if err := s.messenger.UpdateTimer(chatID, timerMsgID, remaining, total); err != nil {
				s.logger.Debug("countdown edit failed",
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
			}
		},
		func() {
			s.handleTimerExpired(ctx, userID, epoch)
		},
	)
}

// resolveAnswer scores the question, shows feedback and either schedules the
// auto-advance (user answered) or advances right away (timeout).
// Caller holds the user lock; the countdown has already been stopped.
func (s *QuizService) resolveAnswer(ctx context.Context, session *entities.QuizSession, chosen int, timedOut bool) {
	q := session.Current
	wasCorrect := !timedOut && chosen == q.CorrectIndex
	if wasCorrect {
		session.CorrectAnswers++
	}

	s.clearQuizUI(session)

	view := FeedbackView{
		WasCorrect:    wasCorrect,
		TimedOut:      timedOut,
		CorrectLetter: q.CorrectLetter(),
		CorrectOption: q.CorrectOption(),
		Explanation:   q.Explanation,
	}
	if !timedOut {
		view.ChosenLetter = entities.OptionLetters[chosen]
		view.ChosenOption = q.Options[chosen]
	}
	if _, err := s.messenger.ShowFeedback(session.ChatID, view); err != nil {
		s.logger.Warn("failed to show feedback",
			zap.Int64("user_id", session.UserID),
			zap.Error(err),
		)
	}

	if timedOut {
		// The user took no action, so there is nothing to wait for.
		s.advance(ctx, session)
		return
	}

	session.State = entities.StateShowingFeedback
	epoch := session.Epoch
	userID := session.UserID
	session.AutoAdvance = scheduleAfter(s.timing.FeedbackDelay, func() {
		s.handleAutoAdvance(ctx, userID, epoch)
	})
}

// advance moves to the next question or finishes the run.
// Caller holds the user lock.
func (s *QuizService) advance(ctx context.Context, session *entities.QuizSession) {
	session.QuestionIndex++
	if session.QuestionIndex >= session.TotalQuestions {
		s.finish(ctx, session)
		return
	}
	s.askCurrent(ctx, session)
}

// finish shows the results, records the attempt and clears the session.
func (s *QuizService) finish(ctx context.Context, session *entities.QuizSession) {
	session.State = entities.StateCompleted
	session.StopTimer()
	session.StopAutoAdvance()
	s.clearQuizUI(session)

	result := entities.NewQuizResult(session)
	if err := s.messenger.ShowResults(session.ChatID, result); err != nil {
		s.logger.Warn("failed to show results",
			zap.Int64("user_id", session.UserID),
			zap.Error(err),
		)
	}

	if err := s.scores.RecordAttempt(ctx, session.UserID, session.CorrectAnswers); err != nil {
		s.logger.Error("failed to record attempt",
			zap.Int64("user_id", session.UserID),
			zap.Int("score", session.CorrectAnswers),
			zap.Error(err),
		)
	}

	s.logger.Info("quiz completed",
		zap.Int64("user_id", session.UserID),
		zap.String("level", session.LevelKey),
		zap.Int("score", session.CorrectAnswers),
		zap.Int("total", session.TotalQuestions),
		zap.Int("percent", result.Percent),
	)

	s.sessions.Delete(session.UserID)
}

// teardown stops the session's scheduled tasks and removes its UI messages.
func (s *QuizService) teardown(session *entities.QuizSession) {
	session.StopTimer()
	session.StopAutoAdvance()
	session.BumpEpoch()
	s.clearQuizUI(session)
}

// clearQuizUI deletes the question and countdown messages of the current
// question. Deletion failures are cosmetic and never block the run.
func (s *QuizService) clearQuizUI(session *entities.QuizSession) {
	if session.TimerMsgID != 0 {
		s.deleteMessage(session.ChatID, session.TimerMsgID)
		session.TimerMsgID = 0
	}
	if session.QuestionMsgID != 0 {
		s.deleteMessage(session.ChatID, session.QuestionMsgID)
		session.QuestionMsgID = 0
	}
}

func (s *QuizService) deleteMessage(chatID int64, messageID int) {
	if err := s.messenger.DeleteMessage(chatID, messageID); err != nil {
		s.logger.Debug("message cleanup failed",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err),
		)
	}
}
