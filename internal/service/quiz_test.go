package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
	"github.com/aliskhannn/english-level-bot/internal/repository"
	"github.com/aliskhannn/english-level-bot/internal/storage"
)

type fakeBank struct {
	sets map[string][]entities.Question
}

func (b *fakeBank) QuestionsFor(key string) ([]entities.Question, error) {
	qs, ok := b.sets[key]
	if !ok {
		return nil, repository.ErrLevelNotFound
	}
	out := make([]entities.Question, len(qs))
	copy(out, qs)
	return out, nil
}

type fakeScores struct {
	mu       sync.Mutex
	attempts []int
}

func (f *fakeScores) RecordAttempt(_ context.Context, _ int64, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, score)
	return nil
}

func (f *fakeScores) recorded() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.attempts...)
}

type fakeMessenger struct {
	mu         sync.Mutex
	nextID     int
	questions  []QuestionView
	feedbacks  []FeedbackView
	results    []entities.QuizResult
	deleted    []int
	pausedMsgs []int
	timerEdits []int
}

func (m *fakeMessenger) newID() int {
	m.nextID++
	return m.nextID
}

func (m *fakeMessenger) ShowQuestion(_ int64, view QuestionView) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, view)
	return m.newID(), nil
}

func (m *fakeMessenger) ShowTimer(_ int64, _, _ int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newID(), nil
}

func (m *fakeMessenger) UpdateTimer(_ int64, _, remaining, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timerEdits = append(m.timerEdits, remaining)
	return nil
}

func (m *fakeMessenger) ShowFeedback(_ int64, view FeedbackView) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedbacks = append(m.feedbacks, view)
	return m.newID(), nil
}

func (m *fakeMessenger) ShowResults(_ int64, result entities.QuizResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	return nil
}

func (m *fakeMessenger) ShowPausedControls(_ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pausedMsgs = append(m.pausedMsgs, messageID)
	return nil
}

func (m *fakeMessenger) DeleteMessage(_ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *fakeMessenger) questionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.questions)
}

func (m *fakeMessenger) lastResult() (entities.QuizResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.results) == 0 {
		return entities.QuizResult{}, false
	}
	return m.results[len(m.results)-1], true
}

func threeQuestions() []entities.Question {
	return []entities.Question{
		{
			Prompt:       "q1",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 0,
			Kind:         entities.KindStandard,
		},
		{
			Prompt:       "q2",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 1,
			Kind:         entities.KindStandard,
		},
		{
			Prompt:       "q3",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 2,
			Kind:         entities.KindStandard,
		},
	}
}

func newTestService(timing Timing) (*QuizService, *storage.SessionStore, *fakeMessenger, *fakeScores) {
	bank := &fakeBank{sets: map[string][]entities.Question{
		"A1": threeQuestions(),
		"B1": threeQuestions(),
	}}
	store := storage.NewSessionStore()
	messenger := &fakeMessenger{}
	scores := &fakeScores{}
	svc := NewQuizService(bank, store, scores, messenger, timing, zap.NewNop())
	return svc, store, messenger, scores
}

// slowTiming keeps scheduled continuations from firing during a test.
func slowTiming() Timing {
	return Timing{
		QuestionDuration: time.Minute,
		ReadingDuration:  time.Minute,
		FeedbackDelay:    time.Minute,
		TickInterval:     10 * time.Millisecond,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestFullRunScoring(t *testing.T) {
	svc, _, messenger, scores := newTestService(slowTiming())
	ctx := context.Background()

	if err := svc.SelectLevel(ctx, 1, 10, "A1"); err != nil {
		t.Fatalf("select level: %v", err)
	}

	// Correct indices are [0,1,2]; the user answers A, B, D.
	answers := []string{"A", "B", "D"}
	for _, letter := range answers {
		if err := svc.Answer(ctx, 1, letter); err != nil {
			t.Fatalf("answer %s: %v", letter, err)
		}
		if err := svc.Next(ctx, 1); err != nil {
			t.Fatalf("next after %s: %v", letter, err)
		}
	}

	result, ok := messenger.lastResult()
	if !ok {
		t.Fatal("expected results to be shown")
	}
	if result.Score != 2 || result.Total != 3 {
		t.Fatalf("expected score 2/3, got %d/%d", result.Score, result.Total)
	}
	if result.Percent != 67 {
		t.Fatalf("expected 67%%, got %d%%", result.Percent)
	}
	if result.Tier != entities.TierFor(67) {
		t.Fatalf("unexpected tier: %+v", result.Tier)
	}

	if got := scores.recorded(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected recorded attempt [2], got %v", got)
	}
}

func TestSessionClearedAfterCompletion(t *testing.T) {
	svc, store, _, _ := newTestService(slowTiming())
	ctx := context.Background()

	if err := svc.SelectLevel(ctx, 1, 10, "A1"); err != nil {
		t.Fatalf("select level: %v", err)
	}
	for _, letter := range []string{"A", "B", "C"} {
		if err := svc.Answer(ctx, 1, letter); err != nil {
			t.Fatalf("answer: %v", err)
		}
		if err := svc.Next(ctx, 1); err != nil {
			t.Fatalf("next: %v", err)
		}
	}

	if _, err := store.Get(1); !errors.Is(err, storage.ErrSessionNotFound) {
		t.Fatalf("expected session cleared, got %v", err)
	}
	if err := svc.Answer(ctx, 1, "A"); !errors.Is(err, storage.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for stale answer, got %v", err)
	}
}

func TestUnknownLevel(t *testing.T) {
	svc, _, _, _ := newTestService(slowTiming())

	err := svc.SelectLevel(context.Background(), 1, 10, "Z9")
	if !errors.Is(err, repository.ErrLevelNotFound) {
		t.Fatalf("expected ErrLevelNotFound, got %v", err)
	}
}

func TestTimeoutAdvancesWithoutScoring(t *testing.T) {
	timing := slowTiming()
	timing.QuestionDuration = 60 * time.Millisecond
	svc, store, messenger, _ := newTestService(timing)
	ctx := context.Background()

	if err := svc.SelectLevel(ctx, 1, 10, "B1"); err != nil {
		t.Fatalf("select level: %v", err)
	}

	// The countdown expires, feedback reveals the answer and the run moves
	// straight to question 2.
	waitFor(t, 2*time.Second, func() bool {
		return messenger.questionCount() >= 2
	})

	session, err := store.Get(1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.QuestionIndex != 1 {
		t.Fatalf("expected question index 1, got %d", session.QuestionIndex)
	}
	if session.CorrectAnswers != 0 {
		t.Fatalf("expected score 0 after timeout, got %d", session.CorrectAnswers)
	}
	if session.State != entities.StateAwaitingAnswer {
		t.Fatalf("expected awaiting_answer, got %s", session.State)
	}

	messenger.mu.Lock()
	fb := messenger.feedbacks[0]
	messenger.mu.Unlock()
	if !fb.TimedOut || fb.WasCorrect {
		t.Fatalf("expected timed-out incorrect feedback, got %+v", fb)
	}
	if fb.CorrectLetter == "" || fb.CorrectOption == "" {
		t.Fatalf("timeout feedback must reveal the correct answer, got %+v", fb)
	}
}

func TestDuplicateAnswerIgnored(t *testing.T) {
	svc, store, _, _ := newTestService(slowTiming())
	ctx := context.Background()

	if err := svc.SelectLevel(ctx, 1, 10, "A1"); err != nil {
		t.Fatalf("select level: %v", err)
	}
	if err := svc.Answer(ctx, 1, "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	// A second press of the same (or another) answer button must not score
	// again or advance the run.
	if err := svc.Answer(ctx, 1, "A"); err != nil {
		t.Fatalf("duplicate answer: %v", err)
	}

	session, err := store.Get(1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.CorrectAnswers != 1 {
		t.Fatalf("expected score 1, got %d", session.CorrectAnswers)
	}
	if session.QuestionIndex != 0 {
		t.Fatalf("expected question index 0, got %d", session.QuestionIndex)
	}
	if session.State != entities.StateShowingFeedback {
		t.Fatalf("expected showing_feedback, got %s", session.State)
	}
}

func TestStaleExpiryLosesRaceToAnswer(t *testing.T) {
	svc, store, _, _ := newTestService(slowTiming())
	ctx := context.Background()

	if err := svc.SelectLevel(ctx, 1, 10, "A1"); err != nil {
		t.Fatalf("select level: %v", err)
	}
	session, err := store.Get(1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	staleEpoch := session.Epoch

	if err := svc.Answer(ctx, 1, "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	// Deliver the expiry that was scheduled for the question the user just
	// answered. It must be dropped.
	svc.handleTimerExpired(ctx, 1, staleEpoch)

	session, err = store.Get(1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.State != entities.StateShowingFeedback {
		t.Fatalf("stale expiry changed state to %s", session.State)
	}
	if session.CorrectAnswers != 1 || session.QuestionIndex != 0 {
		t.Fatalf("stale expiry mutated session: score=%d index=%d",
			session.CorrectAnswers, session.QuestionIndex)
	}
}

func TestPauseAcceptsOnlyRestart(t *testing.T) {
	svc, store, _, _ := newTestService(slowTiming())
	ctx := context.Background()

	if err := svc.SelectLevel(ctx, 1, 10, "A1"); err != nil {
		t.Fatalf("select level: %v", err)
	}
	if err := svc.Answer(ctx, 1, "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := svc.Next(ctx, 1); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := svc.Pause(ctx, 1); err != nil {
		t.Fatalf("pause: %v", err)
	}

	// Answers and Next while paused are no-ops.
	if err := svc.Answer(ctx, 1, "B"); err != nil {
		t.Fatalf("answer while paused: %v", err)
	}
	if err := svc.Next(ctx, 1); err != nil {
		t.Fatalf("next while paused: %v", err)
	}

	session, err := store.Get(1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.State != entities.StatePaused {
		t.Fatalf("expected paused, got %s", session.State)
	}
	if session.QuestionIndex != 1 || session.CorrectAnswers != 1 {
		t.Fatalf("paused session mutated: index=%d score=%d",
			session.QuestionIndex, session.CorrectAnswers)
	}

	if err := svc.Restart(ctx, 1); err != nil {
		t.Fatalf("restart: %v", err)
	}
	session, err = store.Get(1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.QuestionIndex != 0 || session.CorrectAnswers != 0 {
		t.Fatalf("restart did not reset: index=%d score=%d",
			session.QuestionIndex, session.CorrectAnswers)
	}
	if session.LevelKey != "A1" {
		t.Fatalf("restart changed level to %s", session.LevelKey)
	}
	if session.State != entities.StateAwaitingAnswer {
		t.Fatalf("expected awaiting_answer after restart, got %s", session.State)
	}
}

func TestSelectLevelMidRunActsAsRestart(t *testing.T) {
	svc, store, _, _ := newTestService(slowTiming())
	ctx := context.Background()

	if err := svc.SelectLevel(ctx, 1, 10, "A1"); err != nil {
		t.Fatalf("select level: %v", err)
	}
	if err := svc.Answer(ctx, 1, "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	if err := svc.SelectLevel(ctx, 1, 10, "B1"); err != nil {
		t.Fatalf("re-select level: %v", err)
	}

	session, err := store.Get(1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.LevelKey != "B1" {
		t.Fatalf("expected level B1, got %s", session.LevelKey)
	}
	if session.QuestionIndex != 0 || session.CorrectAnswers != 0 {
		t.Fatalf("expected fresh session, got index=%d score=%d",
			session.QuestionIndex, session.CorrectAnswers)
	}
}

func TestAutoAdvanceAfterFeedbackDelay(t *testing.T) {
	timing := slowTiming()
	timing.FeedbackDelay = 30 * time.Millisecond
	svc, store, messenger, _ := newTestService(timing)
	ctx := context.Background()

	if err := svc.SelectLevel(ctx, 1, 10, "A1"); err != nil {
		t.Fatalf("select level: %v", err)
	}
	if err := svc.Answer(ctx, 1, "A"); err != nil {
		t.Fatalf("answer: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return messenger.questionCount() >= 2
	})

	session, err := store.Get(1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.QuestionIndex != 1 {
		t.Fatalf("expected auto-advance to index 1, got %d", session.QuestionIndex)
	}
}

func TestClearDropsSession(t *testing.T) {
	svc, store, _, _ := newTestService(slowTiming())
	ctx := context.Background()

	if err := svc.SelectLevel(ctx, 1, 10, "A1"); err != nil {
		t.Fatalf("select level: %v", err)
	}
	svc.Clear(1)

	if _, err := store.Get(1); !errors.Is(err, storage.ErrSessionNotFound) {
		t.Fatalf("expected session cleared, got %v", err)
	}
}
