package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
)

type ChatSource interface {
	ActiveChatIDs(ctx context.Context) ([]int64, error)
}

type ScoreSource interface {
	TopScores(ctx context.Context, n int) ([]entities.LeaderboardEntry, error)
}

// BroadcastMessenger delivers service-initiated messages outside a quiz run.
type BroadcastMessenger interface {
	SendText(chatID int64, text string) error
	SendLeaderboard(chatID int64, entries []entities.LeaderboardEntry) error
}

const digestSize = 10

// BroadcastService sends admin broadcasts and the scheduled leaderboard
// digest to every known chat.
type BroadcastService struct {
	chats     ChatSource
	scores    ScoreSource
	messenger BroadcastMessenger
	logger    *zap.Logger
}

func NewBroadcastService(
	chats ChatSource,
	scores ScoreSource,
	messenger BroadcastMessenger,
	logger *zap.Logger,
) *BroadcastService {
	return &BroadcastService{
		chats:     chats,
		scores:    scores,
		messenger: messenger,
		logger:    logger,
	}
}

// Start runs the digest scheduler until the context is cancelled.
func (s *BroadcastService) Start(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(schedule, func() {
		if err := s.SendDigest(ctx); err != nil {
			s.logger.Error("failed to send leaderboard digest", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add digest cron job: %w", err)
	}

	c.Start()
	s.logger.Info("digest scheduler started", zap.String("schedule", schedule))

	<-ctx.Done()

	c.Stop()
	s.logger.Info("digest scheduler stopped")
	return nil
}

// Broadcast sends a plain text message to all known chats and returns the
// number of successful deliveries. Individual failures (blocked bot, dead
// chat) are logged and skipped.
func (s *BroadcastService) Broadcast(ctx context.Context, text string) (int, error) {
	chatIDs, err := s.chats.ActiveChatIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list chats: %w", err)
	}

	return s.fanOut(chatIDs, func(chatID int64) error {
		return s.messenger.SendText(chatID, text)
	}), nil
}

// SendDigest sends the current top scores to all known chats.
func (s *BroadcastService) SendDigest(ctx context.Context) error {
	entries, err := s.scores.TopScores(ctx, digestSize)
	if err != nil {
		return fmt.Errorf("load top scores: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	chatIDs, err := s.chats.ActiveChatIDs(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}

	sent := s.fanOut(chatIDs, func(chatID int64) error {
		return s.messenger.SendLeaderboard(chatID, entries)
	})

	s.logger.Info("leaderboard digest sent",
		zap.Int("chats", len(chatIDs)),
		zap.Int("delivered", sent),
	)
	return nil
}

// fanOut delivers to all chats with a bounded number of concurrent sends.
func (s *BroadcastService) fanOut(chatIDs []int64, send func(chatID int64) error) int {
	const maxConcurrent = 10
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	sent := 0

	for _, chatID := range chatIDs {
		wg.Add(1)
		sem <- struct{}{}

		go func(chatID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := send(chatID); err != nil {
				s.logger.Warn("broadcast delivery failed",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
				return
			}

			mu.Lock()
			sent++
			mu.Unlock()
		}(chatID)
	}

	wg.Wait()
	return sent
}
