package service

import (
	"context"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
)

type UserRepository interface {
	SaveUser(ctx context.Context, user *entities.User) error
	UpdateBestScore(ctx context.Context, userID int64, score int) error
	TopScores(ctx context.Context, n int) ([]entities.LeaderboardEntry, error)
	CountUsers(ctx context.Context) (int, error)
}

// LeaderboardService keeps the per-user best-score records.
type LeaderboardService struct {
	repository UserRepository
}

func NewLeaderboardService(repository UserRepository) *LeaderboardService {
	return &LeaderboardService{repository: repository}
}

// EnsureUser registers the user on first contact and keeps the display name
// fields fresh afterwards.
func (s *LeaderboardService) EnsureUser(ctx context.Context, userID, chatID int64, firstName, username string) error {
	user := entities.NewUser(userID, chatID, firstName, username)
	return s.repository.SaveUser(ctx, user)
}

// RecordAttempt stores the score if it beats the user's previous best.
func (s *LeaderboardService) RecordAttempt(ctx context.Context, userID int64, score int) error {
	return s.repository.UpdateBestScore(ctx, userID, score)
}

// TopScores returns the top-n users by best score, ties broken by who was
// seen first.
func (s *LeaderboardService) TopScores(ctx context.Context, n int) ([]entities.LeaderboardEntry, error) {
	return s.repository.TopScores(ctx, n)
}

// CountUsers returns the number of registered users.
func (s *LeaderboardService) CountUsers(ctx context.Context) (int, error) {
	return s.repository.CountUsers(ctx)
}
