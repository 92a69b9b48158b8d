package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
)

// UserRepository provides access to user records in the database.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository with the provided database pool.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// SaveUser inserts a new user or refreshes the name fields of an existing one.
// It sets FirstSeenAt from the database.
func (r *UserRepository) SaveUser(ctx context.Context, user *entities.User) error {
	query := `
    INSERT INTO users (id, chat_id, first_name, username)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (id) DO UPDATE
        SET first_name = EXCLUDED.first_name,
            username   = EXCLUDED.username
    RETURNING first_seen_at
    `
	err := r.db.QueryRow(ctx, query,
		user.ID, user.ChatID, user.FirstName, user.Username,
	).Scan(&user.FirstSeenAt)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// UpdateBestScore raises the stored best score if the new one is higher.
// The read-modify-write is a single statement, so concurrent attempts by the
// same user cannot lose an update.
func (r *UserRepository) UpdateBestScore(ctx context.Context, userID int64, score int) error {
	query := `
    UPDATE users
    SET best_score = GREATEST(best_score, $2)
    WHERE id = $1
    `
	if _, err := r.db.Exec(ctx, query, userID, score); err != nil {
		return fmt.Errorf("update best score: %w", err)
	}

	return nil
}

// TopScores returns the top-n users by best score. Ties are broken by who was
// seen first.
func (r *UserRepository) TopScores(ctx context.Context, n int) ([]entities.LeaderboardEntry, error) {
	query := `
    SELECT id, first_name, best_score
    FROM users
    WHERE best_score > 0
    ORDER BY best_score DESC, first_seen_at ASC
    LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	var entries []entities.LeaderboardEntry
	for rows.Next() {
		var e entities.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.FirstName, &e.BestScore); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ActiveChatIDs returns the chat ids of every known user, for broadcasts.
func (r *UserRepository) ActiveChatIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, "SELECT chat_id FROM users")
	if err != nil {
		return nil, fmt.Errorf("query chat ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chat id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CountUsers returns the total number of registered users.
func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}
