package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/english-level-bot/internal/repository"
	"github.com/aliskhannn/english-level-bot/internal/storage"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling maps domain errors to user-facing recovery prompts.
// A missing session or unknown level just asks the user to restart; nothing
// here is ever fatal to the process.
func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		err := fn(ctx, chatID)
		if err == nil {
			return nil
		}

		switch {
		case errors.Is(err, storage.ErrSessionNotFound), errors.Is(err, repository.ErrLevelNotFound):
			h.sendError(chatID, msgRestart)
		default:
			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalErr)
		}
		return nil
	}
}
