package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
	"github.com/aliskhannn/english-level-bot/internal/repository"
)

const leaderboardSize = 10

type QuizService interface {
	SelectLevel(ctx context.Context, userID, chatID int64, key string) error
	Answer(ctx context.Context, userID int64, letter string) error
	Next(ctx context.Context, userID int64) error
	Pause(ctx context.Context, userID int64) error
	Restart(ctx context.Context, userID int64) error
	Clear(userID int64)
}

type LeaderboardService interface {
	EnsureUser(ctx context.Context, userID, chatID int64, firstName, username string) error
	TopScores(ctx context.Context, n int) ([]entities.LeaderboardEntry, error)
	CountUsers(ctx context.Context) (int, error)
}

type BroadcastService interface {
	Broadcast(ctx context.Context, text string) (int, error)
}

type QuestionCatalog interface {
	Levels() []string
	ReadingLevels() []string
	Topics() []repository.Topic
}

type Handler struct {
	bot         *tgbotapi.BotAPI
	logger      *zap.Logger
	quiz        QuizService
	leaderboard LeaderboardService
	broadcast   BroadcastService
	catalog     QuestionCatalog
	adminID     int64
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
	quiz QuizService,
	leaderboard LeaderboardService,
	broadcast BroadcastService,
	catalog QuestionCatalog,
	adminID int64,
) *Handler {
	return &Handler{
		bot:         bot,
		logger:      logger,
		quiz:        quiz,
		leaderboard: leaderboard,
		broadcast:   broadcast,
		catalog:     catalog,
		adminID:     adminID,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	chatID := update.Message.Chat.ID

	err := h.leaderboard.EnsureUser(ctx, from.ID, chatID, from.FirstName, from.UserName)
	if err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
	}

	if !update.Message.IsCommand() {
		h.send(newHTMLMessage(chatID, msgUnknownCmd))
		return
	}

	switch update.Message.Command() {
	case "start":
		// Explicit restart: any active session is wiped before the menu.
		h.quiz.Clear(from.ID)
		msg := newHTMLMessage(chatID, msgWelcome)
		msg.ReplyMarkup = buildLevelKeyboard(h.catalog.Levels(), false)
		h.send(msg)

	case "reading":
		h.quiz.Clear(from.ID)
		msg := newHTMLMessage(chatID, msgReadingIntro)
		msg.ReplyMarkup = buildLevelKeyboard(h.catalog.ReadingLevels(), true)
		h.send(msg)

	case "topics":
		h.quiz.Clear(from.ID)
		msg := newHTMLMessage(chatID, msgTopicsIntro)
		msg.ReplyMarkup = buildTopicsKeyboard(h.catalog.Topics())
		h.send(msg)

	case "top":
		_ = h.withErrorHandling(h.topHandler())(ctx, chatID)

	case "stats":
		_ = h.withErrorHandling(h.statsHandler(from.ID))(ctx, chatID)

	case "broadcast":
		_ = h.withErrorHandling(h.broadcastHandler(from.ID, update.Message.CommandArguments()))(ctx, chatID)

	case "help":
		h.send(newHTMLMessage(chatID, msgUnknownCmd))

	default:
		h.send(newHTMLMessage(chatID, msgUnknownCmd))
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}

	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	data := decodeCallback(cb.Data)

	// Remove the user's "clock" before any quiz work happens.
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}

	var fn HandlerFunc

	switch data.Action {
	case actionLevel:
		if len(data.Params) != 1 {
			return
		}
		key := data.Params[0]
		fn = func(ctx context.Context, chatID int64) error {
			h.send(newHTMLMessage(chatID, fmt.Sprintf(msgLevelChosen, key)))
			return h.quiz.SelectLevel(ctx, userID, chatID, key)
		}

	case actionReading:
		if len(data.Params) != 1 {
			return
		}
		key := repository.ReadingKey(data.Params[0])
		fn = func(ctx context.Context, chatID int64) error {
			h.send(newHTMLMessage(chatID, fmt.Sprintf(msgLevelChosen, data.Params[0])))
			return h.quiz.SelectLevel(ctx, userID, chatID, key)
		}

	case actionTopic:
		if len(data.Params) != 1 {
			return
		}
		key := data.Params[0]
		fn = func(ctx context.Context, chatID int64) error {
			return h.quiz.SelectLevel(ctx, userID, chatID, key)
		}

	case actionAnswer:
		if len(data.Params) != 1 {
			return
		}
		letter := strings.ToUpper(data.Params[0])
		fn = func(ctx context.Context, chatID int64) error {
			return h.quiz.Answer(ctx, userID, letter)
		}

	case actionNext:
		fn = func(ctx context.Context, chatID int64) error {
			return h.quiz.Next(ctx, userID)
		}

	case actionPause:
		fn = func(ctx context.Context, chatID int64) error {
			return h.quiz.Pause(ctx, userID)
		}

	case actionRestart:
		fn = func(ctx context.Context, chatID int64) error {
			return h.quiz.Restart(ctx, userID)
		}

	default:
		h.logger.Debug("unknown callback action", zap.String("data", cb.Data))
		return
	}

	_ = h.withErrorHandling(fn)(ctx, chatID)
}

func (h *Handler) topHandler() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		entries, err := h.leaderboard.TopScores(ctx, leaderboardSize)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			h.send(newHTMLMessage(chatID, msgNoScores))
			return nil
		}

		h.send(newHTMLMessage(chatID, formatLeaderboard(entries)))
		return nil
	}
}

func (h *Handler) statsHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if !h.isAdmin(userID) {
			h.send(newHTMLMessage(chatID, msgNotAdmin))
			return nil
		}

		count, err := h.leaderboard.CountUsers(ctx)
		if err != nil {
			return err
		}

		h.send(newHTMLMessage(chatID, fmt.Sprintf("👥 Foydalanuvchilar soni: <b>%d</b>", count)))
		return nil
	}
}

func (h *Handler) broadcastHandler(userID int64, text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if !h.isAdmin(userID) {
			h.send(newHTMLMessage(chatID, msgNotAdmin))
			return nil
		}

		text = strings.TrimSpace(text)
		if text == "" {
			h.send(newHTMLMessage(chatID, msgBroadcastUse))
			return nil
		}

		sent, err := h.broadcast.Broadcast(ctx, text)
		if err != nil {
			return err
		}

		h.send(newHTMLMessage(chatID, fmt.Sprintf("📣 Yuborildi: <b>%d</b> ta chat", sent)))
		return nil
	}
}

func (h *Handler) isAdmin(userID int64) bool {
	return h.adminID != 0 && userID == h.adminID
}

func (h *Handler) sendError(chatID int64, text string) {
	h.send(newHTMLMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
