package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aliskhannn/english-level-bot/internal/config"
	"github.com/aliskhannn/english-level-bot/internal/delivery/telegram"
	"github.com/aliskhannn/english-level-bot/internal/infra/postgres"
	"github.com/aliskhannn/english-level-bot/internal/logger"
	"github.com/aliskhannn/english-level-bot/internal/repository"
	"github.com/aliskhannn/english-level-bot/internal/service"
	"github.com/aliskhannn/english-level-bot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zapLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zapLogger.Sync() }()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		zapLogger.Fatal("failed to create bot", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{
			Command:     "start",
			Description: "Darajani tanlab testni boshlash",
		},
		{
			Command:     "reading",
			Description: "Reading testlari",
		},
		{
			Command:     "topics",
			Description: "Mavzu boʻyicha testlar",
		},
		{
			Command:     "top",
			Description: "Eng yaxshi natijalar",
		},
		{
			Command:     "help",
			Description: "Yordam",
		},
	}

	if _, err = bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		zapLogger.Warn("failed to set bot commands", zap.Error(err))
	}

	zapLogger.Info("authorized", zap.String("account", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	questionRepo, err := repository.NewQuestionRepository(
		cfg.Data.QuestionsPath,
		cfg.Data.ReadingPath,
		cfg.Data.TopicsPath,
		zapLogger,
	)
	if err != nil {
		zapLogger.Fatal("failed to load question bank", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, cfg.DB.URL, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	sessionStore := storage.NewSessionStore()
	presenter := telegram.NewPresenter(bot)

	leaderboardService := service.NewLeaderboardService(userRepo)

	quizService := service.NewQuizService(
		questionRepo,
		sessionStore,
		leaderboardService,
		presenter,
		service.Timing{
			QuestionDuration: time.Duration(cfg.Quiz.QuestionSeconds) * time.Second,
			ReadingDuration:  time.Duration(cfg.Quiz.ReadingSeconds) * time.Second,
			FeedbackDelay:    cfg.Quiz.FeedbackDelay,
			TickInterval:     cfg.Quiz.TickInterval,
		},
		zapLogger,
	)

	broadcastService := service.NewBroadcastService(userRepo, leaderboardService, presenter, zapLogger)
	go func() {
		if err := broadcastService.Start(ctx, cfg.Quiz.DigestSchedule); err != nil {
			zapLogger.Error("digest scheduler failed", zap.Error(err))
		}
	}()

	handler := telegram.NewHandler(
		bot,
		zapLogger,
		quizService,
		leaderboardService,
		broadcastService,
		questionRepo,
		cfg.AdminID,
	)
	if err := handler.Run(ctx); err != nil && ctx.Err() == nil {
		zapLogger.Fatal("handler stopped", zap.Error(err))
	}

	zapLogger.Info("shutdown signal received")
}
