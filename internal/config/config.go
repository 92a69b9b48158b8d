package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string `mapstructure:"env"` // current application environment (local, dev, prod etc)
	TelegramAPIToken string `mapstructure:"-"`   // Telegram API token loaded from environment
	AdminID          int64  `mapstructure:"-"`   // user id allowed to use admin commands
	Quiz             Quiz   `mapstructure:"quiz"`
	Data             Data   `mapstructure:"data"`
	DB               DB     `mapstructure:"database"`
}

// Quiz contains the timing parameters of a quiz run.
type Quiz struct {
	QuestionSeconds int           `mapstructure:"question_seconds"` // countdown for standard questions
	ReadingSeconds  int           `mapstructure:"reading_seconds"`  // countdown for reading questions
	FeedbackDelay   time.Duration `mapstructure:"feedback_delay"`   // pause before auto-advance
	TickInterval    time.Duration `mapstructure:"tick_interval"`    // countdown display refresh
	DigestSchedule  string        `mapstructure:"digest_schedule"`  // cron spec for the leaderboard digest
}

// Data holds paths to the static question files.
type Data struct {
	QuestionsPath string `mapstructure:"questions_path"`
	ReadingPath   string `mapstructure:"reading_path"`
	TopicsPath    string `mapstructure:"topics_path"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("quiz.question_seconds", 10)
	v.SetDefault("quiz.reading_seconds", 30)
	v.SetDefault("quiz.feedback_delay", "3s")
	v.SetDefault("quiz.tick_interval", "500ms")
	v.SetDefault("quiz.digest_schedule", "0 9 * * *")
	v.SetDefault("data.questions_path", "assets/data/questions.json")
	v.SetDefault("data.reading_path", "assets/data/reading_tests.json")
	v.SetDefault("data.topics_path", "assets/data/topics.json")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("admin_id", "ADMIN_ID")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.AdminID = v.GetInt64("admin_id")

	return &cfg, nil
}
