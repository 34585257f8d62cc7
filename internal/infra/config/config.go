package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	DatabaseURL     string
	AdminTelegramID int64
	LogLevel        string
	Environment     string

	// Scheduling. TZOffsetHours pins every time computation to a fixed
	// UTC offset; the host's local clock is never consulted.
	CronSpecTick     string // one-minute evaluation loop
	CronSpecRollover string // daily countdown decrement + purge
	TZOffsetHours    int

	// Delivery pacing for tick dispatch and admin broadcasts.
	BroadcastBatchSize int
	BroadcastPause     time.Duration

	// GigaChat oracle. Credentials may be left empty; the bot then runs
	// in degraded mode and parses utterances heuristically.
	GigaChatAuthURL      string
	GigaChatAPIURL       string
	GigaChatClientID     string
	GigaChatClientSecret string
	GigaChatScope        string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecTick = os.Getenv("CRON_SPEC_TICK")
	if cfg.CronSpecTick == "" {
		cfg.CronSpecTick = "* * * * *" // Default: every minute
	}
	cfg.CronSpecRollover = os.Getenv("CRON_SPEC_ROLLOVER")
	if cfg.CronSpecRollover == "" {
		cfg.CronSpecRollover = "0 0 * * *" // Default: midnight
	}

	cfg.TZOffsetHours = 3 // Default: Moscow time (UTC+3)
	if offsetStr := os.Getenv("TZ_OFFSET_HOURS"); offsetStr != "" {
		cfg.TZOffsetHours, err = strconv.Atoi(offsetStr)
		if err != nil || cfg.TZOffsetHours < -12 || cfg.TZOffsetHours > 14 {
			return nil, fmt.Errorf("invalid TZ_OFFSET_HOURS: %q", offsetStr)
		}
	}

	cfg.BroadcastBatchSize = 10
	if batchStr := os.Getenv("BROADCAST_BATCH_SIZE"); batchStr != "" {
		cfg.BroadcastBatchSize, err = strconv.Atoi(batchStr)
		if err != nil || cfg.BroadcastBatchSize <= 0 {
			return nil, fmt.Errorf("invalid BROADCAST_BATCH_SIZE: %q", batchStr)
		}
	}
	cfg.BroadcastPause = time.Second

	cfg.GigaChatAuthURL = os.Getenv("GIGACHAT_AUTH_URL")
	if cfg.GigaChatAuthURL == "" {
		cfg.GigaChatAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	}
	cfg.GigaChatAPIURL = os.Getenv("GIGACHAT_API_URL")
	if cfg.GigaChatAPIURL == "" {
		cfg.GigaChatAPIURL = "https://gigachat.devices.sberbank.ru/api/v1/chat/completions"
	}
	cfg.GigaChatClientID = os.Getenv("GIGACHAT_CLIENT_ID")
	cfg.GigaChatClientSecret = os.Getenv("GIGACHAT_CLIENT_SECRET")
	cfg.GigaChatScope = os.Getenv("GIGACHAT_SCOPE")
	if cfg.GigaChatScope == "" {
		cfg.GigaChatScope = "GIGACHAT_API_PERS"
	}

	return cfg, nil
}

// Location returns the fixed-offset location all scheduling math runs in.
func (c *AppConfig) Location() *time.Location {
	name := fmt.Sprintf("UTC%+d", c.TZOffsetHours)
	return time.FixedZone(name, c.TZOffsetHours*3600)
}
