package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/korjavin/prayerbot/pkg/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the application
type Config struct {
	// Discord configuration
	DiscordToken      string
	ReminderChannelID string
	SoundPath         string

	// Telegram mirror, enabled when both values are set
	TelegramBotToken string
	TelegramChatID   int64

	// Prayer time source
	City       string
	Country    string
	Method     int
	Timezone   string
	Location   *time.Location
	APIBase    string
	APITimeout time.Duration

	// Application configuration
	RefreshCron string
	DataDir     string
	LogLevel    string
}

// TelegramEnabled reports whether the Telegram mirror is configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	log := logger.New("config")

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded: %v", err)
	}

	cfg := &Config{}

	// Required configurations
	cfg.DiscordToken = os.Getenv("DISCORD_TOKEN")
	if cfg.DiscordToken == "" {
		return nil, errors.New("DISCORD_TOKEN environment variable is required")
	}

	// Optional configurations with defaults
	cfg.ReminderChannelID = os.Getenv("DISCORD_REMINDER_CHANNEL_ID")
	cfg.SoundPath = getEnvWithDefault("SOUND_PATH", "prayer_reminder.dca")
	cfg.City = getEnvWithDefault("CITY", "Jeddah")
	cfg.Country = getEnvWithDefault("COUNTRY", "Saudi Arabia")
	cfg.Timezone = getEnvWithDefault("TIMEZONE", "Asia/Riyadh")
	cfg.APIBase = getEnvWithDefault("PRAYER_API_BASE", "https://api.aladhan.com/v1")
	cfg.RefreshCron = getEnvWithDefault("REFRESH_CRON", "1 0 * * *")
	cfg.DataDir = getEnvWithDefault("DATA_DIR", "data")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	method, err := strconv.Atoi(getEnvWithDefault("CALC_METHOD", "4"))
	if err != nil {
		return nil, errors.Wrap(err, "CALC_METHOD must be an integer")
	}
	cfg.Method = method

	cfg.APITimeout, err = time.ParseDuration(getEnvWithDefault("PRAYER_API_TIMEOUT", "10s"))
	if err != nil {
		return nil, errors.Wrap(err, "PRAYER_API_TIMEOUT must be a duration")
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid TIMEZONE %q", cfg.Timezone)
	}

	if _, err := cron.ParseStandard(cfg.RefreshCron); err != nil {
		return nil, errors.Wrapf(err, "invalid REFRESH_CRON %q", cfg.RefreshCron)
	}

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "TELEGRAM_CHAT_ID must be an integer")
		}
	}

	// Log configuration with sensitive data redacted
	logCfg := *cfg
	logCfg.Location = nil
	logCfg.DiscordToken = redact(logCfg.DiscordToken)
	logCfg.TelegramBotToken = redact(logCfg.TelegramBotToken)
	log.Info("Configuration loaded: %+v", logCfg)
	return cfg, nil
}

// getEnvWithDefault returns the value of the environment variable or the default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func redact(secret string) string {
	if len(secret) > 8 {
		return secret[:8] + "...REDACTED..."
	}
	return secret
}
