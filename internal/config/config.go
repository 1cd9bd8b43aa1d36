package config

import (
	"fmt"
	"os"
	"strings"
)

// Config keeps runtime settings for the reminder bot.
type Config struct {
	TelegramToken   string
	DatabaseURL     string
	ChatName        string
	ChatID          string
	TasksFile       string
	DefaultTimezone string
	CycleTime       string
	LogLevel        string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:   strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ChatName:        strings.TrimSpace(os.Getenv("CHAT_NAME")),
		ChatID:          strings.TrimSpace(os.Getenv("CHAT_ID")),
		TasksFile:       strings.TrimSpace(os.Getenv("TASKS_FILE")),
		DefaultTimezone: strings.TrimSpace(os.Getenv("DEFAULT_TIMEZONE")),
		CycleTime:       strings.TrimSpace(os.Getenv("CYCLE_TIME")),
		LogLevel:        strings.TrimSpace(os.Getenv("LOG_LEVEL")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "reminders.db"
	}
	if cfg.ChatName == "" {
		cfg.ChatName = "Our Reminders"
	}
	if cfg.TasksFile == "" {
		cfg.TasksFile = "tasks.json"
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "Asia/Colombo"
	}
	if cfg.CycleTime == "" {
		cfg.CycleTime = "08:00"
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}
