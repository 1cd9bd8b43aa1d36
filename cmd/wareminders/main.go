package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thikhinab/wa-reminders/internal/bot"
	"github.com/thikhinab/wa-reminders/internal/config"
	"github.com/thikhinab/wa-reminders/internal/repository"
	"github.com/thikhinab/wa-reminders/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	chatRepo := repository.NewChatRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	importer := service.NewImportService(taskRepo, cfg.DefaultTimezone)
	count, err := importer.ImportFile(ctx, cfg.TasksFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("task file missing, continuing with stored tasks", "path", cfg.TasksFile)
	case err != nil:
		log.Fatalf("import tasks: %v", err)
	default:
		logger.Info("task file imported", "path", cfg.TasksFile, "tasks", count)
	}

	telegramBot, err := bot.New(cfg.TelegramToken, reactionRepo, logger)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	defaultZone, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		logger.Warn("unknown default timezone, using UTC", "timezone", cfg.DefaultTimezone)
		defaultZone = time.UTC
	}

	lifecycle := service.NewLifecycleService(taskRepo, reminderRepo, telegramBot, defaultZone, logger)

	runCycle := func() {
		cycleCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		destination, err := resolveDestination(cycleCtx, chatRepo, telegramBot, cfg)
		if err != nil {
			logger.Error("destination not resolved, skipping cycle", "chat_name", cfg.ChatName, "error", err)
			return
		}
		if err := lifecycle.RunCycle(cycleCtx, destination); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("cycle failed", "error", err)
		}
	}

	scheduler := service.NewSchedulerService(time.UTC)
	if _, err := scheduler.ScheduleDaily(cfg.CycleTime, runCycle); err != nil {
		log.Fatalf("schedule cycle: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Catch up immediately in case the daily trigger already passed.
	go runCycle()

	logger.Info("reminder bot started", "cycle_time", cfg.CycleTime)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	logger.Info("shutdown complete")
}

// resolveDestination returns the chat the reminders go to: the persisted
// one if present, otherwise CHAT_ID from the environment, otherwise a
// lookup of CHAT_NAME against the chats the bot has seen. A fresh
// resolution is persisted for the next run.
func resolveDestination(ctx context.Context, chatRepo *repository.ChatRepository, channel service.Channel, cfg config.Config) (string, error) {
	destination, err := chatRepo.Destination(ctx)
	if err != nil {
		return "", err
	}
	if destination != "" {
		return destination, nil
	}

	if cfg.ChatID != "" {
		destination = cfg.ChatID
	} else {
		destination, err = channel.ResolveDestination(ctx, cfg.ChatName)
		if err != nil {
			return "", err
		}
	}

	if err := chatRepo.SaveDestination(ctx, destination, cfg.ChatName); err != nil {
		return "", err
	}
	return destination, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
