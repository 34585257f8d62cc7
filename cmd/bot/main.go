package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reminder_notification_bot/internal/app"
	"reminder_notification_bot/internal/infra/config"
	idb "reminder_notification_bot/internal/infra/database"
	"reminder_notification_bot/internal/infra/gigachat"
	"reminder_notification_bot/internal/infra/logger"
	"reminder_notification_bot/internal/infra/scheduler"
	"reminder_notification_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithField("environment", cfg.Environment).Info("Reminder bot starting...")

	loc := cfg.Location()

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	log.Info("Database connection established")

	if err := idb.EnsureSchema(db); err != nil {
		log.WithError(err).Fatal("Could not ensure database schema")
	}

	reminderRepo := idb.NewPostgresReminderRepository(db)

	// Oracle
	oracleClient := gigachat.NewClient(
		cfg.GigaChatAuthURL,
		cfg.GigaChatAPIURL,
		cfg.GigaChatClientID,
		cfg.GigaChatClientSecret,
		cfg.GigaChatScope,
		log.WithField("component", "gigachat"),
	)
	if cfg.GigaChatClientID == "" || cfg.GigaChatClientSecret == "" {
		log.Warn("GigaChat credentials are not set; running in degraded mode with heuristic parsing only")
	}

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(map[string]interface{}{
					"sender_id": c.Sender().ID,
					"chat_id":   c.Chat().ID,
					"text":      c.Text(),
				})
			}
			entry.Error("Telebot handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.WithError(err).Fatal("Could not create Telegram bot")
	}
	tgAdapter := telegram.NewTelebotAdapter(bot)

	// Services
	reminderService := app.NewReminderService(
		reminderRepo,
		oracleClient,
		tgAdapter,
		log.WithField("component", "reminder_service"),
		loc,
		cfg.BroadcastBatchSize,
		cfg.BroadcastPause,
	)
	tickService := app.NewTickService(
		reminderRepo,
		tgAdapter,
		log.WithField("component", "tick_service"),
		loc,
		cfg.BroadcastBatchSize,
		cfg.BroadcastPause,
	)

	// Scheduler
	reminderScheduler := scheduler.NewReminderScheduler(
		tickService,
		log,
		loc,
		cfg.CronSpecTick,
		cfg.CronSpecRollover,
	)
	reminderScheduler.Start()

	// Handlers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	telegram.RegisterHandlers(ctx, bot, cfg, reminderService, log.WithField("component", "handlers"))
	log.Info("Bot handlers registered")

	go bot.Start()
	log.Info("Application setup complete, bot is polling")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cancel()
	reminderScheduler.Stop()
	bot.Stop()
	log.Info("Application shut down gracefully")
}
