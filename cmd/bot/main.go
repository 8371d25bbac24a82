package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sowing_calendar_bot/internal/app"
	"sowing_calendar_bot/internal/domain/sowing"
	"sowing_calendar_bot/internal/infra/config"
	idb "sowing_calendar_bot/internal/infra/database"
	"sowing_calendar_bot/internal/infra/logger"
	"sowing_calendar_bot/internal/infra/metrics"
	"sowing_calendar_bot/internal/infra/scheduler"
	"sowing_calendar_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.WithField("environment", cfg.Environment).
		WithField("timezone", cfg.Timezone).
		WithField("admin_id", cfg.AdminTelegramID).
		Info("Configuration loaded")

	defaultLocale, err := sowing.ParseLocale(cfg.DefaultLocale)
	if err != nil {
		mainLogger.WithError(err).Fatal("Invalid DEFAULT_LOCALE")
	}

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established successfully.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := idb.EnsureSchema(ctx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not apply database schema")
	}

	windowRepo := idb.NewPostgresWindowRepository(db)
	farmerRepo := idb.NewPostgresFarmerRepository(db)
	recordRepo := idb.NewPostgresRecordRepository(db)

	loc := cfg.Location
	clock := app.Clock(func() time.Time { return time.Now().In(loc) })

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID).WithField("text", c.Text())
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}
	notifier := telegram.NewTelebotAdapter(bot)

	calendarService := app.NewCalendarService(windowRepo, recordRepo, farmerRepo, clock, logger.Component("calendar_service")).
		WithDefaultLocale(defaultLocale)
	adminService := app.NewAdminService(windowRepo, farmerRepo, cfg.AdminTelegramID, logger.Component("admin_service"))
	reminderService := app.NewReminderService(farmerRepo, windowRepo, recordRepo, notifier, logger.Component("reminder_service"))

	handlerLogger := logger.Component("telegram")
	telegram.RegisterBotCommands(ctx, bot, cfg, calendarService, handlerLogger)
	telegram.RegisterCalendarHandlers(ctx, bot, calendarService, handlerLogger)
	telegram.RegisterCallbackHandlers(ctx, bot, calendarService, handlerLogger)
	telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, calendarService.ReferenceMonth, handlerLogger)
	mainLogger.Info("Command handlers registered.")

	reminderScheduler := scheduler.NewReminderScheduler(reminderService, clock, loc, logger.Component("scheduler"), cfg.CronSpecMonthly)
	if err := reminderScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start reminder scheduler")
	}

	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr, logger.Component("metrics"))
		metricsServer.Start()
	}

	mainLogger.Info("Application setup complete. Bot and scheduler are starting...")
	go bot.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	reminderScheduler.Stop()
	cancel()
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("Metrics server shutdown")
		}
		shutdownCancel()
	}
	mainLogger.Info("Application shut down gracefully.")
}
