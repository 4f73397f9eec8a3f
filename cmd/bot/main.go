// Package main contains the entrypoint for the payment tracking bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/paybot/internal/bot"
	"github.com/edgard/paybot/internal/bot/handlers"
	"github.com/edgard/paybot/internal/bot/tasks"
	"github.com/edgard/paybot/internal/config"
	"github.com/edgard/paybot/internal/database"
	"github.com/edgard/paybot/internal/ledger"
	"github.com/edgard/paybot/internal/logger"
	"github.com/edgard/paybot/internal/monitor"
	"github.com/edgard/paybot/internal/resilience"
	"github.com/edgard/paybot/internal/telegram"
	"github.com/edgard/paybot/internal/tracker"

	_ "time/tzdata"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, storage, ledger, Telegram and the scheduler, then blocks
// until shutdown. It returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	loc, err := cfg.Ledger.Location()
	if err != nil {
		log.Error("Invalid ledger timezone", "timezone", cfg.Ledger.Timezone, "error", err)
		return 1
	}

	store, closeStore, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Error("Failed to open storage", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer closeStore()

	guarded := resilience.Wrap("ledger_storage", store, resilience.Config{
		MaxFailures:  cfg.Breaker.MaxFailures,
		OpenTimeout:  cfg.Breaker.OpenTimeout,
		ReadAttempts: cfg.Breaker.ReadAttempts,
		RetryDelay:   cfg.Breaker.RetryDelay,
	}, log)

	payments := ledger.New(guarded, ledger.Options{
		Location: loc,
		Timeout:  cfg.Ledger.StorageTimeout,
		Logger:   log,
	})
	svc := tracker.New(payments, log)

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Tracker: svc,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if cfg.Telegram.DropPendingUpdates {
		if _, err := tg.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			log.Warn("Failed to drop pending updates", "error", err)
		}
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommands(ctx, tg, log, cmdHandlers); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:  log,
		Store:   store,
		Timeout: cfg.Ledger.StorageTimeout,
	})
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, taskMap, loc)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var mon *monitor.Server
	if cfg.Metrics.Listen != "" {
		mon = monitor.NewServer(cfg.Metrics.Listen, store, log)
	}

	app := bot.NewBot(log, tg, sched, mon)

	log.Info("Starting bot...", "timezone", loc.String(), "storage", cfg.Database.Driver)
	runErr := app.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
