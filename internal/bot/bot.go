// Package bot runs the payment tracker's long-lived components and manages
// their lifecycle.
package bot

import (
	"context"
	"errors"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/paybot/internal/monitor"
)

// errListenerStopped reports that polling ended while the bot should still run.
var errListenerStopped = errors.New("telegram listener stopped unexpectedly")

// Bot owns the Telegram listener, the scheduler and the optional monitoring
// server.
type Bot struct {
	logger    *slog.Logger
	tgBot     *tgbot.Bot
	scheduler *Scheduler
	monitor   *monitor.Server
}

// NewBot creates a Bot. mon may be nil when no monitoring address is configured.
func NewBot(logger *slog.Logger, tgBot *tgbot.Bot, scheduler *Scheduler, mon *monitor.Server) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		tgBot:     tgBot,
		scheduler: scheduler,
		monitor:   mon,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails; the first failure cancels the rest.
func (b *Bot) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error { return b.poll(gCtx) })
	g.Go(func() error { return b.schedule(gCtx) })
	if b.monitor != nil {
		g.Go(func() error { return b.monitor.Run(gCtx) })
	}

	b.logger.Info("Payment bot running", "monitoring", b.monitor != nil)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Payment bot stopped with error", "error", err)
		return err
	}
	b.logger.Info("Payment bot stopped")
	return nil
}

func (b *Bot) poll(ctx context.Context) error {
	b.tgBot.Start(ctx)
	if ctx.Err() == nil {
		return errListenerStopped
	}
	return nil
}

func (b *Bot) schedule(ctx context.Context) error {
	if err := b.scheduler.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	if err := b.scheduler.Stop(); err != nil {
		b.logger.Error("Scheduler did not stop cleanly", "error", err)
	}
	return nil
}
