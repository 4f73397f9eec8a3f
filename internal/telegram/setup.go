// Package telegram builds the go-telegram client and installs the command
// table on it.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/paybot/internal/bot/handlers"
)

// ErrEmptyToken is returned when no bot token is configured.
var ErrEmptyToken = errors.New("telegram bot token is empty")

// NewTelegramBot creates the client. opts carry the default handler and
// global middleware.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	if logger == nil {
		logger = slog.Default()
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram client ready", "component", "telegram_bot", "token_prefix", tokenPrefix(token))
	return b, nil
}

// applyMiddleware wraps handler so that mw[0] runs first.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for _, m := range slices.Backward(mw) {
		handler = m(handler)
	}
	return handler
}

// RegisterHandlers installs every command on b with its own middleware.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, commands map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return errors.New("bot instance is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	registered := 0
	for key, h := range commands {
		if h.Handler == nil {
			log.Warn("Command has no handler, skipping", "command", key)
			continue
		}
		b.RegisterHandler(h.HandlerType, h.Pattern, h.MatchType, applyMiddleware(h.Handler, h.Middleware))
		registered++
	}

	log.Info("Commands registered", "count", registered)
	return nil
}

// SetCommands publishes the described commands to the Telegram command menu.
func SetCommands(ctx context.Context, b *bot.Bot, logger *slog.Logger, commands map[string]handlers.RegisteredHandler) error {
	menu := BotCommands(commands)
	if len(menu) == 0 {
		return nil
	}

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: menu}); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	logger.InfoContext(ctx, "Published bot commands", "count", len(menu))
	return nil
}

// BotCommands lists the handlers that carry a description, sorted by command.
func BotCommands(commands map[string]handlers.RegisteredHandler) []models.BotCommand {
	var menu []models.BotCommand
	for _, h := range commands {
		if h.Description == "" {
			continue
		}
		menu = append(menu, models.BotCommand{Command: h.Pattern, Description: h.Description})
	}
	slices.SortFunc(menu, func(a, b models.BotCommand) int {
		return strings.Compare(a.Command, b.Command)
	})
	return menu
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}
