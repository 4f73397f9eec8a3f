// Package handlers implements the payment bot's Telegram commands, the
// automatic detection handler and the middleware guarding them.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HumanSenderOnly drops message updates that have no sender or were sent by
// a bot, so other bots' messages are never recorded as payments.
func HumanSenderOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				return
			}
			if update.Message.From.IsBot {
				deps.Logger.DebugContext(ctx, "Ignoring message from bot",
					"middleware", "HumanSenderOnly",
					"chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)
				return
			}
			next(ctx, bot, update)
		}
	}
}
