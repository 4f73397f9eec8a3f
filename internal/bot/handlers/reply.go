package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/paybot/internal/ledger"
	"github.com/edgard/paybot/internal/report"
)

func sendText(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

func sendReply(ctx context.Context, b *bot.Bot, log *slog.Logger, msg *models.Message, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID, AllowSendingWithoutReply: true},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", msg.Chat.ID)
	}
}

// errorMessage picks the configured reply for a tracker error.
func errorMessage(deps HandlerDeps, err error) string {
	switch {
	case errors.Is(err, ledger.ErrStorageUnavailable):
		return deps.Config.Messages.StorageError
	case errors.Is(err, report.ErrInvalidPeriod):
		return deps.Config.Messages.InvalidPeriod
	default:
		return deps.Config.Messages.GeneralError
	}
}
