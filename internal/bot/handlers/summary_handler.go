package handlers

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSummaryHandler returns a handler for /summary [YYYY-MM-DD], listing the
// payments of one day (today by default).
func NewSummaryHandler(deps HandlerDeps) bot.HandlerFunc {
	return summaryHandler{deps}.Handle
}

type summaryHandler struct {
	deps HandlerDeps
}

func (h summaryHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "summary")

	if update.Message == nil {
		log.WarnContext(ctx, "Summary handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	date := h.deps.Tracker.Today()
	if arg := commandArgs(update.Message.Text); arg != "" {
		parsed, err := civil.ParseDate(arg)
		if err != nil {
			log.DebugContext(ctx, "Invalid summary date", "arg", arg, "chat_id", chatID)
			sendText(ctx, b, log, chatID, h.deps.Config.Messages.InvalidDate)
			return
		}
		date = parsed
	}

	daily, err := h.deps.Tracker.DailySummary(ctx, chatID, date)
	if err != nil {
		log.ErrorContext(ctx, "Failed to build daily summary", "error", err, "chat_id", chatID, "date", date.String())
		sendText(ctx, b, log, chatID, errorMessage(h.deps, err))
		return
	}

	sendText(ctx, b, log, chatID, formatDaily(daily, h.deps.Config.Ledger.SummaryLimit, h.deps.Tracker.Location()))
}
