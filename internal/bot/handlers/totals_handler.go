package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/paybot/internal/report"
)

// NewTotalsHandler returns a handler replying with the chat's totals for p.
func NewTotalsHandler(deps HandlerDeps, p report.Period) bot.HandlerFunc {
	return totalsHandler{deps: deps, period: p}.Handle
}

type totalsHandler struct {
	deps   HandlerDeps
	period report.Period
}

func (h totalsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "totals", "period", string(h.period))

	if update.Message == nil {
		log.WarnContext(ctx, "Totals handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	sum, err := h.deps.Tracker.Summarize(ctx, chatID, h.period)
	if err != nil {
		log.ErrorContext(ctx, "Failed to summarize payments", "error", err, "chat_id", chatID)
		sendText(ctx, b, log, chatID, errorMessage(h.deps, err))
		return
	}

	log.DebugContext(ctx, "Sending totals", "chat_id", chatID, "count", sum.Count)
	sendText(ctx, b, log, chatID, formatSummary(sum))
}
