package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTestHandler returns a handler for /test, which shows what would be
// detected in a text without recording anything.
func NewTestHandler(deps HandlerDeps) bot.HandlerFunc {
	return testHandler{deps}.Handle
}

type testHandler struct {
	deps HandlerDeps
}

func (h testHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "test")

	if update.Message == nil {
		log.WarnContext(ctx, "Test handler received update with nil message", "update_id", update.ID)
		return
	}

	text := commandArgs(update.Message.Text)
	if text == "" {
		sendReply(ctx, b, log, update.Message, h.deps.Config.Messages.TestUsage)
		return
	}

	matches := h.deps.Tracker.Detect(text)
	log.DebugContext(ctx, "Detection test", "chat_id", update.Message.Chat.ID, "matches", len(matches))
	sendReply(ctx, b, log, update.Message, formatDetectionTest(text, matches))
}
