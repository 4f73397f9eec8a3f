package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps: deps, name: "start", text: func(d HandlerDeps) string { return d.Config.Messages.Welcome }}.Handle
}

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps: deps, name: "help", text: func(d HandlerDeps) string { return d.Config.Messages.Help }}.Handle
}

// textHandler replies with a fixed configured message.
type textHandler struct {
	deps HandlerDeps
	name string
	text func(HandlerDeps) string
}

func (h textHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", h.name)

	if update.Message == nil {
		log.WarnContext(ctx, "Handler received update with nil message", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling command", "chat_id", update.Message.Chat.ID)
	sendText(ctx, b, log, update.Message.Chat.ID, h.text(h.deps))
}
