package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/paybot/internal/report"
	"github.com/edgard/paybot/internal/tracker"
)

// NewAddHandler returns a handler for /add, which records the amounts found
// in the command arguments.
func NewAddHandler(deps HandlerDeps) bot.HandlerFunc {
	return recordHandler{deps: deps, manual: true}.Handle
}

// NewDetectHandler returns the default handler that records amounts found in
// ordinary messages when automatic detection is enabled.
func NewDetectHandler(deps HandlerDeps) bot.HandlerFunc {
	return recordHandler{deps: deps}.Handle
}

type recordHandler struct {
	deps   HandlerDeps
	manual bool
}

func (h recordHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	name := "detect"
	if h.manual {
		name = "add"
	}
	log := h.deps.Logger.With("handler", name)

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update with nil message or sender", "update_id", update.ID)
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	if h.manual {
		text = commandArgs(text)
		if text == "" {
			sendReply(ctx, b, log, msg, h.deps.Config.Messages.AddUsage)
			return
		}
	} else {
		if !h.deps.Config.Ledger.AutoDetect || text == "" || text[0] == '/' {
			return
		}
	}

	chatID := msg.Chat.ID
	recorded, err := h.deps.Tracker.Record(ctx, tracker.Entry{
		ConversationID:    chatID,
		ConversationTitle: chatTitle(msg.Chat),
		ReporterID:        msg.From.ID,
		ReporterName:      reporterName(msg.From),
		Text:              text,
		Manual:            h.manual,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to record payment", "error", err, "chat_id", chatID, "user_id", msg.From.ID)
		sendReply(ctx, b, log, msg, errorMessage(h.deps, err))
		return
	}

	if len(recorded.Records) == 0 {
		if h.manual {
			sendReply(ctx, b, log, msg, h.deps.Config.Messages.NoAmounts)
		}
		return
	}

	log.InfoContext(ctx, "Recorded payments", "chat_id", chatID, "user_id", msg.From.ID, "count", len(recorded.Records))

	var today *report.Summary
	if sum, err := h.deps.Tracker.Summarize(ctx, chatID, report.Today); err != nil {
		log.WarnContext(ctx, "Failed to load today's totals after recording", "error", err, "chat_id", chatID)
	} else {
		today = &sum
	}
	sendReply(ctx, b, log, msg, formatRecorded(recorded.Matches, today))
}
