package handlers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/paybot/internal/report"
)

// defaultExportPeriod is used when /export has no argument.
const defaultExportPeriod = report.ThisMonth

// NewExportHandler returns a handler for /export [week|month|year|all],
// which uploads the chat's payments as an Excel workbook.
func NewExportHandler(deps HandlerDeps) bot.HandlerFunc {
	return exportHandler{deps}.Handle
}

type exportHandler struct {
	deps HandlerDeps
}

func (h exportHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "export")

	if update.Message == nil {
		log.WarnContext(ctx, "Export handler received update with nil message", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	period := defaultExportPeriod
	if arg := commandArgs(update.Message.Text); arg != "" {
		p, err := report.ParsePeriod(arg)
		if err != nil {
			log.DebugContext(ctx, "Invalid export period", "arg", arg, "chat_id", chatID)
			sendText(ctx, b, log, chatID, h.deps.Config.Messages.InvalidPeriod)
			return
		}
		period = p
	}

	if _, err := b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionUploadDocument,
	}); err != nil {
		log.WarnContext(ctx, "Failed to send chat action", "error", err, "chat_id", chatID)
	}

	out, err := h.deps.Tracker.Export(ctx, chatID, period)
	if err != nil {
		log.ErrorContext(ctx, "Failed to export payments", "error", err, "chat_id", chatID, "period", string(period))
		sendText(ctx, b, log, chatID, errorMessage(h.deps, err))
		return
	}

	caption := fmt.Sprintf("📊 Payment export: %s (%d payments)", period.Label(), out.Count)
	if out.Count == 0 {
		caption += "\n" + h.deps.Config.Messages.ExportEmpty
	}

	_, err = b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: out.Filename, Data: bytes.NewReader(out.Data)},
		Caption:  caption,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send export document", "error", err, "chat_id", chatID)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}
	log.InfoContext(ctx, "Export sent", "chat_id", chatID, "period", string(period), "count", out.Count)
}
