package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/paybot/internal/report"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	// Description is shown in the Telegram command menu; empty hides the command.
	Description string
}

// RegisterAllCommands initializes and returns a map of all available bot commands.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	command := func(pattern, description string, h tgbot.HandlerFunc, mw ...tgbot.Middleware) {
		handlers["/"+pattern] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     pattern,
			Handler:     h,
			MatchType:   tgbot.MatchTypeCommandStartOnly,
			Middleware:  mw,
			Description: description,
		}
	}

	command("start", "Show the welcome message", NewStartHandler(deps))
	command("help", "List available commands", NewHelpHandler(deps))
	command("add", "Record the amounts in a text", NewAddHandler(deps), HumanSenderOnly(deps))
	command("total", "Today's totals", NewTotalsHandler(deps, report.Today))
	command("week", "This week's totals", NewTotalsHandler(deps, report.ThisWeek))
	command("month", "This month's totals", NewTotalsHandler(deps, report.ThisMonth))
	command("year", "This year's totals", NewTotalsHandler(deps, report.ThisYear))
	command("summary", "Payments recorded on a day", NewSummaryHandler(deps))
	command("export", "Download an Excel report", NewExportHandler(deps))
	command("test", "Show what would be detected", NewTestHandler(deps))

	return handlers
}

// NewDefaultHandler returns the handler for updates no command matched.
func NewDefaultHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return HumanSenderOnly(deps)(NewDetectHandler(deps))
}
