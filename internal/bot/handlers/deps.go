package handlers

import (
	"log/slog"

	"github.com/edgard/paybot/internal/config"
	"github.com/edgard/paybot/internal/tracker"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Tracker *tracker.Service
}
