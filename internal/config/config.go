// Package config defines the bot configuration and loads it from an optional
// YAML file, the environment and built-in defaults.
package config

import (
	"fmt"
	"time"

	"github.com/go-telegram/bot/models"
)

// Config is the complete application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Breaker   BreakerConfig   `mapstructure:"breaker"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig selects log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds bot credentials and polling behaviour.
type TelegramConfig struct {
	Token              string `mapstructure:"token"                validate:"required"`
	DropPendingUpdates bool   `mapstructure:"drop_pending_updates"`

	// BotInfo is filled at startup from getMe.
	BotInfo *models.User `mapstructure:"-" validate:"-"`
}

// DatabaseConfig selects the ledger backend.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"         validate:"oneof=sqlite postgres memory"`
	Path         string `mapstructure:"path"           validate:"required_if=Driver sqlite"`
	URL          string `mapstructure:"url"            validate:"required_if=Driver postgres"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"min=1"`
}

// BreakerConfig guards ledger storage calls.
type BreakerConfig struct {
	MaxFailures  uint32        `mapstructure:"max_failures"  validate:"min=1"`
	OpenTimeout  time.Duration `mapstructure:"open_timeout"  validate:"min=1s"`
	ReadAttempts uint          `mapstructure:"read_attempts" validate:"min=1,max=10"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"   validate:"min=10ms"`
}

// LedgerConfig controls civil-date bucketing and storage behaviour.
type LedgerConfig struct {
	// Timezone is the IANA name civil dates are computed in.
	Timezone       string        `mapstructure:"timezone"        validate:"required,timezone"`
	StorageTimeout time.Duration `mapstructure:"storage_timeout" validate:"min=100ms,max=2m"`
	// AutoDetect records amounts found in ordinary (non-command) messages.
	AutoDetect bool `mapstructure:"auto_detect"`
	// SummaryLimit caps the payments listed by /summary.
	SummaryLimit int `mapstructure:"summary_limit" validate:"min=1,max=50"`
}

// Location resolves Timezone.
func (c LedgerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// MetricsConfig controls the Prometheus endpoint. An empty Listen disables it.
type MetricsConfig struct {
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port"`
}

// SchedulerConfig lists scheduled tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task on a cron schedule (seconds field optional).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds user-facing reply texts.
type MessagesConfig struct {
	Welcome       string `mapstructure:"welcome"        validate:"required"`
	Help          string `mapstructure:"help"           validate:"required"`
	AddUsage      string `mapstructure:"add_usage"      validate:"required"`
	TestUsage     string `mapstructure:"test_usage"     validate:"required"`
	NoAmounts     string `mapstructure:"no_amounts"     validate:"required"`
	StorageError  string `mapstructure:"storage_error"  validate:"required"`
	InvalidPeriod string `mapstructure:"invalid_period" validate:"required"`
	InvalidDate   string `mapstructure:"invalid_date"   validate:"required"`
	ExportEmpty   string `mapstructure:"export_empty"   validate:"required"`
	GeneralError  string `mapstructure:"general_error"  validate:"required"`
}
