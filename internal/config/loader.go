package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfiguration wraps every loading and validation failure.
var ErrConfiguration = errors.New("configuration error")

// LoadConfig builds the configuration from, in increasing precedence:
// built-in defaults, the YAML file at path (optional), a .env file in the
// working directory (optional) and BOT_* environment variables. BOT_TOKEN
// and DATABASE_URL are accepted as shorthands.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to load .env: %w", ErrConfiguration, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("telegram.token", "BOT_TELEGRAM_TOKEN", "BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if err := v.BindEnv("database.url", "BOT_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("%w: failed to read %s: %w", ErrConfiguration, path, err)
			}
			slog.Debug("configuration file loaded", "path", path)
		} else if errors.Is(err, fs.ErrNotExist) {
			slog.Info("configuration file not found, using defaults and environment", "path", path)
		} else {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrConfiguration, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	slog.Info("configuration loaded",
		"log_level", cfg.Logger.Level,
		"database_driver", cfg.Database.Driver,
		"timezone", cfg.Ledger.Timezone,
		"auto_detect", cfg.Ledger.AutoDetect,
		"metrics_listen", cfg.Metrics.Listen)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.drop_pending_updates", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/payments.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 4)

	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.open_timeout", 30*time.Second)
	v.SetDefault("breaker.read_attempts", 3)
	v.SetDefault("breaker.retry_delay", 100*time.Millisecond)

	v.SetDefault("ledger.timezone", "Asia/Phnom_Penh")
	v.SetDefault("ledger.storage_timeout", 10*time.Second)
	v.SetDefault("ledger.auto_detect", true)
	v.SetDefault("ledger.summary_limit", 5)

	v.SetDefault("metrics.listen", "")

	v.SetDefault("scheduler.tasks", map[string]any{
		"sql_maintenance": map[string]any{
			"enabled":  true,
			"schedule": "0 0 3 * * 0",
		},
		"storage_healthcheck": map[string]any{
			"enabled":  true,
			"schedule": "0 */5 * * * *",
		},
	})

	v.SetDefault("messages.welcome",
		"👋 Hi! I track USD and KHR payments mentioned in this chat.\n"+
			"Send a message like \"Paid $25.50\" or \"15,000 riel\" and I'll record it.\n"+
			"Use /help to see all commands.")
	v.SetDefault("messages.help",
		"Commands:\n"+
			"/add <text> - record the amounts in <text>\n"+
			"/total - today's totals\n"+
			"/week - totals for this week (Monday to today)\n"+
			"/month - totals for this month\n"+
			"/year - totals for this year\n"+
			"/summary [YYYY-MM-DD] - payments recorded on a day\n"+
			"/export [week|month|year|all] - download an Excel report\n"+
			"/test <text> - show what would be detected without saving")
	v.SetDefault("messages.add_usage", "Usage: /add <text with an amount>, e.g. /add Paid $12.50")
	v.SetDefault("messages.test_usage", "Usage: /test <text>, e.g. /test Received 15,000 riel")
	v.SetDefault("messages.no_amounts", "No USD or KHR amount found.")
	v.SetDefault("messages.storage_error", "⚠️ Could not reach the payment ledger. Please try again later.")
	v.SetDefault("messages.invalid_period", "Unknown period. Use one of: week, month, year, all.")
	v.SetDefault("messages.invalid_date", "Invalid date. Use the format YYYY-MM-DD.")
	v.SetDefault("messages.export_empty", "No payments recorded for this period.")
	v.SetDefault("messages.general_error", "An error occurred. Please try again later.")
}
