package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/robfig/cron/v3"
)

type Config struct {
	// Database
	SQLiteDBPath string `env:"SQLITE_DB_PATH" envDefault:"./data/wealth.db"`

	// Budget alert job
	AlertSchedule         string        `env:"ALERT_SCHEDULE" envDefault:"0 */6 * * *"`
	AlertTimezone         string        `env:"ALERT_TIMEZONE" envDefault:"UTC"`
	AlertThresholdPercent int           `env:"ALERT_THRESHOLD_PERCENT" envDefault:"80"`
	AlertConcurrency      int           `env:"ALERT_CONCURRENCY" envDefault:"4"`
	DispatchTimeout       time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"30s"`
	RunOnStartup          bool          `env:"RUN_ON_STARTUP" envDefault:"true"`

	// Notification delivery: log, smtp or amqp
	Notifier string `env:"NOTIFIER" envDefault:"log"`

	// SMTP
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"Wealth <alerts@wealth.local>"`

	// AMQP
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"wealth"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"alert_emails"`

	// Redis run lock (optional)
	RedisURL   string        `env:"REDIS_URL"`
	RunLockTTL time.Duration `env:"RUN_LOCK_TTL" envDefault:"10m"`

	// Alert ledger: none, memory or sheets
	AlertLedger              string `env:"ALERT_LEDGER" envDefault:"none"`
	GoogleSpreadsheetID      string `env:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetName          string `env:"GOOGLE_SHEET_NAME" envDefault:"Alerts"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

var (
	validNotifiers  = []string{"log", "smtp", "amqp"}
	validLedgers    = []string{"none", "memory", "sheets"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Load parses environment variables and returns a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Location returns the time zone used for month boundaries. Validate must
// have accepted the config first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AlertTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if _, err := cron.ParseStandard(c.AlertSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid alert schedule '%s': %v", c.AlertSchedule, err))
	}
	if _, err := time.LoadLocation(c.AlertTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid alert timezone '%s': %v", c.AlertTimezone, err))
	}
	if c.AlertThresholdPercent < 1 || c.AlertThresholdPercent > 1000 {
		errors = append(errors, fmt.Sprintf("invalid alert threshold %d: must be between 1 and 1000", c.AlertThresholdPercent))
	}
	if c.AlertConcurrency < 1 || c.AlertConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid alert concurrency %d: must be between 1 and 64", c.AlertConcurrency))
	}
	if c.DispatchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid dispatch timeout %v: must be at least 1 second", c.DispatchTimeout))
	} else if c.DispatchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid dispatch timeout %v: must be at most 5 minutes", c.DispatchTimeout))
	}

	if !slices.Contains(validNotifiers, c.Notifier) {
		errors = append(errors, fmt.Sprintf("invalid notifier '%s': must be one of %v", c.Notifier, validNotifiers))
	}

	if c.Notifier == "smtp" {
		errors = append(errors, c.validateSMTP()...)
	}

	if c.Notifier == "amqp" && c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required when using amqp notifier")
	}
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RedisURL != "" {
		if parsedURL, err := url.Parse(c.RedisURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Redis URL '%s': %v", c.RedisURL, err))
		} else if parsedURL.Scheme != "redis" && parsedURL.Scheme != "rediss" {
			errors = append(errors, fmt.Sprintf("invalid Redis URL scheme '%s': must be 'redis' or 'rediss'", parsedURL.Scheme))
		}
		if c.RunLockTTL < time.Minute {
			errors = append(errors, fmt.Sprintf("invalid run lock TTL %v: must be at least 1 minute", c.RunLockTTL))
		}
	}

	if !slices.Contains(validLedgers, c.AlertLedger) {
		errors = append(errors, fmt.Sprintf("invalid alert ledger '%s': must be one of %v", c.AlertLedger, validLedgers))
	}
	if c.AlertLedger == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets ledger")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets ledger")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets ledger")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateMailWorker checks only what the mail worker needs: an AMQP source
// and an SMTP sink.
func (c *Config) ValidateMailWorker() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the mail worker")
	}
	errors = append(errors, c.validateSMTP()...)
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateSMTP() []string {
	var errors []string
	if c.SMTPHost == "" {
		errors = append(errors, "SMTP host is required when using smtp notifier")
	}
	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		errors = append(errors, fmt.Sprintf("invalid SMTP port %d: must be between 1 and 65535", c.SMTPPort))
	}
	if c.MailFrom == "" {
		errors = append(errors, "mail sender cannot be empty when using smtp notifier")
	}
	return errors
}
