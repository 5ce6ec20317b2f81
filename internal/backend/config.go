package backend

import (
	"fmt"

	"wealth/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Notifier: NotifierType(appConfig.Notifier),
		Ledger:   LedgerType(appConfig.AlertLedger),

		SMTPHost:     appConfig.SMTPHost,
		SMTPPort:     appConfig.SMTPPort,
		SMTPUsername: appConfig.SMTPUsername,
		SMTPPassword: appConfig.SMTPPassword,
		MailFrom:     appConfig.MailFrom,
		SMTPTimeout:  appConfig.DispatchTimeout,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,

		RedisURL:   appConfig.RedisURL,
		RunLockTTL: appConfig.RunLockTTL,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Notifier.IsValid() {
		return fmt.Errorf("invalid notifier type: %s", c.Notifier)
	}
	if !c.Ledger.IsValid() {
		return fmt.Errorf("invalid ledger type: %s", c.Ledger)
	}

	switch c.Notifier {
	case SMTPNotifier:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required for smtp notifier")
		}
		if c.MailFrom == "" {
			return fmt.Errorf("sender address is required for smtp notifier")
		}
	case AMQPNotifier:
		if c.AMQPURL == "" {
			return fmt.Errorf("AMQP URL is required for amqp notifier")
		}
	}

	if c.Ledger == LedgerSheets {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets ledger")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("either GoogleServiceAccountJSON or GoogleServiceAccountFile must be provided for sheets ledger")
		}
	}

	return nil
}
