package backend

import (
	"context"
	"fmt"
	"log/slog"

	"wealth/internal/amqp"
	"wealth/internal/lock"
	"wealth/internal/log"
	"wealth/internal/notify"
	gsheet "wealth/internal/sheets/google"
	"wealth/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateNotifier implements Factory.CreateNotifier
func (f *DefaultFactory) CreateNotifier(ctx context.Context, config Config) (*NotifierResult, error) {
	logger := f.logger.With(log.FieldComponent, log.ComponentNotify)
	switch config.Notifier {
	case LogNotifier:
		logger.Info("Alert emails will be written to the log")
		return &NotifierResult{Notifier: notify.NewLogNotifier(f.logger)}, nil

	case SMTPNotifier:
		mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     config.SMTPHost,
			Port:     config.SMTPPort,
			Username: config.SMTPUsername,
			Password: config.SMTPPassword,
			From:     config.MailFrom,
			Timeout:  config.SMTPTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SMTP mailer: %w", err)
		}
		logger.Info("Initialized SMTP notifier", "host", config.SMTPHost, "port", config.SMTPPort)
		return &NotifierResult{Notifier: mailer}, nil

	case AMQPNotifier:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		logger.Info("Initialized AMQP notifier",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return &NotifierResult{Notifier: client, Cleanup: client.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported notifier type: %s", config.Notifier)
	}
}

// CreateLedger implements Factory.CreateLedger
func (f *DefaultFactory) CreateLedger(ctx context.Context, config Config) (*LedgerResult, error) {
	logger := f.logger.With(log.FieldComponent, log.ComponentSheets)
	switch config.Ledger {
	case LedgerNone:
		return &LedgerResult{}, nil

	case LedgerMemory:
		store := memory.New()
		logger.Info("Initialized in-memory alert ledger")
		return &LedgerResult{Recorder: store, Lister: store}, nil

	case LedgerSheets:
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		if err := cli.EnsureHeader(ctx); err != nil {
			logger.Warn("Could not verify alert ledger header", log.FieldError, err)
		}
		return &LedgerResult{Recorder: cli, Lister: cli}, nil

	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", config.Ledger)
	}
}

// CreateLocker implements Factory.CreateLocker
func (f *DefaultFactory) CreateLocker(ctx context.Context, config Config) (*LockerResult, error) {
	logger := f.logger.With(log.FieldComponent, log.ComponentLock)
	if config.RedisURL == "" {
		logger.Info("No Redis URL configured, runs are not locked across processes")
		return &LockerResult{}, nil
	}

	client, err := lock.NewClientFromURL(ctx, config.RedisURL)
	if err != nil {
		return nil, err
	}
	locker, err := lock.NewRedisLocker(client, lock.DefaultKey, config.RunLockTTL)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("Initialized Redis run lock", "key", lock.DefaultKey, "ttl", config.RunLockTTL)
	return &LockerResult{Locker: locker, Cleanup: client.Close}, nil
}
