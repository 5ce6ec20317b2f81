package backend

import (
	"context"
	"time"

	"wealth/internal/notify"
	"wealth/internal/services"
	"wealth/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// NotifierResult carries the notifier and its cleanup, if any.
type NotifierResult struct {
	Notifier notify.Notifier
	Cleanup  CleanupFunc
}

// LedgerResult carries the alert recorder. Recorder is nil for LedgerNone.
type LedgerResult struct {
	Recorder sheets.AlertRecorder
	Lister   sheets.AlertLister
}

// LockerResult carries the run lock. Locker is nil when no Redis URL is set.
type LockerResult struct {
	Locker  services.RunLocker
	Cleanup CleanupFunc
}

// Factory creates delivery, ledger and lock backends from configuration.
type Factory interface {
	CreateNotifier(ctx context.Context, config Config) (*NotifierResult, error)
	CreateLedger(ctx context.Context, config Config) (*LedgerResult, error)
	CreateLocker(ctx context.Context, config Config) (*LockerResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Notifier NotifierType
	Ledger   LedgerType

	// SMTP specific
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	SMTPTimeout  time.Duration

	// AMQP specific
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Redis run lock
	RedisURL   string
	RunLockTTL time.Duration
}

// NotifierType selects how alert emails leave the process.
type NotifierType string

const (
	LogNotifier  NotifierType = "log"
	SMTPNotifier NotifierType = "smtp"
	AMQPNotifier NotifierType = "amqp"
)

func (t NotifierType) String() string {
	return string(t)
}

func (t NotifierType) IsValid() bool {
	switch t {
	case LogNotifier, SMTPNotifier, AMQPNotifier:
		return true
	default:
		return false
	}
}

// LedgerType selects where delivered alerts are recorded.
type LedgerType string

const (
	LedgerNone   LedgerType = "none"
	LedgerMemory LedgerType = "memory"
	LedgerSheets LedgerType = "sheets"
)

func (t LedgerType) String() string {
	return string(t)
}

func (t LedgerType) IsValid() bool {
	switch t {
	case LedgerNone, LedgerMemory, LedgerSheets:
		return true
	default:
		return false
	}
}
