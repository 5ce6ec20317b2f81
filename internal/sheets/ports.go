package sheets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AlertRecord is one row of the alert ledger: a budget alert that was
// delivered.
type AlertRecord struct {
	SentAt         time.Time
	BudgetID       string
	UserID         string
	UserEmail      string
	AccountName    string
	Month          string // e.g. "October 2026"
	PercentageUsed decimal.Decimal
	BudgetAmount   decimal.Decimal
	Spent          decimal.Decimal
}

// Ports for outbound adapters.
type (
	// AlertRecorder appends delivered alerts to an external ledger.
	AlertRecorder interface {
		Record(ctx context.Context, r AlertRecord) (rowRef string, err error)
	}

	// AlertLister reads the ledger back for a given month label.
	AlertLister interface {
		ListAlerts(ctx context.Context, month string) ([]AlertRecord, error)
	}
)
