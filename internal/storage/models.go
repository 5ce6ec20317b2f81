package storage

import "database/sql"

// Row types mirror the tables one to one. Money columns hold integer cents and
// timestamps hold text; conversion to domain types happens in the repository.

type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt string
}

type Account struct {
	ID           string
	UserID       string
	Name         string
	Type         string
	BalanceCents int64
	IsDefault    bool
	CreatedAt    string
}

type Transaction struct {
	ID                string
	UserID            string
	AccountID         string
	Type              string
	AmountCents       int64
	Description       string
	Category          string
	OccurredOn        string
	IsRecurring       bool
	RecurringInterval sql.NullString
	CreatedAt         string
}

type Budget struct {
	ID            string
	UserID        string
	AmountCents   int64
	LastAlertSent sql.NullString
	CreatedAt     string
	UpdatedAt     string
}

type BudgetCandidateRow struct {
	BudgetID            string
	UserID              string
	AmountCents         int64
	LastAlertSent       sql.NullString
	UserEmail           string
	UserName            string
	AccountID           sql.NullString
	AccountName         sql.NullString
	AccountType         sql.NullString
	AccountBalanceCents sql.NullInt64
}

type CategorySumRow struct {
	Category   string
	TotalCents int64
}
