package core

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	Current AccountType = "CURRENT"
	Savings AccountType = "SAVINGS"
)

const (
	Daily   RecurringInterval = "DAILY"
	Weekly  RecurringInterval = "WEEKLY"
	Monthly RecurringInterval = "MONTHLY"
	Yearly  RecurringInterval = "YEARLY"
)

type (
	TransactionType   string
	AccountType       string
	RecurringInterval string

	User struct {
		ID        string
		Email     string
		Name      string
		CreatedAt time.Time
	}

	Account struct {
		ID        string
		UserID    string
		Name      string
		Type      AccountType
		Balance   decimal.Decimal
		IsDefault bool
		CreatedAt time.Time
	}

	Transaction struct {
		ID                string
		UserID            string
		AccountID         string
		Type              TransactionType
		Amount            decimal.Decimal
		Description       string
		Category          string
		Date              Date
		IsRecurring       bool
		RecurringInterval RecurringInterval // empty unless IsRecurring
	}

	// Budget is a user's monthly spending ceiling. LastAlertSent is nil until
	// the first alert goes out.
	Budget struct {
		ID            string
		UserID        string
		Amount        decimal.Decimal
		LastAlertSent *time.Time
	}

	// BudgetCandidate is a budget joined with its owner and the owner's
	// default account. DefaultAccount is nil when the user has none. Err is
	// set when the stored row could not be decoded.
	BudgetCandidate struct {
		Budget         Budget
		User           User
		DefaultAccount *Account
		Err            error
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidInterval    = errors.New("invalid recurring interval")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyCategory      = errors.New("empty category")
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (t AccountType) Validate() error {
	switch t {
	case Current, Savings:
		return nil
	default:
		return ErrInvalidAccountType
	}
}

func (r RecurringInterval) Validate() error {
	switch r {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidInterval
	}
}

func (u User) Validate() error {
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return errors.New("account must belong to a user")
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if err := a.Type.Validate(); err != nil {
		return err
	}
	if !WithinLimit(a.Balance) {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if !t.Amount.IsPositive() || !WithinLimit(t.Amount) {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.IsRecurring {
		if err := t.RecurringInterval.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate only rejects negative amounts; a zero amount is stored but never
// evaluated for alerts.
func (b Budget) Validate() error {
	if b.Amount.IsNegative() || !WithinLimit(b.Amount) {
		return ErrInvalidAmount
	}
	return nil
}

// SignedAmount returns the effect of the transaction on its account balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}
