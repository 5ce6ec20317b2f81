package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wealth/internal/core"
)

// AccountStore is the repository surface behind AccountService.
type AccountStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id string) (core.User, error)
	CreateAccount(ctx context.Context, a core.Account) (core.Account, error)
	SetDefaultAccount(ctx context.Context, userID, accountID string) error
	ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpsertBudget(ctx context.Context, userID string, amount decimal.Decimal) (core.Budget, error)
	MonthOverview(ctx context.Context, accountID string, w core.MonthWindow) (core.MonthOverview, error)
}

// AccountService validates user-facing writes before they reach the store.
type AccountService struct {
	store AccountStore
}

func NewAccountService(store AccountStore) *AccountService {
	return &AccountService{store: store}
}

func (s *AccountService) CreateUser(ctx context.Context, email, name string) (core.User, error) {
	u := core.User{Email: strings.TrimSpace(email), Name: strings.TrimSpace(name)}
	if err := u.Validate(); err != nil {
		return core.User{}, fmt.Errorf("validate user: %w", err)
	}
	return s.store.CreateUser(ctx, u)
}

// CreateAccount opens an account for the user. The first account of a user
// always becomes the default, whatever makeDefault says.
func (s *AccountService) CreateAccount(ctx context.Context, userID, name string, typ core.AccountType, initialBalance decimal.Decimal, makeDefault bool) (core.Account, error) {
	a := core.Account{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Type:      core.AccountType(strings.ToUpper(string(typ))),
		Balance:   initialBalance.Round(2),
		IsDefault: makeDefault,
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, fmt.Errorf("validate account: %w", err)
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return core.Account{}, err
	}

	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, err
	}
	slog.InfoContext(ctx, "Account created",
		"account_id", created.ID,
		"user_id", userID,
		"is_default", created.IsDefault)
	return created, nil
}

func (s *AccountService) SetDefaultAccount(ctx context.Context, userID, accountID string) error {
	if err := s.store.SetDefaultAccount(ctx, userID, accountID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Default account changed", "account_id", accountID, "user_id", userID)
	return nil
}

func (s *AccountService) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	return s.store.ListAccounts(ctx, userID)
}

// CreateTransaction records a transaction and updates the account balance.
func (s *AccountService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Amount = t.Amount.Round(2)
	t.Category = strings.TrimSpace(t.Category)
	t.Description = strings.TrimSpace(t.Description)
	if !t.IsRecurring {
		t.RecurringInterval = ""
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	return s.store.CreateTransaction(ctx, t)
}

// SetBudget creates or updates the user's monthly budget.
func (s *AccountService) SetBudget(ctx context.Context, userID string, amount decimal.Decimal) (core.Budget, error) {
	b := core.Budget{UserID: userID, Amount: amount.Round(2)}
	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("validate budget: %w", err)
	}
	if b.Amount.IsZero() {
		slog.WarnContext(ctx, "Budget set to zero, alerts are disabled for this user", "user_id", userID)
	}
	return s.store.UpsertBudget(ctx, userID, b.Amount)
}

// MonthlyReport summarizes the user's default account for the month
// containing now.
func (s *AccountService) MonthlyReport(ctx context.Context, userID string, now time.Time, loc *time.Location) (core.MonthOverview, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return core.MonthOverview{}, err
	}
	for _, a := range accounts {
		if a.IsDefault {
			return s.store.MonthOverview(ctx, a.ID, core.MonthOf(now, loc))
		}
	}
	return core.MonthOverview{}, fmt.Errorf("default account for user %s: %w", userID, core.ErrNotFound)
}

// GetUser returns the user with id.
func (s *AccountService) GetUser(ctx context.Context, id string) (core.User, error) {
	return s.store.GetUser(ctx, id)
}

// ReportInsights derives short observations for the monthly report email.
func ReportInsights(o core.MonthOverview) []string {
	if o.TotalIncome.IsZero() && o.TotalExpenses.IsZero() {
		return []string{"No transactions were recorded this month."}
	}

	var out []string
	net := o.Net()
	switch {
	case net.IsNegative():
		out = append(out, fmt.Sprintf("You spent $%s more than you earned.", core.FormatAmount(net.Neg())))
	case o.TotalIncome.IsPositive():
		saved := net.Mul(decimal.NewFromInt(100)).Div(o.TotalIncome).Round(0)
		out = append(out, fmt.Sprintf("You saved %s%% of your income.", saved.String()))
	}

	var top core.CategoryAmount
	for _, c := range o.ByCategory {
		if c.Amount.GreaterThan(top.Amount) {
			top = c
		}
	}
	if top.Name != "" && o.TotalExpenses.IsPositive() {
		share := top.Amount.Mul(decimal.NewFromInt(100)).Div(o.TotalExpenses).Round(0)
		out = append(out, fmt.Sprintf("Your largest expense category was %s at $%s (%s%% of spending).",
			top.Name, core.FormatAmount(top.Amount), share.String()))
	}
	return out
}
