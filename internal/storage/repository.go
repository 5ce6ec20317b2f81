package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"wealth/internal/core"
)

// TimestampLayout is fixed width in UTC so stored timestamps sort as text.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// DSN returns the connection string used for both the repository and its
// migrations: foreign keys on, a busy timeout, and immediate write locks.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CreateUser stores a new user and returns it with its generated ID.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()

	err := r.queries.CreateUser(ctx, CreateUserParams{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: formatTimestamp(u.CreatedAt),
	})
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", mapError(err))
	}

	slog.InfoContext(ctx, "User saved to SQLite", "user_id", u.ID)
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", id, mapError(err))
	}
	return toUser(row), nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", mapError(err))
	}
	return toUser(row), nil
}

// CreateAccount stores a new account. A user's first account is always the
// default; a new default account takes the flag from the previous one.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()

	err := r.withTx(ctx, func(q *Queries) error {
		count, err := q.CountAccounts(ctx, a.UserID)
		if err != nil {
			return fmt.Errorf("count accounts: %w", err)
		}
		if count == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := q.ClearDefaultAccount(ctx, a.UserID); err != nil {
				return fmt.Errorf("clear default account: %w", err)
			}
		}
		if err := q.CreateAccount(ctx, CreateAccountParams{
			ID:           a.ID,
			UserID:       a.UserID,
			Name:         a.Name,
			Type:         string(a.Type),
			BalanceCents: core.ToCents(a.Balance),
			IsDefault:    a.IsDefault,
			CreatedAt:    formatTimestamp(a.CreatedAt),
		}); err != nil {
			return fmt.Errorf("create account: %w", mapError(err))
		}
		return nil
	})
	if err != nil {
		return core.Account{}, err
	}

	slog.InfoContext(ctx, "Account saved to SQLite",
		"account_id", a.ID,
		"user_id", a.UserID,
		"is_default", a.IsDefault)
	return a, nil
}

// SetDefaultAccount makes accountID the user's only default account.
func (r *SQLiteRepository) SetDefaultAccount(ctx context.Context, userID, accountID string) error {
	return r.withTx(ctx, func(q *Queries) error {
		if err := q.ClearDefaultAccount(ctx, userID); err != nil {
			return fmt.Errorf("clear default account: %w", err)
		}
		n, err := q.MarkAccountDefault(ctx, accountID, userID)
		if err != nil {
			return fmt.Errorf("mark default account: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("account %s for user %s: %w", accountID, userID, core.ErrNotFound)
		}
		return nil
	})
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row, err := r.queries.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %s: %w", id, mapError(err))
	}
	return toAccount(row), nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.queries.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	accounts := make([]core.Account, len(rows))
	for i, row := range rows {
		accounts[i] = toAccount(row)
	}
	return accounts, nil
}

// CreateTransaction stores t and applies its signed amount to the account
// balance in one transaction.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()

	var interval sql.NullString
	if t.IsRecurring {
		interval = sql.NullString{String: string(t.RecurringInterval), Valid: true}
	}

	err := r.withTx(ctx, func(q *Queries) error {
		acc, err := q.GetAccount(ctx, t.AccountID)
		if err != nil {
			return fmt.Errorf("get account %s: %w", t.AccountID, mapError(err))
		}
		if acc.UserID != t.UserID {
			return fmt.Errorf("account %s for user %s: %w", t.AccountID, t.UserID, core.ErrNotFound)
		}
		if err := q.CreateTransaction(ctx, CreateTransactionParams{
			ID:                t.ID,
			UserID:            t.UserID,
			AccountID:         t.AccountID,
			Type:              string(t.Type),
			AmountCents:       core.ToCents(t.Amount),
			Description:       t.Description,
			Category:          t.Category,
			OccurredOn:        t.Date.String(),
			IsRecurring:       t.IsRecurring,
			RecurringInterval: interval,
			CreatedAt:         formatTimestamp(time.Now()),
		}); err != nil {
			return fmt.Errorf("create transaction: %w", mapError(err))
		}
		if err := q.AdjustAccountBalance(ctx, core.ToCents(t.SignedAmount()), t.AccountID); err != nil {
			return fmt.Errorf("adjust account balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", t.ID,
		"account_id", t.AccountID,
		"type", t.Type,
		"amount", core.FormatAmount(t.Amount),
		"date", t.Date.String())
	return t, nil
}

// UpsertBudget sets the user's monthly budget amount. Updating an existing
// budget keeps its last alert timestamp.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, userID string, amount decimal.Decimal) (core.Budget, error) {
	now := formatTimestamp(time.Now())
	row, err := r.queries.UpsertBudget(ctx, UpsertBudgetParams{
		ID:          uuid.NewString(),
		UserID:      userID,
		AmountCents: core.ToCents(amount),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", mapError(err))
	}
	return toBudget(row.ID, row.UserID, row.AmountCents, row.LastAlertSent)
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID string) (core.Budget, error) {
	row, err := r.queries.GetBudgetByUser(ctx, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget for user %s: %w", userID, mapError(err))
	}
	return toBudget(row.ID, row.UserID, row.AmountCents, row.LastAlertSent)
}

// ListBudgetCandidates returns every budget with its owner and the owner's
// default account, if any. A row that cannot be decoded is still returned,
// with Err set.
func (r *SQLiteRepository) ListBudgetCandidates(ctx context.Context) ([]core.BudgetCandidate, error) {
	rows, err := r.queries.ListBudgetCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budget candidates: %w", err)
	}

	candidates := make([]core.BudgetCandidate, 0, len(rows))
	for _, row := range rows {
		c := core.BudgetCandidate{
			User: core.User{ID: row.UserID, Email: row.UserEmail, Name: row.UserName},
		}
		budget, err := toBudget(row.BudgetID, row.UserID, row.AmountCents, row.LastAlertSent)
		if err != nil {
			budget = core.Budget{ID: row.BudgetID, UserID: row.UserID, Amount: core.FromCents(row.AmountCents)}
			c.Err = err
		}
		c.Budget = budget
		if row.AccountID.Valid {
			c.DefaultAccount = &core.Account{
				ID:        row.AccountID.String,
				UserID:    row.UserID,
				Name:      row.AccountName.String,
				Type:      core.AccountType(row.AccountType.String),
				Balance:   core.FromCents(row.AccountBalanceCents.Int64),
				IsDefault: true,
			}
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// SumExpenses totals the EXPENSE transactions of one account whose date falls
// inside w. No matching rows sum to zero.
func (r *SQLiteRepository) SumExpenses(ctx context.Context, userID, accountID string, w core.MonthWindow) (decimal.Decimal, error) {
	sum, err := r.queries.SumExpenses(ctx, SumExpensesParams{
		UserID:    userID,
		AccountID: accountID,
		StartDay:  w.Start.String(),
		EndDay:    w.End.String(),
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return core.FromCents(sum.Int64), nil
}

// MarkAlertSent records sentAt on the budget unless an alert was already
// recorded inside w. A timestamp from any other month, earlier or later, is
// overwritten. It reports whether the row changed.
func (r *SQLiteRepository) MarkAlertSent(ctx context.Context, budgetID string, sentAt time.Time, w core.MonthWindow) (bool, error) {
	n, err := r.queries.MarkBudgetAlertSent(ctx, MarkBudgetAlertSentParams{
		SentAt:     formatTimestamp(sentAt),
		ID:         budgetID,
		MonthStart: formatTimestamp(w.Begins),
		MonthEnd:   formatTimestamp(w.Ends),
	})
	if err != nil {
		return false, fmt.Errorf("mark alert sent: %w", err)
	}
	return n > 0, nil
}

// MonthOverview summarizes one account's income and expenses inside w.
func (r *SQLiteRepository) MonthOverview(ctx context.Context, accountID string, w core.MonthWindow) (core.MonthOverview, error) {
	overview := core.MonthOverview{Label: w.Label()}
	params := MonthRangeParams{AccountID: accountID, StartDay: w.Start.String(), EndDay: w.End.String()}

	income, expenses, err := r.queries.SumByType(ctx, params)
	if err != nil {
		return overview, fmt.Errorf("sum by type: %w", err)
	}
	overview.TotalIncome = core.FromCents(income)
	overview.TotalExpenses = core.FromCents(expenses)

	sums, err := r.queries.ExpenseCategorySums(ctx, params)
	if err != nil {
		return overview, fmt.Errorf("get category sums: %w", err)
	}
	for _, cs := range sums {
		overview.ByCategory = append(overview.ByCategory, core.CategoryAmount{
			Name:   cs.Category,
			Amount: core.FromCents(cs.TotalCents),
		})
	}
	return overview, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%w: %v", core.ErrDuplicate, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %v", core.ErrNotFound, err)
		}
	}
	return err
}

func toUser(row User) core.User {
	created, _ := parseTimestamp(row.CreatedAt)
	return core.User{ID: row.ID, Email: row.Email, Name: row.Name, CreatedAt: created}
}

func toAccount(row Account) core.Account {
	created, _ := parseTimestamp(row.CreatedAt)
	return core.Account{
		ID:        row.ID,
		UserID:    row.UserID,
		Name:      row.Name,
		Type:      core.AccountType(row.Type),
		Balance:   core.FromCents(row.BalanceCents),
		IsDefault: row.IsDefault,
		CreatedAt: created,
	}
}

func toBudget(id, userID string, amountCents int64, lastAlertSent sql.NullString) (core.Budget, error) {
	b := core.Budget{ID: id, UserID: userID, Amount: core.FromCents(amountCents)}
	if lastAlertSent.Valid {
		t, err := parseTimestamp(lastAlertSent.String)
		if err != nil {
			return core.Budget{}, fmt.Errorf("budget %s: parse last alert sent: %w", id, err)
		}
		b.LastAlertSent = &t
	}
	return b, nil
}
