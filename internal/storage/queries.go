package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const createUser = `
INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)
`

type CreateUserParams struct {
	ID        string
	Email     string
	Name      string
	CreatedAt string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser, arg.ID, arg.Email, arg.Name, arg.CreatedAt)
	return err
}

const getUser = `
SELECT id, email, name, created_at FROM users WHERE id = ?
`

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.Name, &i.CreatedAt)
	return i, err
}

const getUserByEmail = `
SELECT id, email, name, created_at FROM users WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.Name, &i.CreatedAt)
	return i, err
}

const countAccounts = `
SELECT COUNT(*) FROM accounts WHERE user_id = ?
`

func (q *Queries) CountAccounts(ctx context.Context, userID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countAccounts, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const clearDefaultAccount = `
UPDATE accounts SET is_default = 0 WHERE user_id = ? AND is_default = 1
`

func (q *Queries) ClearDefaultAccount(ctx context.Context, userID string) error {
	_, err := q.db.ExecContext(ctx, clearDefaultAccount, userID)
	return err
}

const createAccount = `
INSERT INTO accounts (id, user_id, name, type, balance_cents, is_default, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateAccountParams struct {
	ID           string
	UserID       string
	Name         string
	Type         string
	BalanceCents int64
	IsDefault    bool
	CreatedAt    string
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.ExecContext(ctx, createAccount,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Type,
		arg.BalanceCents,
		arg.IsDefault,
		arg.CreatedAt,
	)
	return err
}

const markAccountDefault = `
UPDATE accounts SET is_default = 1 WHERE id = ? AND user_id = ?
`

func (q *Queries) MarkAccountDefault(ctx context.Context, id, userID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, markAccountDefault, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getAccount = `
SELECT id, user_id, name, type, balance_cents, is_default, created_at FROM accounts WHERE id = ?
`

func (q *Queries) GetAccount(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccount, id)
	var i Account
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.Type, &i.BalanceCents, &i.IsDefault, &i.CreatedAt)
	return i, err
}

const listAccountsByUser = `
SELECT id, user_id, name, type, balance_cents, is_default, created_at
FROM accounts WHERE user_id = ?
ORDER BY created_at, id
`

func (q *Queries) ListAccountsByUser(ctx context.Context, userID string) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccountsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name, &i.Type, &i.BalanceCents, &i.IsDefault, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const adjustAccountBalance = `
UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?
`

func (q *Queries) AdjustAccountBalance(ctx context.Context, deltaCents int64, id string) error {
	_, err := q.db.ExecContext(ctx, adjustAccountBalance, deltaCents, id)
	return err
}

const createTransaction = `
INSERT INTO transactions (
    id, user_id, account_id, type, amount_cents, description, category,
    occurred_on, is_recurring, recurring_interval, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateTransactionParams struct {
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

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID,
		arg.UserID,
		arg.AccountID,
		arg.Type,
		arg.AmountCents,
		arg.Description,
		arg.Category,
		arg.OccurredOn,
		arg.IsRecurring,
		arg.RecurringInterval,
		arg.CreatedAt,
	)
	return err
}

const upsertBudget = `
INSERT INTO budgets (id, user_id, amount_cents, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
    amount_cents = excluded.amount_cents,
    updated_at = excluded.updated_at
RETURNING id, user_id, amount_cents, last_alert_sent, created_at, updated_at
`

type UpsertBudgetParams struct {
	ID          string
	UserID      string
	AmountCents int64
	CreatedAt   string
	UpdatedAt   string
}

func (q *Queries) UpsertBudget(ctx context.Context, arg UpsertBudgetParams) (Budget, error) {
	row := q.db.QueryRowContext(ctx, upsertBudget,
		arg.ID,
		arg.UserID,
		arg.AmountCents,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i Budget
	err := row.Scan(&i.ID, &i.UserID, &i.AmountCents, &i.LastAlertSent, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getBudgetByUser = `
SELECT id, user_id, amount_cents, last_alert_sent, created_at, updated_at
FROM budgets WHERE user_id = ?
`

func (q *Queries) GetBudgetByUser(ctx context.Context, userID string) (Budget, error) {
	row := q.db.QueryRowContext(ctx, getBudgetByUser, userID)
	var i Budget
	err := row.Scan(&i.ID, &i.UserID, &i.AmountCents, &i.LastAlertSent, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listBudgetCandidates = `
SELECT
    b.id, b.user_id, b.amount_cents, b.last_alert_sent,
    u.email, u.name,
    a.id, a.name, a.type, a.balance_cents
FROM budgets b
JOIN users u ON u.id = b.user_id
LEFT JOIN accounts a ON a.user_id = b.user_id AND a.is_default = 1
ORDER BY b.created_at, b.id
`

func (q *Queries) ListBudgetCandidates(ctx context.Context) ([]BudgetCandidateRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetCandidates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BudgetCandidateRow
	for rows.Next() {
		var i BudgetCandidateRow
		if err := rows.Scan(
			&i.BudgetID,
			&i.UserID,
			&i.AmountCents,
			&i.LastAlertSent,
			&i.UserEmail,
			&i.UserName,
			&i.AccountID,
			&i.AccountName,
			&i.AccountType,
			&i.AccountBalanceCents,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumExpenses = `
SELECT SUM(amount_cents) FROM transactions
WHERE user_id = ? AND account_id = ? AND type = 'EXPENSE'
  AND occurred_on BETWEEN ? AND ?
`

type SumExpensesParams struct {
	UserID    string
	AccountID string
	StartDay  string
	EndDay    string
}

// SumExpenses returns NULL when no transaction matches.
func (q *Queries) SumExpenses(ctx context.Context, arg SumExpensesParams) (sql.NullInt64, error) {
	row := q.db.QueryRowContext(ctx, sumExpenses, arg.UserID, arg.AccountID, arg.StartDay, arg.EndDay)
	var sum sql.NullInt64
	err := row.Scan(&sum)
	return sum, err
}

const markBudgetAlertSent = `
UPDATE budgets SET last_alert_sent = ?, updated_at = ?
WHERE id = ? AND (last_alert_sent IS NULL OR last_alert_sent < ? OR last_alert_sent >= ?)
`

type MarkBudgetAlertSentParams struct {
	SentAt     string
	ID         string
	MonthStart string
	MonthEnd   string // exclusive
}

func (q *Queries) MarkBudgetAlertSent(ctx context.Context, arg MarkBudgetAlertSentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, markBudgetAlertSent, arg.SentAt, arg.SentAt, arg.ID, arg.MonthStart, arg.MonthEnd)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const sumByType = `
SELECT
    COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount_cents END), 0),
    COALESCE(SUM(CASE WHEN type = 'EXPENSE' THEN amount_cents END), 0)
FROM transactions
WHERE account_id = ? AND occurred_on BETWEEN ? AND ?
`

type MonthRangeParams struct {
	AccountID string
	StartDay  string
	EndDay    string
}

func (q *Queries) SumByType(ctx context.Context, arg MonthRangeParams) (income int64, expenses int64, err error) {
	row := q.db.QueryRowContext(ctx, sumByType, arg.AccountID, arg.StartDay, arg.EndDay)
	err = row.Scan(&income, &expenses)
	return income, expenses, err
}

const expenseCategorySums = `
SELECT category, SUM(amount_cents) AS total_cents
FROM transactions
WHERE account_id = ? AND type = 'EXPENSE' AND occurred_on BETWEEN ? AND ?
GROUP BY category
ORDER BY total_cents DESC, category
`

func (q *Queries) ExpenseCategorySums(ctx context.Context, arg MonthRangeParams) ([]CategorySumRow, error) {
	rows, err := q.db.QueryContext(ctx, expenseCategorySums, arg.AccountID, arg.StartDay, arg.EndDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySumRow
	for rows.Next() {
		var i CategorySumRow
		if err := rows.Scan(&i.Category, &i.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
