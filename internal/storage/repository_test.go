package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wealth/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, email string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{Email: email, Name: "Test User"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return u
}

func seedAccount(t *testing.T, repo *SQLiteRepository, userID, name string, isDefault bool) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		UserID:    userID,
		Name:      name,
		Type:      core.Current,
		IsDefault: isDefault,
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return a
}

func addTx(t *testing.T, repo *SQLiteRepository, u core.User, a core.Account, typ core.TransactionType, amount string, day core.Date) {
	t.Helper()
	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID:    u.ID,
		AccountID: a.ID,
		Type:      typ,
		Amount:    decimal.RequireFromString(amount),
		Category:  "groceries",
		Date:      day,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	seedUser(t, repo, "dup@example.com")

	_, err := repo.CreateUser(context.Background(), core.User{Email: "dup@example.com", Name: "Again"})
	if !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("CreateUser() error = %v, want ErrDuplicate", err)
	}

	got, err := repo.GetUserByEmail(context.Background(), "dup@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.Name != "Test User" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestGetUserNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.GetUser(context.Background(), "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("GetUser() error = %v, want ErrNotFound", err)
	}
}

func TestCreateAccountDefaultHandling(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "acc@example.com")

	first := seedAccount(t, repo, u.ID, "Main", false)
	if !first.IsDefault {
		t.Fatal("first account should become default")
	}

	second := seedAccount(t, repo, u.ID, "Savings", false)
	if second.IsDefault {
		t.Fatal("second non-default account should not be default")
	}

	third := seedAccount(t, repo, u.ID, "New main", true)

	accounts, err := repo.ListAccounts(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	defaults := 0
	for _, a := range accounts {
		if a.IsDefault {
			defaults++
			if a.ID != third.ID {
				t.Errorf("default account = %s, want %s", a.ID, third.ID)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("found %d default accounts, want 1", defaults)
	}
}

func TestSetDefaultAccount(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "set@example.com")
	other := seedUser(t, repo, "other@example.com")

	first := seedAccount(t, repo, u.ID, "Main", false)
	second := seedAccount(t, repo, u.ID, "Second", false)
	foreign := seedAccount(t, repo, other.ID, "Foreign", false)

	if err := repo.SetDefaultAccount(ctx, u.ID, second.ID); err != nil {
		t.Fatalf("SetDefaultAccount() error = %v", err)
	}
	got, _ := repo.GetAccount(ctx, first.ID)
	if got.IsDefault {
		t.Error("previous default still flagged")
	}
	got, _ = repo.GetAccount(ctx, second.ID)
	if !got.IsDefault {
		t.Error("new default not flagged")
	}

	// another user's account is rejected and the current default survives
	if err := repo.SetDefaultAccount(ctx, u.ID, foreign.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("SetDefaultAccount(foreign) error = %v, want ErrNotFound", err)
	}
	got, _ = repo.GetAccount(ctx, second.ID)
	if !got.IsDefault {
		t.Error("rollback lost the default flag")
	}
}

func TestCreateTransactionAdjustsBalance(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "bal@example.com")
	a := seedAccount(t, repo, u.ID, "Main", true)
	day := core.NewDate(2026, 10, 3)

	addTx(t, repo, u, a, core.Income, "1000.00", day)
	addTx(t, repo, u, a, core.Expense, "250.25", day)

	got, err := repo.GetAccount(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if want := decimal.RequireFromString("749.75"); !got.Balance.Equal(want) {
		t.Errorf("Balance = %s, want %s", got.Balance, want)
	}
}

func TestCreateTransactionRejectsForeignAccount(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUser(t, repo, "a@example.com")
	other := seedUser(t, repo, "b@example.com")
	a := seedAccount(t, repo, other.ID, "Theirs", true)

	_, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID:    u.ID,
		AccountID: a.ID,
		Type:      core.Expense,
		Amount:    decimal.NewFromInt(5),
		Category:  "misc",
		Date:      core.NewDate(2026, 10, 3),
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("CreateTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestSumExpensesMonthWindow(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "sum@example.com")
	main := seedAccount(t, repo, u.ID, "Main", true)
	side := seedAccount(t, repo, u.ID, "Side", false)
	w := core.MonthOf(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC), time.UTC)

	empty, err := repo.SumExpenses(ctx, u.ID, main.ID, w)
	if err != nil {
		t.Fatalf("SumExpenses() error = %v", err)
	}
	if !empty.IsZero() {
		t.Errorf("empty month sum = %s, want 0", empty)
	}

	addTx(t, repo, u, main, core.Expense, "100.10", core.NewDate(2026, 10, 1))
	addTx(t, repo, u, main, core.Expense, "200.20", core.NewDate(2026, 10, 31)) // last day counts in full
	addTx(t, repo, u, main, core.Expense, "999.00", core.NewDate(2026, 9, 30))
	addTx(t, repo, u, main, core.Expense, "999.00", core.NewDate(2026, 11, 1))
	addTx(t, repo, u, main, core.Income, "5000.00", core.NewDate(2026, 10, 2))
	addTx(t, repo, u, side, core.Expense, "999.00", core.NewDate(2026, 10, 2))

	got, err := repo.SumExpenses(ctx, u.ID, main.ID, w)
	if err != nil {
		t.Fatalf("SumExpenses() error = %v", err)
	}
	if want := decimal.RequireFromString("300.30"); !got.Equal(want) {
		t.Errorf("SumExpenses() = %s, want %s", got, want)
	}
}

func TestListBudgetCandidates(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	withAcc := seedUser(t, repo, "with@example.com")
	acc := seedAccount(t, repo, withAcc.ID, "Main", true)
	withoutAcc := seedUser(t, repo, "without@example.com")
	seedUser(t, repo, "nobudget@example.com")

	if _, err := repo.UpsertBudget(ctx, withAcc.ID, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}
	if _, err := repo.UpsertBudget(ctx, withoutAcc.ID, decimal.NewFromInt(500)); err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}

	candidates, err := repo.ListBudgetCandidates(ctx)
	if err != nil {
		t.Fatalf("ListBudgetCandidates() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}

	byUser := map[string]core.BudgetCandidate{}
	for _, c := range candidates {
		byUser[c.User.ID] = c
	}
	c := byUser[withAcc.ID]
	if c.DefaultAccount == nil || c.DefaultAccount.ID != acc.ID {
		t.Errorf("default account = %+v, want %s", c.DefaultAccount, acc.ID)
	}
	if c.User.Email != "with@example.com" {
		t.Errorf("user email = %q", c.User.Email)
	}
	if !c.Budget.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("budget amount = %s", c.Budget.Amount)
	}
	if byUser[withoutAcc.ID].DefaultAccount != nil {
		t.Error("user without accounts should have nil default account")
	}
}

func TestUpsertBudgetKeepsLastAlertSent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "up@example.com")
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	w := core.MonthOf(now, time.UTC)

	b, err := repo.UpsertBudget(ctx, u.ID, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}
	if _, err := repo.MarkAlertSent(ctx, b.ID, now, w); err != nil {
		t.Fatalf("MarkAlertSent() error = %v", err)
	}

	updated, err := repo.UpsertBudget(ctx, u.ID, decimal.RequireFromString("250.50"))
	if err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}
	if updated.ID != b.ID {
		t.Errorf("budget ID changed: %s -> %s", b.ID, updated.ID)
	}
	if !updated.Amount.Equal(decimal.RequireFromString("250.50")) {
		t.Errorf("Amount = %s", updated.Amount)
	}
	if updated.LastAlertSent == nil || !updated.LastAlertSent.Equal(now) {
		t.Errorf("LastAlertSent = %v, want %v", updated.LastAlertSent, now)
	}
}

func TestUpsertBudgetUnknownUser(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.UpsertBudget(context.Background(), "ghost", decimal.NewFromInt(1)); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("UpsertBudget() error = %v, want ErrNotFound", err)
	}
}

func TestMarkAlertSentOncePerMonth(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "mark@example.com")
	b, err := repo.UpsertBudget(ctx, u.ID, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}

	mar15 := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	mar28 := time.Date(2026, 3, 28, 10, 0, 0, 0, time.UTC)
	apr2 := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	steps := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"first alert", mar15, true},
		{"same month", mar28, false},
		{"next month", apr2, true},
		{"again next month", apr2.Add(time.Hour), false},
	}
	for _, s := range steps {
		changed, err := repo.MarkAlertSent(ctx, b.ID, s.at, core.MonthOf(s.at, time.UTC))
		if err != nil {
			t.Fatalf("%s: MarkAlertSent() error = %v", s.name, err)
		}
		if changed != s.want {
			t.Errorf("%s: changed = %v, want %v", s.name, changed, s.want)
		}
	}

	got, err := repo.GetBudget(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetBudget() error = %v", err)
	}
	if got.LastAlertSent == nil || !got.LastAlertSent.Equal(apr2) {
		t.Errorf("LastAlertSent = %v, want %v", got.LastAlertSent, apr2)
	}
}

func TestMarkAlertSentOverwritesOtherMonths(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	u := seedUser(t, repo, "skew@example.com")
	b, err := repo.UpsertBudget(ctx, u.ID, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}

	nov2 := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)
	oct10 := time.Date(2026, 10, 10, 8, 0, 0, 0, time.UTC)
	oct31 := time.Date(2026, 10, 31, 23, 59, 0, 0, time.UTC)

	steps := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"timestamp in a later month", nov2, true},
		{"current month replaces later month", oct10, true},
		{"same month again", oct31, false},
	}
	for _, s := range steps {
		changed, err := repo.MarkAlertSent(ctx, b.ID, s.at, core.MonthOf(s.at, time.UTC))
		if err != nil {
			t.Fatalf("%s: MarkAlertSent() error = %v", s.name, err)
		}
		if changed != s.want {
			t.Errorf("%s: changed = %v, want %v", s.name, changed, s.want)
		}
	}

	got, err := repo.GetBudget(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetBudget() error = %v", err)
	}
	if got.LastAlertSent == nil || !got.LastAlertSent.Equal(oct10) {
		t.Errorf("LastAlertSent = %v, want %v", got.LastAlertSent, oct10)
	}
}

func TestListBudgetCandidatesKeepsCorruptRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	good := seedUser(t, repo, "good@example.com")
	seedAccount(t, repo, good.ID, "Main", true)
	bad := seedUser(t, repo, "bad@example.com")
	seedAccount(t, repo, bad.ID, "Main", true)

	if _, err := repo.UpsertBudget(ctx, good.ID, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}
	badBudget, err := repo.UpsertBudget(ctx, bad.ID, decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("UpsertBudget() error = %v", err)
	}
	if _, err := repo.db.ExecContext(ctx,
		`UPDATE budgets SET last_alert_sent = '2026-09-01 10:00:00' WHERE id = ?`, badBudget.ID); err != nil {
		t.Fatalf("corrupt last_alert_sent: %v", err)
	}

	candidates, err := repo.ListBudgetCandidates(ctx)
	if err != nil {
		t.Fatalf("ListBudgetCandidates() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	for _, c := range candidates {
		switch c.User.ID {
		case good.ID:
			if c.Err != nil {
				t.Errorf("healthy budget carries error %v", c.Err)
			}
		case bad.ID:
			if c.Err == nil {
				t.Error("corrupt budget should carry a load error")
			}
			if c.Budget.ID != badBudget.ID {
				t.Errorf("corrupt budget ID = %q, want %q", c.Budget.ID, badBudget.ID)
			}
		}
	}
}

func TestMonthOverview(t *testing.T) {
	repo := newTestRepo(t)
	u := seedUser(t, repo, "ov@example.com")
	a := seedAccount(t, repo, u.ID, "Main", true)
	day := core.NewDate(2026, 10, 5)

	addTx(t, repo, u, a, core.Income, "3000.00", day)
	addTx(t, repo, u, a, core.Expense, "120.00", day)
	addTx(t, repo, u, a, core.Expense, "30.00", day)

	ov, err := repo.MonthOverview(context.Background(), a.ID, core.MonthOf(day.Time, time.UTC))
	if err != nil {
		t.Fatalf("MonthOverview() error = %v", err)
	}
	if ov.Label != "October 2026" {
		t.Errorf("Label = %q", ov.Label)
	}
	if !ov.TotalExpenses.Equal(decimal.NewFromInt(150)) {
		t.Errorf("TotalExpenses = %s", ov.TotalExpenses)
	}
	if !ov.Net().Equal(decimal.NewFromInt(2850)) {
		t.Errorf("Net = %s", ov.Net())
	}
	if len(ov.ByCategory) != 1 || ov.ByCategory[0].Name != "groceries" {
		t.Errorf("ByCategory = %+v", ov.ByCategory)
	}
}
