package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wealth/internal/core"
	"wealth/internal/log"
	"wealth/internal/notify"
	"wealth/internal/sheets"
)

type fakeBudgetStore struct {
	mu         sync.Mutex
	candidates []core.BudgetCandidate
	spent      map[string]decimal.Decimal // by account ID
	sumErr     map[string]error           // by account ID
	listErr    error
	markErr    error
	lostRace   bool
	sumCalls   int
	marked     map[string]time.Time
}

func newFakeStore(candidates ...core.BudgetCandidate) *fakeBudgetStore {
	return &fakeBudgetStore{
		candidates: candidates,
		spent:      map[string]decimal.Decimal{},
		sumErr:     map[string]error{},
		marked:     map[string]time.Time{},
	}
}

func (s *fakeBudgetStore) ListBudgetCandidates(ctx context.Context) ([]core.BudgetCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]core.BudgetCandidate(nil), s.candidates...), nil
}

func (s *fakeBudgetStore) SumExpenses(ctx context.Context, userID, accountID string, w core.MonthWindow) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sumCalls++
	if err := s.sumErr[accountID]; err != nil {
		return decimal.Zero, err
	}
	return s.spent[accountID], nil
}

func (s *fakeBudgetStore) MarkAlertSent(ctx context.Context, budgetID string, sentAt time.Time, w core.MonthWindow) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return false, s.markErr
	}
	if s.lostRace {
		return false, nil
	}
	s.marked[budgetID] = sentAt
	for i := range s.candidates {
		if s.candidates[i].Budget.ID == budgetID {
			t := sentAt
			s.candidates[i].Budget.LastAlertSent = &t
		}
	}
	return true, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []notify.Message
	errs  map[string]error // by recipient
	block bool
}

func (n *fakeNotifier) Send(ctx context.Context, msg notify.Message) error {
	if n.block {
		<-ctx.Done()
		return ctx.Err()
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.errs[msg.To]; err != nil {
		return err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type stubRenderer struct{}

func (stubRenderer) Render(e notify.Email) (string, error) {
	d := e.Data.(notify.BudgetAlertData)
	return fmt.Sprintf("%s used %.1f%% of %s", e.UserName, d.PercentageUsed, d.AccountName), nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []sheets.AlertRecord
	err     error
}

func (r *fakeRecorder) Record(ctx context.Context, rec sheets.AlertRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.records = append(r.records, rec)
	return fmt.Sprintf("row:%d", len(r.records)), nil
}

type fakeLocker struct {
	held     bool
	err      error
	released bool
}

func (l *fakeLocker) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	return func(context.Context) error { l.released = true; return nil }, true, nil
}

func candidate(id, amount string, lastAlert *time.Time) core.BudgetCandidate {
	return core.BudgetCandidate{
		Budget: core.Budget{
			ID:            "budget-" + id,
			UserID:        "user-" + id,
			Amount:        decimal.RequireFromString(amount),
			LastAlertSent: lastAlert,
		},
		User:           core.User{ID: "user-" + id, Email: id + "@example.com", Name: "User " + id},
		DefaultAccount: &core.Account{ID: "acc-" + id, UserID: "user-" + id, Name: "Main " + id, IsDefault: true},
	}
}

func testConfig() BudgetAlertConfig {
	cfg := DefaultBudgetAlertConfig()
	cfg.DispatchTimeout = time.Second
	return cfg
}

func at(month time.Month, day int) time.Time {
	return time.Date(2026, month, day, 12, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestBudgetAlertProcessor_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		spent       string
		lastAlert   *time.Time
		now         time.Time
		wantOutcome Outcome
		wantSent    int
	}{
		{"85 percent fires", "1000", "850", nil, at(time.October, 15), OutcomeAlerted, 1},
		{"exactly 80 percent fires", "1000", "800", nil, at(time.October, 15), OutcomeAlerted, 1},
		{"79.999 percent does not fire", "1000", "799.99", nil, at(time.October, 15), OutcomeBelowThreshold, 0},
		{"no expenses", "1000", "0", nil, at(time.October, 15), OutcomeBelowThreshold, 0},
		{"already alerted this month", "1000", "900", ptr(at(time.March, 15)), at(time.March, 28), OutcomeAlreadyAlerted, 0},
		{"alerted last month", "1000", "820", ptr(at(time.March, 15)), at(time.April, 2), OutcomeAlerted, 1},
		{"alerted same month last year", "1000", "820", ptr(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)), at(time.April, 2), OutcomeAlerted, 1},
		{"zero budget", "0", "10", nil, at(time.October, 15), OutcomeInvalidThreshold, 0},
		{"negative budget", "-5", "10", nil, at(time.October, 15), OutcomeInvalidThreshold, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := candidate("a", tt.amount, tt.lastAlert)
			store := newFakeStore(c)
			store.spent["acc-a"] = decimal.RequireFromString(tt.spent)
			notifier := &fakeNotifier{}
			p := NewBudgetAlertProcessor(store, notifier, stubRenderer{}, testConfig())

			summary, err := p.Run(context.Background(), tt.now)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(summary.Results) != 1 {
				t.Fatalf("got %d results, want 1", len(summary.Results))
			}
			if got := summary.Results[0].Outcome; got != tt.wantOutcome {
				t.Errorf("outcome = %s, want %s", got, tt.wantOutcome)
			}
			if got := notifier.count(); got != tt.wantSent {
				t.Errorf("dispatches = %d, want %d", got, tt.wantSent)
			}

			sentAt, marked := store.marked[c.Budget.ID]
			if tt.wantSent == 1 {
				if !marked || !sentAt.Equal(tt.now) {
					t.Errorf("lastAlertSent = %v (marked=%v), want %v", sentAt, marked, tt.now)
				}
			} else if marked {
				t.Error("lastAlertSent written without a dispatch")
			}
		})
	}
}

func TestBudgetAlertProcessor_MessageContent(t *testing.T) {
	store := newFakeStore(candidate("a", "1000", nil))
	store.spent["acc-a"] = decimal.RequireFromString("850")
	notifier := &fakeNotifier{}
	p := NewBudgetAlertProcessor(store, notifier, stubRenderer{}, testConfig())

	summary, err := p.Run(context.Background(), at(time.October, 15))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	res := summary.Results[0]
	if !res.PercentageUsed.Equal(decimal.NewFromInt(85)) {
		t.Errorf("PercentageUsed = %s, want 85", res.PercentageUsed)
	}
	if !res.Spent.Equal(decimal.NewFromInt(850)) {
		t.Errorf("Spent = %s, want 850", res.Spent)
	}

	msg := notifier.sent[0]
	if msg.To != "a@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	if msg.Subject != "Budget Alert for Main a" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	if msg.HTML != "User a used 85.0% of Main a" {
		t.Errorf("HTML = %q", msg.HTML)
	}
}

func TestBudgetAlertProcessor_IdempotentWithinMonth(t *testing.T) {
	store := newFakeStore(candidate("a", "1000", nil))
	store.spent["acc-a"] = decimal.RequireFromString("950")
	notifier := &fakeNotifier{}
	p := NewBudgetAlertProcessor(store, notifier, stubRenderer{}, testConfig())

	// every six hours for the rest of March
	for now := at(time.March, 1); now.Month() == time.March; now = now.Add(6 * time.Hour) {
		if _, err := p.Run(context.Background(), now); err != nil {
			t.Fatalf("Run(%v) error = %v", now, err)
		}
	}
	if got := notifier.count(); got != 1 {
		t.Fatalf("dispatches in March = %d, want 1", got)
	}

	if _, err := p.Run(context.Background(), at(time.April, 2)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := p.Run(context.Background(), at(time.April, 20)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := notifier.count(); got != 2 {
		t.Errorf("dispatches after April runs = %d, want 2", got)
	}
}

func TestBudgetAlertProcessor_PartialFailureIsolation(t *testing.T) {
	noAccount := candidate("none", "1000", nil)
	noAccount.DefaultAccount = nil

	store := newFakeStore(
		candidate("ok1", "1000", nil),
		noAccount,
		candidate("broken", "1000", nil),
		candidate("ok2", "500", nil),
	)
	store.spent["acc-ok1"] = decimal.NewFromInt(900)
	store.spent["acc-ok2"] = decimal.NewFromInt(450)
	store.sumErr["acc-broken"] = errors.New("database is locked")

	notifier := &fakeNotifier{}
	p := NewBudgetAlertProcessor(store, notifier, stubRenderer{}, testConfig())

	summary, err := p.Run(context.Background(), at(time.October, 15))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []Outcome{OutcomeAlerted, OutcomeNoDefaultAccount, OutcomeFailed, OutcomeAlerted}
	for i, w := range want {
		if got := summary.Results[i].Outcome; got != w {
			t.Errorf("result[%d] outcome = %s, want %s", i, got, w)
		}
	}
	if summary.Results[2].Err == nil {
		t.Error("failed result should carry its error")
	}
	if notifier.count() != 2 {
		t.Errorf("dispatches = %d, want 2", notifier.count())
	}
	if summary.Count(OutcomeFailed) != 1 {
		t.Errorf("Count(failed) = %d, want 1", summary.Count(OutcomeFailed))
	}
}

func TestBudgetAlertProcessor_DispatchFailureSkipsWrite(t *testing.T) {
	store := newFakeStore(candidate("a", "1000", nil))
	store.spent["acc-a"] = decimal.NewFromInt(900)
	notifier := &fakeNotifier{errs: map[string]error{"a@example.com": errors.New("smtp: 421 try later")}}
	p := NewBudgetAlertProcessor(store, notifier, stubRenderer{}, testConfig())

	summary, err := p.Run(context.Background(), at(time.October, 15))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Results[0].Outcome != OutcomeFailed {
		t.Fatalf("outcome = %s, want failed", summary.Results[0].Outcome)
	}
	if len(store.marked) != 0 {
		t.Fatal("lastAlertSent written after failed dispatch")
	}

	// the next run in the same month retries
	notifier.errs = nil
	summary, err = p.Run(context.Background(), at(time.October, 15).Add(6*time.Hour))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Results[0].Outcome != OutcomeAlerted {
		t.Errorf("retry outcome = %s, want alerted", summary.Results[0].Outcome)
	}
	if notifier.count() != 1 {
		t.Errorf("dispatches = %d, want 1", notifier.count())
	}
}

func TestBudgetAlertProcessor_DispatchTimeout(t *testing.T) {
	store := newFakeStore(candidate("slow", "1000", nil), candidate("fast", "1000", nil))
	store.spent["acc-slow"] = decimal.NewFromInt(900)
	store.spent["acc-fast"] = decimal.NewFromInt(100)
	notifier := &fakeNotifier{block: true}

	cfg := testConfig()
	cfg.DispatchTimeout = 50 * time.Millisecond
	p := NewBudgetAlertProcessor(store, notifier, stubRenderer{}, cfg)

	start := time.Now()
	summary, err := p.Run(context.Background(), at(time.October, 15))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("run took %v, dispatch was not bounded", elapsed)
	}

	res := summary.Results[0]
	if res.Outcome != OutcomeFailed || !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("slow result = %s / %v, want failed with deadline exceeded", res.Outcome, res.Err)
	}
	if summary.Results[1].Outcome != OutcomeBelowThreshold {
		t.Errorf("fast result = %s, want below_threshold", summary.Results[1].Outcome)
	}
	if len(store.marked) != 0 {
		t.Error("lastAlertSent written after timed out dispatch")
	}
}

func TestBudgetAlertProcessor_InvalidThresholdSkipsAggregation(t *testing.T) {
	store := newFakeStore(candidate("zero", "0", nil))
	p := NewBudgetAlertProcessor(store, &fakeNotifier{}, stubRenderer{}, testConfig())

	if _, err := p.Run(context.Background(), at(time.October, 15)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if store.sumCalls != 0 {
		t.Errorf("SumExpenses called %d times for a zero budget", store.sumCalls)
	}
}

func TestBudgetAlertProcessor_ListFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("no such table: budgets")
	p := NewBudgetAlertProcessor(store, &fakeNotifier{}, stubRenderer{}, testConfig())

	if _, err := p.Run(context.Background(), at(time.October, 15)); err == nil {
		t.Fatal("Run() expected error when budgets cannot be listed")
	}
}

func TestBudgetAlertProcessor_MarkFailure(t *testing.T) {
	store := newFakeStore(candidate("a", "1000", nil))
	store.spent["acc-a"] = decimal.NewFromInt(900)
	store.markErr = errors.New("disk I/O error")
	p := NewBudgetAlertProcessor(store, &fakeNotifier{}, stubRenderer{}, testConfig())

	summary, err := p.Run(context.Background(), at(time.October, 15))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Results[0].Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want failed", summary.Results[0].Outcome)
	}
}

func TestBudgetAlertProcessor_LostRaceIsNotAnError(t *testing.T) {
	store := newFakeStore(candidate("a", "1000", nil))
	store.spent["acc-a"] = decimal.NewFromInt(900)
	store.lostRace = true
	p := NewBudgetAlertProcessor(store, &fakeNotifier{}, stubRenderer{}, testConfig())

	summary, err := p.Run(context.Background(), at(time.October, 15))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res := summary.Results[0]; res.Outcome != OutcomeAlerted || res.Err != nil {
		t.Errorf("result = %s / %v, want alerted without error", res.Outcome, res.Err)
	}
}

func TestBudgetAlertProcessor_Locker(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		store := newFakeStore(candidate("a", "1000", nil))
		store.spent["acc-a"] = decimal.NewFromInt(900)
		notifier := &fakeNotifier{}
		p := NewBudgetAlertProcessor(store, notifier, stubRenderer{}, testConfig()).
			WithLocker(&fakeLocker{held: true})

		summary, err := p.Run(context.Background(), at(time.October, 15))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !summary.Skipped || len(summary.Results) != 0 || notifier.count() != 0 {
			t.Errorf("expected skipped run, got %+v", summary)
		}
	})

	t.Run("acquired and released", func(t *testing.T) {
		locker := &fakeLocker{}
		p := NewBudgetAlertProcessor(newFakeStore(), &fakeNotifier{}, stubRenderer{}, testConfig()).
			WithLocker(locker)

		if _, err := p.Run(context.Background(), at(time.October, 15)); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !locker.released {
			t.Error("lock not released")
		}
	})

	t.Run("lock backend down runs unlocked", func(t *testing.T) {
		store := newFakeStore(candidate("a", "1000", nil))
		store.spent["acc-a"] = decimal.NewFromInt(900)
		notifier := &fakeNotifier{}
		p := NewBudgetAlertProcessor(store, notifier, stubRenderer{}, testConfig()).
			WithLocker(&fakeLocker{err: errors.New("dial tcp: connection refused")})

		summary, err := p.Run(context.Background(), at(time.October, 15))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if summary.Skipped || summary.Count(OutcomeAlerted) != 1 || notifier.count() != 1 {
			t.Errorf("expected an unlocked run with one alert, got %+v", summary)
		}
	})
}

func TestBudgetAlertProcessor_UnreadableBudgetIsIsolated(t *testing.T) {
	broken := candidate("a", "1000", nil)
	broken.Err = errors.New("parse last alert sent: bad layout")
	store := newFakeStore(broken, candidate("b", "1000", nil))
	store.spent["acc-a"] = decimal.NewFromInt(900)
	store.spent["acc-b"] = decimal.NewFromInt(900)
	notifier := &fakeNotifier{}
	p := NewBudgetAlertProcessor(store, notifier, stubRenderer{}, testConfig())

	summary, err := p.Run(context.Background(), at(time.October, 15))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	byBudget := map[string]Result{}
	for _, r := range summary.Results {
		byBudget[r.BudgetID] = r
	}
	if r := byBudget["budget-a"]; r.Outcome != OutcomeFailed || !errors.Is(r.Err, broken.Err) {
		t.Errorf("budget-a = %s / %v, want failed with load error", r.Outcome, r.Err)
	}
	if r := byBudget["budget-b"]; r.Outcome != OutcomeAlerted {
		t.Errorf("budget-b = %s, want alerted", r.Outcome)
	}
	if notifier.count() != 1 {
		t.Errorf("dispatches = %d, want 1", notifier.count())
	}
	if _, ok := store.marked["budget-a"]; ok {
		t.Error("unreadable budget must not be marked")
	}
}

func TestBudgetAlertProcessor_Recorder(t *testing.T) {
	store := newFakeStore(candidate("a", "1000", nil), candidate("b", "1000", nil))
	store.spent["acc-a"] = decimal.RequireFromString("850.55")
	store.spent["acc-b"] = decimal.NewFromInt(10)
	recorder := &fakeRecorder{}
	p := NewBudgetAlertProcessor(store, &fakeNotifier{}, stubRenderer{}, testConfig()).
		WithRecorder(recorder)

	if _, err := p.Run(context.Background(), at(time.October, 15)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(recorder.records) != 1 {
		t.Fatalf("records = %d, want 1", len(recorder.records))
	}
	rec := recorder.records[0]
	if rec.BudgetID != "budget-a" || rec.Month != "October 2026" {
		t.Errorf("record = %+v", rec)
	}
	if !rec.PercentageUsed.Equal(decimal.RequireFromString("85.1")) {
		t.Errorf("PercentageUsed = %s, want 85.1", rec.PercentageUsed)
	}

	// a broken ledger never turns an alert into a failure
	store2 := newFakeStore(candidate("c", "1000", nil))
	store2.spent["acc-c"] = decimal.NewFromInt(900)
	p2 := NewBudgetAlertProcessor(store2, &fakeNotifier{}, stubRenderer{}, testConfig()).
		WithRecorder(&fakeRecorder{err: errors.New("quota exceeded")})
	summary, err := p2.Run(context.Background(), at(time.October, 15))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Results[0].Outcome != OutcomeAlerted {
		t.Errorf("outcome = %s, want alerted", summary.Results[0].Outcome)
	}
}

func TestBudgetAlertProcessor_ConcurrentFanOut(t *testing.T) {
	var candidates []core.BudgetCandidate
	store := newFakeStore()
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("%02d", i)
		candidates = append(candidates, candidate(id, "100", nil))
		if i%2 == 0 {
			store.spent["acc-"+id] = decimal.NewFromInt(90)
		}
	}
	store.candidates = candidates

	notifier := &fakeNotifier{}
	cfg := testConfig()
	cfg.Concurrency = 8
	p := NewBudgetAlertProcessor(store, notifier, stubRenderer{}, cfg)

	summary, err := p.Run(context.Background(), at(time.October, 15))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, res := range summary.Results {
		if res.BudgetID != candidates[i].Budget.ID {
			t.Fatalf("result[%d] is for %s, want %s", i, res.BudgetID, candidates[i].Budget.ID)
		}
	}
	if notifier.count() != 25 || summary.Count(OutcomeAlerted) != 25 {
		t.Errorf("dispatches = %d, alerted = %d, want 25", notifier.count(), summary.Count(OutcomeAlerted))
	}
}

func TestBudgetAlertProcessor_LocationDecidesMonth(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// alerted Oct 31 15:00 UTC, which is already November in Tokyo
	last := time.Date(2026, 10, 31, 15, 0, 0, 0, time.UTC)
	now := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	store := newFakeStore(candidate("a", "1000", &last))
	store.spent["acc-a"] = decimal.NewFromInt(900)
	cfg := testConfig()
	cfg.Location = tokyo
	p := NewBudgetAlertProcessor(store, &fakeNotifier{}, stubRenderer{}, cfg)

	summary, err := p.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Results[0].Outcome != OutcomeAlreadyAlerted {
		t.Errorf("outcome = %s, want already_alerted", summary.Results[0].Outcome)
	}
}

func TestBudgetAlertProcessor_NotInitialized(t *testing.T) {
	p := NewBudgetAlertProcessor(nil, nil, nil, DefaultBudgetAlertConfig())
	if _, err := p.Run(context.Background(), time.Now()); err == nil {
		t.Error("expected error from uninitialized processor")
	}
}

func TestBudgetAlertProcessor_LogsCarryRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: "debug", Format: "text", Component: log.ComponentEvaluator, Output: &buf})
	ctx := log.WithLogger(context.Background(), logger)

	store := newFakeStore(candidate("a", "1000", nil))
	store.spent["acc-a"] = decimal.NewFromInt(900)
	p := NewBudgetAlertProcessor(store, &fakeNotifier{}, stubRenderer{}, testConfig())

	first, err := p.Run(ctx, at(time.October, 15))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := p.Run(ctx, at(time.October, 16))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if first.RunID == "" || first.RunID == second.RunID {
		t.Fatalf("run IDs = %q, %q", first.RunID, second.RunID)
	}

	out := buf.String()
	for _, want := range []string{
		"run_id=" + first.RunID,
		"run_id=" + second.RunID,
		"component=" + log.ComponentEvaluator,
		"budget_id=budget-a",
		"msg=\"Budget alert sent\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}
