package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"wealth/internal/core"
	"wealth/internal/log"
	"wealth/internal/notify"
	"wealth/internal/sheets"
)

// Outcome classifies what happened to one budget during a run.
type Outcome string

const (
	OutcomeAlerted          Outcome = "alerted"
	OutcomeBelowThreshold   Outcome = "below_threshold"
	OutcomeAlreadyAlerted   Outcome = "already_alerted"
	OutcomeNoDefaultAccount Outcome = "no_default_account"
	OutcomeInvalidThreshold Outcome = "invalid_threshold"
	OutcomeFailed           Outcome = "failed"
)

// BudgetStore is the slice of the repository the evaluator needs.
type BudgetStore interface {
	ListBudgetCandidates(ctx context.Context) ([]core.BudgetCandidate, error)
	SumExpenses(ctx context.Context, userID, accountID string, w core.MonthWindow) (decimal.Decimal, error)
	MarkAlertSent(ctx context.Context, budgetID string, sentAt time.Time, w core.MonthWindow) (bool, error)
}

// EmailRenderer produces the HTML body of a notification.
type EmailRenderer interface {
	Render(e notify.Email) (string, error)
}

// RunLocker serializes runs across processes. ok is false when another
// process holds the lock.
type RunLocker interface {
	TryLock(ctx context.Context) (unlock func(context.Context) error, ok bool, err error)
}

type BudgetAlertConfig struct {
	ThresholdPercent int
	Concurrency      int
	DispatchTimeout  time.Duration
	Location         *time.Location
}

func DefaultBudgetAlertConfig() BudgetAlertConfig {
	return BudgetAlertConfig{
		ThresholdPercent: core.DefaultAlertThreshold,
		Concurrency:      4,
		DispatchTimeout:  30 * time.Second,
		Location:         time.UTC,
	}
}

// Result is the per-budget outcome of a run. Err is set only for
// OutcomeFailed.
type Result struct {
	BudgetID       string
	UserID         string
	Outcome        Outcome
	PercentageUsed decimal.Decimal
	Spent          decimal.Decimal
	Err            error
}

type RunSummary struct {
	RunID   string
	Month   string
	Skipped bool // another process held the run lock
	Results []Result
}

// Count returns how many results have outcome o.
func (s RunSummary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// BudgetAlertProcessor evaluates every budget against its month-to-date
// spending and sends at most one alert per budget per calendar month.
type BudgetAlertProcessor struct {
	store    BudgetStore
	notifier notify.Notifier
	renderer EmailRenderer
	recorder sheets.AlertRecorder
	locker   RunLocker
	config   BudgetAlertConfig
}

func NewBudgetAlertProcessor(store BudgetStore, notifier notify.Notifier, renderer EmailRenderer, config BudgetAlertConfig) *BudgetAlertProcessor {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	if config.ThresholdPercent < 1 {
		config.ThresholdPercent = core.DefaultAlertThreshold
	}
	return &BudgetAlertProcessor{
		store:    store,
		notifier: notifier,
		renderer: renderer,
		config:   config,
	}
}

// WithRecorder appends every delivered alert to r. Recorder failures are
// logged and never undo an alert.
func (p *BudgetAlertProcessor) WithRecorder(r sheets.AlertRecorder) *BudgetAlertProcessor {
	p.recorder = r
	return p
}

// WithLocker makes Run skip when another process is already running.
func (p *BudgetAlertProcessor) WithLocker(l RunLocker) *BudgetAlertProcessor {
	p.locker = l
	return p
}

// Run evaluates all budgets for the calendar month containing now. It only
// returns an error when the run cannot start; per-budget failures are
// reported in the summary.
func (p *BudgetAlertProcessor) Run(ctx context.Context, now time.Time) (RunSummary, error) {
	if p.store == nil || p.notifier == nil || p.renderer == nil {
		return RunSummary{}, fmt.Errorf("processor not properly initialized")
	}

	started := time.Now()
	window := core.MonthOf(now, p.config.Location)
	summary := RunSummary{RunID: uuid.NewString(), Month: window.Label()}

	logger := log.FromContext(ctx).With(log.FieldRunID, summary.RunID)
	ctx = log.WithLogger(ctx, logger)

	if p.locker != nil {
		unlock, ok, err := p.locker.TryLock(ctx)
		switch {
		case err != nil:
			// MarkAlertSent still refuses a second write for the month
			logger.WarnContext(ctx, "Run lock unavailable, evaluating without it", log.FieldError, err)
		case !ok:
			logger.InfoContext(ctx, "Budget alert run already in progress elsewhere, skipping")
			summary.Skipped = true
			return summary, nil
		default:
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					logger.WarnContext(ctx, "Failed to release run lock", log.FieldError, err)
				}
			}()
		}
	}

	candidates, err := p.store.ListBudgetCandidates(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list budgets: %w", err)
	}

	logger.InfoContext(ctx, "Evaluating budgets",
		"total", len(candidates),
		"month", summary.Month,
		"threshold_percent", p.config.ThresholdPercent)

	results := make([]Result, len(candidates))
	var g errgroup.Group
	g.SetLimit(p.config.Concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			results[i] = p.evaluate(ctx, c, now, window)
			return nil
		})
	}
	_ = g.Wait()

	summary.Results = results
	logger.InfoContext(ctx, "Budget alert run complete",
		log.FieldMonth, summary.Month,
		"total", len(results),
		"alerted", summary.Count(OutcomeAlerted),
		"below_threshold", summary.Count(OutcomeBelowThreshold),
		"already_alerted", summary.Count(OutcomeAlreadyAlerted),
		"no_default_account", summary.Count(OutcomeNoDefaultAccount),
		"invalid_threshold", summary.Count(OutcomeInvalidThreshold),
		"failed", summary.Count(OutcomeFailed),
		log.FieldDuration, time.Since(started).Milliseconds())

	return summary, nil
}

func (p *BudgetAlertProcessor) evaluate(ctx context.Context, c core.BudgetCandidate, now time.Time, window core.MonthWindow) Result {
	res := Result{BudgetID: c.Budget.ID, UserID: c.User.ID}
	logger := log.FromContext(ctx).With(log.FieldBudgetID, c.Budget.ID, log.FieldUserID, c.User.ID)

	if c.Err != nil {
		logger.ErrorContext(ctx, "Failed to load budget", log.FieldError, c.Err)
		return failed(res, fmt.Errorf("load budget: %w", c.Err))
	}
	if c.DefaultAccount == nil {
		logger.DebugContext(ctx, "No default account, skipping budget")
		res.Outcome = OutcomeNoDefaultAccount
		return res
	}
	if !c.Budget.Amount.IsPositive() {
		logger.WarnContext(ctx, "Budget amount must be positive, skipping budget",
			"budget_amount", c.Budget.Amount.String())
		res.Outcome = OutcomeInvalidThreshold
		return res
	}
	logger = logger.With(log.FieldAccountID, c.DefaultAccount.ID)

	spent, err := p.store.SumExpenses(ctx, c.User.ID, c.DefaultAccount.ID, window)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to aggregate expenses", log.FieldError, err)
		return failed(res, fmt.Errorf("aggregate expenses: %w", err))
	}
	res.Spent = spent
	res.PercentageUsed = core.PercentageUsed(spent, c.Budget.Amount)

	if !core.ThresholdReached(spent, c.Budget.Amount, p.config.ThresholdPercent) {
		res.Outcome = OutcomeBelowThreshold
	} else if core.AlertedThisMonth(c.Budget.LastAlertSent, now, p.config.Location) {
		res.Outcome = OutcomeAlreadyAlerted
	}
	if res.Outcome != "" {
		logger.DebugContext(ctx, "No alert needed",
			log.FieldOutcome, res.Outcome,
			log.FieldSpent, core.FormatAmount(spent))
		return res
	}

	if err := p.dispatch(ctx, c, spent, res.PercentageUsed, window); err != nil {
		logger.ErrorContext(ctx, "Failed to dispatch budget alert", log.FieldError, err)
		return failed(res, fmt.Errorf("dispatch alert: %w", err))
	}

	changed, err := p.store.MarkAlertSent(ctx, c.Budget.ID, now, window)
	if err != nil {
		// the notification already went out; next run may repeat it
		logger.ErrorContext(ctx, "Failed to record alert timestamp", log.FieldError, err)
		return failed(res, fmt.Errorf("mark alert sent: %w", err))
	}
	if !changed {
		logger.WarnContext(ctx, "Alert timestamp already set for this month by a concurrent run")
	}

	res.Outcome = OutcomeAlerted
	pct, _ := res.PercentageUsed.Round(1).Float64()
	logger.InfoContext(ctx, "Budget alert sent",
		log.FieldPercentageUsed, pct,
		log.FieldSpent, core.FormatAmount(spent),
		log.FieldBudgetAmount, core.FormatAmount(c.Budget.Amount))

	p.record(ctx, c, res, now, window)
	return res
}

func (p *BudgetAlertProcessor) dispatch(ctx context.Context, c core.BudgetCandidate, spent, percentage decimal.Decimal, window core.MonthWindow) error {
	pct, _ := percentage.Round(1).Float64()
	body, err := p.renderer.Render(notify.Email{
		Type:     notify.TemplateBudgetAlert,
		UserName: c.User.Name,
		Data: notify.BudgetAlertData{
			AccountName:    c.DefaultAccount.Name,
			Month:          window.Label(),
			PercentageUsed: pct,
			BudgetAmount:   c.Budget.Amount,
			TotalExpenses:  spent,
			Remaining:      c.Budget.Amount.Sub(spent),
		},
	})
	if err != nil {
		return err
	}

	dctx := ctx
	if p.config.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, p.config.DispatchTimeout)
		defer cancel()
	}

	err = p.notifier.Send(dctx, notify.Message{
		To:      c.User.Email,
		Subject: "Budget Alert for " + c.DefaultAccount.Name,
		HTML:    body,
	})
	if err == nil && errors.Is(dctx.Err(), context.DeadlineExceeded) {
		// a notifier that ignored the deadline still counts as timed out
		err = dctx.Err()
	}
	return err
}

func (p *BudgetAlertProcessor) record(ctx context.Context, c core.BudgetCandidate, res Result, now time.Time, window core.MonthWindow) {
	if p.recorder == nil {
		return
	}
	ref, err := p.recorder.Record(ctx, sheets.AlertRecord{
		SentAt:         now,
		BudgetID:       c.Budget.ID,
		UserID:         c.User.ID,
		UserEmail:      c.User.Email,
		AccountName:    c.DefaultAccount.Name,
		Month:          window.Label(),
		PercentageUsed: res.PercentageUsed.Round(1),
		BudgetAmount:   c.Budget.Amount,
		Spent:          res.Spent,
	})
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to record alert in ledger",
			log.FieldBudgetID, c.Budget.ID,
			log.FieldError, err)
		return
	}
	log.FromContext(ctx).DebugContext(ctx, "Alert recorded in ledger", log.FieldBudgetID, c.Budget.ID, "ref", ref)
}

func failed(res Result, err error) Result {
	res.Outcome = OutcomeFailed
	res.Err = err
	return res
}
