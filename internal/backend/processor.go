package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"wealth/internal/config"
	"wealth/internal/log"
	"wealth/internal/notify"
	"wealth/internal/services"
)

// AlertPipeline is a fully wired budget alert processor plus the resources
// it holds open.
type AlertPipeline struct {
	Processor *services.BudgetAlertProcessor
	Ledger    *LedgerResult
	cleanups  []CleanupFunc
}

// Close releases the notifier and lock connections.
func (p *AlertPipeline) Close() error {
	var errs []error
	for i := len(p.cleanups) - 1; i >= 0; i-- {
		if err := p.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildAlertPipeline wires store to the notifier, ledger and lock selected
// by appConfig.
func BuildAlertPipeline(ctx context.Context, f Factory, appConfig *config.Config, store services.BudgetStore, logger *slog.Logger) (*AlertPipeline, error) {
	bc, err := FromAppConfig(appConfig)
	if err != nil {
		return nil, err
	}

	renderer, err := notify.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}

	pipeline := &AlertPipeline{}

	nr, err := f.CreateNotifier(ctx, bc)
	if err != nil {
		return nil, err
	}
	if nr.Cleanup != nil {
		pipeline.cleanups = append(pipeline.cleanups, nr.Cleanup)
	}

	ledger, err := f.CreateLedger(ctx, bc)
	if err != nil {
		_ = pipeline.Close()
		return nil, err
	}
	pipeline.Ledger = ledger

	lr, err := f.CreateLocker(ctx, bc)
	if err != nil {
		_ = pipeline.Close()
		return nil, err
	}
	if lr.Cleanup != nil {
		pipeline.cleanups = append(pipeline.cleanups, lr.Cleanup)
	}

	processor := services.NewBudgetAlertProcessor(store, nr.Notifier, renderer, services.BudgetAlertConfig{
		ThresholdPercent: appConfig.AlertThresholdPercent,
		Concurrency:      appConfig.AlertConcurrency,
		DispatchTimeout:  appConfig.DispatchTimeout,
		Location:         appConfig.Location(),
	})
	if ledger.Recorder != nil {
		processor.WithRecorder(ledger.Recorder)
	}
	if lr.Locker != nil {
		processor.WithLocker(lr.Locker)
	}
	pipeline.Processor = processor

	logger.With(log.FieldComponent, log.ComponentBackend).Info("Budget alert pipeline ready",
		"notifier", bc.Notifier,
		"ledger", bc.Ledger,
		"locked", lr.Locker != nil,
		"threshold_percent", appConfig.AlertThresholdPercent)
	return pipeline, nil
}
