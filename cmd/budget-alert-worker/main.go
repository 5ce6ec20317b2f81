package main

import (
	"context"
	"os"
	"time"

	"wealth/internal/backend"
	"wealth/internal/cli"
	"wealth/internal/config"
	"wealth/internal/log"
	"wealth/internal/scheduler"
	"wealth/internal/services"
)

const jobName = "budget-alerts"

func main() {
	cfg, logger := cli.MustBootstrap(log.ComponentEvaluator, (*config.Config).Validate)

	logger.Info("Starting budget-alert-worker",
		"schedule", cfg.AlertSchedule,
		"timezone", cfg.AlertTimezone,
		"sqlite_db", cfg.SQLiteDBPath)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	pipeline, err := backend.BuildAlertPipeline(ctx, backend.NewFactory(logger.Logger), cfg, repo, logger.Logger)
	if err != nil {
		logger.Error("Failed to build alert pipeline", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()

	run := func(ctx context.Context) {
		runCtx := log.WithLogger(ctx, logger)
		summary, err := pipeline.Processor.Run(runCtx, time.Now())
		if err != nil {
			logger.Error("Budget alert run failed", "error", err)
			return
		}
		if n := summary.Count(services.OutcomeFailed); n > 0 {
			logger.Warn("Some budgets failed and will be retried next run", "failed", n, "month", summary.Month)
		}
	}

	// Run once on startup so a restart does not wait for the next slot
	if cfg.RunOnStartup {
		logger.Info("Running initial budget alert evaluation...")
		run(ctx)
	}

	sched := scheduler.New(cfg.Location(), logger.WithComponent(log.ComponentScheduler).Logger)
	if err := sched.AddJob(jobName, cfg.AlertSchedule, run); err != nil {
		logger.Error("Failed to schedule budget alerts", "error", err)
		os.Exit(1)
	}
	sched.Start()
	logger.Info("Budget alert job scheduled", "next_run", sched.Next(jobName))

	<-ctx.Done()

	logger.Info("Shutting down budget-alert-worker...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.DispatchTimeout+5*time.Second)
	defer cancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Warn("Shutdown timeout reached", "error", err)
		return
	}
	logger.Info("Budget-alert-worker shutdown complete")
}
