package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wealth/internal/backend"
	"wealth/internal/services"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var at string
	var showLedger bool

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run one budget alert evaluation now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q: %w", at, err)
				}
				now = t
			}

			pipeline, err := backend.BuildAlertPipeline(cmd.Context(), backend.NewFactory(a.logger.Logger), a.cfg, a.repo, a.logger.Logger)
			if err != nil {
				return err
			}
			defer pipeline.Close()

			summary, err := pipeline.Processor.Run(cmd.Context(), now)
			if err != nil {
				return err
			}
			writeSummary(cmd, summary)
			if showLedger && !summary.Skipped {
				if pipeline.Ledger == nil || pipeline.Ledger.Lister == nil {
					return errors.New("no alert ledger configured, set ALERT_LEDGER to memory or sheets")
				}
				records, err := pipeline.Ledger.Lister.ListAlerts(cmd.Context(), summary.Month)
				if err != nil {
					return fmt.Errorf("list alerts for %s: %w", summary.Month, err)
				}
				printf(cmd, "\n")
				writeAlerts(cmd, summary.Month, records)
			}
			if n := summary.Count(services.OutcomeFailed); n > 0 {
				return fmt.Errorf("%d budget(s) failed, they will be retried on the next run", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluate as of this RFC 3339 time instead of now")
	cmd.Flags().BoolVar(&showLedger, "show-ledger", false, "print the month's alert ledger after the run")
	return cmd
}

func writeSummary(cmd *cobra.Command, s services.RunSummary) {
	if s.Skipped {
		printf(cmd, "Run skipped: another evaluation holds the lock.\n")
		return
	}

	printf(cmd, "Budget alerts for %s\n\n", s.Month)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BUDGET\tUSER\tOUTCOME\tSPENT\tUSED %")
	for _, r := range s.Results {
		outcome := string(r.Outcome)
		if r.Err != nil {
			outcome += ": " + r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.BudgetID, r.UserID, outcome, r.Spent.StringFixed(2), r.PercentageUsed.StringFixed(1))
	}
	tw.Flush()
	printf(cmd, "\n%d evaluated, %d alerted, %d failed\n",
		len(s.Results), s.Count(services.OutcomeAlerted), s.Count(services.OutcomeFailed))
}
