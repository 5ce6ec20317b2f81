package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wealth/internal/backend"
	"wealth/internal/core"
	"wealth/internal/sheets"
)

const monthLayout = "January 2006"

func newAlertsCmd(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List the budget alerts recorded in the alert ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			label := core.MonthOf(time.Now(), a.cfg.Location()).Label()
			if month != "" {
				t, err := time.Parse(monthLayout, month)
				if err != nil {
					return fmt.Errorf("invalid --month %q, want e.g. %q", month, label)
				}
				label = t.Format(monthLayout)
			}

			bc, err := backend.FromAppConfig(a.cfg)
			if err != nil {
				return err
			}
			ledger, err := backend.NewFactory(a.logger.Logger).CreateLedger(cmd.Context(), bc)
			if err != nil {
				return err
			}
			if ledger.Lister == nil {
				return errors.New("no alert ledger configured, set ALERT_LEDGER to memory or sheets")
			}

			records, err := ledger.Lister.ListAlerts(cmd.Context(), label)
			if err != nil {
				return fmt.Errorf("list alerts for %s: %w", label, err)
			}
			writeAlerts(cmd, label, records)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", `month to list, e.g. "October 2026" (default: current month)`)
	return cmd
}

func writeAlerts(cmd *cobra.Command, label string, records []sheets.AlertRecord) {
	if len(records) == 0 {
		printf(cmd, "No alerts recorded for %s\n", label)
		return
	}

	printf(cmd, "Alert ledger for %s\n\n", label)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SENT AT\tEMAIL\tACCOUNT\tSPENT\tBUDGET\tUSED %")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.SentAt.UTC().Format(time.DateTime),
			r.UserEmail,
			r.AccountName,
			core.FormatAmount(r.Spent),
			core.FormatAmount(r.BudgetAmount),
			r.PercentageUsed.StringFixed(1))
	}
	tw.Flush()
}
