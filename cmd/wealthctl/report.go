package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wealth/internal/backend"
	"wealth/internal/core"
	"wealth/internal/notify"
	"wealth/internal/services"
)

func newReportCmd(a *app) *cobra.Command {
	var userID, at string
	var send bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a user's default account for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at %q: %w", at, err)
				}
				now = t
			}

			overview, err := a.accounts.MonthlyReport(cmd.Context(), userID, now, a.cfg.Location())
			if err != nil {
				return err
			}
			insights := services.ReportInsights(overview)
			writeOverview(cmd, overview, insights)

			if !send {
				return nil
			}
			return a.sendReport(cmd, userID, overview, insights)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user ID")
	cmd.Flags().StringVar(&at, "at", "", "report the month containing this RFC 3339 time")
	cmd.Flags().BoolVar(&send, "send", false, "email the report through the configured notifier")
	requireFlags(cmd, "user")
	return cmd
}

func (a *app) sendReport(cmd *cobra.Command, userID string, o core.MonthOverview, insights []string) error {
	user, err := a.accounts.GetUser(cmd.Context(), userID)
	if err != nil {
		return err
	}

	renderer, err := notify.NewRenderer()
	if err != nil {
		return err
	}
	html, err := renderer.Render(notify.Email{
		Type:     notify.TemplateMonthlyReport,
		UserName: user.Name,
		Data:     notify.MonthlyReportData{Overview: o, Insights: insights},
	})
	if err != nil {
		return err
	}

	bc, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return err
	}
	nr, err := backend.NewFactory(a.logger.Logger).CreateNotifier(cmd.Context(), bc)
	if err != nil {
		return err
	}
	if nr.Cleanup != nil {
		defer nr.Cleanup()
	}

	if err := nr.Notifier.Send(cmd.Context(), notify.Message{
		To:      user.Email,
		Subject: "Your Monthly Financial Report - " + o.Label,
		HTML:    html,
	}); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	printf(cmd, "\nReport sent to %s\n", user.Email)
	return nil
}

func writeOverview(cmd *cobra.Command, o core.MonthOverview, insights []string) {
	printf(cmd, "%s\n\n", o.Label)
	printf(cmd, "Income:   %s\nExpenses: %s\nNet:      %s\n",
		core.FormatAmount(o.TotalIncome), core.FormatAmount(o.TotalExpenses), core.FormatAmount(o.Net()))

	if len(o.ByCategory) > 0 {
		printf(cmd, "\n")
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tAMOUNT")
		for _, c := range o.ByCategory {
			fmt.Fprintf(tw, "%s\t%s\n", c.Name, core.FormatAmount(c.Amount))
		}
		tw.Flush()
	}
	for _, s := range insights {
		printf(cmd, "- %s\n", s)
	}
}
