package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"wealth/internal/core"
)

func newBudgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly budgets",
	}

	var userID, amount string
	set := &cobra.Command{
		Use:   "set",
		Short: "Create or replace a user's monthly budget",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			b, err := a.accounts.SetBudget(cmd.Context(), userID, amt)
			if err != nil {
				return err
			}
			printf(cmd, "budget %s: %s per month\n", b.ID, core.FormatAmount(b.Amount))
			return nil
		},
	}
	set.Flags().StringVar(&userID, "user", "", "owner user ID")
	set.Flags().StringVar(&amount, "amount", "", "monthly amount")
	requireFlags(set, "user", "amount")

	cmd.AddCommand(set)
	return cmd
}
