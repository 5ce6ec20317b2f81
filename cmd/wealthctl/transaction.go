package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wealth/internal/core"
)

func newTransactionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transaction",
		Short: "Record transactions",
	}

	var userID, accountID, typ, amount, category, description, date string
	add := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense and update the account balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			day := core.DateOf(time.Now().In(a.cfg.Location()))
			if date != "" {
				if day, err = core.ParseDate(date); err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
			}

			tx, err := a.accounts.CreateTransaction(cmd.Context(), core.Transaction{
				UserID:      userID,
				AccountID:   accountID,
				Type:        core.TransactionType(strings.ToUpper(typ)),
				Amount:      amt,
				Category:    category,
				Description: description,
				Date:        day,
			})
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", tx.ID)
			return nil
		},
	}
	add.Flags().StringVar(&userID, "user", "", "owner user ID")
	add.Flags().StringVar(&accountID, "account", "", "account ID")
	add.Flags().StringVar(&typ, "type", string(core.Expense), "EXPENSE or INCOME")
	add.Flags().StringVar(&amount, "amount", "", "positive amount, e.g. 12.50")
	add.Flags().StringVar(&category, "category", "", "category name")
	add.Flags().StringVar(&description, "description", "", "optional note")
	add.Flags().StringVar(&date, "date", "", "YYYY-MM-DD, defaults to today")
	requireFlags(add, "user", "account", "amount", "category")

	cmd.AddCommand(add)
	return cmd
}
