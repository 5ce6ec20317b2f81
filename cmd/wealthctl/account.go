package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"wealth/internal/core"
)

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newAccountCreateCmd(a), newAccountSetDefaultCmd(a), newAccountListCmd(a))
	return cmd
}

func newAccountCreateCmd(a *app) *cobra.Command {
	var userID, name, typ, balance string
	var makeDefault bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account; a user's first account becomes the default",
		RunE: func(cmd *cobra.Command, _ []string) error {
			initial, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid --balance %q: %w", balance, err)
			}
			acc, err := a.accounts.CreateAccount(cmd.Context(), userID, name,
				core.AccountType(strings.ToUpper(typ)), initial, makeDefault)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", acc.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner user ID")
	cmd.Flags().StringVar(&name, "name", "", "account name")
	cmd.Flags().StringVar(&typ, "type", string(core.Current), "CURRENT or SAVINGS")
	cmd.Flags().StringVar(&balance, "balance", "0", "initial balance")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "make this the user's default account")
	requireFlags(cmd, "user", "name")
	return cmd
}

func newAccountSetDefaultCmd(a *app) *cobra.Command {
	var userID, accountID string

	cmd := &cobra.Command{
		Use:   "set-default",
		Short: "Make an account the user's default",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.accounts.SetDefaultAccount(cmd.Context(), userID, accountID); err != nil {
				return err
			}
			printf(cmd, "default account for %s is now %s\n", userID, accountID)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner user ID")
	cmd.Flags().StringVar(&accountID, "account", "", "account ID")
	requireFlags(cmd, "user", "account")
	return cmd
}

func newAccountListCmd(a *app) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := a.accounts.ListAccounts(cmd.Context(), userID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tBALANCE\tDEFAULT")
			for _, acc := range accounts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", acc.ID, acc.Name, acc.Type, core.FormatAmount(acc.Balance), acc.IsDefault)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owner user ID")
	requireFlags(cmd, "user")
	return cmd
}
