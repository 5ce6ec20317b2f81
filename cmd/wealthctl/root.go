package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wealth/internal/cli"
	"wealth/internal/config"
	"wealth/internal/log"
	"wealth/internal/services"
	"wealth/internal/storage"
)

// app holds what every subcommand needs once the root pre-run has finished.
type app struct {
	dbPath string

	cfg      *config.Config
	logger   *log.Logger
	repo     *storage.SQLiteRepository
	accounts *services.AccountService
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "wealthctl",
		Short:         "Administer wealth accounts, budgets and alerts",
		Long:          "Create users, accounts, transactions and budgets, and run the budget alert evaluation on demand.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides SQLITE_DB_PATH)")

	root.AddCommand(
		newEvaluateCmd(a),
		newUserCmd(a),
		newAccountCmd(a),
		newTransactionCmd(a),
		newBudgetCmd(a),
		newReportCmd(a),
		newAlertsCmd(a),
	)
	return root
}

func (a *app) open() error {
	cfg, logger, err := cli.Bootstrap(log.ComponentCLI, func(c *config.Config) error {
		if a.dbPath != "" {
			c.SQLiteDBPath = a.dbPath
		}
		return c.Validate()
	})
	if err != nil {
		return err
	}

	repo, err := cli.OpenSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.repo = repo
	a.accounts = services.NewAccountService(repo)
	return nil
}

func (a *app) close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}

func requireFlags(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		_ = cmd.MarkFlagRequired(n)
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

