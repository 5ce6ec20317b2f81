package main

import (
	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var email, name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.accounts.CreateUser(cmd.Context(), email, name)
			if err != nil {
				return err
			}
			printf(cmd, "%s\n", u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "email address that receives alerts")
	create.Flags().StringVar(&name, "name", "", "display name")
	requireFlags(create, "email", "name")

	cmd.AddCommand(create)
	return cmd
}
