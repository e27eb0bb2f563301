package main

import (
	"github.com/spf13/cobra"

	"channelduel/internal/config"
	"channelduel/internal/store"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}
	cmd.AddCommand(newDBHealthCommand(ctx))
	return cmd
}

func newDBHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show database diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				health, err := st.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("Database:       %s\n", health.DBPath)
				cmd.Printf("Exists:         %s\n", yesNo(health.DatabaseExists))
				cmd.Printf("Size:           %d bytes\n", health.SizeBytes)
				cmd.Printf("Schema version: %d\n", health.SchemaVersion)
				cmd.Printf("Items:          %d\n", health.Items)
				cmd.Printf("Players:        %d\n", health.Players)
				cmd.Printf("Votes:          %d\n", health.Votes)
				cmd.Printf("Active runs:    %d\n", health.ActiveRuns)
				return nil
			})
		},
	}
}
