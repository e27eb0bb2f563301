package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"channelduel/internal/catalogfile"
	"channelduel/internal/config"
	"channelduel/internal/store"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the item catalog",
	}
	cmd.AddCommand(newCatalogSeedCommand(ctx))
	cmd.AddCommand(newCatalogListCommand(ctx))
	return cmd
}

func newCatalogSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Import catalog entries from a TOML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				count, err := catalogfile.Seed(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				cmd.Printf("Imported %d entries from %s\n", count, args[0])
				return nil
			})
		},
	}
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every catalog entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				items, err := st.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				if len(items) == 0 {
					cmd.Println("Catalog is empty.")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.Title,
						item.URL,
						strconv.FormatInt(item.Games, 10),
					})
				}
				cmd.Println(renderTable(
					[]string{"ID", "Title", "URL", "Games"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
