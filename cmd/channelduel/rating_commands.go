package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"channelduel/internal/config"
	"channelduel/internal/rating"
	"channelduel/internal/store"
)

func newTopCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the highest rated items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				items, err := rating.NewAggregator(st).Top(cmd.Context(), limit)
				if err != nil {
					return err
				}
				printItemTable(cmd, items)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of items to show")
	return cmd
}

func newRankingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ranking",
		Short: "Show the full catalog ordered by rating",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				items, err := rating.NewAggregator(st).Ranking(cmd.Context())
				if err != nil {
					return err
				}
				printItemTable(cmd, items)
				return nil
			})
		},
	}
}

func newWinrateCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "winrate",
		Short: "Rank items by share of duels won",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				ranked, err := rating.NewAggregator(st).Winrate(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(ranked) == 0 {
					cmd.Println("No duels recorded yet.")
					return nil
				}
				rows := make([][]string, 0, len(ranked))
				for i, entry := range ranked {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						entry.Item.Title,
						fmt.Sprintf("%.1f%%", entry.Winrate*100),
						strconv.FormatInt(entry.Item.Games, 10),
					})
				}
				cmd.Println(renderTable(
					[]string{"#", "Title", "Winrate", "Games"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of items to show")
	return cmd
}

func newFavoritesCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Show the most held favorite items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				favorites, err := rating.NewAggregator(st).Favorites(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(favorites) == 0 {
					cmd.Println("No favorites recorded yet.")
					return nil
				}
				rows := make([][]string, 0, len(favorites))
				for i, entry := range favorites {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						entry.Item.Title,
						strconv.FormatInt(entry.Count, 10),
					})
				}
				cmd.Println(renderTable(
					[]string{"#", "Title", "Held by"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of items to show")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog-wide counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				summary, err := rating.NewAggregator(st).Stats(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("Items:              %d\n", summary.Items)
				cmd.Printf("Players:            %d\n", summary.Players)
				cmd.Printf("Classic votes:      %d\n", summary.Votes)
				cmd.Printf("Deathmatch votes:   %d\n", summary.DeathmatchVotes)
				cmd.Printf("Deathmatch players: %d\n", summary.DeathmatchPlayers)
				cmd.Printf("Active runs:        %d\n", summary.ActiveRuns)
				return nil
			})
		},
	}
}

func printItemTable(cmd *cobra.Command, items []*store.Item) {
	if len(items) == 0 {
		cmd.Println("Catalog is empty.")
		return
	}
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			item.Title,
			rating.BandFor(item.Rating).String(),
			strconv.FormatInt(item.Games, 10),
		})
	}
	cmd.Println(renderTable(
		[]string{"#", "Title", "Band", "Games"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))
}
