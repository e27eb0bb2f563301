package main

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"channelduel/internal/config"
	"channelduel/internal/deathmatch"
	"channelduel/internal/logging"
	"channelduel/internal/rating"
	"channelduel/internal/store"
)

func newDeathmatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deathmatch",
		Short: "Inspect and manage elimination runs",
	}
	cmd.AddCommand(newDeathmatchResetCommand(ctx))
	cmd.AddCommand(newDeathmatchStatsCommand(ctx))
	return cmd
}

func newDeathmatchResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <player-id>",
		Short: "Abandon a player's in-progress run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			externalID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid player id %q: %w", args[0], err)
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				player, err := st.GetPlayerByExternalID(cmd.Context(), externalID)
				if err != nil {
					return err
				}
				if player == nil {
					return fmt.Errorf("player %d not found", externalID)
				}
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return err
				}
				rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
				svc := deathmatch.NewService(st, rng, logger, cfg.Deathmatch)
				if err := svc.Reset(cmd.Context(), player.ID); err != nil {
					return err
				}
				cmd.Printf("Reset deathmatch run for player %d\n", externalID)
				return nil
			})
		},
	}
}

func newDeathmatchStatsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per item elimination results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				stats, err := rating.NewAggregator(st).Deathmatch(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(stats) == 0 {
					cmd.Println("No deathmatch rounds recorded yet.")
					return nil
				}
				rows := make([][]string, 0, len(stats))
				for i, entry := range stats {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						entry.Item.Title,
						strconv.FormatInt(entry.Wins, 10),
						strconv.FormatInt(entry.Runs, 10),
					})
				}
				cmd.Println(renderTable(
					[]string{"#", "Title", "Round wins", "Rounds"},
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
