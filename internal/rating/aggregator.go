package rating

import (
	"context"
	"fmt"
	"sort"

	"channelduel/internal/store"
)

// Aggregator answers ranking queries over the committed game state.
type Aggregator struct {
	store *store.Store
}

// NewAggregator wires the aggregator to its backing store.
func NewAggregator(st *store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// Top returns the highest rated items.
func (a *Aggregator) Top(ctx context.Context, limit int) ([]*store.Item, error) {
	return a.store.ListTop(ctx, limit)
}

// Ranking returns the full catalog ordered by rating.
func (a *Aggregator) Ranking(ctx context.Context) ([]*store.Item, error) {
	return a.store.ListAll(ctx)
}

// Winrate ranks items by share of duels won. Items that have never
// fought are excluded rather than reported as zero, to keep unplayed
// entries from dragging the bottom of the table.
func (a *Aggregator) Winrate(ctx context.Context, limit int) ([]store.RatingStats, error) {
	items, err := a.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("winrate ranking: %w", err)
	}
	var ranked []store.RatingStats
	for _, item := range items {
		if item.Games == 0 {
			continue
		}
		ranked = append(ranked, store.RatingStats{
			Item:    *item,
			Winrate: float64(item.Wins) / float64(item.Games),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Winrate != ranked[j].Winrate {
			return ranked[i].Winrate > ranked[j].Winrate
		}
		return ranked[i].Item.ID < ranked[j].Item.ID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Favorites returns the most held favorite items.
func (a *Aggregator) Favorites(ctx context.Context, limit int) ([]store.FavoriteCount, error) {
	return a.store.ListFavoriteCounts(ctx, limit)
}

// Deathmatch returns per item elimination results.
func (a *Aggregator) Deathmatch(ctx context.Context, limit int) ([]store.DeathmatchStats, error) {
	return a.store.ListDeathmatchStats(ctx, limit)
}

// Summary holds catalog-wide counters for diagnostic output.
// DeathmatchPlayers counts the distinct players with at least one
// settled elimination round.
type Summary struct {
	Items             int64
	Players           int64
	Votes             int64
	DeathmatchVotes   int64
	DeathmatchPlayers int64
	ActiveRuns        int64
}

// Stats collects catalog-wide counters.
func (a *Aggregator) Stats(ctx context.Context) (Summary, error) {
	var summary Summary
	counts := []struct {
		fetch func(context.Context) (int64, error)
		dest  *int64
	}{
		{a.store.CountItems, &summary.Items},
		{a.store.CountPlayers, &summary.Players},
		{a.store.CountVotes, &summary.Votes},
		{a.store.CountDeathmatchVotes, &summary.DeathmatchVotes},
		{a.store.CountDeathmatchPlayers, &summary.DeathmatchPlayers},
		{a.store.CountActiveRuns, &summary.ActiveRuns},
	}
	for _, c := range counts {
		value, err := c.fetch(ctx)
		if err != nil {
			return Summary{}, err
		}
		*c.dest = value
	}
	return summary, nil
}
