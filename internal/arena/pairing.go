// Package arena runs classic duels: picking a fair pair, issuing the
// vote token, and settling the submitted vote.
package arena

import (
	"context"
	"fmt"
	"math/rand/v2"

	"channelduel/internal/config"
	"channelduel/internal/faults"
	"channelduel/internal/store"
)

// ErrInsufficientCatalog reports a catalog too small to form a pair.
var ErrInsufficientCatalog = fmt.Errorf("catalog needs at least two items: %w", faults.ErrUnavailable)

// Pairing selects duel opponents. The first pick favors items with few
// recorded games so new entries gather exposure; the second pick stays
// close in rating so duels remain informative. Pairs the player has
// already judged are skipped while attempts last.
type Pairing struct {
	store *store.Store
	rng   *rand.Rand
	opts  config.Pairing
}

// NewPairing builds a Pairing. rng drives all random choices, so a
// seeded source makes selection reproducible.
func NewPairing(st *store.Store, rng *rand.Rand, opts config.Pairing) *Pairing {
	return &Pairing{store: st, rng: rng, opts: opts}
}

// Select returns a pair the player has preferably not judged before
// and marks it seen. When every candidate pair within the attempt
// budget has been seen, the closest-rated pair is returned anyway
// rather than failing.
func (p *Pairing) Select(ctx context.Context, playerID int64) (*store.Item, *store.Item, error) {
	first, second, err := p.pick(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	if err := p.store.MarkSeenPair(ctx, playerID, first.ID, second.ID); err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

func (p *Pairing) pick(ctx context.Context, playerID int64) (*store.Item, *store.Item, error) {
	count, err := p.store.CountItems(ctx)
	if err != nil {
		return nil, nil, err
	}
	if count < 2 {
		return nil, nil, ErrInsufficientCatalog
	}

	pool, err := p.store.LowExposurePool(ctx, p.opts.PoolSize)
	if err != nil {
		return nil, nil, err
	}
	if len(pool) < 2 {
		return nil, nil, ErrInsufficientCatalog
	}

	var fallbackA, fallbackB *store.Item
	for attempt := 0; attempt < p.opts.MaxAttempts; attempt++ {
		first := pool[p.rng.IntN(len(pool))]

		candidates, err := p.store.ClosestByRating(ctx, first.Rating, first.ID, p.opts.ClosestLimit)
		if err != nil {
			return nil, nil, err
		}
		if len(candidates) == 0 {
			continue
		}
		if fallbackA == nil {
			fallbackA, fallbackB = first, candidates[0]
		}

		window := p.opts.SampleWindow
		if window > len(candidates) {
			window = len(candidates)
		}
		second := candidates[p.rng.IntN(window)]

		seen, err := p.store.HasSeenPair(ctx, playerID, first.ID, second.ID)
		if err != nil {
			return nil, nil, err
		}
		if !seen {
			return first, second, nil
		}
	}

	if fallbackA == nil {
		return nil, nil, ErrInsufficientCatalog
	}
	return fallbackA, fallbackB, nil
}
