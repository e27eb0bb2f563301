package store

import (
	"context"
	"fmt"
	"time"
)

func orderPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// HasSeenPair reports whether the player has already judged this pair
// in either order.
func (s *Store) HasSeenPair(ctx context.Context, playerID, itemAID, itemBID int64) (bool, error) {
	ctx = ensureContext(ctx)
	low, high := orderPair(itemAID, itemBID)
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM seen_pairs
		WHERE player_id = ? AND item_a_id = ? AND item_b_id = ?`,
		playerID, low, high).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check seen pair: %w", err)
	}
	return count > 0, nil
}

// MarkSeenPair records the pair for the player. Re-marking an existing
// pair only refreshes its timestamp.
func (s *Store) MarkSeenPair(ctx context.Context, playerID, itemAID, itemBID int64) error {
	ctx = ensureContext(ctx)
	low, high := orderPair(itemAID, itemBID)
	_, err := s.execWithRetry(ctx, `
		INSERT OR REPLACE INTO seen_pairs (player_id, item_a_id, item_b_id, seen_at)
		VALUES (?, ?, ?, ?)`,
		playerID, low, high, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("mark seen pair: %w", err)
	}
	return nil
}
