package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DuelCommit carries everything needed to settle one classic duel.
// WinnerItemID nil records a draw.
type DuelCommit struct {
	PlayerID      int64
	Token         string
	ItemAID       int64
	ItemBID       int64
	WinnerItemID  *int64
	RatingABefore float64
	RatingBBefore float64
	RatingAAfter  float64
	RatingBAfter  float64
}

// CommitDuel settles a classic duel in one transaction: the vote token
// is consumed, the audit record written, both items updated, the pair
// marked seen, and the player's game counter advanced. Nothing is
// persisted when the token cannot be consumed.
func (s *Store) CommitDuel(ctx context.Context, commit DuelCommit) error {
	ctx = ensureContext(ctx)
	now := formatTime(time.Now())
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := consumeTokenTx(ctx, tx, commit.Token, commit.PlayerID, ModeClassic, commit.ItemAID, commit.ItemBID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO votes (player_id, item_a_id, item_b_id, winner_item_id,
				rating_a_before, rating_b_before, rating_a_after, rating_b_after, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			commit.PlayerID, commit.ItemAID, commit.ItemBID, nullableInt64(commit.WinnerItemID),
			commit.RatingABefore, commit.RatingBBefore, commit.RatingAAfter, commit.RatingBAfter,
			now); err != nil {
			return fmt.Errorf("insert vote record: %w", err)
		}

		winsA, lossesA, winsB, lossesB := int64(0), int64(0), int64(0), int64(0)
		if commit.WinnerItemID != nil {
			if *commit.WinnerItemID == commit.ItemAID {
				winsA, lossesB = 1, 1
			} else {
				winsB, lossesA = 1, 1
			}
		}

		if err := updateItemTx(ctx, tx, commit.ItemAID, commit.RatingAAfter, winsA, lossesA); err != nil {
			return err
		}
		if err := updateItemTx(ctx, tx, commit.ItemBID, commit.RatingBAfter, winsB, lossesB); err != nil {
			return err
		}

		low, high := orderPair(commit.ItemAID, commit.ItemBID)
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO seen_pairs (player_id, item_a_id, item_b_id, seen_at)
			VALUES (?, ?, ?, ?)`,
			commit.PlayerID, low, high, now); err != nil {
			return fmt.Errorf("mark pair seen: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE players SET classic_games = classic_games + 1 WHERE id = ?`, commit.PlayerID)
		if err != nil {
			return fmt.Errorf("advance player games: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("player %d not found", commit.PlayerID)
		}
		return nil
	})
}

func updateItemTx(ctx context.Context, tx *sql.Tx, itemID int64, rating float64, wins, losses int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE items
		SET rating = ?, games = games + 1, wins = wins + ?, losses = losses + ?
		WHERE id = ?`,
		rating, wins, losses, itemID)
	if err != nil {
		return fmt.Errorf("update item %d: %w", itemID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("item %d not found", itemID)
	}
	return nil
}

// GetVote fetches a single audit record by ID. Returns nil without
// error when absent.
func (s *Store) GetVote(ctx context.Context, id int64) (*VoteRecord, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, player_id, item_a_id, item_b_id, winner_item_id,
			rating_a_before, rating_b_before, rating_a_after, rating_b_after, created_at
		FROM votes WHERE id = ?`, id)
	record, err := scanVote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vote %d: %w", id, err)
	}
	return record, nil
}

// ListVotesByPlayer returns a player's audit trail, newest first.
func (s *Store) ListVotesByPlayer(ctx context.Context, playerID int64, limit int) ([]*VoteRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, player_id, item_a_id, item_b_id, winner_item_id,
			rating_a_before, rating_b_before, rating_a_after, rating_b_after, created_at
		FROM votes
		WHERE player_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list votes for player %d: %w", playerID, err)
	}
	defer rows.Close()

	var records []*VoteRecord
	for rows.Next() {
		record, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanVote(scanner interface{ Scan(dest ...any) error }) (*VoteRecord, error) {
	var (
		record     VoteRecord
		winner     sql.NullInt64
		createdRaw sql.NullString
	)
	if err := scanner.Scan(
		&record.ID,
		&record.PlayerID,
		&record.ItemAID,
		&record.ItemBID,
		&winner,
		&record.RatingABefore,
		&record.RatingBBefore,
		&record.RatingAAfter,
		&record.RatingBAfter,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	record.WinnerItemID = int64Ptr(winner)
	record.CreatedAt = parseTime(createdRaw)
	return &record, nil
}

// CountVotes returns the total number of audited classic duels.
func (s *Store) CountVotes(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM votes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return count, nil
}
