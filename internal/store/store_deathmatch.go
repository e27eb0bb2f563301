package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

func encodeIDList(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode id list: %w", err)
	}
	return string(data), nil
}

func decodeIDList(raw string) ([]int64, error) {
	if raw == "" {
		return []int64{}, nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode id list: %w", err)
	}
	return ids, nil
}

func scanDeathmatchState(scanner interface{ Scan(dest ...any) error }) (*DeathmatchState, error) {
	var (
		state      DeathmatchState
		champion   sql.NullInt64
		seenRaw    string
		remRaw     string
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&state.PlayerID, &champion, &seenRaw, &remRaw, &updatedRaw); err != nil {
		return nil, err
	}
	state.ChampionID = int64Ptr(champion)
	seen, err := decodeIDList(seenRaw)
	if err != nil {
		return nil, err
	}
	remaining, err := decodeIDList(remRaw)
	if err != nil {
		return nil, err
	}
	state.Seen = seen
	state.Remaining = remaining
	state.UpdatedAt = parseTime(updatedRaw)
	return &state, nil
}

// GetDeathmatchState loads the player's in-progress elimination run.
// Returns nil without error when no run is active.
func (s *Store) GetDeathmatchState(ctx context.Context, playerID int64) (*DeathmatchState, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `
		SELECT player_id, champion_id, seen_ids, remaining_ids, updated_at
		FROM deathmatch_state WHERE player_id = ?`, playerID)
	state, err := scanDeathmatchState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deathmatch state for player %d: %w", playerID, err)
	}
	return state, nil
}

// SaveDeathmatchState upserts the player's run.
func (s *Store) SaveDeathmatchState(ctx context.Context, state *DeathmatchState) error {
	ctx = ensureContext(ctx)
	if state == nil {
		return errors.New("deathmatch state is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return saveDeathmatchStateTx(ctx, tx, state)
	})
}

func saveDeathmatchStateTx(ctx context.Context, tx *sql.Tx, state *DeathmatchState) error {
	seenRaw, err := encodeIDList(state.Seen)
	if err != nil {
		return err
	}
	remRaw, err := encodeIDList(state.Remaining)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO deathmatch_state (player_id, champion_id, seen_ids, remaining_ids, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			champion_id = excluded.champion_id,
			seen_ids = excluded.seen_ids,
			remaining_ids = excluded.remaining_ids,
			updated_at = excluded.updated_at`,
		state.PlayerID, nullableInt64(state.ChampionID), seenRaw, remRaw,
		formatTime(time.Now())); err != nil {
		return fmt.Errorf("save deathmatch state: %w", err)
	}
	return nil
}

// DeleteDeathmatchState abandons the player's run, if any.
func (s *Store) DeleteDeathmatchState(ctx context.Context, playerID int64) error {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(ctx, `DELETE FROM deathmatch_state WHERE player_id = ?`, playerID)
	if err != nil {
		return fmt.Errorf("delete deathmatch state for player %d: %w", playerID, err)
	}
	return nil
}

// RoundCommit settles one elimination round. NextState nil marks the
// run finished: the state row is removed and FinalChampionID, when set,
// becomes the player's favorite.
type RoundCommit struct {
	PlayerID        int64
	Token           string
	ChampionID      *int64
	ItemAID         int64
	ItemBID         int64
	WinnerItemID    int64
	NextState       *DeathmatchState
	FinalChampionID *int64
}

// CommitDeathmatchRound records one round atomically: the vote token is
// consumed, the round audited, and the run state advanced or retired.
// Nothing is persisted when the token cannot be consumed.
func (s *Store) CommitDeathmatchRound(ctx context.Context, commit RoundCommit) error {
	ctx = ensureContext(ctx)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := consumeTokenTx(ctx, tx, commit.Token, commit.PlayerID, ModeDeathmatch, commit.ItemAID, commit.ItemBID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO deathmatch_votes (player_id, champion_id, item_a_id, item_b_id, winner_item_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			commit.PlayerID, nullableInt64(commit.ChampionID), commit.ItemAID, commit.ItemBID,
			commit.WinnerItemID, formatTime(time.Now())); err != nil {
			return fmt.Errorf("insert deathmatch vote: %w", err)
		}

		if commit.NextState != nil {
			return saveDeathmatchStateTx(ctx, tx, commit.NextState)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM deathmatch_state WHERE player_id = ?`, commit.PlayerID); err != nil {
			return fmt.Errorf("retire deathmatch state: %w", err)
		}
		if commit.FinalChampionID != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE players SET favorite_item_id = ? WHERE id = ?`,
				*commit.FinalChampionID, commit.PlayerID); err != nil {
				return fmt.Errorf("record final champion: %w", err)
			}
		}
		return nil
	})
}

// ListDeathmatchStats aggregates elimination rounds per item. Wins is
// how many rounds the item won, Runs how many rounds it appeared in.
func (s *Store) ListDeathmatchStats(ctx context.Context, limit int) ([]DeathmatchStats, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixedItemColumns("i")+`,
			SUM(CASE WHEN v.winner_item_id = i.id THEN 1 ELSE 0 END) AS wins,
			COUNT(v.id) AS runs
		FROM items i
		JOIN deathmatch_votes v ON v.item_a_id = i.id OR v.item_b_id = i.id
		GROUP BY i.id
		ORDER BY wins DESC, i.id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list deathmatch stats: %w", err)
	}
	defer rows.Close()

	var stats []DeathmatchStats
	for rows.Next() {
		var (
			item       Item
			createdRaw sql.NullString
			entry      DeathmatchStats
		)
		if err := rows.Scan(
			&item.ID, &item.URL, &item.Title, &item.Description, &item.ImageURL,
			&item.Rating, &item.Games, &item.Wins, &item.Losses, &createdRaw,
			&entry.Wins, &entry.Runs,
		); err != nil {
			return nil, err
		}
		item.CreatedAt = parseTime(createdRaw)
		entry.Item = item
		stats = append(stats, entry)
	}
	return stats, rows.Err()
}

// CountDeathmatchVotes returns the total number of audited elimination
// rounds.
func (s *Store) CountDeathmatchVotes(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM deathmatch_votes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count deathmatch votes: %w", err)
	}
	return count, nil
}

// CountDeathmatchPlayers returns how many distinct players have settled
// at least one elimination round.
func (s *Store) CountDeathmatchPlayers(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT player_id) FROM deathmatch_votes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count deathmatch players: %w", err)
	}
	return count, nil
}

// CountActiveRuns returns how many players hold an unfinished run.
func (s *Store) CountActiveRuns(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM deathmatch_state`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active runs: %w", err)
	}
	return count, nil
}
