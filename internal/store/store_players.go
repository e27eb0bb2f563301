package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const playerColumns = "id, external_id, username, display_name, favorite_item_id, classic_games, reward_stage, rating_unlocked, deathmatch_unlocked, created_at"

func scanPlayer(scanner interface{ Scan(dest ...any) error }) (*Player, error) {
	var (
		player        Player
		favorite      sql.NullInt64
		ratingFlag    int64
		deathmatchFlg int64
		createdRaw    sql.NullString
	)
	if err := scanner.Scan(
		&player.ID,
		&player.ExternalID,
		&player.Username,
		&player.DisplayName,
		&favorite,
		&player.ClassicGames,
		&player.RewardStage,
		&ratingFlag,
		&deathmatchFlg,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	player.FavoriteItemID = int64Ptr(favorite)
	player.RatingUnlocked = ratingFlag != 0
	player.DeathmatchUnlocked = deathmatchFlg != 0
	player.CreatedAt = parseTime(createdRaw)
	return &player, nil
}

// UpsertPlayer registers a voter by external identifier, refreshing the
// display fields on repeat visits. Progress counters are preserved.
func (s *Store) UpsertPlayer(ctx context.Context, externalID int64, username, displayName string) (*Player, error) {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(ctx, `
		INSERT INTO players (external_id, username, display_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET
			username = excluded.username,
			display_name = excluded.display_name`,
		externalID, username, displayName, formatTime(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("upsert player: %w", err)
	}
	return s.GetPlayerByExternalID(ctx, externalID)
}

// GetPlayer fetches a player by internal ID. Returns nil without error
// when the player does not exist.
func (s *Store) GetPlayer(ctx context.Context, id int64) (*Player, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player %d: %w", id, err)
	}
	return player, nil
}

// GetPlayerByExternalID fetches a player by the caller-supplied
// identifier. Returns nil without error when absent.
func (s *Store) GetPlayerByExternalID(ctx context.Context, externalID int64) (*Player, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE external_id = ?`, externalID)
	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player by external id: %w", err)
	}
	return player, nil
}

// ClassicGames returns the number of classic duels the player has
// completed, draws included.
func (s *Store) ClassicGames(ctx context.Context, playerID int64) (int64, error) {
	ctx = ensureContext(ctx)
	var games int64
	err := s.db.QueryRowContext(ctx, `SELECT classic_games FROM players WHERE id = ?`, playerID).Scan(&games)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("classic games for player %d: %w", playerID, err)
	}
	return games, nil
}

// DrawCount returns how many of the player's audited duels ended
// without a winner.
func (s *Store) DrawCount(ctx context.Context, playerID int64) (int64, error) {
	ctx = ensureContext(ctx)
	var draws int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM votes
		WHERE player_id = ? AND winner_item_id IS NULL`, playerID).Scan(&draws)
	if err != nil {
		return 0, fmt.Errorf("draw count for player %d: %w", playerID, err)
	}
	return draws, nil
}

// DeathmatchGames returns the number of elimination rounds the player
// has decided across all runs.
func (s *Store) DeathmatchGames(ctx context.Context, playerID int64) (int64, error) {
	ctx = ensureContext(ctx)
	var games int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM deathmatch_votes WHERE player_id = ?`, playerID).Scan(&games)
	if err != nil {
		return 0, fmt.Errorf("deathmatch games for player %d: %w", playerID, err)
	}
	return games, nil
}

// SetFavorite records the player's favorite item. A nil itemID clears
// the favorite.
func (s *Store) SetFavorite(ctx context.Context, playerID int64, itemID *int64) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, `UPDATE players SET favorite_item_id = ? WHERE id = ?`,
		nullableInt64(itemID), playerID)
	if err != nil {
		return fmt.Errorf("set favorite for player %d: %w", playerID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("player %d not found", playerID)
	}
	return nil
}

// FavoriteItem returns the player's favorite, or nil when none is set.
func (s *Store) FavoriteItem(ctx context.Context, playerID int64) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE id = (SELECT favorite_item_id FROM players WHERE id = ?)`, playerID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("favorite item for player %d: %w", playerID, err)
	}
	return item, nil
}

// SetRewardStage advances the player's highest granted reward stage.
func (s *Store) SetRewardStage(ctx context.Context, playerID, stage int64) error {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(ctx, `UPDATE players SET reward_stage = ? WHERE id = ?`, stage, playerID)
	if err != nil {
		return fmt.Errorf("set reward stage for player %d: %w", playerID, err)
	}
	return nil
}

// MarkRatingUnlocked latches the rating feature on for the player.
func (s *Store) MarkRatingUnlocked(ctx context.Context, playerID int64) error {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(ctx, `UPDATE players SET rating_unlocked = 1 WHERE id = ?`, playerID)
	if err != nil {
		return fmt.Errorf("mark rating unlocked for player %d: %w", playerID, err)
	}
	return nil
}

// MarkDeathmatchUnlocked latches the deathmatch feature on for the
// player.
func (s *Store) MarkDeathmatchUnlocked(ctx context.Context, playerID int64) error {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(ctx, `UPDATE players SET deathmatch_unlocked = 1 WHERE id = ?`, playerID)
	if err != nil {
		return fmt.Errorf("mark deathmatch unlocked for player %d: %w", playerID, err)
	}
	return nil
}

// CountPlayers returns how many voters have registered.
func (s *Store) CountPlayers(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM players`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return count, nil
}

// ListFavoriteCounts aggregates favorites across players, most held
// first.
func (s *Store) ListFavoriteCounts(ctx context.Context, limit int) ([]FavoriteCount, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixedItemColumns("i")+`, COUNT(p.id) AS holders
		FROM items i
		JOIN players p ON p.favorite_item_id = i.id
		GROUP BY i.id
		ORDER BY holders DESC, i.id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list favorite counts: %w", err)
	}
	defer rows.Close()

	var counts []FavoriteCount
	for rows.Next() {
		var (
			item       Item
			createdRaw sql.NullString
			holders    int64
		)
		if err := rows.Scan(
			&item.ID, &item.URL, &item.Title, &item.Description, &item.ImageURL,
			&item.Rating, &item.Games, &item.Wins, &item.Losses, &createdRaw,
			&holders,
		); err != nil {
			return nil, err
		}
		item.CreatedAt = parseTime(createdRaw)
		counts = append(counts, FavoriteCount{Item: item, Count: holders})
	}
	return counts, rows.Err()
}

func prefixedItemColumns(alias string) string {
	return alias + ".id, " + alias + ".url, " + alias + ".title, " + alias + ".description, " +
		alias + ".image_url, " + alias + ".rating, " + alias + ".games, " + alias + ".wins, " +
		alias + ".losses, " + alias + ".created_at"
}
