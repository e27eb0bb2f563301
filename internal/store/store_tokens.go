package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const tokenColumns = "token, player_id, mode, item_a_id, item_b_id, consumed, created_at, consumed_at"

func scanToken(scanner interface{ Scan(dest ...any) error }) (*VoteToken, error) {
	var (
		token       VoteToken
		mode        string
		consumed    int64
		createdRaw  sql.NullString
		consumedRaw sql.NullString
	)
	if err := scanner.Scan(
		&token.Token,
		&token.PlayerID,
		&mode,
		&token.ItemAID,
		&token.ItemBID,
		&consumed,
		&createdRaw,
		&consumedRaw,
	); err != nil {
		return nil, err
	}
	token.Mode = Mode(mode)
	token.Consumed = consumed != 0
	token.CreatedAt = parseTime(createdRaw)
	if consumedRaw.Valid {
		t := parseTime(consumedRaw)
		token.ConsumedAt = &t
	}
	return &token, nil
}

// IssueToken mints a fresh vote token bound to the player, mode, and
// pair. Any earlier unconsumed token the player holds for the same mode
// is invalidated first, so at most one token per player and mode is
// live at a time.
func (s *Store) IssueToken(ctx context.Context, playerID int64, mode Mode, itemAID, itemBID int64) (*VoteToken, error) {
	ctx = ensureContext(ctx)
	var issued *VoteToken
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM vote_tokens
			WHERE player_id = ? AND mode = ? AND consumed = 0`,
			playerID, string(mode)); err != nil {
			return fmt.Errorf("invalidate prior tokens: %w", err)
		}
		token := &VoteToken{
			Token:     uuid.NewString(),
			PlayerID:  playerID,
			Mode:      mode,
			ItemAID:   itemAID,
			ItemBID:   itemBID,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO vote_tokens (token, player_id, mode, item_a_id, item_b_id, consumed, created_at)
			VALUES (?, ?, ?, ?, ?, 0, ?)`,
			token.Token, token.PlayerID, string(token.Mode), token.ItemAID, token.ItemBID,
			formatTime(token.CreatedAt)); err != nil {
			return fmt.Errorf("insert token: %w", err)
		}
		issued = token
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// ActiveToken returns the player's live token for the mode, or nil when
// none is outstanding.
func (s *Store) ActiveToken(ctx context.Context, playerID int64, mode Mode) (*VoteToken, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `
		SELECT `+tokenColumns+` FROM vote_tokens
		WHERE player_id = ? AND mode = ? AND consumed = 0`,
		playerID, string(mode))
	token, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active token for player %d: %w", playerID, err)
	}
	return token, nil
}

// InvalidateTokens discards every unconsumed token the player holds for
// the mode.
func (s *Store) InvalidateTokens(ctx context.Context, playerID int64, mode Mode) error {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(ctx, `
		DELETE FROM vote_tokens
		WHERE player_id = ? AND mode = ? AND consumed = 0`,
		playerID, string(mode))
	if err != nil {
		return fmt.Errorf("invalidate tokens for player %d: %w", playerID, err)
	}
	return nil
}

// consumeTokenTx marks the token consumed inside tx, but only when it
// is live and bound to exactly this player, mode, and pair. A failed
// consume is classified by re-reading the row: a binding mismatch takes
// precedence over replay, and a missing row means the token was never
// issued or has been superseded.
func consumeTokenTx(ctx context.Context, tx *sql.Tx, token string, playerID int64, mode Mode, itemAID, itemBID int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE vote_tokens
		SET consumed = 1, consumed_at = ?
		WHERE token = ? AND player_id = ? AND mode = ? AND item_a_id = ? AND item_b_id = ? AND consumed = 0`,
		formatTime(time.Now()), token, playerID, string(mode), itemAID, itemBID)
	if err != nil {
		return fmt.Errorf("consume token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	row := tx.QueryRowContext(ctx, `SELECT `+tokenColumns+` FROM vote_tokens WHERE token = ?`, token)
	stored, scanErr := scanToken(row)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return ErrTokenNotFound
	}
	if scanErr != nil {
		return fmt.Errorf("inspect token: %w", scanErr)
	}
	if stored.PlayerID != playerID || stored.Mode != mode || stored.ItemAID != itemAID || stored.ItemBID != itemBID {
		return ErrTokenMismatch
	}
	return ErrTokenAlreadyConsumed
}
