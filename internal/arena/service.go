package arena

import (
	"context"
	"fmt"
	"log/slog"

	"channelduel/internal/config"
	"channelduel/internal/faults"
	"channelduel/internal/logging"
	"channelduel/internal/rating"
	"channelduel/internal/store"
)

// Vote submission failures.
var (
	ErrInvalidWinner = fmt.Errorf("winner is not part of the pair: %w", faults.ErrInvalidInput)
	ErrUnknownItem   = fmt.Errorf("unknown item in submission: %w", faults.ErrInvalidInput)
)

// Duel is a prepared matchup handed to the voter. Ratings are exposed
// only as bands; Band spans the whole pair for display.
type Duel struct {
	ItemA *store.Item
	ItemB *store.Item
	Token string
	Band  rating.Band
	BandA rating.Band
	BandB rating.Band
}

// Result reports a settled duel: both items with post-exchange stats
// and the audit record that was written for it.
type Result struct {
	ItemA  *store.Item
	ItemB  *store.Item
	Record store.VoteRecord
	Draw   bool
}

// Service coordinates the classic duel flow against the store.
type Service struct {
	store   *store.Store
	pairing *Pairing
	logger  *slog.Logger
	k       float64
}

// NewService wires the duel service.
func NewService(st *store.Store, pairing *Pairing, logger *slog.Logger, ratingCfg config.Rating) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:   st,
		pairing: pairing,
		logger:  logger.With(logging.FieldComponent, "arena"),
		k:       ratingCfg.KFactor,
	}
}

// PrepareDuel selects a pair for the player and issues the vote token
// that authorizes exactly one vote on it. Any earlier unvoted duel of
// the player is superseded.
func (s *Service) PrepareDuel(ctx context.Context, playerID int64) (*Duel, error) {
	ctx = logging.WithPlayerID(ctx, playerID)
	ctx = logging.WithMode(ctx, string(store.ModeClassic))
	logger := logging.WithContext(ctx, s.logger)

	first, second, err := s.pairing.Select(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("arena: prepare: select pair: %w", err)
	}

	token, err := s.store.IssueToken(ctx, playerID, store.ModeClassic, first.ID, second.ID)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUnavailable, "arena", "prepare", "issue token", err)
	}

	logger.InfoContext(ctx, "duel prepared",
		"item_a", first.ID,
		"item_b", second.ID,
		logging.FieldToken, token.Token)

	return &Duel{
		ItemA: first,
		ItemB: second,
		Token: token.Token,
		Band:  rating.BandSpanning(first.Rating, second.Rating),
		BandA: rating.BandFor(first.Rating),
		BandB: rating.BandFor(second.Rating),
	}, nil
}

// ApplyVote settles a prepared duel. winnerID nil records a draw; any
// other value must match one of the pair. The winner check runs before
// the token is touched, so a malformed submission never burns the
// token.
func (s *Service) ApplyVote(ctx context.Context, playerID int64, token string, itemAID, itemBID int64, winnerID *int64) (*Result, error) {
	ctx = logging.WithPlayerID(ctx, playerID)
	ctx = logging.WithMode(ctx, string(store.ModeClassic))
	logger := logging.WithContext(ctx, s.logger)

	if winnerID != nil && *winnerID != itemAID && *winnerID != itemBID {
		return nil, ErrInvalidWinner
	}

	itemA, err := s.store.GetItem(ctx, itemAID)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUnavailable, "arena", "vote", "load item", err)
	}
	itemB, err := s.store.GetItem(ctx, itemBID)
	if err != nil {
		return nil, faults.Wrap(faults.ErrUnavailable, "arena", "vote", "load item", err)
	}
	if itemA == nil || itemB == nil {
		return nil, ErrUnknownItem
	}

	outcome := rating.Draw
	if winnerID != nil {
		if *winnerID == itemAID {
			outcome = rating.AWins
		} else {
			outcome = rating.BWins
		}
	}
	newA, newB := rating.Update(itemA.Rating, itemB.Rating, outcome, s.k)

	commit := store.DuelCommit{
		PlayerID:      playerID,
		Token:         token,
		ItemAID:       itemAID,
		ItemBID:       itemBID,
		WinnerItemID:  winnerID,
		RatingABefore: itemA.Rating,
		RatingBBefore: itemB.Rating,
		RatingAAfter:  newA,
		RatingBAfter:  newB,
	}
	if err := s.store.CommitDuel(ctx, commit); err != nil {
		return nil, err
	}

	itemA.Rating = newA
	itemB.Rating = newB
	itemA.Games++
	itemB.Games++
	if outcome == rating.AWins {
		itemA.Wins++
		itemB.Losses++
	} else if outcome == rating.BWins {
		itemB.Wins++
		itemA.Losses++
	}

	logger.InfoContext(ctx, "duel settled",
		"item_a", itemAID,
		"item_b", itemBID,
		"draw", winnerID == nil)

	return &Result{
		ItemA: itemA,
		ItemB: itemB,
		Record: store.VoteRecord{
			PlayerID:      playerID,
			ItemAID:       itemAID,
			ItemBID:       itemBID,
			WinnerItemID:  winnerID,
			RatingABefore: commit.RatingABefore,
			RatingBBefore: commit.RatingBBefore,
			RatingAAfter:  newA,
			RatingBAfter:  newB,
		},
		Draw: winnerID == nil,
	}, nil
}
