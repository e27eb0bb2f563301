// Package deathmatch runs the single elimination ladder: a snapshot of
// the top rated items fights one pair at a time until a single champion
// remains. Runs persist between rounds and survive restarts.
package deathmatch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"channelduel/internal/config"
	"channelduel/internal/faults"
	"channelduel/internal/logging"
	"channelduel/internal/store"
)

// Run lifecycle failures.
var (
	ErrNotEligible         = fmt.Errorf("not enough classic games to enter deathmatch: %w", faults.ErrInvalidInput)
	ErrRunActive           = fmt.Errorf("a deathmatch run is already active: %w", faults.ErrConflict)
	ErrNoActiveRun         = fmt.Errorf("no deathmatch run is active: %w", faults.ErrNotFound)
	ErrStateDesynced       = fmt.Errorf("deathmatch state does not match submission: %w", faults.ErrConflict)
	ErrInvalidWinner       = fmt.Errorf("winner is not part of the round: %w", faults.ErrInvalidInput)
	ErrInsufficientCatalog = fmt.Errorf("catalog needs at least two rated items: %w", faults.ErrUnavailable)
)

// Round is the current matchup of a run. Number counts from 1; Total is
// fixed for the whole run since every snapshot entry fights exactly
// once.
type Round struct {
	Champion *store.Item
	Opponent *store.Item
	Token    string
	Number   int
	Total    int
}

// Outcome reports a processed vote: either the next round or, when the
// queue is empty, the final champion.
type Outcome struct {
	Finished bool
	Champion *store.Item
	Next     *Round
}

// Service drives deathmatch runs against the store.
type Service struct {
	store  *store.Store
	rng    *rand.Rand
	logger *slog.Logger
	opts   config.Deathmatch
}

// NewService wires the ladder service. rng shuffles the snapshot, so a
// seeded source makes run order reproducible.
func NewService(st *store.Store, rng *rand.Rand, logger *slog.Logger, opts config.Deathmatch) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:  st,
		rng:    rng,
		logger: logger.With(logging.FieldComponent, "deathmatch"),
		opts:   opts,
	}
}

// Start opens a fresh run for the player: a shuffled snapshot of the
// current top rated items, the first entry seeded as champion. Fails
// when the player has not played enough classic duels or already has a
// run going.
func (s *Service) Start(ctx context.Context, playerID int64) (*Round, error) {
	ctx = logging.WithPlayerID(ctx, playerID)
	ctx = logging.WithMode(ctx, string(store.ModeDeathmatch))
	logger := logging.WithContext(ctx, s.logger)

	games, err := s.store.ClassicGames(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if games < int64(s.opts.MinClassicGames) {
		return nil, ErrNotEligible
	}

	existing, err := s.store.GetDeathmatchState(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRunActive
	}

	snapshot, err := s.store.ListTop(ctx, s.opts.TopLimit)
	if err != nil {
		return nil, err
	}
	if len(snapshot) < 2 {
		return nil, ErrInsufficientCatalog
	}
	s.rng.Shuffle(len(snapshot), func(i, j int) {
		snapshot[i], snapshot[j] = snapshot[j], snapshot[i]
	})

	champion := snapshot[0]
	remaining := make([]int64, 0, len(snapshot)-1)
	for _, item := range snapshot[1:] {
		remaining = append(remaining, item.ID)
	}

	state := &store.DeathmatchState{
		PlayerID:   playerID,
		ChampionID: &champion.ID,
		Seen:       []int64{champion.ID},
		Remaining:  remaining,
	}
	if err := s.store.SaveDeathmatchState(ctx, state); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "deathmatch started",
		"snapshot_size", len(snapshot))

	return s.roundFor(ctx, state, true)
}

// Resume reconstructs the player's current round from persisted state
// and the live token. A run whose token has gone missing fails with
// ErrStateDesynced; Reissue recovers it. The snapshot is immune to
// rating changes made since the run started.
func (s *Service) Resume(ctx context.Context, playerID int64) (*Round, error) {
	state, err := s.store.GetDeathmatchState(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrNoActiveRun
	}
	return s.roundFor(ctx, state, false)
}

// Reissue replaces a lost or stale token for the current round.
func (s *Service) Reissue(ctx context.Context, playerID int64) (*Round, error) {
	state, err := s.store.GetDeathmatchState(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrNoActiveRun
	}
	return s.roundFor(ctx, state, true)
}

func (s *Service) roundFor(ctx context.Context, state *store.DeathmatchState, allowIssue bool) (*Round, error) {
	if state.ChampionID == nil || len(state.Remaining) == 0 {
		return nil, ErrStateDesynced
	}
	champion, err := s.store.GetItem(ctx, *state.ChampionID)
	if err != nil {
		return nil, err
	}
	opponent, err := s.store.GetItem(ctx, state.Remaining[0])
	if err != nil {
		return nil, err
	}
	if champion == nil || opponent == nil {
		return nil, ErrStateDesynced
	}

	token, err := s.store.ActiveToken(ctx, state.PlayerID, store.ModeDeathmatch)
	if err != nil {
		return nil, err
	}
	if token == nil || token.ItemAID != champion.ID || token.ItemBID != opponent.ID {
		if !allowIssue {
			return nil, ErrStateDesynced
		}
		token, err = s.store.IssueToken(ctx, state.PlayerID, store.ModeDeathmatch, champion.ID, opponent.ID)
		if err != nil {
			return nil, err
		}
	}

	return &Round{
		Champion: champion,
		Opponent: opponent,
		Token:    token.Token,
		Number:   len(state.Seen),
		Total:    len(state.Seen) + len(state.Remaining) - 1,
	}, nil
}

// ProcessVote settles the current round. The submitted pair must match
// the stored run exactly, and the winner must be one of the pair. The
// winner takes the title; when the queue empties the run finishes and
// the champion becomes the player's favorite.
func (s *Service) ProcessVote(ctx context.Context, playerID int64, token string, championID, opponentID, winnerID int64) (*Outcome, error) {
	ctx = logging.WithPlayerID(ctx, playerID)
	ctx = logging.WithMode(ctx, string(store.ModeDeathmatch))
	logger := logging.WithContext(ctx, s.logger)

	state, err := s.store.GetDeathmatchState(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrNoActiveRun
	}
	if state.Champion() != championID || len(state.Remaining) == 0 || state.Remaining[0] != opponentID {
		return nil, ErrStateDesynced
	}
	if winnerID != championID && winnerID != opponentID {
		return nil, ErrInvalidWinner
	}

	seen := append(append([]int64{}, state.Seen...), opponentID)
	remaining := append([]int64{}, state.Remaining[1:]...)

	commit := store.RoundCommit{
		PlayerID:     playerID,
		Token:        token,
		ChampionID:   state.ChampionID,
		ItemAID:      championID,
		ItemBID:      opponentID,
		WinnerItemID: winnerID,
	}

	finished := len(remaining) == 0
	if finished {
		commit.FinalChampionID = &winnerID
	} else {
		commit.NextState = &store.DeathmatchState{
			PlayerID:   playerID,
			ChampionID: &winnerID,
			Seen:       seen,
			Remaining:  remaining,
		}
	}

	if err := s.store.CommitDeathmatchRound(ctx, commit); err != nil {
		return nil, err
	}

	if finished {
		champion, err := s.store.GetItem(ctx, winnerID)
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "deathmatch finished",
			"champion", winnerID)
		return &Outcome{Finished: true, Champion: champion}, nil
	}

	next, err := s.roundFor(ctx, commit.NextState, true)
	if err != nil {
		return nil, err
	}
	return &Outcome{Next: next}, nil
}

// Reset abandons the player's run and discards any live token.
func (s *Service) Reset(ctx context.Context, playerID int64) error {
	ctx = logging.WithPlayerID(ctx, playerID)
	ctx = logging.WithMode(ctx, string(store.ModeDeathmatch))
	logger := logging.WithContext(ctx, s.logger)

	if err := s.store.DeleteDeathmatchState(ctx, playerID); err != nil {
		return err
	}
	if err := s.store.InvalidateTokens(ctx, playerID, store.ModeDeathmatch); err != nil {
		return err
	}
	logger.InfoContext(ctx, "deathmatch reset")
	return nil
}
