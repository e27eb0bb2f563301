// Package progress tracks per player counters, feature unlocks, and
// milestone rewards derived from committed votes.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"channelduel/internal/config"
	"channelduel/internal/faults"
	"channelduel/internal/logging"
	"channelduel/internal/store"
)

// ErrUnknownPlayer reports an operation against an unregistered player.
var ErrUnknownPlayer = fmt.Errorf("unknown player: %w", faults.ErrNotFound)

// Threshold grants URL once the player reaches Games classic duels.
// Stage orders thresholds; grants never regress.
type Threshold struct {
	Games int64
	Stage int64
	URL   string
}

// Grant is a newly reached reward milestone.
type Grant struct {
	Stage int64
	URL   string
}

// Unlocks reports features newly latched on by a sync. Latched flags
// never turn off again, even if the counters they derive from change.
type Unlocks struct {
	Rating     bool
	Deathmatch bool
}

// Service answers progress queries and advances unlock state.
type Service struct {
	store  *store.Store
	logger *slog.Logger
	opts   config.Progress
}

// NewService wires the progress service.
func NewService(st *store.Store, logger *slog.Logger, opts config.Progress) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:  st,
		logger: logger.With(logging.FieldComponent, "progress"),
		opts:   opts,
	}
}

// Register upserts the player record, refreshing display fields.
func (s *Service) Register(ctx context.Context, externalID int64, username, displayName string) (*store.Player, error) {
	return s.store.UpsertPlayer(ctx, externalID, username, displayName)
}

// Player loads a registered player by internal ID.
func (s *Service) Player(ctx context.Context, playerID int64) (*store.Player, error) {
	player, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, ErrUnknownPlayer
	}
	return player, nil
}

// ClassicGames returns the player's classic duel count.
func (s *Service) ClassicGames(ctx context.Context, playerID int64) (int64, error) {
	return s.store.ClassicGames(ctx, playerID)
}

// DrawCount returns how many of the player's duels ended drawn.
func (s *Service) DrawCount(ctx context.Context, playerID int64) (int64, error) {
	return s.store.DrawCount(ctx, playerID)
}

// DeathmatchGames returns the player's settled elimination rounds.
func (s *Service) DeathmatchGames(ctx context.Context, playerID int64) (int64, error) {
	return s.store.DeathmatchGames(ctx, playerID)
}

// Favorite returns the player's favorite item, or nil when unset.
func (s *Service) Favorite(ctx context.Context, playerID int64) (*store.Item, error) {
	return s.store.FavoriteItem(ctx, playerID)
}

// SetFavorite stores the player's favorite item.
func (s *Service) SetFavorite(ctx context.Context, playerID int64, itemID *int64) error {
	return s.store.SetFavorite(ctx, playerID, itemID)
}

// Thresholds builds the reward ladder from configuration.
func (s *Service) Thresholds() []Threshold {
	var thresholds []Threshold
	if s.opts.Reward350URL != "" {
		thresholds = append(thresholds, Threshold{Games: 350, Stage: 350, URL: s.opts.Reward350URL})
	}
	if s.opts.Reward700URL != "" {
		thresholds = append(thresholds, Threshold{Games: 700, Stage: 700, URL: s.opts.Reward700URL})
	}
	return thresholds
}

// ClaimReward grants the highest reward stage the player has reached
// but not yet collected. Stages only move forward: a player at stage
// 700 never re-collects 350. Returns nil when nothing new is due.
func (s *Service) ClaimReward(ctx context.Context, playerID int64, thresholds []Threshold) (*Grant, error) {
	ctx = logging.WithPlayerID(ctx, playerID)
	logger := logging.WithContext(ctx, s.logger)

	player, err := s.Player(ctx, playerID)
	if err != nil {
		return nil, err
	}

	sorted := append([]Threshold{}, thresholds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Stage > sorted[j].Stage })

	for _, threshold := range sorted {
		if player.ClassicGames >= threshold.Games && threshold.Stage > player.RewardStage {
			if err := s.store.SetRewardStage(ctx, playerID, threshold.Stage); err != nil {
				return nil, err
			}
			logger.InfoContext(ctx, "reward granted",
				"stage", threshold.Stage)
			return &Grant{Stage: threshold.Stage, URL: threshold.URL}, nil
		}
	}
	return nil, nil
}

// SyncUnlocks latches feature flags for thresholds the player has
// crossed and reports which ones turned on just now.
func (s *Service) SyncUnlocks(ctx context.Context, playerID int64) (Unlocks, error) {
	player, err := s.Player(ctx, playerID)
	if err != nil {
		return Unlocks{}, err
	}

	var latched Unlocks
	if !player.RatingUnlocked && player.ClassicGames >= int64(s.opts.RatingUnlockGames) {
		if err := s.store.MarkRatingUnlocked(ctx, playerID); err != nil {
			return Unlocks{}, err
		}
		latched.Rating = true
	}
	if !player.DeathmatchUnlocked && player.ClassicGames >= int64(s.opts.DeathmatchUnlockGames) {
		if err := s.store.MarkDeathmatchUnlocked(ctx, playerID); err != nil {
			return Unlocks{}, err
		}
		latched.Deathmatch = true
	}
	return latched, nil
}
