package store

import "time"

// Mode distinguishes the two voting flows sharing the token ledger.
type Mode string

const (
	ModeClassic    Mode = "classic"
	ModeDeathmatch Mode = "deathmatch"
)

// Item is a catalog entry competing in duels.
type Item struct {
	ID          int64
	URL         string
	Title       string
	Description string
	ImageURL    string
	Rating      float64
	Games       int64
	Wins        int64
	Losses      int64
	CreatedAt   time.Time
}

// Player tracks per-voter progress and unlock state.
type Player struct {
	ID                 int64
	ExternalID         int64
	Username           string
	DisplayName        string
	FavoriteItemID     *int64
	ClassicGames       int64
	RewardStage        int64
	RatingUnlocked     bool
	DeathmatchUnlocked bool
	CreatedAt          time.Time
}

// VoteToken authorizes exactly one vote for a specific player, mode, and pair.
type VoteToken struct {
	Token      string
	PlayerID   int64
	Mode       Mode
	ItemAID    int64
	ItemBID    int64
	Consumed   bool
	CreatedAt  time.Time
	ConsumedAt *time.Time
}

// VoteRecord is the audit row written for every committed classic duel.
// WinnerItemID is nil for a draw.
type VoteRecord struct {
	ID            int64
	PlayerID      int64
	ItemAID       int64
	ItemBID       int64
	WinnerItemID  *int64
	RatingABefore float64
	RatingBBefore float64
	RatingAAfter  float64
	RatingBAfter  float64
	CreatedAt     time.Time
}

// DeathmatchVoteRecord is the audit row for one elimination round.
type DeathmatchVoteRecord struct {
	ID           int64
	PlayerID     int64
	ChampionID   *int64
	ItemAID      int64
	ItemBID      int64
	WinnerItemID int64
	CreatedAt    time.Time
}

// DeathmatchState is a player's resumable elimination run. Seen holds
// item IDs already fought in order of appearance, the current champion
// last. Remaining holds unfought snapshot IDs in queue order.
type DeathmatchState struct {
	PlayerID   int64
	ChampionID *int64
	Seen       []int64
	Remaining  []int64
	UpdatedAt  time.Time
}

// Champion returns the current title holder, or 0 when the run has no
// champion yet.
func (s *DeathmatchState) Champion() int64 {
	if s.ChampionID != nil {
		return *s.ChampionID
	}
	return 0
}

// RatingStats summarizes a single item for ranking output.
type RatingStats struct {
	Item    Item
	Winrate float64
}

// FavoriteCount pairs an item with how many players hold it as favorite.
type FavoriteCount struct {
	Item  Item
	Count int64
}

// DeathmatchStats aggregates elimination results for one item.
type DeathmatchStats struct {
	Item Item
	Wins int64
	Runs int64
}

// DatabaseHealth describes the state of the backing database file.
type DatabaseHealth struct {
	DBPath         string
	DatabaseExists bool
	SizeBytes      int64
	SchemaVersion  int
	Items          int
	Players        int
	Votes          int
	ActiveRuns     int
}
