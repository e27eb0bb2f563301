package rating_test

import (
	"context"
	"testing"

	"channelduel/internal/rating"
	"channelduel/internal/store"
	"channelduel/internal/testsupport"
)

func commitWin(t *testing.T, st *store.Store, playerID int64, winner, loser *store.Item) {
	t.Helper()
	ctx := context.Background()
	token, err := st.IssueToken(ctx, playerID, store.ModeClassic, winner.ID, loser.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	nw, nl := rating.Update(winner.Rating, loser.Rating, rating.AWins, 32)
	if err := st.CommitDuel(ctx, store.DuelCommit{
		PlayerID: playerID, Token: token.Token,
		ItemAID: winner.ID, ItemBID: loser.ID, WinnerItemID: &winner.ID,
		RatingABefore: winner.Rating, RatingBBefore: loser.Rating,
		RatingAAfter: nw, RatingBAfter: nl,
	}); err != nil {
		t.Fatalf("CommitDuel: %v", err)
	}
	winner.Rating = nw
	loser.Rating = nl
}

func TestWinrateExcludesUnplayed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	player := testsupport.NewPlayer(t, st, 1)
	a := testsupport.NewItem(t, st, "a", 1500)
	b := testsupport.NewItem(t, st, "b", 1500)
	testsupport.NewItem(t, st, "idle", 1500)

	commitWin(t, st, player.ID, a, b)

	agg := rating.NewAggregator(st)
	ranked, err := agg.Winrate(context.Background(), 10)
	if err != nil {
		t.Fatalf("Winrate: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("unplayed item must be excluded, got %d entries", len(ranked))
	}
	if ranked[0].Item.ID != a.ID || ranked[0].Winrate != 1 {
		t.Fatalf("winner should lead with winrate 1, got %+v", ranked[0])
	}
	if ranked[1].Winrate != 0 {
		t.Fatalf("loser winrate should be 0, got %v", ranked[1].Winrate)
	}
}

func TestFavoritesCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewItem(t, st, "liked", 1600)
	other := testsupport.NewItem(t, st, "niche", 1400)
	for i := int64(1); i <= 3; i++ {
		p := testsupport.NewPlayer(t, st, i)
		if err := st.SetFavorite(ctx, p.ID, &item.ID); err != nil {
			t.Fatalf("SetFavorite: %v", err)
		}
	}
	solo := testsupport.NewPlayer(t, st, 4)
	if err := st.SetFavorite(ctx, solo.ID, &other.ID); err != nil {
		t.Fatalf("SetFavorite: %v", err)
	}

	agg := rating.NewAggregator(st)
	favorites, err := agg.Favorites(ctx, 10)
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(favorites) != 2 {
		t.Fatalf("expected 2 favorite entries, got %d", len(favorites))
	}
	if favorites[0].Item.ID != item.ID || favorites[0].Count != 3 {
		t.Fatalf("most held favorite first, got %+v", favorites[0])
	}
}

func TestStatsCountsEverything(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	a := testsupport.NewItem(t, st, "a", 1500)
	b := testsupport.NewItem(t, st, "b", 1500)
	commitWin(t, st, player.ID, a, b)

	token, err := st.IssueToken(ctx, player.ID, store.ModeDeathmatch, a.ID, b.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := st.CommitDeathmatchRound(ctx, store.RoundCommit{
		PlayerID: player.ID, Token: token.Token,
		ItemAID: a.ID, ItemBID: b.ID, WinnerItemID: a.ID,
		FinalChampionID: &a.ID,
	}); err != nil {
		t.Fatalf("CommitDeathmatchRound: %v", err)
	}

	agg := rating.NewAggregator(st)
	summary, err := agg.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if summary.Items != 2 || summary.Players != 1 || summary.Votes != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.DeathmatchVotes != 1 || summary.DeathmatchPlayers != 1 {
		t.Fatalf("deathmatch counters missing: %+v", summary)
	}
	if summary.ActiveRuns != 0 {
		t.Fatalf("finished round leaves no active run: %+v", summary)
	}
}
