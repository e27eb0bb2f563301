package store_test

import (
	"context"
	"testing"

	"channelduel/internal/store"
	"channelduel/internal/testsupport"
)

func TestDeathmatchStateRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	champ := testsupport.NewItem(t, st, "champ", 1700)

	state := &store.DeathmatchState{
		PlayerID:   player.ID,
		ChampionID: &champ.ID,
		Seen:       []int64{champ.ID},
		Remaining:  []int64{10, 11, 12},
	}
	if err := st.SaveDeathmatchState(ctx, state); err != nil {
		t.Fatalf("SaveDeathmatchState: %v", err)
	}

	loaded, err := st.GetDeathmatchState(ctx, player.ID)
	if err != nil {
		t.Fatalf("GetDeathmatchState: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected active state")
	}
	if loaded.Champion() != champ.ID {
		t.Fatalf("champion mismatch: %d", loaded.Champion())
	}
	if len(loaded.Seen) != 1 || len(loaded.Remaining) != 3 {
		t.Fatalf("list mismatch: %+v", loaded)
	}
	if loaded.Remaining[0] != 10 || loaded.Remaining[2] != 12 {
		t.Fatalf("remaining order lost: %v", loaded.Remaining)
	}

	if err := st.DeleteDeathmatchState(ctx, player.ID); err != nil {
		t.Fatalf("DeleteDeathmatchState: %v", err)
	}
	loaded, err = st.GetDeathmatchState(ctx, player.ID)
	if err != nil {
		t.Fatalf("GetDeathmatchState: %v", err)
	}
	if loaded != nil {
		t.Fatalf("state should be gone, got %+v", loaded)
	}
}

func TestCommitDeathmatchRoundAdvancesState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	a := testsupport.NewItem(t, st, "a", 1700)
	b := testsupport.NewItem(t, st, "b", 1650)
	c := testsupport.NewItem(t, st, "c", 1600)

	token, err := st.IssueToken(ctx, player.ID, store.ModeDeathmatch, a.ID, b.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	next := &store.DeathmatchState{
		PlayerID:   player.ID,
		ChampionID: &a.ID,
		Seen:       []int64{a.ID, b.ID},
		Remaining:  []int64{c.ID},
	}
	if err := st.CommitDeathmatchRound(ctx, store.RoundCommit{
		PlayerID: player.ID, Token: token.Token,
		ItemAID: a.ID, ItemBID: b.ID, WinnerItemID: a.ID,
		NextState: next,
	}); err != nil {
		t.Fatalf("CommitDeathmatchRound: %v", err)
	}

	state, err := st.GetDeathmatchState(ctx, player.ID)
	if err != nil {
		t.Fatalf("GetDeathmatchState: %v", err)
	}
	if state == nil || state.Champion() != a.ID {
		t.Fatalf("state not advanced: %+v", state)
	}
	games, err := st.DeathmatchGames(ctx, player.ID)
	if err != nil {
		t.Fatalf("DeathmatchGames: %v", err)
	}
	if games != 1 {
		t.Fatalf("expected 1 recorded round, got %d", games)
	}
}

func TestCommitDeathmatchRoundFinishSetsFavorite(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	a := testsupport.NewItem(t, st, "a", 1700)
	b := testsupport.NewItem(t, st, "b", 1650)

	state := &store.DeathmatchState{
		PlayerID:   player.ID,
		ChampionID: &a.ID,
		Seen:       []int64{a.ID},
		Remaining:  []int64{b.ID},
	}
	if err := st.SaveDeathmatchState(ctx, state); err != nil {
		t.Fatalf("SaveDeathmatchState: %v", err)
	}

	token, err := st.IssueToken(ctx, player.ID, store.ModeDeathmatch, a.ID, b.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := st.CommitDeathmatchRound(ctx, store.RoundCommit{
		PlayerID: player.ID, Token: token.Token,
		ChampionID: &a.ID,
		ItemAID:    a.ID, ItemBID: b.ID, WinnerItemID: b.ID,
		FinalChampionID: &b.ID,
	}); err != nil {
		t.Fatalf("CommitDeathmatchRound: %v", err)
	}

	if got, err := st.GetDeathmatchState(ctx, player.ID); err != nil || got != nil {
		t.Fatalf("finished run should delete state, got %+v err %v", got, err)
	}
	fav, err := st.FavoriteItem(ctx, player.ID)
	if err != nil {
		t.Fatalf("FavoriteItem: %v", err)
	}
	if fav == nil || fav.ID != b.ID {
		t.Fatalf("final champion should become favorite, got %+v", fav)
	}
}

func TestCommitDeathmatchRoundRejectsClassicToken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	a := testsupport.NewItem(t, st, "a", 1500)
	b := testsupport.NewItem(t, st, "b", 1500)

	token, err := st.IssueToken(ctx, player.ID, store.ModeClassic, a.ID, b.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	err = st.CommitDeathmatchRound(ctx, store.RoundCommit{
		PlayerID: player.ID, Token: token.Token,
		ItemAID: a.ID, ItemBID: b.ID, WinnerItemID: a.ID,
	})
	if err == nil {
		t.Fatal("classic token must not settle a deathmatch round")
	}
}
