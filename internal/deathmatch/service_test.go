package deathmatch_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"channelduel/internal/deathmatch"
	"channelduel/internal/store"
	"channelduel/internal/testsupport"
)

func newService(t *testing.T, st *store.Store, minGames, topLimit int) *deathmatch.Service {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithDeathmatch(minGames, topLimit))
	rng := rand.New(rand.NewPCG(7, 11))
	return deathmatch.NewService(st, rng, nil, cfg.Deathmatch)
}

func seedCatalog(t *testing.T, st *store.Store, n int) []*store.Item {
	t.Helper()
	items := make([]*store.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, testsupport.NewItem(t, st, string(rune('a'+i)), 1500+float64(i*20)))
	}
	return items
}

func TestStartRequiresEligibility(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	player := testsupport.NewPlayer(t, st, 1)
	seedCatalog(t, st, 4)

	svc := newService(t, st, 5, 21)
	_, err := svc.Start(context.Background(), player.ID)
	if !errors.Is(err, deathmatch.ErrNotEligible) {
		t.Fatalf("expected eligibility gate, got %v", err)
	}
}

func TestStartRejectsSecondRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	seedCatalog(t, st, 4)

	svc := newService(t, st, 0, 21)
	if _, err := svc.Start(ctx, player.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Start(ctx, player.ID); !errors.Is(err, deathmatch.ErrRunActive) {
		t.Fatalf("expected active run rejection, got %v", err)
	}
}

func TestStartRequiresCatalog(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	player := testsupport.NewPlayer(t, st, 1)
	testsupport.NewItem(t, st, "only", 1500)

	svc := newService(t, st, 0, 21)
	_, err := svc.Start(context.Background(), player.ID)
	if !errors.Is(err, deathmatch.ErrInsufficientCatalog) {
		t.Fatalf("expected insufficient catalog, got %v", err)
	}
}

func TestRunToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	seedCatalog(t, st, 4)

	svc := newService(t, st, 0, 21)
	round, err := svc.Start(ctx, player.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if round.Number != 1 || round.Total != 3 {
		t.Fatalf("expected round 1 of 3, got %d of %d", round.Number, round.Total)
	}

	rounds := 0
	for {
		rounds++
		if rounds > 10 {
			t.Fatal("run did not terminate")
		}
		outcome, err := svc.ProcessVote(ctx, player.ID, round.Token, round.Champion.ID, round.Opponent.ID, round.Champion.ID)
		if err != nil {
			t.Fatalf("ProcessVote round %d: %v", rounds, err)
		}
		if outcome.Finished {
			if outcome.Champion == nil {
				t.Fatal("finished run must report a champion")
			}
			fav, err := st.FavoriteItem(ctx, player.ID)
			if err != nil {
				t.Fatalf("FavoriteItem: %v", err)
			}
			if fav == nil || fav.ID != outcome.Champion.ID {
				t.Fatalf("champion should become favorite, got %+v", fav)
			}
			break
		}
		round = outcome.Next
	}
	if rounds != 3 {
		t.Fatalf("four items take exactly three rounds, got %d", rounds)
	}

	if _, err := svc.Resume(ctx, player.ID); !errors.Is(err, deathmatch.ErrNoActiveRun) {
		t.Fatalf("finished run should not resume, got %v", err)
	}
	games, err := st.DeathmatchGames(ctx, player.ID)
	if err != nil {
		t.Fatalf("DeathmatchGames: %v", err)
	}
	if games != 3 {
		t.Fatalf("expected 3 audited rounds, got %d", games)
	}
}

func TestSnapshotImmuneToLaterCatalogChanges(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	seedCatalog(t, st, 3)

	svc := newService(t, st, 0, 21)
	round, err := svc.Start(ctx, player.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	intruder := testsupport.NewItem(t, st, "intruder", 9000)

	for {
		if round.Champion.ID == intruder.ID || round.Opponent.ID == intruder.ID {
			t.Fatal("items added after start must not enter the run")
		}
		outcome, err := svc.ProcessVote(ctx, player.ID, round.Token, round.Champion.ID, round.Opponent.ID, round.Opponent.ID)
		if err != nil {
			t.Fatalf("ProcessVote: %v", err)
		}
		if outcome.Finished {
			if outcome.Champion.ID == intruder.ID {
				t.Fatal("intruder cannot win a run it never joined")
			}
			return
		}
		round = outcome.Next
	}
}

func TestResumeSurvivesRestart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	seedCatalog(t, st, 4)

	svc := newService(t, st, 0, 21)
	started, err := svc.Start(ctx, player.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	resumed, err := svc.Resume(ctx, player.ID)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resumed.Champion.ID != started.Champion.ID || resumed.Opponent.ID != started.Opponent.ID {
		t.Fatal("resume must present the same matchup")
	}
	if resumed.Token != started.Token {
		t.Fatal("resume must reuse the live token")
	}
}

func TestResumeWithoutTokenDesyncs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	seedCatalog(t, st, 4)

	svc := newService(t, st, 0, 21)
	started, err := svc.Start(ctx, player.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := st.InvalidateTokens(ctx, player.ID, store.ModeDeathmatch); err != nil {
		t.Fatalf("InvalidateTokens: %v", err)
	}

	if _, err := svc.Resume(ctx, player.ID); !errors.Is(err, deathmatch.ErrStateDesynced) {
		t.Fatalf("resume without token must desync, got %v", err)
	}

	reissued, err := svc.Reissue(ctx, player.ID)
	if err != nil {
		t.Fatalf("Reissue: %v", err)
	}
	if reissued.Champion.ID != started.Champion.ID || reissued.Opponent.ID != started.Opponent.ID {
		t.Fatal("reissue must present the same matchup")
	}
	if reissued.Token == started.Token {
		t.Fatal("expected a fresh token")
	}
	if _, err := svc.ProcessVote(ctx, player.ID, reissued.Token, reissued.Champion.ID, reissued.Opponent.ID, reissued.Champion.ID); err != nil {
		t.Fatalf("reissued token must settle the round: %v", err)
	}
}

func TestProcessVoteRejectsDesyncedPair(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	items := seedCatalog(t, st, 4)

	svc := newService(t, st, 0, 21)
	round, err := svc.Start(ctx, player.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var outsider *store.Item
	for _, item := range items {
		if item.ID != round.Champion.ID && item.ID != round.Opponent.ID {
			outsider = item
			break
		}
	}
	_, err = svc.ProcessVote(ctx, player.ID, round.Token, round.Champion.ID, outsider.ID, outsider.ID)
	if !errors.Is(err, deathmatch.ErrStateDesynced) {
		t.Fatalf("expected desync rejection, got %v", err)
	}

	_, err = svc.ProcessVote(ctx, player.ID, round.Token, round.Champion.ID, round.Opponent.ID, outsider.ID)
	if !errors.Is(err, deathmatch.ErrInvalidWinner) {
		t.Fatalf("expected invalid winner, got %v", err)
	}
}

func TestResetClearsRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	player := testsupport.NewPlayer(t, st, 1)
	seedCatalog(t, st, 4)

	svc := newService(t, st, 0, 21)
	if _, err := svc.Start(ctx, player.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := svc.Reset(ctx, player.ID); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := svc.Resume(ctx, player.ID); !errors.Is(err, deathmatch.ErrNoActiveRun) {
		t.Fatalf("reset run should not resume, got %v", err)
	}
	token, err := st.ActiveToken(ctx, player.ID, store.ModeDeathmatch)
	if err != nil {
		t.Fatalf("ActiveToken: %v", err)
	}
	if token != nil {
		t.Fatalf("reset must discard the live token, got %+v", token)
	}
	if _, err := svc.Start(ctx, player.ID); err != nil {
		t.Fatalf("fresh run after reset: %v", err)
	}
}
