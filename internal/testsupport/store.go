package testsupport

import (
	"context"
	"fmt"
	"testing"

	"channelduel/internal/config"
	"channelduel/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewItem seeds a catalog entry with the given title and rating.
func NewItem(t testing.TB, st *store.Store, title string, rating float64) *store.Item {
	t.Helper()

	item, err := st.UpsertItem(context.Background(), &store.Item{
		URL:    fmt.Sprintf("https://example.com/%s", title),
		Title:  title,
		Rating: rating,
	})
	if err != nil {
		t.Fatalf("store.UpsertItem: %v", err)
	}
	return item
}

// NewPlayer registers a voter keyed by externalID.
func NewPlayer(t testing.TB, st *store.Store, externalID int64) *store.Player {
	t.Helper()

	player, err := st.UpsertPlayer(context.Background(), externalID, fmt.Sprintf("user%d", externalID), fmt.Sprintf("User %d", externalID))
	if err != nil {
		t.Fatalf("store.UpsertPlayer: %v", err)
	}
	return player
}
