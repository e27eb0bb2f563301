package catalogfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"channelduel/internal/catalogfile"
	"channelduel/internal/testsupport"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestLoadDerivesMissingTitle(t *testing.T) {
	path := writeSeed(t, `
[[items]]
url = "https://example.com/cool-channel_one"

[[items]]
url = "https://example.com/second"
title = "Named Already"
`)
	entries, err := catalogfile.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Title != "Cool Channel One" {
		t.Fatalf("derived title mismatch: %q", entries[0].Title)
	}
	if entries[1].Title != "Named Already" {
		t.Fatalf("explicit title must win: %q", entries[1].Title)
	}
}

func TestLoadRejectsMissingURL(t *testing.T) {
	path := writeSeed(t, `
[[items]]
title = "No URL"
`)
	if _, err := catalogfile.Load(path); err == nil {
		t.Fatal("expected rejection for entry without url")
	}
}

func TestSeedIsIdempotentForRatings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	path := writeSeed(t, `
[[items]]
url = "https://example.com/alpha"
title = "Alpha"
`)
	count, err := catalogfile.Seed(ctx, st, path)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 import, got %d", count)
	}

	item, err := st.GetItemByURL(ctx, "https://example.com/alpha")
	if err != nil {
		t.Fatalf("GetItemByURL: %v", err)
	}
	if item == nil || item.Rating != 1500 {
		t.Fatalf("unexpected seeded item: %+v", item)
	}

	if _, err := catalogfile.Seed(ctx, st, path); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	total, err := st.CountItems(ctx)
	if err != nil {
		t.Fatalf("CountItems: %v", err)
	}
	if total != 1 {
		t.Fatalf("reseed must not duplicate, got %d items", total)
	}
}
