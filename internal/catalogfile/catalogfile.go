// Package catalogfile imports catalog entries from a TOML seed file.
package catalogfile

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"channelduel/internal/store"
)

// Entry is one seed file record. Only URL is required; a missing title
// is derived from the URL.
type Entry struct {
	URL         string `toml:"url"`
	Title       string `toml:"title"`
	Description string `toml:"description"`
	ImageURL    string `toml:"image_url"`
}

type seedFile struct {
	Items []Entry `toml:"items"`
}

var titleCaser = cases.Title(language.English)

// Load parses and normalizes the seed file. Entries without a URL are
// rejected rather than skipped so a typo cannot silently shrink the
// catalog.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var parsed seedFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(parsed.Items) == 0 {
		return nil, errors.New("seed file lists no items")
	}
	for i := range parsed.Items {
		entry := &parsed.Items[i]
		entry.URL = strings.TrimSpace(entry.URL)
		if entry.URL == "" {
			return nil, fmt.Errorf("seed entry %d has no url", i+1)
		}
		entry.Title = strings.TrimSpace(entry.Title)
		if entry.Title == "" {
			entry.Title = titleFromURL(entry.URL)
		}
	}
	return parsed.Items, nil
}

// titleFromURL turns the last path segment into a display title,
// "some-channel_name" becoming "Some Channel Name".
func titleFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	segment := raw
	if err == nil {
		trimmed := strings.Trim(parsed.Path, "/")
		if parts := strings.Split(trimmed, "/"); len(parts) > 0 && parts[len(parts)-1] != "" {
			segment = parts[len(parts)-1]
		} else if parsed.Host != "" {
			segment = parsed.Host
		}
	}
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	return titleCaser.String(segment)
}

// Seed imports the file into the store under an exclusive file lock so
// concurrent imports of the same seed cannot interleave. Returns how
// many entries were upserted.
func Seed(ctx context.Context, st *store.Store, path string) (int, error) {
	entries, err := Load(path)
	if err != nil {
		return 0, err
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("lock seed file: %w", err)
	}
	if !locked {
		return 0, fmt.Errorf("seed file %s is locked by another import", path)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	for _, entry := range entries {
		if _, err := st.UpsertItem(ctx, &store.Item{
			URL:         entry.URL,
			Title:       entry.Title,
			Description: entry.Description,
			ImageURL:    entry.ImageURL,
		}); err != nil {
			return 0, fmt.Errorf("seed %s: %w", entry.URL, err)
		}
	}
	return len(entries), nil
}
