package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const itemColumns = "id, url, title, description, image_url, rating, games, wins, losses, created_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		item       Item
		createdRaw sql.NullString
	)
	if err := scanner.Scan(
		&item.ID,
		&item.URL,
		&item.Title,
		&item.Description,
		&item.ImageURL,
		&item.Rating,
		&item.Games,
		&item.Wins,
		&item.Losses,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	item.CreatedAt = parseTime(createdRaw)
	return &item, nil
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpsertItem inserts a catalog entry keyed by URL. An existing entry
// keeps its rating and game counters; only the descriptive fields are
// refreshed. The stored row is returned either way.
func (s *Store) UpsertItem(ctx context.Context, item *Item) (*Item, error) {
	ctx = ensureContext(ctx)
	if item == nil {
		return nil, errors.New("item is required")
	}
	if item.URL == "" {
		return nil, errors.New("item url is required")
	}
	rating := item.Rating
	if rating == 0 {
		rating = 1500
	}
	_, err := s.execWithRetry(ctx, `
		INSERT INTO items (url, title, description, image_url, rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			image_url = excluded.image_url`,
		item.URL, item.Title, item.Description, item.ImageURL, rating, formatTime(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("upsert item: %w", err)
	}
	return s.GetItemByURL(ctx, item.URL)
}

// GetItem fetches an item by ID. Returns nil without error when the
// item does not exist.
func (s *Store) GetItem(ctx context.Context, id int64) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

// GetItemByURL fetches an item by its unique URL. Returns nil without
// error when absent.
func (s *Store) GetItemByURL(ctx context.Context, url string) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE url = ?`, url)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item by url: %w", err)
	}
	return item, nil
}

// ListTop returns up to limit items ordered by rating, ties broken by
// insertion order.
func (s *Store) ListTop(ctx context.Context, limit int) ([]*Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		ORDER BY rating DESC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list top items: %w", err)
	}
	return collectItems(rows)
}

// ListAll returns every catalog entry ordered by rating.
func (s *Store) ListAll(ctx context.Context) ([]*Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		ORDER BY rating DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return collectItems(rows)
}

// LowExposurePool returns up to limit items with the fewest recorded
// games, ordered so the least exposed come first.
func (s *Store) LowExposurePool(ctx context.Context, limit int) ([]*Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		ORDER BY games ASC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("low exposure pool: %w", err)
	}
	return collectItems(rows)
}

// ClosestByRating returns up to limit items nearest in rating to the
// given value, excluding the item identified by excludeID.
func (s *Store) ClosestByRating(ctx context.Context, rating float64, excludeID int64, limit int) ([]*Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE id != ?
		ORDER BY ABS(rating - ?) ASC, id ASC
		LIMIT ?`, excludeID, rating, limit)
	if err != nil {
		return nil, fmt.Errorf("closest by rating: %w", err)
	}
	return collectItems(rows)
}

// CountItems returns the size of the catalog.
func (s *Store) CountItems(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}
