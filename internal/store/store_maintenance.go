package store

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// CheckHealth returns diagnostic information about the game database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	ctx = ensureContext(ctx)
	health := DatabaseHealth{
		DBPath:        s.path,
		SchemaVersion: schemaVersion,
	}

	if s.path == "" {
		return health, errors.New("game database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat game database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("game database path %q is a directory", s.path)
	}
	health.DatabaseExists = true
	health.SizeBytes = info.Size()

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(1) FROM items`, &health.Items},
		{`SELECT COUNT(1) FROM players`, &health.Players},
		{`SELECT COUNT(1) FROM votes`, &health.Votes},
		{`SELECT COUNT(1) FROM deathmatch_state`, &health.ActiveRuns},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return health, fmt.Errorf("collect database counts: %w", err)
		}
	}
	return health, nil
}
