package testsupport

import (
	"path/filepath"
	"testing"

	"channelduel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithPairing overrides the pairing knobs on the test config.
func WithPairing(poolSize, closestLimit, sampleWindow, maxAttempts int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pairing.PoolSize = poolSize
		cfg.Pairing.ClosestLimit = closestLimit
		cfg.Pairing.SampleWindow = sampleWindow
		cfg.Pairing.MaxAttempts = maxAttempts
	}
}

// WithDeathmatch overrides the deathmatch eligibility knobs.
func WithDeathmatch(minClassicGames, topLimit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Deathmatch.MinClassicGames = minClassicGames
		cfg.Deathmatch.TopLimit = topLimit
	}
}
