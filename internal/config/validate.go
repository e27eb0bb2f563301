package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRating(); err != nil {
		return err
	}
	if err := c.validatePairing(); err != nil {
		return err
	}
	if err := c.validateDeathmatch(); err != nil {
		return err
	}
	if err := c.validateProgress(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRating() error {
	if c.Rating.KFactor <= 0 || math.IsNaN(c.Rating.KFactor) || math.IsInf(c.Rating.KFactor, 0) {
		return errors.New("rating.k_factor must be a positive finite number")
	}
	return nil
}

func (c *Config) validatePairing() error {
	if err := ensurePositiveMap(map[string]int{
		"pairing.pool_size":     c.Pairing.PoolSize,
		"pairing.closest_limit": c.Pairing.ClosestLimit,
		"pairing.sample_window": c.Pairing.SampleWindow,
		"pairing.max_attempts":  c.Pairing.MaxAttempts,
	}); err != nil {
		return err
	}
	if c.Pairing.PoolSize < 2 {
		return errors.New("pairing.pool_size must be at least 2")
	}
	if c.Pairing.SampleWindow > c.Pairing.ClosestLimit {
		return errors.New("pairing.sample_window must not exceed pairing.closest_limit")
	}
	return nil
}

func (c *Config) validateDeathmatch() error {
	if c.Deathmatch.MinClassicGames < 0 {
		return errors.New("deathmatch.min_classic_games must not be negative")
	}
	if c.Deathmatch.TopLimit < 2 {
		return errors.New("deathmatch.top_limit must be at least 2")
	}
	return nil
}

func (c *Config) validateProgress() error {
	if c.Progress.RatingUnlockGames < 0 {
		return errors.New("progress.rating_unlock_games must not be negative")
	}
	if c.Progress.DeathmatchUnlockGames < 0 {
		return errors.New("progress.deathmatch_unlock_games must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
