package config

const (
	defaultDataDir   = "~/.local/share/channelduel"
	defaultLogDir    = "~/.local/share/channelduel/logs"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultKFactor = 32.0

	defaultPairingPoolSize     = 50
	defaultPairingClosestLimit = 20
	defaultPairingSampleWindow = 10
	defaultPairingMaxAttempts  = 30

	defaultDeathmatchMinClassicGames = 50
	defaultDeathmatchTopLimit        = 21

	defaultRatingUnlockGames     = 10
	defaultDeathmatchUnlockGames = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Rating: Rating{
			KFactor: defaultKFactor,
		},
		Pairing: Pairing{
			PoolSize:     defaultPairingPoolSize,
			ClosestLimit: defaultPairingClosestLimit,
			SampleWindow: defaultPairingSampleWindow,
			MaxAttempts:  defaultPairingMaxAttempts,
		},
		Deathmatch: Deathmatch{
			MinClassicGames: defaultDeathmatchMinClassicGames,
			TopLimit:        defaultDeathmatchTopLimit,
		},
		Progress: Progress{
			RatingUnlockGames:     defaultRatingUnlockGames,
			DeathmatchUnlockGames: defaultDeathmatchUnlockGames,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
