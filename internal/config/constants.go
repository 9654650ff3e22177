package config

import "time"

// Storage backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Defaults for optional variables
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultEnvironment = "dev"
	DefaultServiceName = "cropcycle"
	DefaultVersion     = "dev"

	DefaultDBMaxConns        = 20
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute

	DefaultRecommendationCacheTTL  = 15 * time.Minute
	DefaultRecommendationCacheSize = 1000
	DefaultGenerationTimeout       = 10 * time.Second

	DefaultSourceTimeout  = 3 * time.Second
	DefaultSnapshotMaxAge = 24 * time.Hour
)
