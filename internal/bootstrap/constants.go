package bootstrap

import "time"

// Shutdown timing
const (
	ShutdownTimeout = 15 * time.Second
)

// Log messages for startup
const (
	LogMsgStartingService      = "Starting crop cycle service"
	LogMsgConfigurationLoaded  = "Configuration loaded"
	LogMsgStorageMemory        = "Using in-memory crop cycle store"
	LogMsgStoragePostgres      = "Using PostgreSQL crop cycle store"
	LogMsgMigrationsApplied    = "Database migrations applied"
	LogMsgCatalogLoaded        = "Crop catalog loaded"
	LogMsgFixturesLoaded       = "Snapshot fixtures loaded"
	LogMsgNoSnapshotSources    = "No snapshot sources configured, recommendations will only use request snapshots"
	LogMsgRedisCache           = "Using Redis recommendation cache and generation locks"
	LogMsgMemoryCache          = "Using in-memory recommendation cache"
	LogMsgEventSystemReady     = "Event system initialized"
	LogMsgShutdownSignal       = "Shutdown signal received"
	LogMsgShuttingDownServer   = "Shutting down server..."
	LogMsgServerStopped        = "Server stopped"
	LogMsgServerForcedShutdown = "Server forced to shutdown"
	LogMsgRedisCloseFailed     = "Redis client close failed"
)

// Error prefixes for startup failures
const (
	ErrMsgConnectDatabase = "failed to connect to database"
	ErrMsgMigrate         = "failed to apply migrations"
	ErrMsgLoadCatalog     = "failed to load crop catalog"
	ErrMsgLoadFixtures    = "failed to load snapshot fixtures"
	ErrMsgConnectRedis    = "failed to connect to redis"
)
