package datasource

import "time"

// Gateway defaults
const (
	DefaultSourceTimeout  = 3 * time.Second
	DefaultOverallTimeout = 8 * time.Second
	DefaultMaxAge         = 24 * time.Hour
	DefaultMaxConcurrent  = 8
	ForecastDays          = 7

	// Coordinates are rounded to this many decimal places when deduplicating weather queries (about 1km)
	coordinatePrecision = 100.0
)

// Log messages
const (
	LogMsgFetchFailed      = "Data source fetch failed"
	LogMsgSnapshotRejected = "Snapshot rejected"
	LogMsgFetchAbandoned   = "Generation deadline reached before data source answered"
	LogMsgFixturesLoaded   = "Snapshot fixtures loaded"
)
