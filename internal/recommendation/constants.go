package recommendation

import "time"

// Engine defaults
const (
	DefaultCacheTTL          = 15 * time.Minute
	DefaultCacheSize         = 1000
	DefaultGenerationTimeout = 10 * time.Second
	DefaultLockTTL           = 30 * time.Second

	// MaxUrgencyHours is the planning horizon; nothing is scheduled further out than three weeks
	MaxUrgencyHours = 21 * 24

	// CacheSchemaVersion is bumped when the cached entry layout changes so old entries read as misses
	CacheSchemaVersion = "1"

	redisKeyPrefix = "cropcycle:recommendations:"
)

// Urgency by severity, in hours
const (
	urgencyCritical = 0
	urgencyHigh     = 24
	urgencyMedium   = 72
	urgencyLow      = 168
)

// Log messages
const (
	LogMsgCacheHit           = "Recommendation cache hit"
	LogMsgGenerated          = "Recommendations generated"
	LogMsgGenerationShared   = "Joined in-flight recommendation generation"
	LogMsgAssessFailed       = "Risk assessment failed; continuing without cycle risks"
	LogMsgCacheWriteFailed   = "Failed to write recommendation cache"
	LogMsgCacheReadFailed    = "Failed to read recommendation cache"
	LogMsgInvalidateFailed   = "Failed to invalidate recommendation cache"
	LogMsgLockNotObtained    = "Could not obtain distributed generation lock; proceeding without it"
	LogMsgLockReleaseFailed  = "Failed to release distributed generation lock"
	LogMsgCacheInvalidated   = "Recommendation cache invalidated"
	LogMsgStaleResultDropped = "Cycles changed during generation; result not cached"
	LogMsgDraftDropped       = "Dropped advisory draft with unknown type or priority"
)
