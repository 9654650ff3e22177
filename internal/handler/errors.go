package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details for security reasons.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidLimit      = "Invalid max parameter"
	ErrMsgInvalidBoolParam  = "Invalid %s parameter, expected true or false"

	// Crop cycle operation error messages
	ErrMsgCreateCycleFailed = "Failed to create crop cycle"
	ErrMsgGetCycleFailed    = "Failed to get crop cycle"
	ErrMsgListCyclesFailed  = "Failed to list crop cycles"
	ErrMsgUpdateCycleFailed = "Failed to update crop cycle"
	ErrMsgDeleteCycleFailed = "Failed to delete crop cycle"

	// Child resource error messages
	ErrMsgTaskFailed        = "Failed to process task"
	ErrMsgObservationFailed = "Failed to process observation"
	ErrMsgStageFailed       = "Failed to process growth stage"
	ErrMsgRiskFailed        = "Failed to process risk alert"

	// Engine error messages
	ErrMsgGenerateFailed  = "Failed to generate recommendations"
	ErrMsgChecklistFailed = "Failed to generate checklist"
)

// Response headers set on recommendation responses
const (
	HeaderUnavailableSources = "X-Unavailable-Sources"
	HeaderGeneratedAt        = "X-Generated-At"
)

// Query and path parameter names
const (
	ParamClientID        = "client_id"
	ParamCycleID         = "id"
	ParamTaskID          = "taskId"
	ParamStageID         = "stageId"
	ParamRiskID          = "riskId"
	ParamRefresh         = "refresh"
	ParamMax             = "max"
	ParamIncludeResolved = "include_resolved"
)

// Log messages
const (
	LogMsgServiceCallFailed = "Service call failed"
)
