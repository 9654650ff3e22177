package cropcycle

// Defaults applied when a request leaves a field empty
const (
	defaultTaskPriority = "medium"
	defaultLanguage     = "en"
	maxProgress         = 100.0
)

// Log messages
const (
	LogMsgCycleCreated       = "Crop cycle created"
	LogMsgCycleUpdated       = "Crop cycle updated"
	LogMsgCycleDeleted       = "Crop cycle deleted"
	LogMsgCycleActivated     = "Crop cycle activated by first task start"
	LogMsgTaskStatusChanged  = "Task status changed"
	LogMsgTasksMerged        = "Tasks merged into cycle"
	LogMsgRiskRecorded       = "Risk alert recorded"
	LogMsgRetryingConflict   = "Retrying after conflicting update"
	LogMsgPublishFailed      = "Failed to publish event"
	LogMsgObservationAdded   = "Observation added"
	LogMsgStageProgressSaved = "Growth stage progress updated"
)
