package risk

// Log messages
const (
	LogMsgAssessed     = "Risk assessment evaluated"
	LogMsgRecordFailed = "Failed to record risk alerts"
)
