package event

import "errors"

// EventSchemaVersion is stamped on every crop cycle event
const EventSchemaVersion = "1.0"

// ErrEmptyPayload is returned when decoding an event without a payload
var ErrEmptyPayload = errors.New("event has no payload")

// ErrMsgHandlersFailedFormat summarizes handler failures for one published event
const ErrMsgHandlersFailedFormat = "%d handler(s) failed for event %s: %v"
