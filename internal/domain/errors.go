package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Generic errors
	ErrMsgValidation          = "validation failed"
	ErrMsgNotFound            = "not found"
	ErrMsgForbidden           = "forbidden"
	ErrMsgUpstreamUnavailable = "upstream data source unavailable"
	ErrMsgConflictingUpdate   = "conflicting update"

	// Crop cycle errors
	ErrMsgCycleNotFound     = "crop cycle not found"
	ErrMsgTaskNotFound      = "task not found"
	ErrMsgStageNotFound     = "growth stage not found"
	ErrMsgRiskNotFound      = "risk alert not found"
	ErrMsgClientNotFound    = "client not found"
	ErrMsgInvalidTransition = "invalid status transition"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrValidation          = errors.New(ErrMsgValidation)
	ErrNotFound            = errors.New(ErrMsgNotFound)
	ErrForbidden           = errors.New(ErrMsgForbidden)
	ErrUpstreamUnavailable = errors.New(ErrMsgUpstreamUnavailable)
	ErrConflictingUpdate   = errors.New(ErrMsgConflictingUpdate)

	// Not-found variants all match errors.Is(err, ErrNotFound)
	ErrCycleNotFound  = &kindError{msg: ErrMsgCycleNotFound, kind: ErrNotFound}
	ErrTaskNotFound   = &kindError{msg: ErrMsgTaskNotFound, kind: ErrNotFound}
	ErrStageNotFound  = &kindError{msg: ErrMsgStageNotFound, kind: ErrNotFound}
	ErrRiskNotFound   = &kindError{msg: ErrMsgRiskNotFound, kind: ErrNotFound}
	ErrClientNotFound = &kindError{msg: ErrMsgClientNotFound, kind: ErrNotFound}

	// Transition errors match errors.Is(err, ErrValidation)
	ErrInvalidTransition = &kindError{msg: ErrMsgInvalidTransition, kind: ErrValidation}
)

// kindError is a named sentinel that also belongs to a broader error kind
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
