package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/logger"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// bufferPool holds encode buffers so large recommendation lists do not allocate per response
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 1024))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}

// respondJSON sends a JSON response with the given status code and payload.
// The payload is encoded before the header is written so an encode failure still yields a 500.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		http.Error(w, ErrMsgGenericServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed service call and writes the mapped status and message
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, msg := mapServiceErrorToUserMessage(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(LogMsgServiceCallFailed, "operation", opName, "error", err)
	} else {
		log.Warn(LogMsgServiceCallFailed, "operation", opName, "status", status, "error", err)
	}
	respondError(w, status, msg)
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgResourceNotFoundErr = "Resource not found."
	ErrMsgForbiddenError      = "You do not have access to this crop cycle"
	ErrMsgConflictError       = "The resource was changed by another request. Please retry."

	ErrMsgCycleNotFoundError     = "Crop cycle not found"
	ErrMsgTaskNotFoundError      = "Task not found"
	ErrMsgStageNotFoundError     = "Growth stage not found"
	ErrMsgRiskNotFoundError      = "Risk alert not found"
	ErrMsgClientNotFoundError    = "No crop cycles found for this client"
	ErrMsgInvalidTransitionError = "That status change is not allowed"
)

// mapServiceErrorToUserMessage maps domain errors to HTTP status codes and user-facing messages.
// Validation errors surface their own message since it names the offending field.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrCycleNotFound):
		return http.StatusNotFound, ErrMsgCycleNotFoundError
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, ErrMsgTaskNotFoundError
	case errors.Is(err, domain.ErrStageNotFound):
		return http.StatusNotFound, ErrMsgStageNotFoundError
	case errors.Is(err, domain.ErrRiskNotFound):
		return http.StatusNotFound, ErrMsgRiskNotFoundError
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound, ErrMsgClientNotFoundError
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrMsgResourceNotFoundErr
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrMsgForbiddenError
	case errors.Is(err, domain.ErrConflictingUpdate):
		return http.StatusConflict, ErrMsgConflictError
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest, ErrMsgInvalidTransitionError
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
