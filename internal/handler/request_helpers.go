package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/CropCycle_Go/internal/logger"
)

// DecodeAndValidateRequest decodes a JSON request body into req and validates its struct tags.
// On failure the response has already been written and the handler should return.
//
// Example usage:
//
//	var req cropcycle.CreateCycleRequest
//	if err := DecodeAndValidateRequest(r, w, &req, "Create crop cycle"); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	if err := decodeRequest(r, w, req, actionName); err != nil {
		return err
	}
	return validateRequest(w, req)
}

// DecodeOptionalRequest is DecodeAndValidateRequest for bodies that may be absent.
// A missing or empty body leaves req untouched; chunked bodies are read like any other.
func DecodeOptionalRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	log := logger.FromContext(r.Context())
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		log.Warn(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}
	return validateRequest(w, req)
}

func decodeRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Warn(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}
	log.Debug(fmt.Sprintf("%s request decoded", actionName))
	return nil
}

func validateRequest(w http.ResponseWriter, req interface{}) error {
	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}
	return nil
}

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// GetQueryParam retrieves a required query parameter.
// If the parameter is missing or empty it writes a 400 and returns false.
func GetQueryParam(r *http.Request, w http.ResponseWriter, paramName string) (string, bool) {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		logger.FromContext(r.Context()).Warn(fmt.Sprintf("Missing %s query parameter", paramName))
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, paramName))
		return "", false
	}
	return value, true
}

// GetOptionalQueryParam retrieves an optional query parameter, falling back to defaultValue
func GetOptionalQueryParam(r *http.Request, paramName string, defaultValue string) string {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetBoolQueryParam parses an optional boolean query parameter.
// An unparseable value writes a 400 and returns ok=false.
func GetBoolQueryParam(r *http.Request, w http.ResponseWriter, paramName string) (value bool, ok bool) {
	raw := r.URL.Query().Get(paramName)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidBoolParam, paramName))
		return false, false
	}
	return v, true
}

// cycleScope reads the client_id query parameter and the {id} path parameter every
// cycle-scoped route carries
func cycleScope(r *http.Request, w http.ResponseWriter) (clientID, cycleID string, ok bool) {
	clientID, ok = GetQueryParam(r, w, ParamClientID)
	if !ok {
		return "", "", false
	}
	return clientID, chi.URLParam(r, ParamCycleID), true
}

// LogRequestFields logs common request fields at debug level
func LogRequestFields(log *slog.Logger, keyvals ...interface{}) {
	if len(keyvals)%2 != 0 {
		log.Warn("LogRequestFields called with odd number of arguments")
		return
	}
	log.Debug("Request details", keyvals...)
}
