package handler

import (
	"net/http"
	"time"

	"github.com/osse101/CropCycle_Go/internal/cropcycle"
	"github.com/osse101/CropCycle_Go/internal/logger"
)

// CropCycleHandler serves crop cycles and their child resources
type CropCycleHandler struct {
	service cropcycle.Service
}

// NewCropCycleHandler creates a handler over the crop cycle service
func NewCropCycleHandler(service cropcycle.Service) *CropCycleHandler {
	return &CropCycleHandler{service: service}
}

// CompleteCycleRequest closes a cycle with its harvest date; now when omitted
type CompleteCycleRequest struct {
	HarvestedAt *time.Time `json:"harvested_at,omitempty"`
}

// FailCycleRequest closes a cycle as failed
type FailCycleRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// HandleCreateCycle creates a crop cycle
// @Summary Create crop cycle
// @Description Creates a planned crop cycle and seeds its growth stages from the crop catalog
// @Tags crop-cycles
// @Accept json
// @Produce json
// @Param client_id query string false "Client ID, when absent from the body"
// @Param request body cropcycle.CreateCycleRequest true "Crop cycle"
// @Success 201 {object} domain.CropCycle
// @Failure 400 {object} ValidationErrorResponse
// @Router /crop-cycles [post]
func (h *CropCycleHandler) HandleCreateCycle(w http.ResponseWriter, r *http.Request) {
	var req cropcycle.CreateCycleRequest
	if err := decodeRequest(r, w, &req, "Create crop cycle"); err != nil {
		return
	}
	if req.ClientID == "" {
		req.ClientID = r.URL.Query().Get(ParamClientID)
	}
	if err := validateRequest(w, &req); err != nil {
		return
	}

	LogRequestFields(logger.FromContext(r.Context()), "clientID", req.ClientID, "cropID", req.CropID, "season", req.Season)

	cycle, err := h.service.CreateCycle(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, ErrMsgCreateCycleFailed, err)
		return
	}
	respondJSON(w, http.StatusCreated, cycle)
}

// HandleListCycles lists a client's live crop cycles, newest first
// @Summary List crop cycles
// @Tags crop-cycles
// @Produce json
// @Param client_id query string true "Client ID"
// @Success 200 {array} domain.CropCycle
// @Router /crop-cycles [get]
func (h *CropCycleHandler) HandleListCycles(w http.ResponseWriter, r *http.Request) {
	clientID, ok := GetQueryParam(r, w, ParamClientID)
	if !ok {
		return
	}
	cycles, err := h.service.ListCycles(r.Context(), clientID)
	if err != nil {
		respondServiceError(w, r, ErrMsgListCyclesFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, cycles)
}

// HandleGetCycle returns one crop cycle
// @Summary Get crop cycle
// @Tags crop-cycles
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Success 200 {object} domain.CropCycle
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /crop-cycles/{id} [get]
func (h *CropCycleHandler) HandleGetCycle(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	cycle, err := h.service.GetCycle(r.Context(), clientID, cycleID)
	if err != nil {
		respondServiceError(w, r, ErrMsgGetCycleFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, cycle)
}

// HandleUpdateCycle applies a partial update to a crop cycle
// @Summary Update crop cycle
// @Tags crop-cycles
// @Accept json
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Param request body cropcycle.CyclePatch true "Fields to change"
// @Success 200 {object} domain.CropCycle
// @Failure 409 {object} ErrorResponse
// @Router /crop-cycles/{id} [put]
func (h *CropCycleHandler) HandleUpdateCycle(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	var patch cropcycle.CyclePatch
	if err := DecodeAndValidateRequest(r, w, &patch, "Update crop cycle"); err != nil {
		return
	}
	cycle, err := h.service.UpdateCycle(r.Context(), clientID, cycleID, patch)
	if err != nil {
		respondServiceError(w, r, ErrMsgUpdateCycleFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, cycle)
}

// HandleDeleteCycle soft-deletes a crop cycle
// @Summary Delete crop cycle
// @Tags crop-cycles
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Success 204
// @Router /crop-cycles/{id} [delete]
func (h *CropCycleHandler) HandleDeleteCycle(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	if err := h.service.DeleteCycle(r.Context(), clientID, cycleID); err != nil {
		respondServiceError(w, r, ErrMsgDeleteCycleFailed, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleActivateCycle moves a planned cycle to active
// @Summary Activate crop cycle
// @Tags crop-cycles
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Success 200 {object} domain.CropCycle
// @Failure 400 {object} ErrorResponse
// @Router /crop-cycles/{id}/activate [post]
func (h *CropCycleHandler) HandleActivateCycle(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	cycle, err := h.service.Activate(r.Context(), clientID, cycleID)
	if err != nil {
		respondServiceError(w, r, ErrMsgUpdateCycleFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, cycle)
}

// HandleCompleteCycle marks an active cycle harvested
// @Summary Complete crop cycle
// @Tags crop-cycles
// @Accept json
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Param request body CompleteCycleRequest false "Harvest date"
// @Success 200 {object} domain.CropCycle
// @Router /crop-cycles/{id}/complete [post]
func (h *CropCycleHandler) HandleCompleteCycle(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	var req CompleteCycleRequest
	if err := DecodeOptionalRequest(r, w, &req, "Complete crop cycle"); err != nil {
		return
	}
	harvestedAt := time.Now().UTC()
	if req.HarvestedAt != nil {
		harvestedAt = req.HarvestedAt.UTC()
	}
	cycle, err := h.service.Complete(r.Context(), clientID, cycleID, harvestedAt)
	if err != nil {
		respondServiceError(w, r, ErrMsgUpdateCycleFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, cycle)
}

// HandleFailCycle marks a cycle failed with a reason
// @Summary Fail crop cycle
// @Tags crop-cycles
// @Accept json
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Param request body FailCycleRequest true "Failure reason"
// @Success 200 {object} domain.CropCycle
// @Router /crop-cycles/{id}/fail [post]
func (h *CropCycleHandler) HandleFailCycle(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	var req FailCycleRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Fail crop cycle"); err != nil {
		return
	}
	cycle, err := h.service.Fail(r.Context(), clientID, cycleID, req.Reason)
	if err != nil {
		respondServiceError(w, r, ErrMsgUpdateCycleFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, cycle)
}
