package handler

import (
	"net/http"

	"github.com/osse101/CropCycle_Go/internal/checklist"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/logger"
)

// ChecklistHandler serves smart checklists
type ChecklistHandler struct {
	planner checklist.Planner
}

// NewChecklistHandler creates a handler over the checklist planner
func NewChecklistHandler(planner checklist.Planner) *ChecklistHandler {
	return &ChecklistHandler{planner: planner}
}

// HandleGenerateChecklist builds a smart checklist for a farm profile.
// With cycle_id the tasks are merged into that cycle and only newly added ones are returned.
// @Summary Generate smart checklist
// @Tags crop-cycles
// @Accept json
// @Produce json
// @Param request body domain.ChecklistRequest true "Farm profile"
// @Success 200 {object} domain.ChecklistResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /crop-cycles/checklist [post]
func (h *ChecklistHandler) HandleGenerateChecklist(w http.ResponseWriter, r *http.Request) {
	var req domain.ChecklistRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Generate checklist"); err != nil {
		return
	}

	LogRequestFields(logger.FromContext(r.Context()), "clientID", req.ClientID, "cycleID", req.CycleID, "cropID", req.CropID)

	result, err := h.planner.Plan(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, ErrMsgChecklistFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
