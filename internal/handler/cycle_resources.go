package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/CropCycle_Go/internal/cropcycle"
	"github.com/osse101/CropCycle_Go/internal/domain"
)

// TaskStatusRequest moves a task through its state machine
type TaskStatusRequest struct {
	Status      domain.TaskStatus `json:"status" validate:"required"`
	Notes       string            `json:"notes" validate:"max=2000"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// HandleAddTask adds a hand-written task to a cycle
// @Summary Add task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Param request body cropcycle.NewTaskRequest true "Task"
// @Success 201 {object} domain.CropTask
// @Router /crop-cycles/{id}/tasks [post]
func (h *CropCycleHandler) HandleAddTask(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	var req cropcycle.NewTaskRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Add task"); err != nil {
		return
	}
	task, err := h.service.AddTask(r.Context(), clientID, cycleID, req)
	if err != nil {
		respondServiceError(w, r, ErrMsgTaskFailed, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// HandleListTasks lists a cycle's tasks by due date
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Success 200 {array} domain.CropTask
// @Router /crop-cycles/{id}/tasks [get]
func (h *CropCycleHandler) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	tasks, err := h.service.ListTasks(r.Context(), clientID, cycleID)
	if err != nil {
		respondServiceError(w, r, ErrMsgTaskFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// HandleUpdateTaskStatus changes a task's status
// @Summary Update task status
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Cycle ID"
// @Param taskId path string true "Task ID"
// @Param client_id query string true "Client ID"
// @Param request body TaskStatusRequest true "New status"
// @Success 200 {object} domain.CropTask
// @Failure 400 {object} ErrorResponse
// @Router /crop-cycles/{id}/tasks/{taskId}/status [put]
func (h *CropCycleHandler) HandleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	var req TaskStatusRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Update task status"); err != nil {
		return
	}
	change := domain.TaskStatusChange{Status: req.Status, Notes: req.Notes, CompletedAt: req.CompletedAt}
	task, err := h.service.UpdateTaskStatus(r.Context(), clientID, cycleID, chi.URLParam(r, ParamTaskID), change)
	if err != nil {
		respondServiceError(w, r, ErrMsgTaskFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// HandleAddObservation records a field observation
// @Summary Add observation
// @Tags observations
// @Accept json
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Param request body cropcycle.NewObservationRequest true "Observation"
// @Success 201 {object} domain.CropObservation
// @Router /crop-cycles/{id}/observations [post]
func (h *CropCycleHandler) HandleAddObservation(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	var req cropcycle.NewObservationRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Add observation"); err != nil {
		return
	}
	obs, err := h.service.AddObservation(r.Context(), clientID, cycleID, req)
	if err != nil {
		respondServiceError(w, r, ErrMsgObservationFailed, err)
		return
	}
	respondJSON(w, http.StatusCreated, obs)
}

// HandleListObservations lists a cycle's observations, most recent first
// @Summary List observations
// @Tags observations
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Success 200 {array} domain.CropObservation
// @Router /crop-cycles/{id}/observations [get]
func (h *CropCycleHandler) HandleListObservations(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	obs, err := h.service.ListObservations(r.Context(), clientID, cycleID)
	if err != nil {
		respondServiceError(w, r, ErrMsgObservationFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, obs)
}

// HandleListStages lists a cycle's growth stages
// @Summary List growth stages
// @Tags stages
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Success 200 {array} domain.GrowthStage
// @Router /crop-cycles/{id}/stages [get]
func (h *CropCycleHandler) HandleListStages(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	stages, err := h.service.ListStages(r.Context(), clientID, cycleID)
	if err != nil {
		respondServiceError(w, r, ErrMsgStageFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, stages)
}

// HandleUpdateStage records progress on a growth stage
// @Summary Update growth stage
// @Tags stages
// @Accept json
// @Produce json
// @Param id path string true "Cycle ID"
// @Param stageId path string true "Stage ID"
// @Param client_id query string true "Client ID"
// @Param request body cropcycle.StageUpdate true "Progress"
// @Success 200 {object} domain.GrowthStage
// @Router /crop-cycles/{id}/stages/{stageId} [put]
func (h *CropCycleHandler) HandleUpdateStage(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	var req cropcycle.StageUpdate
	if err := DecodeAndValidateRequest(r, w, &req, "Update growth stage"); err != nil {
		return
	}
	stage, err := h.service.UpdateStageProgress(r.Context(), clientID, cycleID, chi.URLParam(r, ParamStageID), req)
	if err != nil {
		respondServiceError(w, r, ErrMsgStageFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, stage)
}

// HandleListRisks lists a cycle's risk alerts; resolved ones only with include_resolved=true
// @Summary List risk alerts
// @Tags risks
// @Produce json
// @Param id path string true "Cycle ID"
// @Param client_id query string true "Client ID"
// @Param include_resolved query bool false "Include resolved alerts"
// @Success 200 {array} domain.RiskAlert
// @Router /crop-cycles/{id}/risks [get]
func (h *CropCycleHandler) HandleListRisks(w http.ResponseWriter, r *http.Request) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	includeResolved, ok := GetBoolQueryParam(r, w, ParamIncludeResolved)
	if !ok {
		return
	}
	risks, err := h.service.ListRisks(r.Context(), clientID, cycleID, includeResolved)
	if err != nil {
		respondServiceError(w, r, ErrMsgRiskFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, risks)
}

// HandleAcknowledgeRisk marks an alert as seen
// @Summary Acknowledge risk alert
// @Tags risks
// @Produce json
// @Param id path string true "Cycle ID"
// @Param riskId path string true "Risk ID"
// @Param client_id query string true "Client ID"
// @Success 200 {object} domain.RiskAlert
// @Router /crop-cycles/{id}/risks/{riskId}/acknowledge [put]
func (h *CropCycleHandler) HandleAcknowledgeRisk(w http.ResponseWriter, r *http.Request) {
	h.riskAction(w, r, h.service.AcknowledgeRisk)
}

// HandleResolveRisk closes an alert
// @Summary Resolve risk alert
// @Tags risks
// @Produce json
// @Param id path string true "Cycle ID"
// @Param riskId path string true "Risk ID"
// @Param client_id query string true "Client ID"
// @Success 200 {object} domain.RiskAlert
// @Router /crop-cycles/{id}/risks/{riskId}/resolve [put]
func (h *CropCycleHandler) HandleResolveRisk(w http.ResponseWriter, r *http.Request) {
	h.riskAction(w, r, h.service.ResolveRisk)
}

type riskActionFunc func(ctx context.Context, clientID, cycleID, riskID string) (*domain.RiskAlert, error)

func (h *CropCycleHandler) riskAction(w http.ResponseWriter, r *http.Request, action riskActionFunc) {
	clientID, cycleID, ok := cycleScope(r, w)
	if !ok {
		return
	}
	alert, err := action(r.Context(), clientID, cycleID, chi.URLParam(r, ParamRiskID))
	if err != nil {
		respondServiceError(w, r, ErrMsgRiskFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}
