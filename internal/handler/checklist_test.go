package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/CropCycle_Go/internal/domain"
)

func TestHandleGenerateChecklist(t *testing.T) {
	body := map[string]interface{}{
		"crop_id":          "rice",
		"start_date":       "2026-07-01T00:00:00Z",
		"season":           "kharif",
		"irrigation_type":  "rainfed",
		"area_acres":       2,
		"experience_years": 1,
	}

	t.Run("success", func(t *testing.T) {
		planner := &MockPlanner{}
		planner.On("Plan", mock.Anything, mock.MatchedBy(func(req domain.ChecklistRequest) bool {
			return req.CropID == "rice" && req.ExperienceYears == 1 &&
				req.StartDate.Equal(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
		})).Return(&domain.ChecklistResult{
			Tasks:     []domain.CropTask{{ID: "t1", Title: "Prepare nursery bed", Status: domain.TaskStatusPending}},
			RiskLevel: domain.SeverityLow,
		}, nil)

		w := doJSON(t, checklistRoute(planner), http.MethodPost, "/crop-cycles/checklist", body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Prepare nursery bed"`)
		assert.Contains(t, w.Body.String(), `"risk_level":"low"`)
		planner.AssertExpectations(t)
	})

	t.Run("unknown irrigation is rejected before planning", func(t *testing.T) {
		planner := &MockPlanner{}
		bad := map[string]interface{}{"crop_id": "rice", "irrigation_type": "bucket"}

		w := doJSON(t, checklistRoute(planner), http.MethodPost, "/crop-cycles/checklist", bad)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"irrigation_type"`)
		planner.AssertNotCalled(t, "Plan", mock.Anything, mock.Anything)
	})

	t.Run("planner errors are mapped", func(t *testing.T) {
		planner := &MockPlanner{}
		planner.On("Plan", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: cycle belongs to another client", domain.ErrForbidden))

		w := doJSON(t, checklistRoute(planner), http.MethodPost, "/crop-cycles/checklist", body)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func checklistRoute(planner *MockPlanner) http.Handler {
	return http.HandlerFunc(NewChecklistHandler(planner).HandleGenerateChecklist)
}
