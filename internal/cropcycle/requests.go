package cropcycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/osse101/CropCycle_Go/internal/domain"
)

// CreateCycleRequest describes a new crop cycle
type CreateCycleRequest struct {
	ClientID           string                `json:"client_id" validate:"required,max=100"`
	CropID             string                `json:"crop_id" validate:"required,max=50"`
	Variety            string                `json:"variety" validate:"max=100"`
	StartDate          time.Time             `json:"start_date" validate:"required"`
	Season             domain.Season         `json:"season" validate:"required,season"`
	Location           domain.Location       `json:"location"`
	IrrigationType     domain.IrrigationType `json:"irrigation_type" validate:"required,irrigation"`
	AreaAcres          float64               `json:"area_acres" validate:"gt=0"`
	Language           string                `json:"language" validate:"max=10"`
	PlannedHarvestDate *time.Time            `json:"planned_harvest_date,omitempty"`
}

// CyclePatch lists the mutable cycle fields; nil fields are left unchanged.
// Status changes go through the cycle state machine.
type CyclePatch struct {
	Variety            *string                `json:"variety,omitempty" validate:"omitempty,max=100"`
	Location           *domain.Location       `json:"location,omitempty"`
	IrrigationType     *domain.IrrigationType `json:"irrigation_type,omitempty" validate:"omitempty,irrigation"`
	AreaAcres          *float64               `json:"area_acres,omitempty" validate:"omitempty,gt=0"`
	Language           *string                `json:"language,omitempty" validate:"omitempty,max=10"`
	PlannedHarvestDate *time.Time             `json:"planned_harvest_date,omitempty"`
	Status             *domain.CycleStatus    `json:"status,omitempty"`
	ActualHarvestDate  *time.Time             `json:"actual_harvest_date,omitempty"`
	FailureReason      *string                `json:"failure_reason,omitempty" validate:"omitempty,max=500"`
}

// NewTaskRequest describes a task added by hand
type NewTaskRequest struct {
	Title          string          `json:"title" validate:"required,max=200"`
	Description    string          `json:"description" validate:"max=2000"`
	TaskType       domain.TaskType `json:"task_type" validate:"max=50"`
	Priority       domain.Priority `json:"priority"`
	DueDate        time.Time       `json:"due_date" validate:"required"`
	EstimatedHours float64         `json:"estimated_hours" validate:"gte=0"`
	Notes          string          `json:"notes" validate:"max=2000"`
	Photos         []string        `json:"photos"`
	VoiceNote      string          `json:"voice_note"`
}

// NewObservationRequest describes a field observation
type NewObservationRequest struct {
	ObservationType string     `json:"observation_type" validate:"required,max=50"`
	Description     string     `json:"description" validate:"required,max=2000"`
	ObservedAt      *time.Time `json:"observed_at,omitempty"`
	Photos          []string   `json:"photos"`
	VoiceNote       string     `json:"voice_note"`
	Notes           string     `json:"notes" validate:"max=2000"`
}

// StageUpdate carries progress on a growth stage
type StageUpdate struct {
	ProgressPercentage *float64 `json:"progress_percentage,omitempty"`
	Notes              *string  `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Photos             []string `json:"photos,omitempty"`
}

func (r *CreateCycleRequest) validate() error {
	if strings.TrimSpace(r.ClientID) == "" {
		return fmt.Errorf("%w: client_id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(r.CropID) == "" {
		return fmt.Errorf("%w: crop_id is required", domain.ErrValidation)
	}
	if r.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", domain.ErrValidation)
	}
	return nil
}

func (r *NewTaskRequest) toTask(cycleID, id string, now time.Time) (domain.CropTask, error) {
	if strings.TrimSpace(r.Title) == "" {
		return domain.CropTask{}, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if r.DueDate.IsZero() {
		return domain.CropTask{}, fmt.Errorf("%w: due_date is required", domain.ErrValidation)
	}
	priority := r.Priority
	if priority == "" {
		priority = defaultTaskPriority
	}
	if !priority.Valid() {
		return domain.CropTask{}, fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, r.Priority)
	}
	taskType := r.TaskType
	if taskType == "" {
		taskType = domain.TaskTypeGeneral
	}
	if r.EstimatedHours < 0 {
		return domain.CropTask{}, fmt.Errorf("%w: estimated_hours must not be negative", domain.ErrValidation)
	}
	return domain.CropTask{
		ID:             id,
		CycleID:        cycleID,
		Title:          strings.TrimSpace(r.Title),
		Description:    r.Description,
		TaskType:       taskType,
		Priority:       priority,
		DueDate:        r.DueDate.UTC(),
		Status:         domain.TaskStatusPending,
		EstimatedHours: r.EstimatedHours,
		Notes:          r.Notes,
		Photos:         nonNil(r.Photos),
		VoiceNote:      r.VoiceNote,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
