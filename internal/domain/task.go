package domain

import "time"

// Priority orders tasks and recommendations by importance
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank returns a comparable weight for p; unknown priorities rank 0
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

// MaxPriority returns the higher of two priorities
func MaxPriority(a, b Priority) Priority {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// TaskStatus is the lifecycle state of a crop task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusDelayed    TaskStatus = "delayed"
	TaskStatusSkipped    TaskStatus = "skipped"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is a known task status
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted,
		TaskStatusDelayed, TaskStatusSkipped, TaskStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusSkipped, TaskStatusCancelled:
		return true
	}
	return false
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:    {TaskStatusInProgress, TaskStatusDelayed, TaskStatusSkipped, TaskStatusCancelled},
	TaskStatusInProgress: {TaskStatusCompleted, TaskStatusDelayed, TaskStatusCancelled},
	TaskStatusDelayed:    {TaskStatusInProgress, TaskStatusCancelled},
}

// CanTransitionTask reports whether a task may move from one status to another
func CanTransitionTask(from, to TaskStatus) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TaskType groups tasks by the kind of field work they involve
type TaskType string

const (
	TaskTypeSoilPreparation TaskType = "soil_preparation"
	TaskTypeSowing          TaskType = "sowing"
	TaskTypeIrrigation      TaskType = "irrigation"
	TaskTypeFertilization   TaskType = "fertilization"
	TaskTypeWeeding         TaskType = "weeding"
	TaskTypePestControl     TaskType = "pest_control"
	TaskTypeScouting        TaskType = "scouting"
	TaskTypeHarvest         TaskType = "harvest"
	TaskTypeMarketing       TaskType = "marketing"
	TaskTypeGeneral         TaskType = "general"
)

// CropTask is a unit of field work scheduled within a crop cycle
type CropTask struct {
	ID             string     `json:"id"`
	CycleID        string     `json:"cycle_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	TaskType       TaskType   `json:"task_type"`
	Priority       Priority   `json:"priority"`
	DueDate        time.Time  `json:"due_date"`
	Status         TaskStatus `json:"status"`
	EstimatedHours float64    `json:"estimated_hours"`
	Notes          string     `json:"notes,omitempty"`
	Photos         []string   `json:"photos"`
	VoiceNote      string     `json:"voice_note,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Version        int        `json:"version"`
}

// TaskStatusChange carries a requested task transition
type TaskStatusChange struct {
	Status      TaskStatus
	Notes       string
	CompletedAt *time.Time
}
