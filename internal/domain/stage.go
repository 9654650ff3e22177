package domain

import "time"

// GrowthStage is one phenological phase of a crop cycle
type GrowthStage struct {
	ID                   string     `json:"id"`
	CycleID              string     `json:"cycle_id"`
	Sequence             int        `json:"sequence"`
	StageName            string     `json:"stage_name"`
	ExpectedStartDate    time.Time  `json:"expected_start_date"`
	ActualStartDate      *time.Time `json:"actual_start_date,omitempty"`
	ExpectedDurationDays int        `json:"expected_duration_days"`
	ProgressPercentage   float64    `json:"progress_percentage"`
	Notes                string     `json:"notes,omitempty"`
	Photos               []string   `json:"photos"`
}

// CropObservation is an append-only field log entry
type CropObservation struct {
	ID              string    `json:"id"`
	CycleID         string    `json:"cycle_id"`
	ObservationType string    `json:"observation_type"`
	Description     string    `json:"description"`
	ObservedAt      time.Time `json:"observed_at"`
	Photos          []string  `json:"photos"`
	VoiceNote       string    `json:"voice_note,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}
