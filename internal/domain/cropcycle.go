package domain

import (
	"fmt"
	"time"
)

// Season is the agricultural season a crop cycle is planted in
type Season string

const (
	SeasonKharif    Season = "kharif"
	SeasonRabi      Season = "rabi"
	SeasonZaid      Season = "zaid"
	SeasonYearRound Season = "year_round"
)

// Valid reports whether s is a known season
func (s Season) Valid() bool {
	switch s {
	case SeasonKharif, SeasonRabi, SeasonZaid, SeasonYearRound:
		return true
	}
	return false
}

// IrrigationType describes how a plot is watered
type IrrigationType string

const (
	IrrigationRainfed   IrrigationType = "rainfed"
	IrrigationDrip      IrrigationType = "drip"
	IrrigationSprinkler IrrigationType = "sprinkler"
	IrrigationFlood     IrrigationType = "flood"
	IrrigationCanal     IrrigationType = "canal"
)

// Valid reports whether t is a known irrigation type
func (t IrrigationType) Valid() bool {
	switch t {
	case IrrigationRainfed, IrrigationDrip, IrrigationSprinkler, IrrigationFlood, IrrigationCanal:
		return true
	}
	return false
}

// CycleStatus is the lifecycle state of a crop cycle
type CycleStatus string

const (
	CycleStatusPlanned   CycleStatus = "planned"
	CycleStatusActive    CycleStatus = "active"
	CycleStatusCompleted CycleStatus = "completed"
	CycleStatusFailed    CycleStatus = "failed"
)

// Valid reports whether s is a known cycle status
func (s CycleStatus) Valid() bool {
	switch s {
	case CycleStatusPlanned, CycleStatusActive, CycleStatusCompleted, CycleStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s CycleStatus) IsTerminal() bool {
	return s == CycleStatusCompleted || s == CycleStatusFailed
}

// cycleTransitions lists the allowed next states for each cycle status.
// planned may not jump straight to completed: a harvest implies the cycle ran.
var cycleTransitions = map[CycleStatus][]CycleStatus{
	CycleStatusPlanned: {CycleStatusActive, CycleStatusFailed},
	CycleStatusActive:  {CycleStatusCompleted, CycleStatusFailed},
}

// CanTransitionCycle reports whether a cycle may move from one status to another
func CanTransitionCycle(from, to CycleStatus) bool {
	for _, next := range cycleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Location identifies a farmer's plot
type Location struct {
	Pincode   string  `json:"pincode"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	State     string  `json:"state,omitempty"`
	District  string  `json:"district,omitempty"`
}

// CropCycle is one planting-to-harvest instance of a crop on a farmer's plot
type CropCycle struct {
	ID                 string         `json:"id"`
	ClientID           string         `json:"client_id"`
	CropID             string         `json:"crop_id"`
	Variety            string         `json:"variety"`
	StartDate          time.Time      `json:"start_date"`
	Season             Season         `json:"season"`
	Location           Location       `json:"location"`
	IrrigationType     IrrigationType `json:"irrigation_type"`
	AreaAcres          float64        `json:"area_acres"`
	Language           string         `json:"language"`
	Status             CycleStatus    `json:"status"`
	PlannedHarvestDate time.Time      `json:"planned_harvest_date"`
	ActualHarvestDate  *time.Time     `json:"actual_harvest_date,omitempty"`
	FailureReason      string         `json:"failure_reason,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          *time.Time     `json:"-"`
	Version            int            `json:"version"`
}

// Validate checks the structural invariants of a cycle
func (c *CropCycle) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: client_id is required", ErrValidation)
	}
	if c.CropID == "" {
		return fmt.Errorf("%w: crop_id is required", ErrValidation)
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", ErrValidation)
	}
	if !c.Season.Valid() {
		return fmt.Errorf("%w: unknown season %q", ErrValidation, c.Season)
	}
	if !c.IrrigationType.Valid() {
		return fmt.Errorf("%w: unknown irrigation type %q", ErrValidation, c.IrrigationType)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, c.Status)
	}
	if c.AreaAcres <= 0 {
		return fmt.Errorf("%w: area_acres must be positive", ErrValidation)
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 || c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("%w: location out of range", ErrValidation)
	}
	if c.PlannedHarvestDate.Before(c.StartDate) {
		return fmt.Errorf("%w: planned_harvest_date must not be before start_date", ErrValidation)
	}
	if c.ActualHarvestDate != nil && !c.Status.IsTerminal() {
		return fmt.Errorf("%w: actual_harvest_date is only allowed on completed or failed cycles", ErrValidation)
	}
	return nil
}

// IsActive reports whether the cycle is live and should receive recommendations
func (c *CropCycle) IsActive() bool {
	return c.Status == CycleStatusActive && c.DeletedAt == nil
}
