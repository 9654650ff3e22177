package domain

import "time"

// RiskType categorizes what a risk alert is about
type RiskType string

const (
	RiskTypeWeather    RiskType = "weather"
	RiskTypePest       RiskType = "pest"
	RiskTypeDisease    RiskType = "disease"
	RiskTypeMarket     RiskType = "market"
	RiskTypeSoil       RiskType = "soil"
	RiskTypeIrrigation RiskType = "irrigation"
)

// Valid reports whether t is a known risk type
func (t RiskType) Valid() bool {
	switch t {
	case RiskTypeWeather, RiskTypePest, RiskTypeDisease, RiskTypeMarket, RiskTypeSoil, RiskTypeIrrigation:
		return true
	}
	return false
}

// Specificity ranks how targeted a risk type is.
// Pest and disease findings beat the generic weather signal they are derived from.
func (t RiskType) Specificity() int {
	switch t {
	case RiskTypePest, RiskTypeDisease:
		return 3
	case RiskTypeSoil, RiskTypeMarket, RiskTypeIrrigation:
		return 2
	case RiskTypeWeather:
		return 1
	}
	return 0
}

// Severity grades a risk alert
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns a comparable weight for s; unknown severities rank 0
func (s Severity) Rank() int {
	return s.Priority().Rank()
}

// Priority maps a severity onto the recommendation priority scale one-to-one
func (s Severity) Priority() Priority {
	switch s {
	case SeverityLow:
		return PriorityLow
	case SeverityMedium:
		return PriorityMedium
	case SeverityHigh:
		return PriorityHigh
	case SeverityCritical:
		return PriorityCritical
	}
	return ""
}

// RiskAlert records a detected threat to a crop cycle
type RiskAlert struct {
	ID                 string     `json:"id"`
	CycleID            string     `json:"cycle_id"`
	RiskType           RiskType   `json:"risk_type"`
	Severity           Severity   `json:"severity"`
	Description        string     `json:"description"`
	MitigationStrategy string     `json:"mitigation_strategy"`
	DetectedAt         time.Time  `json:"detected_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	AcknowledgedAt     *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
}

// IsOpen reports whether the alert has not been resolved yet
func (r *RiskAlert) IsOpen() bool {
	return r.ResolvedAt == nil
}
