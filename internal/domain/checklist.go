package domain

import "time"

// FarmSize buckets a farm by cultivated area
type FarmSize string

const (
	FarmSizeMarginal FarmSize = "marginal"
	FarmSizeSmall    FarmSize = "small"
	FarmSizeMedium   FarmSize = "medium"
	FarmSizeLarge    FarmSize = "large"
)

// ChecklistRequest describes the profile a smart checklist is generated for
type ChecklistRequest struct {
	ClientID        string           `json:"client_id,omitempty" validate:"max=100"`
	CycleID         string           `json:"cycle_id,omitempty" validate:"max=100"`
	CropID          string           `json:"crop_id" validate:"max=50"`
	Variety         string           `json:"variety" validate:"max=100"`
	StartDate       time.Time        `json:"start_date"`
	Season          Season           `json:"season" validate:"season"`
	Location        Location         `json:"location"`
	IrrigationType  IrrigationType   `json:"irrigation_type" validate:"irrigation"`
	AreaAcres       float64          `json:"area_acres" validate:"gte=0"`
	ExperienceYears int              `json:"experience_years" validate:"gte=0"`
	FarmSize        FarmSize         `json:"farm_size,omitempty"`
	Weather         *WeatherSnapshot `json:"weather,omitempty"`
	Soil            *SoilSnapshot    `json:"soil,omitempty"`
	Market          *MarketSnapshot  `json:"market,omitempty"`
}

// Snapshots returns the condition readings carried by the request
func (r *ChecklistRequest) Snapshots() Snapshots {
	return Snapshots{Weather: r.Weather, Market: r.Market, Soil: r.Soil}
}

// ChecklistResult is the smart checklist produced for a profile
type ChecklistResult struct {
	Tasks                []CropTask       `json:"tasks"`
	Recommendations      []Recommendation `json:"recommendations"`
	RiskLevel            Severity         `json:"risk_level"`
	RiskFactors          []string         `json:"risk_factors"`
	MitigationStrategies []string         `json:"mitigation_strategies"`
	CreatedAt            time.Time        `json:"created_at"`
}
