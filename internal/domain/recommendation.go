package domain

import "time"

// RecommendationType is the closed set of advice categories
type RecommendationType string

const (
	RecommendationIrrigation        RecommendationType = "irrigation"
	RecommendationFertilization     RecommendationType = "fertilization"
	RecommendationPestControl       RecommendationType = "pest_control"
	RecommendationHarvestTiming     RecommendationType = "harvest_timing"
	RecommendationMarketAction      RecommendationType = "market_action"
	RecommendationWeatherAdaptation RecommendationType = "weather_adaptation"
	RecommendationSoilImprovement   RecommendationType = "soil_improvement"
	RecommendationCropProtection    RecommendationType = "crop_protection"
)

// Valid reports whether t is a known recommendation type
func (t RecommendationType) Valid() bool {
	switch t {
	case RecommendationIrrigation, RecommendationFertilization, RecommendationPestControl,
		RecommendationHarvestTiming, RecommendationMarketAction, RecommendationWeatherAdaptation,
		RecommendationSoilImprovement, RecommendationCropProtection:
		return true
	}
	return false
}

// Recommendation is a derived, ephemeral piece of advice for a client
type Recommendation struct {
	ID             string             `json:"id"`
	ClientID       string             `json:"client_id"`
	CycleID        string             `json:"cycle_id,omitempty"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Type           RecommendationType `json:"type"`
	Priority       Priority           `json:"priority"`
	ActionItems    []string           `json:"action_items"`
	Reasoning      string             `json:"reasoning"`
	ExpectedImpact string             `json:"expected_impact"`
	UrgencyHours   int                `json:"urgency_hours"`
	DataSources    map[string]string  `json:"data_sources"`
	CreatedAt      time.Time          `json:"created_at"`
	ExpiresAt      *time.Time         `json:"expires_at,omitempty"`
}

// IsExpired reports whether the recommendation's action window has closed at now
func (r *Recommendation) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// GenerateOptions selects which upstream data kinds feed a generation run
type GenerateOptions struct {
	IncludeWeather bool `json:"include_weather"`
	IncludeMarket  bool `json:"include_market"`
	IncludeSoil    bool `json:"include_soil"`
	Refresh        bool `json:"-"`
}

// AllSources returns options that request every data kind
func AllSources() GenerateOptions {
	return GenerateOptions{IncludeWeather: true, IncludeMarket: true, IncludeSoil: true}
}

// GenerationResult is the outcome of one generation run
type GenerationResult struct {
	Recommendations    []Recommendation `json:"recommendations"`
	GeneratedAt        time.Time        `json:"generated_at"`
	UnavailableSources []string         `json:"unavailable_sources,omitempty"`
}
