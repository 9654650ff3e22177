package checklist

import "github.com/shopspring/decimal"

// Adjustment task titles; merges match on these, so they must stay stable between runs
const (
	TitleDrySpellIrrigation = "Irrigate during the dry spell"
	TitleDrySpellMulch      = "Mulch to conserve soil moisture"
	TitleApplyLime          = "Apply agricultural lime"
	TitleReviewMarket       = "Review market prices before selling"
)

// FarmSize boundaries in acres
const (
	marginalMaxAcres = 2.5
	smallMaxAcres    = 5
	mediumMaxAcres   = 25
)

// Log messages
const (
	LogMsgChecklistBuilt     = "Checklist generated"
	LogMsgTemplateFallback   = "No task templates matched, using fallback"
	LogMsgSnapshotsFetched   = "Fetched missing snapshots for checklist"
	LogMsgSourcesUnavailable = "Checklist built without some data sources"
)

// Adjustments parameterize the condition-driven changes applied to templated tasks
type Adjustments struct {
	// A dry spell is at least DrySpellMinDays of forecast with less than DrySpellMaxMM rain in total
	DrySpellMaxMM   float64
	DrySpellMinDays int
	// Irrigation tasks due within this many days are pulled forward to tomorrow during a dry spell
	PullForwardDays int

	// Any forecast day at or above HeavyRainMM delays fertilization due on or before it
	HeavyRainMM   float64
	RainDelayDays int

	LimeLeadDays int
	// pH gap below the crop minimum at which liming becomes critical
	LimeCriticalPHGap float64

	// Price change percentages (negative numbers)
	PriceDipPct     decimal.Decimal
	PriceDipHighPct decimal.Decimal
	MarketLeadDays  int

	NoviceMaxYears   int
	NoviceExtraHours float64
}

// DefaultAdjustments returns the stock adjustment parameters
func DefaultAdjustments() Adjustments {
	return Adjustments{
		DrySpellMaxMM:     5,
		DrySpellMinDays:   5,
		PullForwardDays:   14,
		HeavyRainMM:       50,
		RainDelayDays:     2,
		LimeLeadDays:      14,
		LimeCriticalPHGap: 0.8,
		PriceDipPct:       decimal.NewFromInt(-10),
		PriceDipHighPct:   decimal.NewFromInt(-20),
		MarketLeadDays:    7,
		NoviceMaxYears:    2,
		NoviceExtraHours:  1,
	}
}
