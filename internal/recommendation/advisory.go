package recommendation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/utils"
)

// Input is what an advisory model sees for one crop cycle
type Input struct {
	Cycle     domain.CropCycle
	Profile   *crops.Profile
	Snapshots domain.Snapshots
	Now       time.Time
}

// AdvisoryModel turns condition snapshots into draft recommendations.
// Drafts need only Title, Type, Priority, content fields, UrgencyHours, DataSources and ExpiresAt;
// the engine stamps ids, client, cycle and creation time.
type AdvisoryModel interface {
	Advise(in Input) []domain.Recommendation
}

// AdvisoryFunc adapts a function to AdvisoryModel
type AdvisoryFunc func(in Input) []domain.Recommendation

// Advise calls f
func (f AdvisoryFunc) Advise(in Input) []domain.Recommendation { return f(in) }

// AdvisoryRules parameterize RuleAdvisor
type AdvisoryRules struct {
	SprayRainMM         float64
	SprayRainChancePct  float64
	SprayWindowHours    int
	PauseIrrigationMM   float64
	HarvestRainMM       float64
	DrySpellMaxMM       float64
	DrySpellMinDays     int
	HeatHighMarginC     float64
	SellAbovePct        decimal.Decimal
	SellHighAbovePct    decimal.Decimal
	HoldBelowPct        decimal.Decimal
	LowOrganicCarbonPct float64
	SalineECdSm         float64
}

// DefaultAdvisoryRules returns the stock advisory thresholds
func DefaultAdvisoryRules() AdvisoryRules {
	return AdvisoryRules{
		SprayRainMM:         5,
		SprayRainChancePct:  70,
		SprayWindowHours:    48,
		PauseIrrigationMM:   20,
		HarvestRainMM:       10,
		DrySpellMaxMM:       5,
		DrySpellMinDays:     5,
		HeatHighMarginC:     5,
		SellAbovePct:        decimal.NewFromInt(5),
		SellHighAbovePct:    decimal.NewFromInt(15),
		HoldBelowPct:        decimal.NewFromInt(-5),
		LowOrganicCarbonPct: 0.5,
		SalineECdSm:         4,
	}
}

// RuleAdvisor is the default AdvisoryModel: timing advice per data source
type RuleAdvisor struct {
	R AdvisoryRules
}

// NewRuleAdvisor creates an advisor with the default rules
func NewRuleAdvisor() *RuleAdvisor {
	return &RuleAdvisor{R: DefaultAdvisoryRules()}
}

// Advise runs the weather, market and soil rules whose snapshot is present
func (a *RuleAdvisor) Advise(in Input) []domain.Recommendation {
	var out []domain.Recommendation
	if in.Snapshots.Weather != nil {
		out = append(out, a.weather(in)...)
	}
	if in.Snapshots.Market != nil {
		out = append(out, a.market(in)...)
	}
	if in.Snapshots.Soil != nil {
		out = append(out, a.soil(in)...)
	}
	return out
}

func (a *RuleAdvisor) weather(in Input) []domain.Recommendation {
	snap := in.Snapshots.Weather
	days := upcomingDays(snap.Days, in.Now)
	if len(days) == 0 {
		return nil
	}
	src := sourceOf(domain.SourceWeather, snap.SnapshotMeta)
	var out []domain.Recommendation

	if d, ok := firstDay(days, func(d domain.DailyForecast) bool {
		return d.PrecipitationMM >= a.R.SprayRainMM || d.PrecipChance >= a.R.SprayRainChancePct
	}); ok && hoursUntil(d.Date, in.Now) <= a.R.SprayWindowHours {
		out = append(out, src.draft(domain.Recommendation{
			Title:       "Delay spraying until rain passes",
			Description: fmt.Sprintf("Rain is expected%s; sprays applied before it will wash off.", onDay(d.Date)),
			Type:        domain.RecommendationCropProtection,
			Priority:    domain.PriorityMedium,
			ActionItems: []string{
				"Postpone pesticide and foliar sprays for 48 hours",
				"Spray only after the leaves have dried",
			},
			Reasoning:      fmt.Sprintf("Forecast shows %.0f mm with a %.0f%% chance of rain", d.PrecipitationMM, d.PrecipChance),
			ExpectedImpact: "Avoids wasting chemicals and repeat applications",
			UrgencyHours:   hoursUntil(d.Date, in.Now),
		}))
	}

	if in.Cycle.IrrigationType != domain.IrrigationRainfed && totalRain(days, 3) >= a.R.PauseIrrigationMM {
		urgency := urgencyHigh
		if d, ok := firstDay(days, func(d domain.DailyForecast) bool { return d.PrecipitationMM >= a.R.SprayRainMM }); ok {
			urgency = hoursUntil(d.Date, in.Now)
		}
		out = append(out, src.draft(domain.Recommendation{
			Title:       "Pause irrigation ahead of forecast rain",
			Description: fmt.Sprintf("%.0f mm of rain is forecast over the next three days.", totalRain(days, 3)),
			Type:        domain.RecommendationIrrigation,
			Priority:    domain.PriorityMedium,
			ActionItems: []string{
				"Skip the next scheduled irrigation",
				"Open field drains so standing water can escape",
			},
			Reasoning:      "Irrigating before heavy rain waterlogs the root zone",
			ExpectedImpact: "Saves water and pumping cost and prevents waterlogging",
			UrgencyHours:   urgency,
		}))
	}

	if len(days) >= a.R.DrySpellMinDays && totalRain(days, 0) < a.R.DrySpellMaxMM {
		rec := domain.Recommendation{
			Type:           domain.RecommendationIrrigation,
			Priority:       domain.PriorityMedium,
			Reasoning:      fmt.Sprintf("Only %.0f mm of rain is forecast over %d days", totalRain(days, 0), len(days)),
			ExpectedImpact: "Prevents moisture stress during the dry spell",
			UrgencyHours:   urgencyHigh,
		}
		if in.Cycle.IrrigationType == domain.IrrigationRainfed {
			rec.Title = "Conserve soil moisture through the dry spell"
			rec.Description = "No meaningful rain is forecast and the plot depends on rainfall."
			rec.Priority = domain.PriorityHigh
			rec.ActionItems = []string{
				"Mulch between rows with crop residue",
				"Arrange one protective irrigation if a water source is available",
			}
		} else {
			rec.Title = "Irrigate before the dry spell"
			rec.Description = "No meaningful rain is forecast for the coming week."
			if in.Profile.WaterNeed == "high" {
				rec.Priority = domain.PriorityHigh
			}
			rec.ActionItems = []string{
				"Irrigate in the early morning within the next day",
				"Check channels and drip lines for leaks before the dry days",
			}
		}
		out = append(out, src.draft(rec))
	}

	if hot, ok := hottestDay(days); ok && hot.TempMaxC > in.Profile.TempMaxC {
		priority := domain.PriorityMedium
		if hot.TempMaxC >= in.Profile.TempMaxC+a.R.HeatHighMarginC {
			priority = domain.PriorityHigh
		}
		out = append(out, src.draft(domain.Recommendation{
			Title:       "Protect the crop from heat stress",
			Description: fmt.Sprintf("A high of %.0f°C is forecast%s.", hot.TempMaxC, onDay(hot.Date)),
			Type:        domain.RecommendationWeatherAdaptation,
			Priority:    priority,
			ActionItems: []string{
				"Irrigate lightly in the evening before the hot day",
				"Avoid fertilizer and spray applications during midday heat",
			},
			Reasoning:      fmt.Sprintf("%s tolerates up to %.0f°C", in.Profile.Name, in.Profile.TempMaxC),
			ExpectedImpact: "Reduces flower drop and yield loss from heat",
			UrgencyHours:   hoursUntil(hot.Date, in.Now),
		}))
	}

	if inHarvestWindow(in.Cycle, in.Profile, in.Now) {
		if d, ok := firstDay(days[:min(3, len(days))], func(d domain.DailyForecast) bool { return d.PrecipitationMM >= a.R.HarvestRainMM }); ok {
			out = append(out, src.draft(domain.Recommendation{
				Title:       "Harvest before forecast rain",
				Description: fmt.Sprintf("The crop is in its harvest window and %.0f mm of rain is expected%s.", d.PrecipitationMM, onDay(d.Date)),
				Type:        domain.RecommendationHarvestTiming,
				Priority:    domain.PriorityHigh,
				ActionItems: []string{
					"Arrange labour and equipment to harvest mature fields first",
					"Move harvested produce under cover",
				},
				Reasoning:      "Rain on a mature crop causes lodging, sprouting and quality loss",
				ExpectedImpact: "Protects grain quality and market price",
				UrgencyHours:   hoursUntil(d.Date, in.Now),
			}))
		}
	}
	return out
}

func (a *RuleAdvisor) market(in Input) []domain.Recommendation {
	snap := in.Snapshots.Market
	src := sourceOf(domain.SourceMarket, snap.SnapshotMeta)
	change := snap.ChangePercent()
	price := fmt.Sprintf("%s %s", snap.CurrentPrice.StringFixed(2), snap.Unit)

	switch {
	case change.GreaterThanOrEqual(a.R.SellAbovePct):
		priority := domain.PriorityMedium
		if change.GreaterThanOrEqual(a.R.SellHighAbovePct) || inHarvestWindow(in.Cycle, in.Profile, in.Now) {
			priority = domain.PriorityHigh
		}
		return []domain.Recommendation{src.draft(domain.Recommendation{
			Title:       "Sell while prices are up",
			Description: fmt.Sprintf("%s prices rose %s%% to %s.", snap.Commodity, change.StringFixed(1), price),
			Type:        domain.RecommendationMarketAction,
			Priority:    priority,
			ActionItems: []string{
				"Sell stored produce or book a buyer for the coming harvest",
				"Compare rates at nearby mandis before committing",
			},
			Reasoning:      "Price rallies after short supply usually fade once arrivals pick up",
			ExpectedImpact: "Captures the current premium",
			UrgencyHours:   urgencyMedium,
		})}
	case change.LessThanOrEqual(a.R.HoldBelowPct):
		return []domain.Recommendation{src.draft(domain.Recommendation{
			Title:       "Hold produce until prices recover",
			Description: fmt.Sprintf("%s prices fell %s%% to %s.", snap.Commodity, change.Abs().StringFixed(1), price),
			Type:        domain.RecommendationMarketAction,
			Priority:    domain.PriorityLow,
			ActionItems: []string{
				"Store dry produce in clean, aerated bags",
				"Check warehouse receipt schemes for a loan against stored stock",
			},
			Reasoning:      "Selling into a dip locks in the low price",
			ExpectedImpact: "Better realised price once arrivals ease",
			UrgencyHours:   urgencyLow,
		})}
	}
	return nil
}

func (a *RuleAdvisor) soil(in Input) []domain.Recommendation {
	snap := in.Snapshots.Soil
	src := sourceOf(domain.SourceSoil, snap.SnapshotMeta)
	urgency := amendmentUrgency(in.Cycle, in.Now)
	var out []domain.Recommendation

	var deficits []string
	check := func(nutrient string, have, need float64) {
		if need > 0 && have < need {
			deficits = append(deficits, fmt.Sprintf("Apply %s: soil has %.0f kg/ha against %.0f kg/ha needed", nutrient, have, need))
		}
	}
	check("nitrogen", snap.NitrogenKgHa, in.Profile.NitrogenMinKgHa)
	check("phosphorus", snap.PhosphorusKgHa, in.Profile.PhosphorusMinKgHa)
	check("potassium", snap.PotassiumKgHa, in.Profile.PotassiumMinKgHa)
	if len(deficits) > 0 {
		priority := domain.PriorityMedium
		if len(deficits) > 1 {
			priority = domain.PriorityHigh
		}
		out = append(out, src.draft(domain.Recommendation{
			Title:          "Correct soil nutrient deficits",
			Description:    fmt.Sprintf("The soil test for pincode %s shows %d nutrient deficit(s) for %s.", snap.Pincode, len(deficits), in.Profile.Name),
			Type:           domain.RecommendationFertilization,
			Priority:       priority,
			ActionItems:    deficits,
			Reasoning:      "Yield is capped by the scarcest nutrient",
			ExpectedImpact: "Restores yield potential lost to nutrient shortage",
			UrgencyHours:   urgency,
		}))
	}

	if snap.OrganicCarbonPct > 0 && snap.OrganicCarbonPct < a.R.LowOrganicCarbonPct {
		out = append(out, src.draft(domain.Recommendation{
			Title:       "Build up soil organic matter",
			Description: fmt.Sprintf("Organic carbon is %.2f%%, below the %.1f%% healthy minimum.", snap.OrganicCarbonPct, a.R.LowOrganicCarbonPct),
			Type:        domain.RecommendationSoilImprovement,
			Priority:    domain.PriorityMedium,
			ActionItems: []string{
				"Incorporate 4-5 tonnes per acre of farmyard manure or compost",
				"Grow a green manure crop in the next fallow",
			},
			Reasoning:      "Low organic carbon reduces water holding and nutrient retention",
			ExpectedImpact: "Better fertilizer response over the next seasons",
			UrgencyHours:   utils.ClampInt(urgency+urgencyLow, 0, MaxUrgencyHours),
		}))
	}

	if snap.ECdSm > a.R.SalineECdSm {
		out = append(out, src.draft(domain.Recommendation{
			Title:       "Reclaim saline soil",
			Description: fmt.Sprintf("Electrical conductivity is %.1f dS/m.", snap.ECdSm),
			Type:        domain.RecommendationSoilImprovement,
			Priority:    domain.PriorityHigh,
			ActionItems: []string{
				"Leach salts with good-quality water before sowing",
				"Apply gypsum as advised by the soil testing lab",
			},
			Reasoning:      "High salinity limits water uptake by roots",
			ExpectedImpact: "Improves germination and early growth",
			UrgencyHours:   urgency,
		}))
	}
	return out
}

// source carries the snapshot identity stamped on drafts derived from it
type source struct {
	kind string
	meta domain.SnapshotMeta
}

func sourceOf(kind string, meta domain.SnapshotMeta) source {
	return source{kind: kind, meta: meta}
}

func (s source) draft(r domain.Recommendation) domain.Recommendation {
	r.DataSources = map[string]string{s.kind: s.meta.Reference}
	r.ExpiresAt = validUntil(s.meta)
	r.UrgencyHours = utils.ClampInt(r.UrgencyHours, 0, MaxUrgencyHours)
	return r
}

func validUntil(meta domain.SnapshotMeta) *time.Time {
	if meta.ValidUntil.IsZero() {
		return nil
	}
	t := meta.ValidUntil
	return &t
}

// amendmentUrgency is the time left before sowing, or the medium default once the crop is in
func amendmentUrgency(c domain.CropCycle, now time.Time) int {
	if c.StartDate.After(now) {
		return hoursUntil(c.StartDate, now)
	}
	return urgencyMedium
}

func inHarvestWindow(c domain.CropCycle, p *crops.Profile, now time.Time) bool {
	if c.PlannedHarvestDate.IsZero() || p.HarvestWindowDays <= 0 {
		return false
	}
	window := time.Duration(p.HarvestWindowDays) * 24 * time.Hour
	return !now.Before(c.PlannedHarvestDate.Add(-window)) && !now.After(c.PlannedHarvestDate.Add(window))
}

func upcomingDays(days []domain.DailyForecast, now time.Time) []domain.DailyForecast {
	today := now.Truncate(24 * time.Hour)
	out := make([]domain.DailyForecast, 0, len(days))
	for _, d := range days {
		if d.Date.IsZero() || !d.Date.Before(today) {
			out = append(out, d)
		}
	}
	return out
}

func firstDay(days []domain.DailyForecast, match func(domain.DailyForecast) bool) (domain.DailyForecast, bool) {
	for _, d := range days {
		if match(d) {
			return d, true
		}
	}
	return domain.DailyForecast{}, false
}

func hottestDay(days []domain.DailyForecast) (domain.DailyForecast, bool) {
	if len(days) == 0 {
		return domain.DailyForecast{}, false
	}
	hot := days[0]
	for _, d := range days[1:] {
		if d.TempMaxC > hot.TempMaxC {
			hot = d
		}
	}
	return hot, true
}

func totalRain(days []domain.DailyForecast, n int) float64 {
	w := domain.WeatherSnapshot{Days: days}
	return w.TotalPrecipitation(n)
}

// hoursUntil is the whole hours from now to t, clamped to the planning horizon
func hoursUntil(t, now time.Time) int {
	if t.IsZero() {
		return 0
	}
	return utils.ClampInt(int(t.Sub(now).Hours()), 0, MaxUrgencyHours)
}

func onDay(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return " on " + d.Format("2 Jan")
}
