package risk

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/domain"
)

// Rule names reported on findings
const (
	RuleSoilPH          = "soil_ph"
	RuleHeavyRain       = "heavy_rain"
	RuleFrost           = "frost"
	RuleHeatStress      = "heat_stress"
	RuleDrySpell        = "dry_spell"
	RuleDiseasePressure = "disease_pressure"
	RulePestPressure    = "pest_pressure"
	RulePriceDrop       = "price_drop"
)

// Thresholds parameterize ThresholdModel
type Thresholds struct {
	// pH distance outside the crop's range below which severity is medium, then high; beyond is critical
	PHMediumBelow float64
	PHHighBelow   float64

	// Daily rainfall in mm
	RainMediumMM   float64
	RainHighMM     float64
	RainCriticalMM float64

	FrostMinTempC float64
	// Degrees above the crop maximum that escalate heat stress from medium to high
	HeatHighMarginC float64

	// Forecast rainfall over the whole window below which a rainfed plot is in a dry spell
	DrySpellMaxMM   float64
	DrySpellMinDays int

	HumidDiseasePct  float64
	DiseaseTempLowC  float64
	DiseaseTempHighC float64
	DiseaseMinDays   int
	DiseaseHighDays  int

	PestHumidityPct float64
	PestMeanTempC   float64
	PestMinDays     int

	// Price change percentages (negative numbers)
	PriceDropMedium   decimal.Decimal
	PriceDropHigh     decimal.Decimal
	PriceDropCritical decimal.Decimal
}

// DefaultThresholds returns the stock agronomic thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		PHMediumBelow:     0.2,
		PHHighBelow:       0.8,
		RainMediumMM:      25,
		RainHighMM:        50,
		RainCriticalMM:    100,
		FrostMinTempC:     2,
		HeatHighMarginC:   5,
		DrySpellMaxMM:     5,
		DrySpellMinDays:   5,
		HumidDiseasePct:   85,
		DiseaseTempLowC:   20,
		DiseaseTempHighC:  30,
		DiseaseMinDays:    3,
		DiseaseHighDays:   5,
		PestHumidityPct:   70,
		PestMeanTempC:     25,
		PestMinDays:       3,
		PriceDropMedium:   decimal.NewFromInt(-10),
		PriceDropHigh:     decimal.NewFromInt(-20),
		PriceDropCritical: decimal.NewFromInt(-35),
	}
}

// ThresholdModel is the default Model: fixed thresholds against the crop profile
type ThresholdModel struct {
	T Thresholds
}

// NewThresholdModel creates a model with the default thresholds
func NewThresholdModel() *ThresholdModel {
	return &ThresholdModel{T: DefaultThresholds()}
}

// Evaluate runs every rule whose snapshot is present
func (m *ThresholdModel) Evaluate(cycle domain.CropCycle, profile *crops.Profile, snaps domain.Snapshots, now time.Time) []Finding {
	var out []Finding
	if snaps.Soil != nil {
		out = append(out, m.soil(profile, snaps.Soil)...)
	}
	if snaps.Weather != nil {
		out = append(out, m.weather(cycle, profile, snaps.Weather, now)...)
	}
	if snaps.Market != nil {
		out = append(out, m.market(snaps.Market)...)
	}
	return out
}

func (m *ThresholdModel) soil(profile *crops.Profile, s *domain.SoilSnapshot) []Finding {
	dist := profile.PHDistance(s.PH)
	if dist <= 0 {
		return nil
	}

	severity := domain.SeverityCritical
	switch {
	case dist < m.T.PHMediumBelow:
		severity = domain.SeverityMedium
	case dist < m.T.PHHighBelow:
		severity = domain.SeverityHigh
	}

	f := Finding{
		Rule:     RuleSoilPH,
		RiskType: domain.RiskTypeSoil,
		Severity: severity,
		Source:   domain.SourceSoil,
	}
	if s.PH < profile.PHMin {
		f.Description = fmt.Sprintf("Soil pH %.1f is below the %.1f-%.1f range %s tolerates", s.PH, profile.PHMin, profile.PHMax, profile.Name)
		f.Mitigation = "Apply agricultural lime before the next fertilizer dose and retest pH after 4 weeks"
	} else {
		f.Description = fmt.Sprintf("Soil pH %.1f is above the %.1f-%.1f range %s tolerates", s.PH, profile.PHMin, profile.PHMax, profile.Name)
		f.Mitigation = "Apply gypsum or elemental sulphur and prefer acidifying fertilizers such as ammonium sulphate"
	}
	return []Finding{f}
}

func (m *ThresholdModel) weather(cycle domain.CropCycle, profile *crops.Profile, snap *domain.WeatherSnapshot, now time.Time) []Finding {
	w := upcoming(snap, now)
	if len(w.Days) == 0 {
		return nil
	}
	var out []Finding

	var (
		maxRain            float64
		maxTemp            = w.Days[0].TempMaxC
		minTemp            = w.Days[0].TempMinC
		rainDay            time.Time
		frostDay           = w.Days[0].Date
		humidDays, pestRun int
		bestPestRun        int
	)
	for _, d := range w.Days {
		if d.PrecipitationMM > maxRain {
			maxRain, rainDay = d.PrecipitationMM, d.Date
		}
		if d.TempMaxC > maxTemp {
			maxTemp = d.TempMaxC
		}
		if d.TempMinC < minTemp {
			minTemp, frostDay = d.TempMinC, d.Date
		}
		mean := (d.TempMaxC + d.TempMinC) / 2
		if d.HumidityPct >= m.T.HumidDiseasePct && mean >= m.T.DiseaseTempLowC && mean <= m.T.DiseaseTempHighC {
			humidDays++
		}
		if d.HumidityPct >= m.T.PestHumidityPct && mean >= m.T.PestMeanTempC {
			pestRun++
			if pestRun > bestPestRun {
				bestPestRun = pestRun
			}
		} else {
			pestRun = 0
		}
	}

	if maxRain >= m.T.RainMediumMM {
		severity := domain.SeverityMedium
		switch {
		case maxRain >= m.T.RainCriticalMM:
			severity = domain.SeverityCritical
		case maxRain >= m.T.RainHighMM:
			severity = domain.SeverityHigh
		}
		out = append(out, Finding{
			Rule:        RuleHeavyRain,
			RiskType:    domain.RiskTypeWeather,
			Severity:    severity,
			Description: fmt.Sprintf("Heavy rain of %.0f mm forecast%s", maxRain, onDay(rainDay)),
			Mitigation:  "Clear field drains, postpone fertilizer and spray applications, and secure harvested produce",
			Source:      domain.SourceWeather,
		})
	}

	if minTemp <= m.T.FrostMinTempC {
		out = append(out, Finding{
			Rule:        RuleFrost,
			RiskType:    domain.RiskTypeWeather,
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("Night temperature forecast to drop to %.0f°C%s", minTemp, onDay(frostDay)),
			Mitigation:  "Irrigate lightly the evening before and use smoke or mulch to protect seedlings",
			Specificity: domain.RiskTypeWeather.Specificity() + 1,
			Source:      domain.SourceWeather,
		})
	}

	if profile.TempMaxC > 0 && maxTemp > profile.TempMaxC {
		severity := domain.SeverityMedium
		if maxTemp >= profile.TempMaxC+m.T.HeatHighMarginC {
			severity = domain.SeverityHigh
		}
		out = append(out, Finding{
			Rule:        RuleHeatStress,
			RiskType:    domain.RiskTypeWeather,
			Severity:    severity,
			Description: fmt.Sprintf("Forecast high of %.0f°C exceeds the %.0f°C %s tolerates", maxTemp, profile.TempMaxC, profile.Name),
			Mitigation:  "Irrigate in the early morning and avoid field operations during midday heat",
			Source:      domain.SourceWeather,
		})
	}

	if cycle.IrrigationType == domain.IrrigationRainfed && len(w.Days) >= m.T.DrySpellMinDays && w.TotalPrecipitation(0) < m.T.DrySpellMaxMM {
		severity := domain.SeverityMedium
		if maxTemp > profile.TempMaxC && profile.TempMaxC > 0 {
			severity = domain.SeverityHigh
		}
		out = append(out, Finding{
			Rule:        RuleDrySpell,
			RiskType:    domain.RiskTypeIrrigation,
			Severity:    severity,
			Description: fmt.Sprintf("Only %.0f mm of rain forecast over %d days on a rainfed plot", w.TotalPrecipitation(0), len(w.Days)),
			Mitigation:  "Arrange protective irrigation or mulch to conserve soil moisture",
			Source:      domain.SourceWeather,
		})
	}

	if humidDays >= m.T.DiseaseMinDays {
		severity := domain.SeverityMedium
		if humidDays >= m.T.DiseaseHighDays {
			severity = domain.SeverityHigh
		}
		out = append(out, Finding{
			Rule:        RuleDiseasePressure,
			RiskType:    domain.RiskTypeDisease,
			Severity:    severity,
			Description: fmt.Sprintf("%d humid days between %.0f and %.0f°C favour fungal disease", humidDays, m.T.DiseaseTempLowC, m.T.DiseaseTempHighC),
			Mitigation:  "Scout for leaf spots and blast lesions and keep a preventive fungicide ready",
			Source:      domain.SourceWeather,
		})
	}

	if bestPestRun >= m.T.PestMinDays {
		out = append(out, Finding{
			Rule:        RulePestPressure,
			RiskType:    domain.RiskTypePest,
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("%d consecutive warm humid days favour pest build-up", bestPestRun),
			Mitigation:  "Install pheromone traps and scout twice a week",
			Source:      domain.SourceWeather,
		})
	}

	return out
}

func (m *ThresholdModel) market(s *domain.MarketSnapshot) []Finding {
	change := s.ChangePercent()
	if change.GreaterThan(m.T.PriceDropMedium) {
		return nil
	}

	severity := domain.SeverityMedium
	switch {
	case change.LessThanOrEqual(m.T.PriceDropCritical):
		severity = domain.SeverityCritical
	case change.LessThanOrEqual(m.T.PriceDropHigh):
		severity = domain.SeverityHigh
	}
	return []Finding{{
		Rule:        RulePriceDrop,
		RiskType:    domain.RiskTypeMarket,
		Severity:    severity,
		Description: fmt.Sprintf("%s price fell %s%% to %s %s", s.Commodity, change.Abs().StringFixed(1), s.CurrentPrice.StringFixed(2), s.Unit),
		Mitigation:  "Hold stock in storage if possible or compare prices at nearby mandis before selling",
		Source:      domain.SourceMarket,
	}}
}

// upcoming drops forecast days that ended before now
func upcoming(w *domain.WeatherSnapshot, now time.Time) *domain.WeatherSnapshot {
	today := now.Truncate(24 * time.Hour)
	out := *w
	out.Days = make([]domain.DailyForecast, 0, len(w.Days))
	for _, d := range w.Days {
		if d.Date.IsZero() || !d.Date.Before(today) {
			out.Days = append(out.Days, d)
		}
	}
	return &out
}

func onDay(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return " on " + d.Format("2 Jan")
}
