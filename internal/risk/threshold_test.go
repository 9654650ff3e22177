package risk

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/domain"
)

var testNow = time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)

func riceProfile(t *testing.T) *crops.Profile {
	t.Helper()
	catalog, err := crops.Default()
	require.NoError(t, err)
	p, ok := catalog.Profile("rice")
	require.True(t, ok)
	return p
}

func riceCycle(irrigation domain.IrrigationType) domain.CropCycle {
	return domain.CropCycle{
		ID:             "c1",
		ClientID:       "farmer",
		CropID:         "rice",
		Season:         domain.SeasonKharif,
		IrrigationType: irrigation,
		Status:         domain.CycleStatusActive,
	}
}

// forecast builds n identical days starting at testNow
func forecast(n int, day domain.DailyForecast) *domain.WeatherSnapshot {
	w := &domain.WeatherSnapshot{}
	for i := 0; i < n; i++ {
		d := day
		d.Date = testNow.AddDate(0, 0, i)
		w.Days = append(w.Days, d)
	}
	return w
}

func findingFor(findings []Finding, rule string) (Finding, bool) {
	for _, f := range findings {
		if f.Rule == rule {
			return f, true
		}
	}
	return Finding{}, false
}

func TestThresholdModel_SoilPH(t *testing.T) {
	profile := riceProfile(t)
	m := NewThresholdModel()

	tests := []struct {
		name     string
		ph       float64
		want     domain.Severity
		wantNone bool
	}{
		{name: "inside range", ph: 6.5, wantNone: true},
		{name: "slightly acidic", ph: 5.4, want: domain.SeverityMedium},
		{name: "acidic", ph: 5.2, want: domain.SeverityHigh},
		{name: "strongly acidic", ph: 4.5, want: domain.SeverityCritical},
		{name: "alkaline", ph: 8.0, want: domain.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snaps := domain.Snapshots{Soil: &domain.SoilSnapshot{PH: tt.ph}}
			findings := m.Evaluate(riceCycle(domain.IrrigationCanal), profile, snaps, testNow)
			if tt.wantNone {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, domain.RiskTypeSoil, findings[0].RiskType)
			assert.Equal(t, tt.want, findings[0].Severity)
		})
	}
}

func TestThresholdModel_SoilMitigationDependsOnDirection(t *testing.T) {
	profile := riceProfile(t)
	m := NewThresholdModel()

	acid := m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Soil: &domain.SoilSnapshot{PH: 5.2}}, testNow)
	require.Len(t, acid, 1)
	assert.Contains(t, acid[0].Mitigation, "lime")

	alkaline := m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Soil: &domain.SoilSnapshot{PH: 8.2}}, testNow)
	require.Len(t, alkaline, 1)
	assert.Contains(t, alkaline[0].Mitigation, "gypsum")
}

func TestThresholdModel_Rain(t *testing.T) {
	profile := riceProfile(t)
	m := NewThresholdModel()
	mild := domain.DailyForecast{TempMaxC: 30, TempMinC: 22, HumidityPct: 60}

	tests := []struct {
		mm   float64
		want domain.Severity
	}{
		{mm: 30, want: domain.SeverityMedium},
		{mm: 60, want: domain.SeverityHigh},
		{mm: 120, want: domain.SeverityCritical},
	}
	for _, tt := range tests {
		w := forecast(7, mild)
		w.Days[3].PrecipitationMM = tt.mm
		findings := m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Weather: w}, testNow)
		f, ok := findingFor(findings, RuleHeavyRain)
		require.True(t, ok, "%.0f mm", tt.mm)
		assert.Equal(t, tt.want, f.Severity)
		assert.Contains(t, f.Description, "4 Jul")
	}

	dry := forecast(7, mild)
	dry.Days[0].PrecipitationMM = 10
	_, ok := findingFor(m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Weather: dry}, testNow), RuleHeavyRain)
	assert.False(t, ok)
}

func TestThresholdModel_DrySpellOnlyForRainfed(t *testing.T) {
	profile := riceProfile(t)
	m := NewThresholdModel()
	w := forecast(7, domain.DailyForecast{TempMaxC: 33, TempMinC: 24, HumidityPct: 50})

	_, ok := findingFor(m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Weather: w}, testNow), RuleDrySpell)
	assert.False(t, ok, "irrigated plots are not at dry-spell risk")

	f, ok := findingFor(m.Evaluate(riceCycle(domain.IrrigationRainfed), profile, domain.Snapshots{Weather: w}, testNow), RuleDrySpell)
	require.True(t, ok)
	assert.Equal(t, domain.RiskTypeIrrigation, f.RiskType)
	assert.Equal(t, domain.SeverityMedium, f.Severity)

	hot := forecast(7, domain.DailyForecast{TempMaxC: 37, TempMinC: 26, HumidityPct: 40})
	f, ok = findingFor(m.Evaluate(riceCycle(domain.IrrigationRainfed), profile, domain.Snapshots{Weather: hot}, testNow), RuleDrySpell)
	require.True(t, ok)
	assert.Equal(t, domain.SeverityHigh, f.Severity)
}

func TestThresholdModel_HeatAndFrost(t *testing.T) {
	profile := riceProfile(t)
	m := NewThresholdModel()

	w := forecast(5, domain.DailyForecast{TempMaxC: 30, TempMinC: 20, PrecipitationMM: 8})
	w.Days[2].TempMaxC = 41
	f, ok := findingFor(m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Weather: w}, testNow), RuleHeatStress)
	require.True(t, ok)
	assert.Equal(t, domain.SeverityHigh, f.Severity)

	w.Days[2].TempMaxC = 36
	f, ok = findingFor(m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Weather: w}, testNow), RuleHeatStress)
	require.True(t, ok)
	assert.Equal(t, domain.SeverityMedium, f.Severity)

	w.Days[4].TempMinC = 1
	f, ok = findingFor(m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Weather: w}, testNow), RuleFrost)
	require.True(t, ok)
	assert.Equal(t, domain.SeverityHigh, f.Severity)
}

func TestThresholdModel_DiseaseAndPest(t *testing.T) {
	profile := riceProfile(t)
	m := NewThresholdModel()

	humid := forecast(7, domain.DailyForecast{TempMaxC: 30, TempMinC: 22, HumidityPct: 90, PrecipitationMM: 8})
	findings := m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Weather: humid}, testNow)

	disease, ok := findingFor(findings, RuleDiseasePressure)
	require.True(t, ok)
	assert.Equal(t, domain.SeverityHigh, disease.Severity)
	assert.Equal(t, domain.RiskTypeDisease, disease.RiskType)

	pest, ok := findingFor(findings, RulePestPressure)
	require.True(t, ok)
	assert.Equal(t, domain.RiskTypePest, pest.RiskType)

	humid.Days = humid.Days[:3]
	disease, ok = findingFor(m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Weather: humid}, testNow), RuleDiseasePressure)
	require.True(t, ok)
	assert.Equal(t, domain.SeverityMedium, disease.Severity)
}

func TestThresholdModel_PriceDrop(t *testing.T) {
	profile := riceProfile(t)
	m := NewThresholdModel()

	tests := []struct {
		current  string
		want     domain.Severity
		wantNone bool
	}{
		{current: "2050", wantNone: true},
		{current: "1800", want: domain.SeverityMedium},
		{current: "1500", want: domain.SeverityHigh},
		{current: "1200", want: domain.SeverityCritical},
		{current: "2500", wantNone: true},
	}
	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			snap := &domain.MarketSnapshot{
				Commodity:     "rice",
				Unit:          "INR/quintal",
				CurrentPrice:  decimal.RequireFromString(tt.current),
				PreviousPrice: decimal.NewFromInt(2100),
			}
			findings := m.Evaluate(riceCycle(domain.IrrigationCanal), profile, domain.Snapshots{Market: snap}, testNow)
			if tt.wantNone {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, domain.RiskTypeMarket, findings[0].RiskType)
			assert.Equal(t, tt.want, findings[0].Severity)
		})
	}
}

func TestThresholdModel_NoSnapshotsNoFindings(t *testing.T) {
	m := NewThresholdModel()
	assert.Empty(t, m.Evaluate(riceCycle(domain.IrrigationRainfed), riceProfile(t), domain.Snapshots{}, testNow))
}

func TestThresholdModel_IgnoresPastForecastDays(t *testing.T) {
	m := NewThresholdModel()
	w := forecast(3, domain.DailyForecast{TempMaxC: 30, TempMinC: 22, PrecipitationMM: 5})
	w.Days[0].Date = testNow.AddDate(0, 0, -2)
	w.Days[0].PrecipitationMM = 150

	_, ok := findingFor(m.Evaluate(riceCycle(domain.IrrigationCanal), riceProfile(t), domain.Snapshots{Weather: w}, testNow), RuleHeavyRain)
	assert.False(t, ok)
}
