package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot source kinds
const (
	SourceWeather = "weather"
	SourceMarket  = "market"
	SourceSoil    = "soil"
)

// SnapshotMeta describes where a reading came from and how long it is valid
type SnapshotMeta struct {
	Source     string    `json:"source" yaml:"source"`
	Reference  string    `json:"reference" yaml:"reference"`
	FetchedAt  time.Time `json:"fetched_at" yaml:"fetched_at"`
	ValidFrom  time.Time `json:"valid_from" yaml:"valid_from"`
	ValidUntil time.Time `json:"valid_until" yaml:"valid_until"`
}

// DailyForecast is one day of a weather forecast
type DailyForecast struct {
	Date            time.Time `json:"date" yaml:"date"`
	TempMaxC        float64   `json:"temp_max_c" yaml:"temp_max_c"`
	TempMinC        float64   `json:"temp_min_c" yaml:"temp_min_c"`
	PrecipitationMM float64   `json:"precipitation_mm" yaml:"precipitation_mm"`
	PrecipChance    float64   `json:"precip_chance" yaml:"precip_chance"`
	HumidityPct     float64   `json:"humidity_pct" yaml:"humidity_pct"`
	WindKPH         float64   `json:"wind_kph" yaml:"wind_kph"`
}

// WeatherSnapshot is a dated forecast for a location
type WeatherSnapshot struct {
	SnapshotMeta `yaml:",inline"`
	Latitude     float64         `json:"lat" yaml:"lat"`
	Longitude    float64         `json:"lon" yaml:"lon"`
	Days         []DailyForecast `json:"days" yaml:"days"`
}

// TotalPrecipitation sums forecast rainfall over the first n days (all days when n <= 0)
func (w *WeatherSnapshot) TotalPrecipitation(n int) float64 {
	var total float64
	for i, d := range w.Days {
		if n > 0 && i >= n {
			break
		}
		total += d.PrecipitationMM
	}
	return total
}

// MarketSnapshot is a dated commodity price reading
type MarketSnapshot struct {
	SnapshotMeta  `yaml:",inline"`
	Commodity     string          `json:"commodity" yaml:"commodity"`
	State         string          `json:"state" yaml:"state"`
	District      string          `json:"district,omitempty" yaml:"district"`
	Unit          string          `json:"unit" yaml:"unit"`
	CurrentPrice  decimal.Decimal `json:"current_price" yaml:"current_price"`
	PreviousPrice decimal.Decimal `json:"previous_price" yaml:"previous_price"`
}

// ChangePercent returns the price change from the previous reading as a percentage
func (m *MarketSnapshot) ChangePercent() decimal.Decimal {
	if m.PreviousPrice.IsZero() {
		return decimal.Zero
	}
	return m.CurrentPrice.Sub(m.PreviousPrice).Div(m.PreviousPrice).Mul(decimal.NewFromInt(100))
}

// SoilSnapshot is a dated soil health reading for a pincode
type SoilSnapshot struct {
	SnapshotMeta     `yaml:",inline"`
	Pincode          string  `json:"pincode" yaml:"pincode"`
	PH               float64 `json:"ph" yaml:"ph"`
	OrganicCarbonPct float64 `json:"organic_carbon_pct" yaml:"organic_carbon_pct"`
	NitrogenKgHa     float64 `json:"nitrogen_kg_ha" yaml:"nitrogen_kg_ha"`
	PhosphorusKgHa   float64 `json:"phosphorus_kg_ha" yaml:"phosphorus_kg_ha"`
	PotassiumKgHa    float64 `json:"potassium_kg_ha" yaml:"potassium_kg_ha"`
	MoisturePct      float64 `json:"moisture_pct" yaml:"moisture_pct"`
	ECdSm            float64 `json:"ec_ds_m" yaml:"ec_ds_m"`
}

// Snapshots bundles the readings available for one crop cycle; nil means unavailable
type Snapshots struct {
	Weather *WeatherSnapshot `json:"weather,omitempty"`
	Market  *MarketSnapshot  `json:"market,omitempty"`
	Soil    *SoilSnapshot    `json:"soil,omitempty"`
}
