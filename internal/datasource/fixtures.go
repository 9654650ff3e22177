package datasource

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/validation"
)

// Fixtures is the YAML document served by FixtureSource.
// Entries with zero timestamps are stamped relative to the fetch time using ValidForHours,
// so a checked-in fixture file never goes stale.
type Fixtures struct {
	Weather []WeatherFixture `yaml:"weather"`
	Market  []MarketFixture  `yaml:"market"`
	Soil    []SoilFixture    `yaml:"soil"`
}

// WeatherFixture is a forecast served for coordinates within RadiusDeg
type WeatherFixture struct {
	domain.WeatherSnapshot `yaml:",inline"`
	RadiusDeg              float64 `yaml:"radius_deg"`
	ValidForHours          int     `yaml:"valid_for_hours"`
}

// MarketFixture is a price reading; an empty State matches every state
type MarketFixture struct {
	domain.MarketSnapshot `yaml:",inline"`
	ValidForHours         int `yaml:"valid_for_hours"`
}

// SoilFixture is a soil reading; pincode "*" matches every pincode
type SoilFixture struct {
	domain.SoilSnapshot `yaml:",inline"`
	ValidForHours       int `yaml:"valid_for_hours"`
}

const (
	defaultFixtureRadiusDeg = 0.5
	defaultFixtureValidFor  = 24
	wildcardPincode         = "*"
)

// FixtureSource serves snapshots from a YAML file; it implements all three source interfaces
type FixtureSource struct {
	fixtures Fixtures
	now      func() time.Time
}

// LoadFixtures reads a fixtures file
func LoadFixtures(path string) (*FixtureSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot fixtures: %w", err)
	}
	if err := validation.Default().ValidateYAML(data, validation.SchemaSnapshotFixtures); err != nil {
		return nil, fmt.Errorf("invalid snapshot fixtures %s: %w", path, err)
	}
	return ParseFixtures(data)
}

// ParseFixtures parses a fixtures document
func ParseFixtures(data []byte) (*FixtureSource, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot fixtures: %w", err)
	}
	return &FixtureSource{fixtures: f, now: func() time.Time { return time.Now().UTC() }}, nil
}

// FetchWeather returns the closest forecast within its fixture radius
func (s *FixtureSource) FetchWeather(ctx context.Context, q WeatherQuery) (*domain.WeatherSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var best *WeatherFixture
	bestDist := math.MaxFloat64
	for i := range s.fixtures.Weather {
		f := &s.fixtures.Weather[i]
		radius := f.RadiusDeg
		if radius <= 0 {
			radius = defaultFixtureRadiusDeg
		}
		d := math.Max(math.Abs(f.Latitude-q.Latitude), math.Abs(f.Longitude-q.Longitude))
		if d <= radius && d < bestDist {
			best, bestDist = f, d
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no weather fixture near %.2f,%.2f", domain.ErrUpstreamUnavailable, q.Latitude, q.Longitude)
	}

	snap := best.WeatherSnapshot
	now := s.now()
	snap.SnapshotMeta = s.stamp(snap.SnapshotMeta, domain.SourceWeather, best.ValidForHours, now)
	snap.Days = make([]domain.DailyForecast, len(best.Days))
	day := now.Truncate(24 * time.Hour)
	for i, d := range best.Days {
		if d.Date.IsZero() {
			d.Date = day.AddDate(0, 0, i)
		}
		snap.Days[i] = d
	}
	return &snap, nil
}

// FetchMarket returns the first reading for the commodity in the query's state
func (s *FixtureSource) FetchMarket(ctx context.Context, q MarketQuery) (*domain.MarketSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, f := range s.fixtures.Market {
		if !strings.EqualFold(f.Commodity, q.Commodity) {
			continue
		}
		if f.State != "" && !strings.EqualFold(f.State, q.State) {
			continue
		}
		snap := f.MarketSnapshot
		snap.SnapshotMeta = s.stamp(snap.SnapshotMeta, domain.SourceMarket, f.ValidForHours, s.now())
		return &snap, nil
	}
	return nil, fmt.Errorf("%w: no market fixture for %s in %s", domain.ErrUpstreamUnavailable, q.Commodity, q.State)
}

// FetchSoil returns the reading for the query's pincode, or the wildcard reading
func (s *FixtureSource) FetchSoil(ctx context.Context, q SoilQuery) (*domain.SoilSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var wildcard *SoilFixture
	for i := range s.fixtures.Soil {
		f := &s.fixtures.Soil[i]
		if f.Pincode == q.Pincode {
			return s.soilSnapshot(f), nil
		}
		if f.Pincode == wildcardPincode && wildcard == nil {
			wildcard = f
		}
	}
	if wildcard != nil {
		snap := s.soilSnapshot(wildcard)
		snap.Pincode = q.Pincode
		return snap, nil
	}
	return nil, fmt.Errorf("%w: no soil fixture for pincode %s", domain.ErrUpstreamUnavailable, q.Pincode)
}

func (s *FixtureSource) soilSnapshot(f *SoilFixture) *domain.SoilSnapshot {
	snap := f.SoilSnapshot
	snap.SnapshotMeta = s.stamp(snap.SnapshotMeta, domain.SourceSoil, f.ValidForHours, s.now())
	return &snap
}

// stamp fills in missing metadata relative to now
func (s *FixtureSource) stamp(meta domain.SnapshotMeta, source string, validForHours int, now time.Time) domain.SnapshotMeta {
	if meta.Source == "" {
		meta.Source = source
	}
	if meta.Reference == "" {
		meta.Reference = fmt.Sprintf("fixture:%s:%d", source, now.Unix())
	}
	if meta.FetchedAt.IsZero() {
		meta.FetchedAt = now
	}
	if meta.ValidFrom.IsZero() {
		meta.ValidFrom = now
	}
	if meta.ValidUntil.IsZero() {
		if validForHours <= 0 {
			validForHours = defaultFixtureValidFor
		}
		meta.ValidUntil = meta.ValidFrom.Add(time.Duration(validForHours) * time.Hour)
	}
	return meta
}
