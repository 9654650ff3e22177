package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CropCycle_Go/internal/domain"
)

const testFixtures = `
weather:
  - lat: 12.97
    lon: 77.59
    valid_for_hours: 168
    days:
      - { temp_max_c: 31, temp_min_c: 21, precipitation_mm: 0 }
      - { temp_max_c: 29, temp_min_c: 22, precipitation_mm: 55 }
  - lat: 28.61
    lon: 77.20
    reference: imd-delhi-2026-07-01
    days:
      - { temp_max_c: 41, temp_min_c: 30 }
market:
  - commodity: rice
    state: Karnataka
    current_price: "2050.00"
    previous_price: 2310
  - commodity: rice
    current_price: "1990"
    previous_price: "2000"
soil:
  - pincode: "560001"
    ph: 5.2
  - pincode: "*"
    ph: 6.8
`

func newFixtureSource(t *testing.T) *FixtureSource {
	t.Helper()
	src, err := ParseFixtures([]byte(testFixtures))
	require.NoError(t, err)
	src.now = func() time.Time { return testNow }
	return src
}

func TestFixtureSource_Weather(t *testing.T) {
	src := newFixtureSource(t)

	snap, err := src.FetchWeather(context.Background(), WeatherQuery{Latitude: 13.0, Longitude: 77.6})
	require.NoError(t, err)
	require.Len(t, snap.Days, 2)
	assert.Equal(t, testNow.Truncate(24*time.Hour), snap.Days[0].Date)
	assert.Equal(t, testNow.Truncate(24*time.Hour).AddDate(0, 0, 1), snap.Days[1].Date)
	assert.Equal(t, 55.0, snap.TotalPrecipitation(0))
	assert.Equal(t, testNow.Add(168*time.Hour), snap.ValidUntil)
	assert.Equal(t, domain.SourceWeather, snap.Source)
	assert.NoError(t, ValidateMeta(snap.SnapshotMeta, testNow, time.Hour))

	delhi, err := src.FetchWeather(context.Background(), WeatherQuery{Latitude: 28.6, Longitude: 77.2})
	require.NoError(t, err)
	assert.Equal(t, "imd-delhi-2026-07-01", delhi.Reference)

	_, err = src.FetchWeather(context.Background(), WeatherQuery{Latitude: 0, Longitude: 0})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFixtureSource_Market(t *testing.T) {
	src := newFixtureSource(t)

	ka, err := src.FetchMarket(context.Background(), MarketQuery{Commodity: "RICE", State: "karnataka"})
	require.NoError(t, err)
	assert.Equal(t, "2050", ka.CurrentPrice.String())
	assert.True(t, ka.ChangePercent().IsNegative(), "price fell")

	other, err := src.FetchMarket(context.Background(), MarketQuery{Commodity: "rice", State: "Punjab"})
	require.NoError(t, err)
	assert.Equal(t, "1990", other.CurrentPrice.String(), "stateless fixture matches any state")

	_, err = src.FetchMarket(context.Background(), MarketQuery{Commodity: "cotton"})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFixtureSource_SoilWildcard(t *testing.T) {
	src := newFixtureSource(t)

	exact, err := src.FetchSoil(context.Background(), SoilQuery{Pincode: "560001"})
	require.NoError(t, err)
	assert.Equal(t, 5.2, exact.PH)

	fallback, err := src.FetchSoil(context.Background(), SoilQuery{Pincode: "110001"})
	require.NoError(t, err)
	assert.Equal(t, 6.8, fallback.PH)
	assert.Equal(t, "110001", fallback.Pincode)
}

func TestFixtureSource_HonorsCancelledContext(t *testing.T) {
	src := newFixtureSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FetchSoil(ctx, SoilQuery{Pincode: "560001"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFixtures_DevelopmentFile(t *testing.T) {
	src, err := LoadFixtures(filepath.Join("..", "..", "configs", "snapshots.yaml"))
	require.NoError(t, err)

	g := NewGateway(Config{}, src, src, src)
	res := g.Collect(context.Background(), []Target{{ID: "c1", CropID: "rice", Location: bangalore}}, allKinds)

	assert.Empty(t, res.Unavailable)
	assert.Equal(t, 5.2, res.For("c1").Soil.PH)
	assert.Len(t, res.For("c1").Weather.Days, 7)
}

func TestLoadFixtures_Errors(t *testing.T) {
	_, err := LoadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("weather: [unclosed"), 0o600))
	_, err = LoadFixtures(bad)
	assert.Error(t, err)
}

func TestLoadFixtures_SchemaViolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte("market:\n  - { state: Punjab, current_price: \"10\" }\n"), 0o600))

	_, err := LoadFixtures(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/market/0")
}
