// Package datasource fetches dated weather, market and soil snapshots from pluggable upstream
// sources. Fetches fan out concurrently with per-source and overall timeouts; a failed, late or
// stale source degrades to a missing contribution instead of failing the caller.
package datasource

import (
	"context"
	"time"

	"github.com/osse101/CropCycle_Go/internal/domain"
)

// WeatherQuery identifies a forecast by location and date range
type WeatherQuery struct {
	Latitude  float64
	Longitude float64
	From      time.Time
	To        time.Time
}

// MarketQuery identifies a commodity price reading
type MarketQuery struct {
	Commodity string
	State     string
	District  string
}

// SoilQuery identifies a soil health reading
type SoilQuery struct {
	Pincode string
}

// WeatherSource fetches forecasts. Implementations must return when ctx is done.
type WeatherSource interface {
	FetchWeather(ctx context.Context, q WeatherQuery) (*domain.WeatherSnapshot, error)
}

// MarketSource fetches commodity prices. Implementations must return when ctx is done.
type MarketSource interface {
	FetchMarket(ctx context.Context, q MarketQuery) (*domain.MarketSnapshot, error)
}

// SoilSource fetches soil readings. Implementations must return when ctx is done.
type SoilSource interface {
	FetchSoil(ctx context.Context, q SoilQuery) (*domain.SoilSnapshot, error)
}

// WeatherFunc adapts a function to WeatherSource
type WeatherFunc func(ctx context.Context, q WeatherQuery) (*domain.WeatherSnapshot, error)

// FetchWeather calls f
func (f WeatherFunc) FetchWeather(ctx context.Context, q WeatherQuery) (*domain.WeatherSnapshot, error) {
	return f(ctx, q)
}

// MarketFunc adapts a function to MarketSource
type MarketFunc func(ctx context.Context, q MarketQuery) (*domain.MarketSnapshot, error)

// FetchMarket calls f
func (f MarketFunc) FetchMarket(ctx context.Context, q MarketQuery) (*domain.MarketSnapshot, error) {
	return f(ctx, q)
}

// SoilFunc adapts a function to SoilSource
type SoilFunc func(ctx context.Context, q SoilQuery) (*domain.SoilSnapshot, error)

// FetchSoil calls f
func (f SoilFunc) FetchSoil(ctx context.Context, q SoilQuery) (*domain.SoilSnapshot, error) {
	return f(ctx, q)
}

// Target is one thing snapshots are collected for, usually a crop cycle
type Target struct {
	ID       string
	CropID   string
	Location domain.Location
}

// TargetForCycle builds the fetch target of a crop cycle
func TargetForCycle(c domain.CropCycle) Target {
	return Target{ID: c.ID, CropID: c.CropID, Location: c.Location}
}
