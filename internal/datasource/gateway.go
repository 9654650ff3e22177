package datasource

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/logger"
	"github.com/osse101/CropCycle_Go/internal/metrics"
)

// Config bounds how long and how widely the gateway fetches
type Config struct {
	SourceTimeout  time.Duration
	OverallTimeout time.Duration
	MaxAge         time.Duration
	MaxConcurrent  int
}

func (c Config) withDefaults() Config {
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = DefaultSourceTimeout
	}
	if c.OverallTimeout <= 0 {
		c.OverallTimeout = DefaultOverallTimeout
	}
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultMaxAge
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	return c
}

// Result holds the snapshots collected per target
type Result struct {
	Snapshots map[string]domain.Snapshots
	// Unavailable lists, sorted, the sources with at least one failed, late or stale fetch
	Unavailable []string
}

// For returns the snapshots collected for a target id
func (r *Result) For(id string) domain.Snapshots {
	if r == nil {
		return domain.Snapshots{}
	}
	return r.Snapshots[id]
}

// Gateway fans out snapshot fetches to the configured sources.
// A nil source is treated as always unavailable.
type Gateway struct {
	weather WeatherSource
	market  MarketSource
	soil    SoilSource
	cfg     Config
	now     func() time.Time
}

// NewGateway creates a gateway over the given sources
func NewGateway(cfg Config, weather WeatherSource, market MarketSource, soil SoilSource) *Gateway {
	return &Gateway{
		weather: weather,
		market:  market,
		soil:    soil,
		cfg:     cfg.withDefaults(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// fetchJob is one deduplicated upstream call
type fetchJob struct {
	source string
	key    string
	run    func(ctx context.Context) (any, error)
}

type fetchResult struct {
	source string
	key    string
	value  any
	err    error
}

// Collect fetches the requested snapshot kinds for every target.
// Identical queries are issued once. Collect never returns an error: anything that fails,
// misses the overall deadline or is stale is reported through Result.Unavailable.
func (g *Gateway) Collect(ctx context.Context, targets []Target, opts domain.GenerateOptions) *Result {
	log := logger.FromContext(ctx)
	now := g.now()

	jobs, keysByTarget := g.plan(targets, opts, now)
	collected := make(map[string]fetchResult, len(jobs))

	if len(jobs) > 0 {
		overallCtx, cancel := context.WithTimeout(ctx, g.cfg.OverallTimeout)
		defer cancel()

		results := make(chan fetchResult, len(jobs))
		go func() {
			var eg errgroup.Group
			eg.SetLimit(g.cfg.MaxConcurrent)
			for _, job := range jobs {
				job := job
				eg.Go(func() error {
					fetchCtx, cancelFetch := context.WithTimeout(overallCtx, g.cfg.SourceTimeout)
					defer cancelFetch()
					value, err := job.run(fetchCtx)
					results <- fetchResult{source: job.source, key: job.key, value: value, err: err}
					return nil
				})
			}
			_ = eg.Wait()
		}()

	wait:
		for pending := len(jobs); pending > 0; pending-- {
			select {
			case r := <-results:
				collected[r.key] = r
			case <-overallCtx.Done():
				log.Warn(LogMsgFetchAbandoned, "pending", pending, "timeout", g.cfg.OverallTimeout)
				break wait
			}
		}
	}

	unavailable := make(map[string]bool)
	for _, job := range jobs {
		r, ok := collected[job.key]
		if !ok {
			r = fetchResult{source: job.source, key: job.key, err: fmt.Errorf("%w: %s fetch did not finish in time", domain.ErrUpstreamUnavailable, job.source)}
			collected[job.key] = r
		}
		if r.err == nil {
			r.err = g.checkFresh(r.value, now)
			collected[job.key] = r
		}
		if r.err != nil {
			unavailable[job.source] = true
			metrics.SourceFetchFailures.WithLabelValues(job.source).Inc()
			log.Warn(LogMsgFetchFailed, "source", job.source, "query", job.key, "error", r.err)
		}
	}

	out := &Result{Snapshots: make(map[string]domain.Snapshots, len(targets))}
	for _, t := range targets {
		var snaps domain.Snapshots
		keys := keysByTarget[t.ID]
		if r, ok := collected[keys.weather]; ok && r.err == nil {
			snaps.Weather, _ = r.value.(*domain.WeatherSnapshot)
		}
		if r, ok := collected[keys.market]; ok && r.err == nil {
			snaps.Market, _ = r.value.(*domain.MarketSnapshot)
		}
		if r, ok := collected[keys.soil]; ok && r.err == nil {
			snaps.Soil, _ = r.value.(*domain.SoilSnapshot)
		}
		out.Snapshots[t.ID] = snaps
	}
	for source := range unavailable {
		out.Unavailable = append(out.Unavailable, source)
	}
	sort.Strings(out.Unavailable)
	return out
}

type targetKeys struct {
	weather, market, soil string
}

// plan builds one job per distinct query and remembers which query serves which target
func (g *Gateway) plan(targets []Target, opts domain.GenerateOptions, now time.Time) ([]fetchJob, map[string]targetKeys) {
	var jobs []fetchJob
	seen := make(map[string]bool)
	keysByTarget := make(map[string]targetKeys, len(targets))

	add := func(job fetchJob) string {
		if !seen[job.key] {
			seen[job.key] = true
			jobs = append(jobs, job)
		}
		return job.key
	}

	from := now.Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, ForecastDays)

	for _, t := range targets {
		var keys targetKeys
		if opts.IncludeWeather {
			q := WeatherQuery{
				Latitude:  roundCoordinate(t.Location.Latitude),
				Longitude: roundCoordinate(t.Location.Longitude),
				From:      from,
				To:        to,
			}
			keys.weather = add(g.weatherJob(q))
		}
		if opts.IncludeMarket && t.CropID != "" {
			q := MarketQuery{
				Commodity: strings.ToLower(t.CropID),
				State:     strings.ToLower(t.Location.State),
				District:  strings.ToLower(t.Location.District),
			}
			keys.market = add(g.marketJob(q))
		}
		if opts.IncludeSoil && t.Location.Pincode != "" {
			keys.soil = add(g.soilJob(SoilQuery{Pincode: t.Location.Pincode}))
		}
		keysByTarget[t.ID] = keys
	}
	return jobs, keysByTarget
}

func (g *Gateway) weatherJob(q WeatherQuery) fetchJob {
	return fetchJob{
		source: domain.SourceWeather,
		key:    fmt.Sprintf("weather:%.2f,%.2f:%s", q.Latitude, q.Longitude, q.From.Format(time.DateOnly)),
		run: func(ctx context.Context) (any, error) {
			if g.weather == nil {
				return nil, fmt.Errorf("%w: no weather source configured", domain.ErrUpstreamUnavailable)
			}
			snap, err := g.weather.FetchWeather(ctx, q)
			return snap, wrapUpstream(err)
		},
	}
}

func (g *Gateway) marketJob(q MarketQuery) fetchJob {
	return fetchJob{
		source: domain.SourceMarket,
		key:    fmt.Sprintf("market:%s:%s:%s", q.Commodity, q.State, q.District),
		run: func(ctx context.Context) (any, error) {
			if g.market == nil {
				return nil, fmt.Errorf("%w: no market source configured", domain.ErrUpstreamUnavailable)
			}
			snap, err := g.market.FetchMarket(ctx, q)
			return snap, wrapUpstream(err)
		},
	}
}

func (g *Gateway) soilJob(q SoilQuery) fetchJob {
	return fetchJob{
		source: domain.SourceSoil,
		key:    "soil:" + q.Pincode,
		run: func(ctx context.Context) (any, error) {
			if g.soil == nil {
				return nil, fmt.Errorf("%w: no soil source configured", domain.ErrUpstreamUnavailable)
			}
			snap, err := g.soil.FetchSoil(ctx, q)
			return snap, wrapUpstream(err)
		},
	}
}

// checkFresh validates a fetched snapshot's metadata against the staleness rules
func (g *Gateway) checkFresh(value any, now time.Time) error {
	var meta *domain.SnapshotMeta
	switch s := value.(type) {
	case *domain.WeatherSnapshot:
		if s != nil {
			meta = &s.SnapshotMeta
		}
	case *domain.MarketSnapshot:
		if s != nil {
			meta = &s.SnapshotMeta
		}
	case *domain.SoilSnapshot:
		if s != nil {
			meta = &s.SnapshotMeta
		}
	}
	if meta == nil {
		return fmt.Errorf("%w: source returned no snapshot", domain.ErrUpstreamUnavailable)
	}
	return ValidateMeta(*meta, now, g.cfg.MaxAge)
}

// ValidateMeta rejects snapshots without a reference, with an empty validity window,
// fetched longer than maxAge ago, or already past their validity window
func ValidateMeta(meta domain.SnapshotMeta, now time.Time, maxAge time.Duration) error {
	switch {
	case strings.TrimSpace(meta.Reference) == "":
		return fmt.Errorf("%w: snapshot has no reference", domain.ErrUpstreamUnavailable)
	case !meta.ValidUntil.After(meta.ValidFrom):
		return fmt.Errorf("%w: snapshot validity window is empty", domain.ErrUpstreamUnavailable)
	case maxAge > 0 && now.Sub(meta.FetchedAt) > maxAge:
		return fmt.Errorf("%w: snapshot %s fetched %s ago", domain.ErrUpstreamUnavailable, meta.Reference, now.Sub(meta.FetchedAt).Round(time.Minute))
	case !now.Before(meta.ValidUntil):
		return fmt.Errorf("%w: snapshot %s expired at %s", domain.ErrUpstreamUnavailable, meta.Reference, meta.ValidUntil.Format(time.RFC3339))
	}
	return nil
}

func wrapUpstream(err error) error {
	if err == nil || errors.Is(err, domain.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
}

func roundCoordinate(v float64) float64 {
	return math.Round(v*coordinatePrecision) / coordinatePrecision
}
