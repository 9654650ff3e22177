package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CropCycle_Go/internal/cropcycle"
	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/database/memory"
	"github.com/osse101/CropCycle_Go/internal/datasource"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/event"
	"github.com/osse101/CropCycle_Go/internal/risk"
)

// harness wires the engine to a real crop-cycle store, risk assessor and gateway over counting sources
type harness struct {
	svc    *service
	cycles cropcycle.Service
	cache  *MemoryCache
	epochs *Epochs
	bus    *event.MemoryBus

	weatherCalls atomic.Int32
	marketCalls  atomic.Int32
	soilCalls    atomic.Int32

	weatherDelay time.Duration
	weatherErr   error
	soil         domain.SoilSnapshot
}

func freshMeta(kind, ref string) domain.SnapshotMeta {
	now := time.Now().UTC()
	return domain.SnapshotMeta{Source: kind, Reference: ref, FetchedAt: now, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(7 * 24 * time.Hour)}
}

// acidSoil is the rice pH scenario: only pH is out of line
func acidSoil() domain.SoilSnapshot {
	return domain.SoilSnapshot{
		Pincode:          "560001",
		PH:               5.2,
		OrganicCarbonPct: 0.6,
		NitrogenKgHa:     300,
		PhosphorusKgHa:   20,
		PotassiumKgHa:    150,
		ECdSm:            0.5,
	}
}

func newHarness(t *testing.T, cfg Config, advisor AdvisoryModel) *harness {
	t.Helper()
	catalog, err := crops.Default()
	require.NoError(t, err)

	h := &harness{bus: event.NewMemoryBus(), soil: acidSoil()}
	h.cycles = cropcycle.NewService(memory.NewCropCycleRepository(), catalog, h.bus)

	weather := datasource.WeatherFunc(func(ctx context.Context, q datasource.WeatherQuery) (*domain.WeatherSnapshot, error) {
		h.weatherCalls.Add(1)
		if h.weatherDelay > 0 {
			select {
			case <-time.After(h.weatherDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if h.weatherErr != nil {
			return nil, h.weatherErr
		}
		snap := &domain.WeatherSnapshot{SnapshotMeta: freshMeta(domain.SourceWeather, "wx-1"), Latitude: q.Latitude, Longitude: q.Longitude}
		today := time.Now().UTC().Truncate(24 * time.Hour)
		for i := 0; i < 7; i++ {
			snap.Days = append(snap.Days, domain.DailyForecast{Date: today.AddDate(0, 0, i), TempMaxC: 30, TempMinC: 22, PrecipitationMM: 3, HumidityPct: 60})
		}
		return snap, nil
	})
	market := datasource.MarketFunc(func(ctx context.Context, q datasource.MarketQuery) (*domain.MarketSnapshot, error) {
		h.marketCalls.Add(1)
		return nil, errors.New("market feed down")
	})
	soil := datasource.SoilFunc(func(ctx context.Context, q datasource.SoilQuery) (*domain.SoilSnapshot, error) {
		h.soilCalls.Add(1)
		snap := h.soil
		snap.SnapshotMeta = freshMeta(domain.SourceSoil, "soil-"+q.Pincode)
		return &snap, nil
	})

	h.cache = NewMemoryCache(100, time.Hour)
	h.epochs = NewEpochs()
	h.svc = NewService(Deps{
		Cycles:   h.cycles,
		Assessor: risk.NewAssessor(nil, catalog, h.cycles),
		Gateway:  datasource.NewGateway(datasource.Config{}, weather, market, soil),
		Catalog:  catalog,
		Advisor:  advisor,
		Cache:    h.cache,
		Epochs:   h.epochs,
	}, cfg).(*service)
	return h
}

func (h *harness) activeRiceCycle(t *testing.T, clientID string) *domain.CropCycle {
	t.Helper()
	ctx := context.Background()
	cycle, err := h.cycles.CreateCycle(ctx, cropcycle.CreateCycleRequest{
		ClientID:       clientID,
		CropID:         "rice",
		StartDate:      time.Now().UTC().AddDate(0, 0, -20),
		Season:         domain.SeasonKharif,
		Location:       domain.Location{Pincode: "560001", Latitude: 12.97, Longitude: 77.59, State: "Karnataka"},
		IrrigationType: domain.IrrigationCanal,
		AreaAcres:      2,
	})
	require.NoError(t, err)
	cycle, err = h.cycles.Activate(ctx, clientID, cycle.ID)
	require.NoError(t, err)
	return cycle
}

func countType(recs []domain.Recommendation, recType domain.RecommendationType) int {
	n := 0
	for _, r := range recs {
		if r.Type == recType {
			n++
		}
	}
	return n
}

func TestGenerate_RiceAcidSoilScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	cycle := h.activeRiceCycle(t, "farmer")

	result, err := h.svc.Generate(ctx, "farmer", domain.GenerateOptions{IncludeSoil: true})
	require.NoError(t, err)

	require.Equal(t, 1, countType(result.Recommendations, domain.RecommendationSoilImprovement))
	assert.Zero(t, countType(result.Recommendations, domain.RecommendationMarketAction))
	assert.Zero(t, h.marketCalls.Load(), "market data was not requested")

	soil := result.Recommendations[0]
	assert.Equal(t, domain.RecommendationSoilImprovement, soil.Type)
	assert.GreaterOrEqual(t, soil.Priority.Rank(), domain.PriorityHigh.Rank())
	assert.Equal(t, "farmer", soil.ClientID)
	assert.Equal(t, cycle.ID, soil.CycleID)
	assert.NotEmpty(t, soil.ID)
	assert.Equal(t, "soil-560001", soil.DataSources[domain.SourceSoil])
	assert.NotNil(t, soil.ExpiresAt)
	assert.Empty(t, result.UnavailableSources)

	alerts, err := h.cycles.ListRisks(ctx, "farmer", cycle.ID, false)
	require.NoError(t, err)
	require.Len(t, alerts, 1, "the assessed risk is stored as an open alert")
	assert.Equal(t, domain.RiskTypeSoil, alerts[0].RiskType)
}

func TestGenerate_ConcurrentCallsShareOneRun(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping slow single-flight test in short mode")
	}
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	h.weatherDelay = 2 * time.Second
	h.activeRiceCycle(t, "farmer")

	opts := domain.GenerateOptions{IncludeWeather: true}
	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]*domain.GenerationResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = h.svc.Generate(ctx, "farmer", opts)
		}(i)
	}
	close(start)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), h.weatherCalls.Load())
	assert.Equal(t, results[0], results[1])
}

func TestGenerate_IdempotentWithinTTL(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	h.activeRiceCycle(t, "farmer")
	opts := domain.GenerateOptions{IncludeWeather: true, IncludeSoil: true}

	first, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	second, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)

	a, err := json.Marshal(first.Recommendations)
	require.NoError(t, err)
	b, err := json.Marshal(second.Recommendations)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)
	assert.Equal(t, int32(1), h.weatherCalls.Load())
	assert.Equal(t, int32(1), h.soilCalls.Load())

	// Mutating a returned result does not leak into the cache
	second.Recommendations[0].Title = "changed"
	third, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", third.Recommendations[0].Title)
}

func TestGenerate_RefreshBypassesCacheAndWritesThrough(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	h.activeRiceCycle(t, "farmer")
	opts := domain.GenerateOptions{IncludeSoil: true}

	first, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)

	opts.Refresh = true
	refreshed, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	assert.Equal(t, int32(2), h.soilCalls.Load())
	assert.NotEqual(t, first.Recommendations[0].ID, refreshed.Recommendations[0].ID)

	opts.Refresh = false
	cached, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	assert.Equal(t, int32(2), h.soilCalls.Load())
	assert.Equal(t, refreshed.Recommendations[0].ID, cached.Recommendations[0].ID)
}

func TestGenerate_CacheExpiry(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{CacheTTL: time.Minute}, nil)
	clock := &fakeClock{t: time.Now().UTC()}
	h.cache.now = clock.Now
	h.activeRiceCycle(t, "farmer")
	opts := domain.GenerateOptions{IncludeSoil: true}

	_, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	_, err = h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.soilCalls.Load())

	clock.Advance(time.Minute)
	_, err = h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	assert.Equal(t, int32(2), h.soilCalls.Load())
}

func TestGenerate_DifferentOptionsMissTheCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	h.activeRiceCycle(t, "farmer")

	_, err := h.svc.Generate(ctx, "farmer", domain.GenerateOptions{IncludeSoil: true})
	require.NoError(t, err)
	_, err = h.svc.Generate(ctx, "farmer", domain.GenerateOptions{IncludeSoil: true, IncludeWeather: true})
	require.NoError(t, err)
	assert.Equal(t, int32(2), h.soilCalls.Load())
}

func TestGenerate_ExpiredDraftsAreExcluded(t *testing.T) {
	ctx := context.Background()
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)
	advisor := AdvisoryFunc(func(in Input) []domain.Recommendation {
		return []domain.Recommendation{
			{Title: "Stale advice", Type: domain.RecommendationIrrigation, Priority: domain.PriorityCritical, ExpiresAt: &past},
			{Title: "Current advice", Type: domain.RecommendationIrrigation, Priority: domain.PriorityLow, ExpiresAt: &future},
		}
	})
	h := newHarness(t, Config{}, advisor)
	h.soil.PH = 6.5
	h.activeRiceCycle(t, "farmer")

	result, err := h.svc.Generate(ctx, "farmer", domain.GenerateOptions{IncludeSoil: true})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "Current advice", result.Recommendations[0].Title)
}

func TestGenerate_FailingSourceDegrades(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	h.weatherErr = errors.New("forecast API returned 503")
	h.activeRiceCycle(t, "farmer")

	result, err := h.svc.Generate(ctx, "farmer", domain.AllSources())
	require.NoError(t, err)
	assert.Equal(t, []string{domain.SourceMarket, domain.SourceWeather}, result.UnavailableSources)
	assert.Equal(t, 1, countType(result.Recommendations, domain.RecommendationSoilImprovement))
}

func TestGenerate_AllSourcesDownIsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	h.weatherErr = errors.New("down")
	h.activeRiceCycle(t, "farmer")

	result, err := h.svc.Generate(ctx, "farmer", domain.GenerateOptions{IncludeWeather: true, IncludeMarket: true})
	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
	assert.NotNil(t, result.Recommendations)
}

func TestGenerate_ClientErrors(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)

	_, err := h.svc.Generate(ctx, "  ", domain.AllSources())
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.svc.Generate(ctx, "nobody", domain.AllSources())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestGenerate_NoActiveCyclesIsEmpty(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	_, err := h.cycles.CreateCycle(ctx, cropcycle.CreateCycleRequest{
		ClientID:       "farmer",
		CropID:         "rice",
		StartDate:      time.Now().UTC().AddDate(0, 0, 10),
		Season:         domain.SeasonKharif,
		IrrigationType: domain.IrrigationCanal,
		AreaAcres:      1,
	})
	require.NoError(t, err)

	result, err := h.svc.Generate(ctx, "farmer", domain.AllSources())
	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
	assert.Zero(t, h.soilCalls.Load())
}

func TestGenerate_CycleChangesInvalidateCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	NewInvalidator(h.cache, h.epochs).Register(h.bus)
	cycle := h.activeRiceCycle(t, "farmer")
	opts := domain.GenerateOptions{IncludeSoil: true}

	_, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	_, ok := h.cache.Get(ctx, "farmer")
	require.True(t, ok, "generation raised a risk but the fresh entry survives")

	_, err = h.cycles.AddTask(ctx, "farmer", cycle.ID, cropcycle.NewTaskRequest{
		Title:    "Apply lime",
		TaskType: domain.TaskTypeSoilPreparation,
		DueDate:  time.Now().UTC().AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	_, ok = h.cache.Get(ctx, "farmer")
	assert.False(t, ok)

	_, err = h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	assert.Equal(t, int32(2), h.soilCalls.Load())
}

func TestGetCached(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	h.soil.OrganicCarbonPct = 0.3
	h.soil.NitrogenKgHa = 100
	h.activeRiceCycle(t, "farmer")

	// A miss generates with every source
	result, err := h.svc.GetCached(ctx, "farmer", 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(result.Recommendations), 3)
	assert.Equal(t, int32(1), h.weatherCalls.Load())

	capped, err := h.svc.GetCached(ctx, "farmer", 2)
	require.NoError(t, err)
	assert.Len(t, capped.Recommendations, 2)
	assert.Equal(t, int32(1), h.soilCalls.Load(), "served from cache")

	_, err = h.svc.GetCached(ctx, "farmer", -1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerate_ChangeDuringGenerationIsNotCached(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	NewInvalidator(h.cache, h.epochs).Register(h.bus)
	h.weatherDelay = 300 * time.Millisecond
	cycle := h.activeRiceCycle(t, "farmer")
	opts := domain.GenerateOptions{IncludeWeather: true, IncludeSoil: true}

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Generate(ctx, "farmer", opts)
		done <- err
	}()
	time.Sleep(100 * time.Millisecond)
	_, err := h.cycles.Fail(ctx, "farmer", cycle.ID, "flooded")
	require.NoError(t, err)
	require.NoError(t, <-done)

	_, ok := h.cache.Get(ctx, "farmer")
	assert.False(t, ok, "result computed from the active cycle must not be cached")

	result, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
}

func TestGenerate_InvalidAdvisoryDraftsAreDropped(t *testing.T) {
	ctx := context.Background()
	advisor := AdvisoryFunc(func(in Input) []domain.Recommendation {
		return []domain.Recommendation{
			{Title: "Unknown type", Type: "not_a_type", Priority: domain.PriorityHigh, UrgencyHours: 10},
			{Title: "Missing priority", Type: domain.RecommendationIrrigation, Priority: "", UrgencyHours: 10},
			{Title: "Overdue", Type: domain.RecommendationIrrigation, Priority: domain.PriorityMedium, UrgencyHours: -40},
			{Title: "Far off", Type: domain.RecommendationFertilization, Priority: domain.PriorityLow, UrgencyHours: 10000},
		}
	})
	h := newHarness(t, Config{}, advisor)
	h.soil.PH = 6.5
	h.activeRiceCycle(t, "farmer")

	result, err := h.svc.Generate(ctx, "farmer", domain.GenerateOptions{IncludeSoil: true})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 2)

	byTitle := map[string]domain.Recommendation{}
	for _, r := range result.Recommendations {
		byTitle[r.Title] = r
	}
	assert.Equal(t, 0, byTitle["Overdue"].UrgencyHours)
	assert.Equal(t, MaxUrgencyHours, byTitle["Far off"].UrgencyHours)
}

func TestGenerate_CacheHitDropsExpired(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Config{}, nil)
	h.activeRiceCycle(t, "farmer")
	opts := domain.GenerateOptions{IncludeSoil: true}

	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(time.Hour)
	require.NoError(t, h.cache.Put(ctx, "farmer", &Entry{Options: opts, Result: domain.GenerationResult{
		Recommendations: []domain.Recommendation{
			{ID: "gone", Title: "Lapsed", ExpiresAt: &past},
			{ID: "kept", Title: "Current", ExpiresAt: &future},
		},
		UnavailableSources: []string{},
	}}, time.Hour))

	result, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "kept", result.Recommendations[0].ID)
	assert.Zero(t, h.soilCalls.Load(), "served from cache")
}

func TestGenerate_CacheTTLCappedAtFirstExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now().UTC()}
	advisor := AdvisoryFunc(func(in Input) []domain.Recommendation {
		expires := in.Now.Add(10 * time.Minute)
		return []domain.Recommendation{
			{Title: "Irrigate tonight", Type: domain.RecommendationIrrigation, Priority: domain.PriorityHigh, ExpiresAt: &expires},
		}
	})
	h := newHarness(t, Config{CacheTTL: time.Hour}, advisor)
	h.cache.now = clock.Now
	h.svc.now = clock.Now
	h.soil.PH = 6.5
	h.activeRiceCycle(t, "farmer")
	opts := domain.GenerateOptions{IncludeSoil: true}

	_, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)
	_, err = h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	assert.Equal(t, int32(1), h.soilCalls.Load())

	clock.Advance(6 * time.Minute)
	result, err := h.svc.Generate(ctx, "farmer", opts)
	require.NoError(t, err)
	assert.Equal(t, int32(2), h.soilCalls.Load(), "entry expired with its only recommendation")
	require.Len(t, result.Recommendations, 1)
}
