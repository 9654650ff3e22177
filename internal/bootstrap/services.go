package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/osse101/CropCycle_Go/internal/checklist"
	"github.com/osse101/CropCycle_Go/internal/config"
	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/cropcycle"
	"github.com/osse101/CropCycle_Go/internal/datasource"
	"github.com/osse101/CropCycle_Go/internal/recommendation"
	"github.com/osse101/CropCycle_Go/internal/risk"
	"github.com/osse101/CropCycle_Go/internal/server"
)

// App is the fully wired service
type App struct {
	Server  *server.Server
	Storage *Storage
	Redis   *redis.Client
}

// Build wires storage, reference data, the engines and the HTTP server from configuration.
// On error everything opened so far is released.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	storage, err := InitializeStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Storage: storage}
	if err := app.wire(ctx, cfg); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

// wire builds the catalog, engines and server on top of app.Storage
func (app *App) wire(ctx context.Context, cfg *config.Config) error {
	storage := app.Storage

	catalog, err := crops.Load(cfg.CropCatalog)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgLoadCatalog, err)
	}
	slog.Info(LogMsgCatalogLoaded, "path", cfg.CropCatalog)

	gateway, err := newGateway(cfg)
	if err != nil {
		return err
	}

	cache, locker, err := app.newCache(ctx, cfg)
	if err != nil {
		return err
	}

	epochs := recommendation.NewEpochs()
	bus := InitializeEventSystem(cache, epochs)

	cycles := cropcycle.NewService(storage.CropCycles, catalog, bus)
	assessor := risk.NewAssessor(risk.NewThresholdModel(), catalog, cycles)
	advisor := recommendation.NewRuleAdvisor()

	recs := recommendation.NewService(recommendation.Deps{
		Cycles:   cycles,
		Assessor: assessor,
		Gateway:  gateway,
		Catalog:  catalog,
		Advisor:  advisor,
		Cache:    cache,
		Locker:   locker,
		Epochs:   epochs,
	}, recommendation.Config{
		CacheTTL:          cfg.RecommendationCacheTTL,
		GenerationTimeout: cfg.GenerationTimeout,
	})

	planner := checklist.NewPlanner(checklist.Deps{
		Catalog: catalog,
		Risks:   assessor,
		Advisor: advisor,
		Cycles:  cycles,
		Gateway: gateway,
	})

	app.Server = server.NewServer(server.Config{
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	}, server.Services{
		DB:              storage.ReadinessPool(),
		Cycles:          cycles,
		Recommendations: recs,
		Checklists:      planner,
	})
	return nil
}

// newGateway builds the snapshot gateway. Without SNAPSHOT_FIXTURES no source is configured and
// every snapshot must arrive with the request.
func newGateway(cfg *config.Config) (*datasource.Gateway, error) {
	gwCfg := gatewayConfig(cfg)
	if cfg.SnapshotFixtures == "" {
		slog.Warn(LogMsgNoSnapshotSources)
		return datasource.NewGateway(gwCfg, nil, nil, nil), nil
	}

	fixtures, err := datasource.LoadFixtures(cfg.SnapshotFixtures)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLoadFixtures, err)
	}
	slog.Info(LogMsgFixturesLoaded, "path", cfg.SnapshotFixtures)
	return datasource.NewGateway(gwCfg, fixtures, fixtures, fixtures), nil
}

// gatewayConfig bounds the snapshot fan-out by the same budget as a whole generation
func gatewayConfig(cfg *config.Config) datasource.Config {
	return datasource.Config{
		SourceTimeout:  cfg.SourceTimeout,
		OverallTimeout: cfg.GenerationTimeout,
		MaxAge:         cfg.SnapshotMaxAge,
	}
}

// newCache picks Redis when REDIS_ADDRESS is set so several instances share cached results
// and generation locks; otherwise results are cached in process
func (a *App) newCache(ctx context.Context, cfg *config.Config) (recommendation.Cache, recommendation.Locker, error) {
	if cfg.RedisAddress == "" {
		slog.Info(LogMsgMemoryCache, "size", cfg.RecommendationCacheSize)
		return recommendation.NewMemoryCache(cfg.RecommendationCacheSize, cfg.RecommendationCacheTTL), recommendation.NopLocker{}, nil
	}

	client, err := recommendation.NewRedisClient(ctx, cfg.RedisAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", ErrMsgConnectRedis, err)
	}
	a.Redis = client
	slog.Info(LogMsgRedisCache, "address", cfg.RedisAddress)
	return recommendation.NewRedisCache(client), recommendation.NewRedisLocker(client, recommendation.DefaultLockTTL), nil
}

func (a *App) close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Error(LogMsgRedisCloseFailed, "error", err)
		}
	}
	if a.Storage != nil {
		a.Storage.Close()
	}
}
