package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CropCycle_Go/internal/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Port:                    0,
		LogLevel:                "error",
		LogFormat:               "text",
		Environment:             "test",
		APIKey:                  "test-key",
		StorageBackend:          config.StorageMemory,
		RecommendationCacheTTL:  time.Minute,
		RecommendationCacheSize: 10,
		GenerationTimeout:       time.Second,
		SourceTimeout:           time.Second,
		SnapshotMaxAge:          time.Hour,
	}
}

func TestBuild_MemoryBackend(t *testing.T) {
	app, err := Build(context.Background(), memoryConfig())
	require.NoError(t, err)
	t.Cleanup(app.close)

	assert.NotNil(t, app.Server)
	assert.Nil(t, app.Storage.Pool)
	assert.Nil(t, app.Storage.ReadinessPool())
	assert.Nil(t, app.Redis)
}

func TestBuild_MissingCatalogFails(t *testing.T) {
	cfg := memoryConfig()
	cfg.CropCatalog = "/does/not/exist.yaml"

	var app *App
	var err error
	require.NotPanics(t, func() {
		app, err = Build(context.Background(), cfg)
	})
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), ErrMsgLoadCatalog)
}

func TestBuild_UnreachableRedisFails(t *testing.T) {
	cfg := memoryConfig()
	cfg.RedisAddress = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	require.NotPanics(t, func() {
		_, err = Build(ctx, cfg)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgConnectRedis)
}

func TestGatewayConfig_UsesGenerationTimeout(t *testing.T) {
	cfg := memoryConfig()
	cfg.GenerationTimeout = 7 * time.Second
	cfg.SourceTimeout = 2 * time.Second

	gw := gatewayConfig(cfg)
	assert.Equal(t, 7*time.Second, gw.OverallTimeout)
	assert.Equal(t, 2*time.Second, gw.SourceTimeout)
	assert.Equal(t, time.Hour, gw.MaxAge)
}

func TestBuild_MissingFixturesFails(t *testing.T) {
	cfg := memoryConfig()
	cfg.SnapshotFixtures = "/does/not/exist.yaml"

	var err error
	require.NotPanics(t, func() {
		_, err = Build(context.Background(), cfg)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgLoadFixtures)
}

func TestGracefulShutdown_ToleratesMissingServer(t *testing.T) {
	storage, err := InitializeStorage(context.Background(), memoryConfig())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		GracefulShutdown(context.Background(), &App{Storage: storage})
	})
}
