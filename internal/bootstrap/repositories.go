package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/CropCycle_Go/internal/config"
	"github.com/osse101/CropCycle_Go/internal/database"
	"github.com/osse101/CropCycle_Go/internal/database/memory"
	"github.com/osse101/CropCycle_Go/internal/database/postgres"
	"github.com/osse101/CropCycle_Go/internal/repository"
)

// Storage is the crop cycle store chosen by STORAGE_BACKEND.
// Pool is nil for the in-memory backend.
type Storage struct {
	CropCycles repository.CropCycle
	Pool       *pgxpool.Pool
}

// ReadinessPool returns the pool as a database.Pool, or a nil interface when there is none
func (s *Storage) ReadinessPool() database.Pool {
	if s.Pool == nil {
		return nil
	}
	return s.Pool
}

// Close releases the connection pool, if any
func (s *Storage) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// InitializeStorage opens the configured store. PostgreSQL is migrated to the latest schema first.
func InitializeStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if !cfg.UsesPostgres() {
		slog.Info(LogMsgStorageMemory)
		return &Storage{CropCycles: memory.NewCropCycleRepository()}, nil
	}

	pool, err := database.NewPool(ctx, cfg.GetDBConnString(), database.PoolConfig{
		MaxConns:        cfg.DBMaxConns,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgConnectDatabase, err)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgMigrate, err)
	}
	slog.Info(LogMsgMigrationsApplied)
	slog.Info(LogMsgStoragePostgres, "host", cfg.DBHost, "db", cfg.DBName)

	return &Storage{CropCycles: postgres.NewCropCycleRepository(pool), Pool: pool}, nil
}
