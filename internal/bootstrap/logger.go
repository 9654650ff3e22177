package bootstrap

import (
	"log/slog"

	"github.com/osse101/CropCycle_Go/internal/config"
	"github.com/osse101/CropCycle_Go/internal/logger"
)

// SetupLogger initializes the process-wide slog logger from configuration and logs
// the startup banner. Source locations are only added in development.
func SetupLogger(cfg *config.Config) *slog.Logger {
	addSource := cfg.Environment == "dev" || cfg.Environment == "development"

	l := logger.InitLogger(logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		cfg.ServiceName,
		cfg.Version,
		cfg.Environment,
		addSource,
	))

	l.Info(LogMsgStartingService,
		"environment", cfg.Environment,
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"version", cfg.Version)

	l.Debug(LogMsgConfigurationLoaded,
		"storage", cfg.StorageBackend,
		"db_host", cfg.DBHost,
		"db_name", cfg.DBName,
		"redis", cfg.RedisAddress != "",
		"port", cfg.Port)

	return l
}
