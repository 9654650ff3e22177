package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	Environment string
	ServiceName string
	Version     string
	APIKey      string // API key for authentication

	// Storage
	StorageBackend    string
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	// Redis is optional; when set it backs the recommendation cache and generation locks
	RedisAddress string

	// Recommendation engine
	RecommendationCacheTTL  time.Duration
	RecommendationCacheSize int
	GenerationTimeout       time.Duration

	// Data sources
	SourceTimeout    time.Duration
	SnapshotMaxAge   time.Duration
	SnapshotFixtures string
	CropCatalog      string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", DefaultLogFormat)),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),
		ServiceName: getEnv("SERVICE_NAME", DefaultServiceName),
		Version:     getEnv("VERSION", DefaultVersion),
		APIKey:      getEnv("API_KEY", ""),

		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory)),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "cropcycle"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),

		RedisAddress: getEnv("REDIS_ADDRESS", ""),

		RecommendationCacheTTL:  getEnvAsDuration("RECOMMENDATION_CACHE_TTL", DefaultRecommendationCacheTTL),
		RecommendationCacheSize: getEnvAsInt("RECOMMENDATION_CACHE_SIZE", DefaultRecommendationCacheSize),
		GenerationTimeout:       getEnvAsDuration("GENERATION_TIMEOUT", DefaultGenerationTimeout),

		SourceTimeout:    getEnvAsDuration("SOURCE_TIMEOUT", DefaultSourceTimeout),
		SnapshotMaxAge:   getEnvAsDuration("SNAPSHOT_MAX_AGE", DefaultSnapshotMaxAge),
		SnapshotFixtures: getEnv("SNAPSHOT_FIXTURES", ""),
		CropCatalog:      getEnv("CROP_CATALOG", ""),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	switch cfg.StorageBackend {
	case StorageMemory, StoragePostgres:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: expected %s or %s", cfg.StorageBackend, StorageMemory, StoragePostgres)
	}

	return cfg, nil
}

// UsesPostgres reports whether crop cycles are stored in PostgreSQL
func (c *Config) UsesPostgres() bool {
	return c.StorageBackend == StoragePostgres
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt parses an integer variable, falling back to the default when unset or malformed
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration parses a Go duration string, falling back to the default when unset or malformed
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
