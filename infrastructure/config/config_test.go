package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StoreBackendMemory, cfg.StoreBackend)
	assert.Equal(t, 500, cfg.CategoriesCacheSize)
	assert.Equal(t, 30*time.Minute, cfg.CategoriesCacheTTL)
	assert.Equal(t, 2*time.Minute, cfg.AggregationCacheTTL)
	assert.Equal(t, time.Minute, cfg.CacheSweepInterval)
	assert.True(t, cfg.EnableCORS)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9999")
	t.Setenv("CACHE_AGGREGATION_TTL", "30s")
	t.Setenv("CACHE_CATEGORIES_SIZE", "50")
	t.Setenv("ENABLE_CORS", "false")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ServerAddress)
	assert.Equal(t, 30*time.Second, cfg.AggregationCacheTTL)
	assert.Equal(t, 50, cfg.CategoriesCacheSize)
	assert.False(t, cfg.EnableCORS)
}

func TestLoadConfig_BadValuesFallBack(t *testing.T) {
	t.Setenv("CACHE_CATEGORIES_SIZE", "lots")
	t.Setenv("CACHE_AGGREGATION_TTL", "soon")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 500, cfg.CategoriesCacheSize)
	assert.Equal(t, 2*time.Minute, cfg.AggregationCacheTTL)
}

func TestConfig_Validate_UnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestConfig_Validate_ProductionRequirements(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORE_BACKEND", StoreBackendDynamoDB)

	_, err := LoadConfig()
	assert.Error(t, err) // JWT secret missing

	t.Setenv("JWT_SECRET", "super-secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())

	t.Setenv("STORE_BACKEND", StoreBackendMemory)
	_, err = LoadConfig()
	assert.Error(t, err) // memory store not allowed in production
}
