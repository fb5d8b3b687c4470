// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends selectable via STORE_BACKEND.
const (
	StoreBackendMemory   = "memory"
	StoreBackendDynamoDB = "dynamodb"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Store configuration
	StoreBackend      string
	AWSRegion         string
	CategoriesTable   string
	TransactionsTable string

	// Cache tuning
	CategoriesCacheSize  int
	CategoriesCacheTTL   time.Duration
	UserCacheSize        int
	UserCacheTTL         time.Duration
	AggregationCacheSize int
	AggregationCacheTTL  time.Duration
	GeneralCacheSize     int
	GeneralCacheTTL      time.Duration
	CacheSweepInterval   time.Duration

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Logging and features
	LogLevel   string
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		StoreBackend:      getEnv("STORE_BACKEND", StoreBackendMemory),
		AWSRegion:         getEnv("AWS_REGION", "us-west-2"),
		CategoriesTable:   getEnv("CATEGORIES_TABLE", "fintrack-categories"),
		TransactionsTable: getEnv("TRANSACTIONS_TABLE", "fintrack-transactions"),

		CategoriesCacheSize:  getEnvInt("CACHE_CATEGORIES_SIZE", 500),
		CategoriesCacheTTL:   getEnvDuration("CACHE_CATEGORIES_TTL", 30*time.Minute),
		UserCacheSize:        getEnvInt("CACHE_USER_SIZE", 200),
		UserCacheTTL:         getEnvDuration("CACHE_USER_TTL", 15*time.Minute),
		AggregationCacheSize: getEnvInt("CACHE_AGGREGATION_SIZE", 100),
		AggregationCacheTTL:  getEnvDuration("CACHE_AGGREGATION_TTL", 2*time.Minute),
		GeneralCacheSize:     getEnvInt("CACHE_GENERAL_SIZE", 300),
		GeneralCacheTTL:      getEnvDuration("CACHE_GENERAL_TTL", 10*time.Minute),
		CacheSweepInterval:   getEnvDuration("CACHE_SWEEP_INTERVAL", time.Minute),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "fintrack-backend"),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.StoreBackend != StoreBackendMemory && c.StoreBackend != StoreBackendDynamoDB {
		return fmt.Errorf("STORE_BACKEND must be %q or %q", StoreBackendMemory, StoreBackendDynamoDB)
	}
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.StoreBackend == StoreBackendMemory {
			return fmt.Errorf("STORE_BACKEND=memory is not allowed in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
