// Package di wires the application together. Providers are consumed by Wire;
// wire_gen.go holds the generated initializer.
package di

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"fintrack-backend/application/services"
	"fintrack-backend/infrastructure/config"
	"fintrack-backend/infrastructure/persistence/dynamodb"
	"fintrack-backend/infrastructure/persistence/memory"
	"fintrack-backend/infrastructure/persistence/store"
	"fintrack-backend/pkg/auth"
	"fintrack-backend/pkg/cache"
)

// devJWTSecret signs nothing in production; config.Validate rejects an empty
// JWT_SECRET outside development.
const devJWTSecret = "local-development-secret"

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        store.Store
	Caches       *cache.Registry
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Reports      *services.ReportService
	Validator    *auth.JWTValidator
}

// Close releases background resources (cache sweepers, buffered log entries).
func (c *Container) Close() {
	if c.Caches != nil {
		c.Caches.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideStore selects the document store backend from configuration.
func ProvideStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		return memory.NewStore(), nil
	case config.StoreBackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := awsdynamodb.NewFromConfig(awsCfg)
		tables := map[string]string{
			"categories":   cfg.CategoriesTable,
			"transactions": cfg.TransactionsTable,
		}
		return dynamodb.NewStore(client, tables, logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// ProvideCacheConfig translates application config into cache policies.
func ProvideCacheConfig(cfg *config.Config) cache.Config {
	return cache.Config{
		Categories:    cache.Policy{MaxSize: cfg.CategoriesCacheSize, TTL: cfg.CategoriesCacheTTL},
		User:          cache.Policy{MaxSize: cfg.UserCacheSize, TTL: cfg.UserCacheTTL},
		Aggregation:   cache.Policy{MaxSize: cfg.AggregationCacheSize, TTL: cfg.AggregationCacheTTL},
		General:       cache.Policy{MaxSize: cfg.GeneralCacheSize, TTL: cfg.GeneralCacheTTL},
		SweepInterval: cfg.CacheSweepInterval,
	}
}

// ProvideCacheRegistry creates the named caches and starts their sweepers.
func ProvideCacheRegistry(cacheCfg cache.Config, logger *zap.Logger) *cache.Registry {
	return cache.NewRegistry(cacheCfg, logger)
}

// ProvideJWTValidator creates the bearer token validator.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && cfg.IsDevelopment() {
		secret = devJWTSecret
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideCategoryService creates the category service.
func ProvideCategoryService(st store.Store, caches *cache.Registry, logger *zap.Logger) *services.CategoryService {
	return services.NewCategoryService(st, caches, logger)
}

// ProvideTransactionService creates the transaction service.
func ProvideTransactionService(st store.Store, caches *cache.Registry, logger *zap.Logger) *services.TransactionService {
	return services.NewTransactionService(st, caches, logger)
}

// ProvideReportService creates the report service.
func ProvideReportService(st store.Store, caches *cache.Registry, logger *zap.Logger) *services.ReportService {
	return services.NewReportService(st, caches, logger)
}
