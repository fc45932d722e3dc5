// Package bootstrap wires the process-level dependencies shared by the
// server and the one-shot commands.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/blendi-remade/reve-studio/internal/cache"
	"github.com/blendi-remade/reve-studio/internal/config"
	"github.com/blendi-remade/reve-studio/internal/database"
	"github.com/blendi-remade/reve-studio/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs the configured schema policy after connecting.
	ApplySchema bool
	// SkipRedis leaves the cache client unset; callers then run without
	// caching or revocation checks.
	SkipRedis bool
}

// InitRuntime connects to the database and Redis. A Redis outage is not
// fatal: the returned client may be nil.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	if opts.SkipRedis {
		return db, nil, nil
	}
	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

// InitTracing starts the tracer provider described by cfg.
func InitTracing(cfg *config.Config, serviceName string) (func(context.Context) error, error) {
	return observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1.0,
	})
}
