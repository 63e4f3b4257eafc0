package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/config"
	"github.com/SREENATHREDDY1234/music-freak/internal/cache"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OpenStorage connects the configured backend, prepares its schema or
// indexes and returns the repositories with a closer.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.Set, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverMongo, "":
		return openMongo(ctx, cfg, logger)
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.Set, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := repository.MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("connected to postgres")
	return repository.NewPostgresSet(pool), pool.Close, nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.Set, func(), error) {
	timeout := time.Duration(cfg.Mongo.ConnectTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.Mongo.ResolvedURI()).
		SetConnectTimeout(timeout))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	closer := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("disconnect mongo", "error", err)
		}
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		closer()
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)
	if err := repository.EnsureMongoIndexes(connectCtx, db); err != nil {
		closer()
		return nil, nil, err
	}
	logger.Info("connected to mongo", "database", cfg.Mongo.Database)
	return repository.NewMongoSet(db), closer, nil
}

// OpenRedis returns nil when Redis is not configured or unreachable. The
// API then runs without the events cache and with in-process event locks.
func OpenRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cache.RedisCache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	rc := cache.NewRedisCache(cfg.Redis, cfg.Booking)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, continuing without cache", "addr", cfg.Redis.Addr, "error", err)
		_ = rc.Close()
		return nil
	}
	return rc
}
