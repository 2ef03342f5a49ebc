package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/handrades/Luppa-PLC-sub003/internal/cache"
	"github.com/handrades/Luppa-PLC-sub003/internal/cache/memory"
	"github.com/handrades/Luppa-PLC-sub003/internal/cache/redis"
	"github.com/handrades/Luppa-PLC-sub003/internal/config"
	"github.com/handrades/Luppa-PLC-sub003/internal/database"
	"github.com/handrades/Luppa-PLC-sub003/internal/logger"
)

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, database.Config{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

// newCacheStore connects to Redis when configured and falls back to the
// in-process LRU otherwise, or when Redis is unreachable at startup.
func newCacheStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (cache.Store, func(), error) {
	if cfg.HasRedis() {
		store, err := redis.NewStore(redis.Config{
			Addrs:    cfg.RedisAddrs,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = store.Ping(pingCtx)
			cancel()
			if err == nil {
				log.Info("Using redis cache", zap.Strings("addrs", cfg.RedisAddrs))
				return store, store.Close, nil
			}
			store.Close()
		}
		log.Warn("Redis unavailable, falling back to in-process cache", zap.Error(err))
	}

	store, err := memory.NewStore(cfg.MemoryCacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	log.Info("Using in-process cache", zap.Int("size", cfg.MemoryCacheSize))
	return store, func() {}, nil
}
