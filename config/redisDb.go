package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisConnectAttempts = 5

// ConnectRedisWithRetry returns nil when REDIS_ADDRESS is unset; callers
// treat a nil client as "run without Redis".
func ConnectRedisWithRetry(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.RedisAddress == "" {
		logg.Info("REDIS_ADDRESS not set; running without redis")
		return nil, nil
	}

	var lastErr error
	for attempt := 1; attempt <= redisConnectAttempts; attempt++ {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err == nil {
			logg.WithFields(logrus.Fields{"attempt": attempt, "addr": cfg.RedisAddress}).Info("connected to redis")
			return rdb, nil
		} else {
			lastErr = err
			_ = rdb.Close()
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		logg.WithFields(logrus.Fields{"attempt": attempt, "addr": cfg.RedisAddress, "retry_in": sleep.String()}).WithError(lastErr).Warn("failed to connect redis")
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect redis: %w", ctx.Err())
		case <-time.After(sleep):
		}
	}
	return nil, fmt.Errorf("connect redis: %w", lastErr)
}
