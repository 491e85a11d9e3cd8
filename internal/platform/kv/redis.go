package kv

import (
	"context"
	"fmt"
	"tecrank_admin/internal/platform/config"
	"tecrank_admin/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// ConnectRedis opens the client used by the redis session driver.
func ConnectRedis(ctx context.Context) error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	if _, err := RDB.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("could not connect to Redis at %s: %w", config.AppConfig.RedisAddr, err)
	}
	logger.Log.Info("connected to Redis")
	return nil
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		logger.Log.Info("redis connection closed")
	}
}
