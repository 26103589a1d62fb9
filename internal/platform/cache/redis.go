package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RDB *redis.Client

// ConnectRedis dials the session cache and pings it once.
func ConnectRedis(ctx context.Context, addr, password string, db int, log *zap.Logger) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return fmt.Errorf("could not connect to Redis at %s: %w", addr, err)
	}

	RDB = client
	log.Info("Successfully connected to Redis", zap.String("addr", addr))
	return nil
}

func CloseRedis(log *zap.Logger) {
	if RDB != nil {
		if err := RDB.Close(); err != nil {
			log.Warn("Redis close failed", zap.Error(err))
			return
		}
		log.Info("Redis connection closed")
	}
}
