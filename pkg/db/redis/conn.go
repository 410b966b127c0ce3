package redis

import (
	"crypto/tls"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/clipforge/video-transcoder/internal/config"
)

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	redisHost := cfg.Redis.RedisAddr
	if redisHost == "" {
		redisHost = ":6379"
	}

	opts := &redis.Options{
		Addr:         redisHost,
		Password:     cfg.Redis.RedisPassword,
		DB:           cfg.Redis.DB,
		MinIdleConns: cfg.Redis.MinIdleConns,
		PoolSize:     cfg.Redis.PoolSize,
		PoolTimeout:  time.Duration(cfg.Redis.PoolTimeout) * time.Second,
	}
	if cfg.Redis.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(client.Context()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
