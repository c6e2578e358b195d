package config

// Redis backs the auth rate limiter and the public catalog response cache.
// Both degrade gracefully: when no server can be reached at startup this
// constructor returns nil and the middleware treat a nil client as
// "feature off".

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from the environment.  REDIS_URL
// (redis:// or rediss:// form) wins when set; otherwise REDIS_ADDR,
// REDIS_PASSWORD and REDIS_DB are read individually, defaulting to a local
// unauthenticated server on database 0.  Returns nil when the server does
// not answer a ping within two seconds.
func NewRedisClient() *redis.Client {
	var opts *redis.Options
	if url := os.Getenv("REDIS_URL"); url != "" {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			log.Printf("redis: bad REDIS_URL, running without redis: %v", err)
			return nil
		}
		opts = parsed
	} else {
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			addr = "localhost:6379"
		}
		opts = &redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoi(os.Getenv("REDIS_DB")),
		}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: unreachable, running without redis: %v", err)
		return nil
	}
	return client
}
