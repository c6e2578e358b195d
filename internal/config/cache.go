package config

import (
    "os"
    "strconv"
    "time"
)

// CacheConfig defines settings for the public catalog response cache.
// When Enabled is false or no Redis client is configured, caching is a
// no-op.  TTL defines the lifetime of cache entries.  Prefix namespaces
// keys so the cache can be flushed without touching rate-limit state.
// MaxBodyBytes bounds the size of responses worth caching; larger bodies
// are served directly without being stored.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        TTL:          parseDur(getenv("CACHE_TTL", "30s")),
        Prefix:       getenv("CACHE_PREFIX", "cache"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

func getenv(k, def string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return def
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil || d <= 0 {
        return 30 * time.Second
    }
    return d
}

func atoi(s string) int {
    n, err := strconv.Atoi(s)
    if err != nil {
        return 0
    }
    return n
}
