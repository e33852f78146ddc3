package config

// Redis backs the status-view cache and the check-in rate limiter.  Both
// degrade to pass-through when the server is unreachable, so a missing Redis
// never blocks seating or check-in.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisOptions builds client options from REDIS_ADDR (or REDIS_HOST and
// REDIS_PORT), REDIS_PASSWORD, REDIS_DB and REDIS_TLS.  It reports false when
// REDIS_DISABLED is set.
func RedisOptions() (*redis.Options, bool) {
    if envBool("REDIS_DISABLED", false) {
        return nil, false
    }
    addr := os.Getenv("REDIS_ADDR")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    db := 0
    if s := os.Getenv("REDIS_DB"); s != "" {
        if n, err := strconv.Atoi(s); err == nil {
            db = n
        }
    }
    opts := &redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: db}
    if t := os.Getenv("REDIS_TLS"); strings.EqualFold(t, "true") || t == "1" {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    return opts, true
}

// NewRedisClient connects using RedisOptions and pings the server.  It
// returns nil when Redis is disabled or unreachable.
func NewRedisClient(ctx context.Context) *redis.Client {
    opts, ok := RedisOptions()
    if !ok {
        return nil
    }
    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
