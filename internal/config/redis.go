package config

// This file builds Redis clients for the cache/broker pair Superset uses.
// supersetconf reuses the cache database for its own response cache and rate
// limiter.  If the server cannot be reached at startup, NewRedisClient
// returns nil and callers degrade gracefully by disabling both.

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAddr joins the configured host and port. A port that does not parse
// is passed through trimmed and left for the dialer to reject.
func (s Settings) RedisAddr() string {
	if n, err := s.RedisPort.Int(); err == nil {
		return net.JoinHostPort(s.RedisHost, strconv.Itoa(n))
	}
	return net.JoinHostPort(s.RedisHost, strings.TrimSpace(s.RedisPort.Raw))
}

// RedisOptions returns client options for the given logical database.
func RedisOptions(s Settings, db int) *redis.Options {
	return &redis.Options{
		Addr:        s.RedisAddr(),
		DB:          db,
		DialTimeout: 2 * time.Second,
	}
}

// NewRedisClient instantiates a Redis client for db and pings it with a short
// timeout.  The returned client is nil if a connection cannot be established.
func NewRedisClient(s Settings, db int) *redis.Client {
	client := redis.NewClient(RedisOptions(s, db))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
