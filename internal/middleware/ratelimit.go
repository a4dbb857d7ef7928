package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hirewire-superset/internal/config"
	"github.com/iliyamo/hirewire-superset/internal/log"
)

// tokenBucket keeps {level, stamp} in a hash per key. The level grows by
// ARGV[3] per whole ARGV[4] ms since stamp, capped at ARGV[2]; one unit is
// spent per call. Replies {allowed, level, wait_ms}.
var tokenBucket = redis.NewScript(`
local cap, step, every, keep = tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local now = tonumber(ARGV[1])

local h = redis.call('HMGET', KEYS[1], 'level', 'stamp')
local level, stamp = tonumber(h[1]), tonumber(h[2])
if not level or not stamp then
    level, stamp = cap, now
end

local ticks = math.floor(math.max(now - stamp, 0) / every)
if ticks > 0 then
    level = math.min(cap, level + ticks * step)
    stamp = stamp + ticks * every
end

local ok, wait = 0, 0
if level >= 1 then
    ok, level = 1, level - 1
else
    wait = math.max(every - (now - stamp), 0)
end

redis.call('HSET', KEYS[1], 'level', level, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], keep)
return {ok, level, wait}
`)

// NewTokenBucket limits requests per key using a Redis-side token bucket.
// Redis errors fail open: the request is served and the error logged.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	logger := log.WithComponent("ratelimit")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			args := []any{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}

			vals, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key}, args...).Int64Slice()
			if err != nil || len(vals) != 3 {
				logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable; allowing request")
				return next(c)
			}
			allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}

			if allowed {
				return next(c)
			}
			wait := time.Duration(retryMs) * time.Millisecond
			h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			logger.Debug().Str("key", key).Dur("wait", wait).Msg("request throttled")
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
	}
}

func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()
	sub := subject(c)

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "subject":
		parts = append(parts, "sub", sub)
	case "route":
		parts = append(parts, "route", route)
	case "ip_subject":
		parts = append(parts, "ip", ip, "sub", sub)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	default:
		parts = append(parts, "ip", ip, "sub", sub, "route", route)
	}
	return strings.Join(parts, ":")
}
