package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// RateLimitConfig drives the Redis token bucket on /v1 routes.
type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"60"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL" envDefault:"10m"`
	KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY" envDefault:"ip_route"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX" envDefault:"supersetconf:rl"`
	Debug          bool          `env:"RATE_LIMIT_DEBUG" envDefault:"false"`
}

// LoadRateLimitConfig parses the limiter settings and clamps them to usable
// values: at least one token, a positive interval, and a TTL covering five
// refill intervals.
func LoadRateLimitConfig(environ map[string]string) (RateLimitConfig, error) {
	var def RateLimitConfig
	if err := env.ParseWithOptions(&def, env.Options{Environment: environ}); err != nil {
		return RateLimitConfig{}, fmt.Errorf("%w: %w", ErrInvalidEnvironment, err)
	}
	if def.Capacity < 1 { def.Capacity = 1 }
	if def.RefillTokens < 1 { def.RefillTokens = 1 }
	if def.RefillInterval <= 0 { def.RefillInterval = time.Second }
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL { def.TTL = minTTL }
	return def, nil
}
