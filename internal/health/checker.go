// Package health checks the collaborators named in the Superset settings:
// the metadata store, the Redis cache and broker databases, and the DuckDB
// analytics file.
package health

import (
	"context"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/hirewire-superset/internal/config"
	"github.com/iliyamo/hirewire-superset/internal/database"
	"github.com/iliyamo/hirewire-superset/internal/log"
)

// Status of a single check.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one check.
type Result struct {
	Name      string        `json:"name"`
	Target    string        `json:"target"`
	Status    Status        `json:"status"`
	LatencyMS int64         `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	latency   time.Duration
}

// Report collects every check result, sorted by name.
type Report struct {
	Healthy bool     `json:"healthy"`
	Checks  []Result `json:"checks"`
}

// Check pings one collaborator.
type Check struct {
	Name   string
	Target string
	Ping   func(ctx context.Context) error
}

// Checker runs a fixed set of checks concurrently.
type Checker struct {
	Checks  []Check
	Timeout time.Duration
}

// NewChecker builds the standard checks for s. Metadata and analytics checks
// can be disabled for environments where those stores are not reachable.
func NewChecker(s config.Settings, timeout time.Duration, opts ...Option) *Checker {
	o := options{metadata: true, analytics: true}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Checker{Timeout: timeout}
	if o.metadata {
		chk := Check{
			Name:   "metadata_db",
			Target: config.MaskSecrets(s.SQLAlchemyDatabaseURI).(string),
		}
		// Schemes without a Go driver (sqlite, mssql, ...) are reported as
		// skipped; Superset may still use them.
		if _, err := config.MetadataDriver(s.SQLAlchemyDatabaseURI); err == nil {
			chk.Ping = func(ctx context.Context) error {
				db, err := database.OpenMetadata(ctx, s.SQLAlchemyDatabaseURI)
				if err != nil {
					return err
				}
				return db.Close(ctx)
			}
		}
		c.Checks = append(c.Checks, chk)
	}
	c.Checks = append(c.Checks,
		RedisCheck("cache_redis", config.RedisOptions(s, s.Cache.RedisDB)),
		RedisCheck("celery_broker", config.RedisOptions(s, config.CeleryRedisDB)),
	)
	if o.analytics {
		for _, pdb := range s.PreferredDatabases {
			placeholder := pdb.SQLAlchemyURIPlaceholder
			c.Checks = append(c.Checks, Check{
				Name:   "analytics_duckdb",
				Target: placeholder,
				Ping: func(ctx context.Context) error {
					path, err := database.AnalyticsPath(placeholder)
					if err != nil {
						return err
					}
					db, err := database.OpenAnalytics(ctx, path)
					if err != nil {
						return err
					}
					return db.Close(ctx)
				},
			})
		}
	}
	return c
}

// Option tweaks NewChecker.
type Option func(*options)

type options struct {
	metadata  bool
	analytics bool
}

// WithoutMetadata skips the metadata store check.
func WithoutMetadata() Option { return func(o *options) { o.metadata = false } }

// WithoutAnalytics skips the DuckDB check.
func WithoutAnalytics() Option { return func(o *options) { o.analytics = false } }

// RedisCheck pings a Redis logical database.
func RedisCheck(name string, opts *redis.Options) Check {
	return Check{
		Name:   name,
		Target: opts.Addr,
		Ping: func(ctx context.Context) error {
			client := redis.NewClient(opts)
			defer func() { _ = client.Close() }()
			return client.Ping(ctx).Err()
		},
	}
}

// Run executes every check with its own timeout. It never returns early:
// a failing check is reported, not propagated.
func (c *Checker) Run(ctx context.Context) Report {
	logger := log.WithComponent("health")
	results := make([]Result, len(c.Checks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chk := range c.Checks {
		g.Go(func() error {
			results[i] = c.runOne(gctx, chk)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	report := Report{Healthy: true, Checks: results}
	for _, r := range results {
		var ev *zerolog.Event
		if r.Status == StatusFailed {
			report.Healthy = false
			ev = logger.Warn().Str("error", r.Error)
		} else {
			ev = logger.Debug()
		}
		ev.Str("check", r.Name).
			Str("target", r.Target).
			Dur("latency", r.latency).
			Msg("health check " + string(r.Status))
	}
	return report
}

func (c *Checker) runOne(ctx context.Context, chk Check) Result {
	res := Result{Name: chk.Name, Target: chk.Target}
	if chk.Ping == nil {
		res.Status = StatusSkipped
		return res
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := chk.Ping(cctx)
	res.latency = time.Since(start)
	res.LatencyMS = res.latency.Milliseconds()
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		return res
	}
	res.Status = StatusOK
	return res
}
