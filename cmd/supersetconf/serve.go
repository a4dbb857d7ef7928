package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/iliyamo/hirewire-superset/internal/config"
	"github.com/iliyamo/hirewire-superset/internal/handler"
	"github.com/iliyamo/hirewire-superset/internal/health"
	"github.com/iliyamo/hirewire-superset/internal/log"
	"github.com/iliyamo/hirewire-superset/internal/middleware"
	"github.com/iliyamo/hirewire-superset/internal/router"
)

func newServeCmd(a *app) *cobra.Command {
	var readyTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only configuration views over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, readyTimeout)
		},
	}
	cmd.Flags().DurationVar(&readyTimeout, "ready-timeout", 2*time.Second, "per-check timeout for /readyz")
	return cmd
}

// newServer assembles the echo instance. rdb may be nil, in which case the
// cache and the rate limiter pass every request through.
func (a *app) newServer(rdb *redis.Client, readyTimeout time.Duration) (*echo.Echo, error) {
	cacheCfg, err := config.LoadResponseCacheConfig(config.Environ())
	if err != nil {
		return nil, err
	}
	rlCfg, err := config.LoadRateLimitConfig(config.Environ())
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())

	d := router.Deps{
		Config:    handler.NewConfigHandler(a.settings),
		Readiness: health.NewChecker(a.settings, readyTimeout),
		Cache:     middleware.NewRedisCache(cacheCfg, rdb),
		RateLimit: middleware.NewTokenBucket(rlCfg, rdb),
		Secret:    a.settings.SecretKey,
	}
	router.RegisterRoutes(e, d)
	router.RegisterConfig(e, d)
	return e, nil
}

func (a *app) serve(ctx context.Context, readyTimeout time.Duration) error {
	logger := log.WithComponent("server")

	if err := a.settings.Validate(a.svc.Env); err != nil {
		return err
	}
	for _, w := range a.settings.Warnings(a.svc.Env) {
		logger.Warn().Msg(w)
	}

	rdb := config.NewRedisClient(a.settings, a.settings.Cache.RedisDB)
	if rdb == nil {
		logger.Warn().Str("addr", a.settings.RedisAddr()).Msg("redis unavailable; response cache and rate limit disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	e, err := a.newServer(rdb, readyTimeout)
	if err != nil {
		return err
	}

	addr := ":" + a.svc.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("env", a.svc.Env).Msg("listening")
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(sctx)
}
