package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hirewire-superset/internal/log"
	"github.com/iliyamo/hirewire-superset/internal/queue"
	"github.com/iliyamo/hirewire-superset/internal/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		out    string
		notify bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write superset_config.py",
		Long: `Render the settings as a Python module and write it atomically. With
--notify a config-rendered event is published to RabbitMQ.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = a.svc.ConfigPath
			}
			return a.render(cmd.Context(), cmd, out, notify)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output path (default $SUPERSET_CONFIG_PATH)")
	cmd.Flags().BoolVar(&notify, "notify", false, "publish a config-rendered event to RabbitMQ")
	return cmd
}

func (a *app) render(ctx context.Context, cmd *cobra.Command, out string, notify bool) error {
	logger := log.WithComponent("render")

	if err := a.settings.Validate(a.svc.Env); err != nil {
		return err
	}
	for _, w := range a.settings.Warnings(a.svc.Env) {
		logger.Warn().Msg(w)
	}

	res, err := render.WriteFile(out, a.settings)
	if err != nil {
		return err
	}
	logger.Info().
		Str("path", res.Path).
		Str("sha256", res.SHA256).
		Int("bytes", res.Bytes).
		Bool("changed", res.Changed).
		Msg("superset config rendered")
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", res.SHA256, res.Path)

	if !notify {
		return nil
	}
	host, _ := os.Hostname()
	ev := queue.ConfigRenderedEvent{
		Path:         res.Path,
		SHA256:       res.SHA256,
		Changed:      res.Changed,
		AppEnv:       a.svc.Env,
		Host:         host,
		FeatureFlags: a.settings.FeatureFlags,
		RenderedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return queue.NewPublisher(a.svc.RabbitMQURL).PublishConfigRendered(pctx, ev)
}
