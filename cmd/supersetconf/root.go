package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hirewire-superset/internal/config"
	"github.com/iliyamo/hirewire-superset/internal/log"
)

// app carries what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE once flags are parsed.
type app struct {
	svc      config.Service
	settings config.Settings
	logOut   io.Writer // nil means stdout
}

func newRootCmd() *cobra.Command {
	return rootCmd(&app{})
}

func rootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "supersetconf",
		Short: "Render and serve the HireWire Superset configuration",
		Long: `supersetconf builds Superset's configuration (cache, Celery, feature flags,
preferred databases, branding, SQL Lab, uploads, SMTP, logging) from the
environment, writes superset_config.py, and serves read-only views of it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	root.AddCommand(
		newRenderCmd(a),
		newShowCmd(a),
		newCheckCmd(a),
		newServeCmd(a),
		newTokenCmd(a),
		newAuditCmd(a),
	)
	return root
}

// load reads .env and the process environment into a. The log level is
// applied before the settings are loaded so their source logging honours it.
func (a *app) load() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	environ := config.Environ()

	svc, err := config.LoadService(environ)
	if err != nil {
		return fmt.Errorf("load service config: %w", err)
	}
	log.Reconfigure(log.Config{Level: svc.LogLevel, Output: a.logOut})

	settings, err := config.LoadFrom(environ)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	a.svc = svc
	a.settings = settings
	return nil
}
