package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hirewire-superset/internal/health"
)

var errCheckFailed = errors.New("configuration check failed")

func newCheckCmd(a *app) *cobra.Command {
	var (
		strict        bool
		timeout       time.Duration
		skipMetadata  bool
		skipAnalytics bool
		offline       bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the settings and check Superset's collaborators",
		Long: `Validate the settings, then ping the metadata database, the cache and
broker Redis databases and the DuckDB analytics file. Exits non-zero if
validation fails or any check fails. --strict also fails on warnings.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			failed := false

			if err := a.settings.Validate(a.svc.Env); err != nil {
				fmt.Fprintln(w, err)
				failed = true
			}
			warnings := a.settings.Warnings(a.svc.Env)
			for _, msg := range warnings {
				fmt.Fprintln(w, "warning:", msg)
			}
			if strict && len(warnings) > 0 {
				failed = true
			}

			if !offline {
				var opts []health.Option
				if skipMetadata {
					opts = append(opts, health.WithoutMetadata())
				}
				if skipAnalytics {
					opts = append(opts, health.WithoutAnalytics())
				}
				report := health.NewChecker(a.settings, timeout, opts...).Run(cmd.Context())
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
				if !report.Healthy {
					failed = true
				}
			}

			if failed {
				return errCheckFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-check timeout")
	cmd.Flags().BoolVar(&skipMetadata, "skip-metadata", false, "do not check the metadata database")
	cmd.Flags().BoolVar(&skipAnalytics, "skip-analytics", false, "do not check the DuckDB analytics file")
	cmd.Flags().BoolVar(&offline, "offline", false, "validate only; run no checks")
	return cmd
}
