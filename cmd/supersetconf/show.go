package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hirewire-superset/internal/render"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		format string
		reveal bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				return render.JSON(w, a.settings, reveal)
			case "yaml", "yml":
				return render.YAML(w, a.settings, reveal)
			case "python", "py":
				return render.Python(w, a.settings)
			}
			return fmt.Errorf("unknown format %q (json, yaml, python)", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json, yaml or python")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print secrets instead of masking them")
	return cmd
}
