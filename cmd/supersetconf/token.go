package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hirewire-superset/internal/token"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a config:read bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ttl == 0 {
				ttl = a.svc.TokenTTL
			}
			tok, err := token.NewAccessToken(a.settings.SecretKey, subject, token.ScopeConfigRead, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			fmt.Fprintln(cmd.ErrOrStderr(), "expires", tok.Exp.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "deployer", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default $CONFIG_TOKEN_TTL)")
	return cmd
}
