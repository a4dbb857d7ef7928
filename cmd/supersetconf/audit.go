package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/hirewire-superset/internal/log"
	"github.com/iliyamo/hirewire-superset/internal/queue"
)

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Append config-rendered events to the audit log until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.WithComponent("audit").Info().
				Str("log", a.svc.AuditLogPath).
				Str("queue", queue.ConfigRenderedQueue).
				Msg("audit consumer starting")

			err := queue.StartAuditConsumer(ctx, a.svc.RabbitMQURL, a.svc.AuditLogPath)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
