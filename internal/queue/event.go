// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigRenderedQueue is the durable queue config events are published to.
const ConfigRenderedQueue = "superset.config.rendered"

// ConfigRenderedEvent is published after superset_config.py is written.
// Workers and web nodes watch it to know when to reload; the audit consumer
// logs it.
type ConfigRenderedEvent struct {
	Path         string          `json:"path"`
	SHA256       string          `json:"sha256"`
	Changed      bool            `json:"changed"`
	AppEnv       string          `json:"app_env"`
	Host         string          `json:"host"`
	FeatureFlags map[string]bool `json:"feature_flags"`
	RenderedAt   string          `json:"rendered_at"`
}

// AuditLine formats the event as a single human-friendly log line.
func (ev ConfigRenderedEvent) AuditLine() string {
	names := make([]string, 0, len(ev.FeatureFlags))
	for name, on := range ev.FeatureFlags {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	short := ev.SHA256
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("[%s] Superset config rendered | path=%q | sha256=%s | changed=%t | env=%s | host=%s | flags=[%s]\n",
		ev.RenderedAt, ev.Path, short, ev.Changed, ev.AppEnv, ev.Host, strings.Join(names, ","))
}
