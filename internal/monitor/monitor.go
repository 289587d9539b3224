// Package monitor runs the server-side liveness poll loop.
package monitor

import (
	"context"
	"time"

	"github.com/user/homepulse/internal/alert"
	"github.com/user/homepulse/internal/model"
	"github.com/user/homepulse/internal/util"
)

// ServiceProvider returns the set of services to poll.
type ServiceProvider func() ([]model.ServiceDescriptor, error)

// Run polls the provided services through the alert pipeline on a fixed
// interval until the context is cancelled. This keeps alerting working
// without an open browser; the /api/ping endpoint drives the same pipeline
// on demand.
func Run(ctx context.Context, interval time.Duration, provider ServiceProvider, pipeline *alert.Pipeline) {
	if interval <= 0 {
		interval = 60 * time.Second
	}

	check := func() {
		services, err := provider()
		if err != nil {
			util.Error("monitor: failed to load services: %v", err)
			return
		}
		if len(services) == 0 {
			return
		}

		statuses := pipeline.Run(ctx, services)

		up := 0
		for _, status := range statuses {
			if status != nil && *status {
				up++
			}
		}
		util.Debug("monitor: polled %d services, %d reachable", len(statuses), up)
	}

	go func() {
		util.Info("monitor started (interval %s)", interval)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		check() // Run immediately
		for {
			select {
			case <-ctx.Done():
				util.Info("monitor stopping")
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}
