package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nfvsec/nmtd/internal/core/ports"
)

// Watcher periodically re-reads the Catalog and feeds every active service
// instance through the scheduler. The Catalog stays the system of record:
// a restart rebuilds the whole schedule table from the first sweep.
type Watcher struct {
	client   ports.CatalogClient
	sched    *Scheduler
	interval time.Duration
}

// NewWatcher creates a catalog watcher with the given poll interval.
func NewWatcher(client ports.CatalogClient, sched *Scheduler, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{client: client, sched: sched, interval: interval}
}

// Run polls until the context is cancelled. Sweeps are paced so a slow
// Catalog response shortens the idle gap instead of stretching the period,
// with a one second floor between sweeps.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		start := time.Now()
		w.sweep(ctx)

		idle := w.interval - time.Since(start)
		if idle < time.Second {
			idle = time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idle):
		}
	}
}

// sweep performs one observation pass. A Catalog outage skips reconciling
// rather than cancelling live schedules: existing timers keep their cadence
// until a successful sweep says otherwise.
func (w *Watcher) sweep(ctx context.Context) {
	instances, err := w.client.ListServiceInstances(ctx)
	if err != nil {
		slog.Warn("catalog sweep failed", "error", err)
		return
	}

	active := make(map[string]bool, len(instances))
	for _, inst := range instances {
		if !inst.Active() {
			continue
		}
		active[inst.ID] = true
		w.sched.Observe(inst)
	}
	w.sched.Prune(active)

	slog.Debug("catalog sweep complete", "instances", len(active))
}
