package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/projectdesk/internal/observability/metrics"
	"github.com/yourorg/projectdesk/internal/service"
)

// Janitor periodically evicts viewer workspaces that have been idle
// longer than the configured TTL, so abandoned sessions do not pin
// directory and membership snapshots in memory.
type Janitor struct {
	registry *service.Registry
	logger   *slog.Logger
	interval time.Duration
	idleTTL  time.Duration
}

// NewJanitor creates a new workspace janitor
func NewJanitor(registry *service.Registry, logger *slog.Logger, interval, idleTTL time.Duration) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		registry: registry,
		logger:   logger,
		interval: interval,
		idleTTL:  idleTTL,
	}
}

// Start begins the sweep loop and blocks until the context is done
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("workspace janitor started",
		slog.Duration("interval", j.interval),
		slog.Duration("idle_ttl", j.idleTTL),
	)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("workspace janitor stopped")
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	evicted := j.registry.SweepIdle(time.Now().Add(-j.idleTTL))
	if evicted > 0 {
		metrics.ObserveEvictions(evicted)
		j.logger.Info("evicted idle workspaces",
			slog.Int("count", evicted),
			slog.Int("remaining", j.registry.Len()),
		)
	}
}
