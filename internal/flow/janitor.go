package flow

import (
	"context"
	"log/slog"
	"time"
)

// Janitor expires idle flow sessions on a schedule, cancelling their
// pipelines so no stale completion can fire after eviction.
type Janitor struct {
	controller *Controller
	log        *slog.Logger
	ttl        time.Duration
	interval   time.Duration
}

// NewJanitor constructs a Janitor instance.
func NewJanitor(controller *Controller, log *slog.Logger, ttl, interval time.Duration) *Janitor {
	if log == nil {
		log = slog.Default()
	}

	return &Janitor{
		controller: controller,
		log:        log,
		ttl:        ttl,
		interval:   interval,
	}
}

// Run starts the sweep loop until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	if j == nil || j.controller == nil {
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("session janitor stopped", slog.Any("reason", ctx.Err()))
			return
		case <-ticker.C:
			if n := j.controller.expireIdle(ctx, j.ttl); n > 0 {
				j.log.Info("expired idle flow sessions", slog.Int("count", n))
			}
		}
	}
}
