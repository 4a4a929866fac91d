// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package syncer

import (
	"context"
	"log/slog"
	"time"
)

// Runner is the background worker that periodically runs the staleness
// gate. Read paths never trigger full syncs themselves; this worker owns
// that responsibility, with an explicit start/stop lifecycle wired into
// the server's shutdown.
type Runner struct {
	syncer   *Syncer
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRunner creates a runner polling at the given interval.
func NewRunner(s *Syncer, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Runner{
		syncer:   s,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the polling goroutine. An initial tick runs immediately
// so a cold start does not wait a full interval for content.
func (r *Runner) Start() {
	go func() {
		defer close(r.doneCh)

		slog.Info("sync runner started", "interval", r.interval.String())
		r.tick()

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.tick()
			case <-r.stopCh:
				slog.Info("sync runner stopped")
				return
			}
		}
	}()
}

// Stop shuts the runner down and waits for the polling goroutine to exit.
// An in-flight sync finishes on its own goroutine.
func (r *Runner) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *Runner) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	r.syncer.MaybeSync(ctx)
}
