// Package reconciler is the operational safeguard behind at-least-once
// delivery: event redelivery alone cannot recover a job whose worker died
// after claiming it, so a periodic sweep puts such jobs back in play.
package reconciler

import (
	"context"
	"time"

	"voxpress/internal/pkg/logger"
)

type Store interface {
	RequeueStuck(ctx context.Context, cutoff time.Time) ([]string, error)
	TouchPendingOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

type Bus interface {
	Publish(ctx context.Context, jobID string) error
	RequeuePending(ctx context.Context) (int, error)
}

type Deps struct {
	Store        Store
	Bus          Bus
	Interval     time.Duration
	StuckAfter   time.Duration
	PendingAfter time.Duration
	Log          *logger.Logger
}

type Reconciler struct {
	store        Store
	bus          Bus
	interval     time.Duration
	stuckAfter   time.Duration
	pendingAfter time.Duration
	log          *logger.Logger
}

func New(d Deps) *Reconciler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	r := &Reconciler{
		store:        d.Store,
		bus:          d.Bus,
		interval:     d.Interval,
		stuckAfter:   d.StuckAfter,
		pendingAfter: d.PendingAfter,
		log:          log.WithComponent("reconciler"),
	}
	if r.interval == 0 {
		r.interval = time.Minute
	}
	if r.stuckAfter == 0 {
		r.stuckAfter = 10 * time.Minute
	}
	if r.pendingAfter == 0 {
		r.pendingAfter = 2 * time.Minute
	}
	return r
}

// Run sweeps on a ticker until ctx is canceled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reconciler stopping")
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				r.log.Warn("sweep failed", "error", err.Error())
			}
		}
	}
}

// Sweep recovers lost work in three passes:
//  1. deliveries stranded in the bus pending list (worker died before ack),
//  2. jobs stuck in PROCESSING past the threshold (worker died after claim),
//  3. PENDING jobs whose publish never happened (insert committed, push failed).
//
// Every pass may produce duplicate deliveries; the processor's claim CAS
// makes those no-ops.
func (r *Reconciler) Sweep(ctx context.Context) error {
	moved, err := r.bus.RequeuePending(ctx)
	if err != nil {
		return err
	}
	if moved > 0 {
		r.log.Info("requeued stranded deliveries", "count", moved)
	}

	now := time.Now().UTC()

	stuck, err := r.store.RequeueStuck(ctx, now.Add(-r.stuckAfter))
	if err != nil {
		return err
	}
	for _, id := range stuck {
		if err := r.bus.Publish(ctx, id); err != nil {
			// Still PENDING in the store; the next sweep retries the publish.
			return err
		}
	}
	if len(stuck) > 0 {
		r.log.Info("requeued stuck jobs", "count", len(stuck))
	}

	unpublished, err := r.store.TouchPendingOlderThan(ctx, now.Add(-r.pendingAfter))
	if err != nil {
		return err
	}
	for _, id := range unpublished {
		if err := r.bus.Publish(ctx, id); err != nil {
			return err
		}
	}
	if len(unpublished) > 0 {
		r.log.Info("republished pending jobs", "count", len(unpublished))
	}

	return nil
}
