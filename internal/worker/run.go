package worker

import (
	"context"
	"time"

	"voxpress/internal/pkg/logger"
	"voxpress/internal/repositories"
	"voxpress/internal/synth"
	"voxpress/internal/worker/processor"
	"voxpress/internal/worker/queue"
	"voxpress/internal/worker/reconciler"
)

// Run consumes "job created" events until ctx is canceled. Settled deliveries
// are acked; deliveries that hit infra errors are left pending so the
// reconciliation sweep requeues them.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	q := queue.NewRedisQueue(d.RDB, d.Cfg.QueueName)
	repo := repositories.NewJobRepository(d.Pool)

	p := processor.New(processor.Deps{
		Store:        repo,
		Synth:        synth.NewHTTPClient(d.Cfg.SynthBaseURL),
		SP:           d.SP,
		SynthTimeout: d.Cfg.SynthTimeout,
		Log:          log,
	})

	rec := reconciler.New(reconciler.Deps{
		Store:        repo,
		Bus:          q,
		Interval:     d.Cfg.SweepInterval,
		StuckAfter:   d.Cfg.RequeueStuckAfter,
		PendingAfter: d.Cfg.RepublishPendAfter,
		Log:          log,
	})
	go rec.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("worker context canceled, stopping")
			return ctx.Err()
		default:
		}

		// Use a separate context with timeout for queue operations
		popCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		jobID, err := q.Pop(popCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping due to context cancellation")
				return ctx.Err()
			}

			if popCtx.Err() != context.DeadlineExceeded {
				log.Warn("queue pop error, retrying",
					"error", err.Error(),
				)
				time.Sleep(1 * time.Second)
			}
			continue
		}

		if jobID == "" {
			continue
		}

		jobCtx := logger.ContextWithJobID(ctx, jobID)
		jobLog := log.WithJobID(jobID)

		jobLog.Info("processing job")
		startTime := time.Now()

		if err := p.ProcessJob(jobCtx, jobID); err != nil {
			// Not acked: the id stays in the pending list for the sweep.
			jobLog.Error("delivery not settled",
				"error", err.Error(),
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
			continue
		}

		if err := q.Ack(jobCtx, jobID); err != nil {
			jobLog.Warn("ack failed, duplicate delivery possible",
				"error", err.Error(),
			)
		}
		jobLog.Info("delivery settled",
			"duration_ms", time.Since(startTime).Milliseconds(),
		)
	}
}
