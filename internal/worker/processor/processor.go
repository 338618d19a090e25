package processor

import (
	"bytes"
	"context"
	"time"

	"voxpress/internal/models"
	"voxpress/internal/pkg/errors"
	"voxpress/internal/pkg/logger"
	"voxpress/internal/ports"
	"voxpress/internal/repositories"
	"voxpress/internal/synth"
)

// JobStore is the slice of the job repository the processor needs.
type JobStore interface {
	Get(ctx context.Context, id string) (*models.Job, error)
	ClaimPending(ctx context.Context, id string) (bool, error)
	MarkComplete(ctx context.Context, id, artifactKey string) error
	MarkFailed(ctx context.Context, id, errText string) error
}

type Deps struct {
	Store        JobStore
	Synth        synth.Client
	SP           ports.StorageProvider
	SynthTimeout time.Duration
	Log          *logger.Logger
}

type Processor struct {
	store        JobStore
	synth        synth.Client
	sp           ports.StorageProvider
	synthTimeout time.Duration
	log          *logger.Logger
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	timeout := d.SynthTimeout
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	return &Processor{
		store:        d.Store,
		synth:        d.Synth,
		sp:           d.SP,
		synthTimeout: timeout,
		log:          log.WithComponent("processor"),
	}
}

// ProcessJob runs the per-job state machine for one delivery.
//
// A nil return means the delivery is settled (completed, failed terminally,
// duplicate, or unknown id) and must be acked. A non-nil return means an
// infra step failed mid-flight; the delivery stays un-acked so it is
// redelivered, and any job left in PROCESSING is picked up by the sweep.
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	job, err := p.store.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			// The submission API never publishes before the insert commits,
			// so an unknown id is a deleted job. Drop the event.
			log.Warn("event for unknown job, dropping")
			return nil
		}
		return errors.WrapWithCode(err, errors.CodeUnavailable, "processor.load", "failed to load job")
	}

	if job.Status != models.StatusPending {
		// Duplicate delivery under at-least-once; the job already progressed.
		log.Debug("duplicate delivery, skipping", "status", string(job.Status))
		return nil
	}

	claimed, err := p.store.ClaimPending(ctx, jobID)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "processor.claim", "failed to claim job")
	}
	if !claimed {
		// Lost the claim race to a concurrent delivery.
		log.Debug("claim lost to concurrent worker")
		return nil
	}

	log.Debug("synthesizing", "voice", job.Voice, "text_len", len(job.Text))
	synthCtx, cancel := context.WithTimeout(ctx, p.synthTimeout)
	res, err := p.synth.Synthesize(synthCtx, job.Text, job.Voice)
	cancel()
	if err != nil {
		// Conversion failure is terminal: record it on the job, ack the event.
		if synthCtx.Err() == context.DeadlineExceeded {
			err = errors.WrapWithCode(err, errors.CodeTimeout, "processor.synthesize", "synthesis timed out")
		} else {
			err = errors.WrapWithCode(err, errors.CodeConversion, "processor.synthesize", "synthesis failed")
		}
		return p.failJob(ctx, jobID, err)
	}

	key := ArtifactKey(jobID, res.ContentType)
	log.Debug("storing artifact", "key", key, "bytes", len(res.Audio))
	put, err := p.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: res.ContentType,
		Reader:      bytes.NewReader(res.Audio),
		Size:        int64(len(res.Audio)),
	})
	if err != nil {
		// Storage is infra: leave the job in PROCESSING for the sweep.
		return errors.WrapWithCode(err, errors.CodeUnavailable, "processor.store", "failed to store artifact")
	}

	if err := p.store.MarkComplete(ctx, jobID, put.ObjectKey); err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			// Another actor moved the job while we synthesized (sweep requeue
			// plus a faster duplicate). The artifact write is id-addressed, so
			// the winner's record still points at valid audio.
			log.Warn("completion lost state race, dropping")
			return nil
		}
		return errors.WrapWithCode(err, errors.CodeUnavailable, "processor.complete", "failed to mark job complete")
	}

	log.Info("job complete", "artifact_key", put.ObjectKey)
	return nil
}

// failJob records a terminal failure. The write itself can fail; that error
// propagates so the delivery is retried.
func (p *Processor) failJob(ctx context.Context, jobID string, cause error) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	msg := ""
	if cause != nil {
		msg = cause.Error()

		var appErr *errors.Error
		if errors.As(cause, &appErr) {
			log.Error("job failed",
				"code", string(appErr.Code),
				"op", appErr.Op,
				"message", appErr.Message,
			)
		} else {
			log.Error("job failed", "error", msg)
		}
	}

	if err := p.store.MarkFailed(ctx, jobID, msg); err != nil {
		if errors.Is(err, repositories.ErrStateConflict) {
			log.Warn("failure record lost state race, dropping")
			return nil
		}
		return errors.WrapWithCode(err, errors.CodeUnavailable, "processor.fail", "failed to mark job failed")
	}
	return nil
}
