package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"voxpress/internal/httpkit"
	"voxpress/internal/models"
)

var ErrJobNotFound = errors.New("job not found")
var ErrJobExists = errors.New("job already exists")

// ErrStateConflict means a conditional status update matched no row: the job
// was already moved on by another worker (or never reached the prior state).
var ErrStateConflict = errors.New("job not in expected state")

type JobRepository struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, j *models.Job) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO jobs (id, status, text, voice, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, j.ID, j.Status, j.Text, j.Voice, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			return ErrJobExists
		}
		return err
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	var j models.Job
	err := r.db.QueryRow(ctx, `
		SELECT id, status, text, voice, artifact_key, COALESCE(error_text,''), created_at, updated_at
		FROM jobs
		WHERE id=$1
	`, id).Scan(
		&j.ID,
		&j.Status,
		&j.Text,
		&j.Voice,
		&j.ArtifactKey,
		&j.ErrorText,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &j, nil
}

// ClaimPending is the PENDING→PROCESSING transition. The WHERE clause is the
// compare-and-swap: of N workers racing on the same id, exactly one sees
// RowsAffected()==1. Returns false (no error) when the job was already claimed.
func (r *JobRepository) ClaimPending(ctx context.Context, id string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE jobs
		SET status=$2, error_text=NULL, updated_at=now()
		WHERE id=$1 AND status=$3
	`, id, models.StatusProcessing, models.StatusPending)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// MarkComplete finishes a PROCESSING job, recording the artifact in the same
// statement so artifact_key is set iff status is COMPLETE.
func (r *JobRepository) MarkComplete(ctx context.Context, id, artifactKey string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE jobs
		SET status=$2, artifact_key=$3, updated_at=now()
		WHERE id=$1 AND status=$4
	`, id, models.StatusComplete, artifactKey, models.StatusProcessing)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

func (r *JobRepository) MarkFailed(ctx context.Context, id, errText string) error {
	if len(errText) > 2000 {
		errText = errText[:2000]
	}
	cmd, err := r.db.Exec(ctx, `
		UPDATE jobs
		SET status=$2, error_text=$3, artifact_key=NULL, updated_at=now()
		WHERE id=$1 AND status=$4
	`, id, models.StatusFailed, errText, models.StatusProcessing)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStateConflict
	}
	return nil
}

// RequeueStuck resets jobs left in PROCESSING past the cutoff back to PENDING
// and returns their ids so the caller can re-publish them. A worker crash
// between claim and completion leaves the job here.
func (r *JobRepository) RequeueStuck(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE jobs
		SET status=$1, updated_at=now()
		WHERE status=$2 AND updated_at < $3
		RETURNING id
	`, models.StatusPending, models.StatusProcessing, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

// TouchPendingOlderThan returns PENDING jobs not touched since the cutoff,
// bumping updated_at so one sweep claims each job for republish. These are
// jobs whose "job created" publish failed after the insert, or whose queue
// backlog outlived the grace period (a duplicate publish is then harmless).
func (r *JobRepository) TouchPendingOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE jobs
		SET updated_at=now()
		WHERE status=$1 AND updated_at < $2
		RETURNING id
	`, models.StatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIDs(rows)
}

func collectIDs(rows pgx.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
