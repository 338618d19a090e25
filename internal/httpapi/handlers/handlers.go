package handlers

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"voxpress/internal/models"
	"voxpress/internal/pkg/logger"
	"voxpress/internal/ports"
	"voxpress/internal/synth"
)

// JobStore is the slice of the job repository the API needs: the submission
// API creates jobs, the query API reads them.
type JobStore interface {
	Create(ctx context.Context, j *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
}

// EventBus publishes "job created" events.
type EventBus interface {
	Publish(ctx context.Context, jobID string) error
}

type Deps struct {
	Pool   *pgxpool.Pool
	RDB    *redis.Client
	SP     ports.StorageProvider
	Store  JobStore
	Bus    EventBus
	Voices *synth.Catalog
	Log    *logger.Logger
}

type Handler struct {
	pool   *pgxpool.Pool
	rdb    *redis.Client
	sp     ports.StorageProvider
	store  JobStore
	bus    EventBus
	voices *synth.Catalog
	log    *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	voices := d.Voices
	if voices == nil {
		voices = synth.NewCatalog(nil)
	}
	return &Handler{
		pool:   d.Pool,
		rdb:    d.RDB,
		sp:     d.SP,
		store:  d.Store,
		bus:    d.Bus,
		voices: voices,
		log:    log,
	}
}
