package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"voxpress/internal/config"
	"voxpress/internal/httpapi/handlers"
	"voxpress/internal/httpkit"
	"voxpress/internal/pkg/logger"
	"voxpress/internal/pkg/middleware"
	"voxpress/internal/ports"
	"voxpress/internal/repositories"
	"voxpress/internal/synth"
	"voxpress/internal/worker/queue"
)

type Deps struct {
	Pool *pgxpool.Pool
	RDB  *redis.Client
	SP   ports.StorageProvider
	Cfg  config.API
	Log  *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logging(log))

	// Submissions come from a static site on another origin, so the wildcard
	// is the default.
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: d.Cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	h := handlers.New(handlers.Deps{
		Pool:   d.Pool,
		RDB:    d.RDB,
		SP:     d.SP,
		Store:  repositories.NewJobRepository(d.Pool),
		Bus:    queue.NewRedisQueue(d.RDB, d.Cfg.QueueName),
		Voices: synth.NewCatalog(d.Cfg.Voices),
		Log:    log,
	})

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- POSTS ----
	r.Post("/posts", h.CreatePost)
	r.Get("/posts", h.GetPost)

	return r
}
