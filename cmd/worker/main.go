package main

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"voxpress/internal/config"
	"voxpress/internal/pkg/logger"
	"voxpress/internal/pkg/shutdown"
	"voxpress/internal/storage"
	"voxpress/internal/worker"
)

func main() {
	cfg, cfgErr := config.LoadWorker()

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "voxpress-worker",
		AddSource:   cfg.LogSource,
	})
	if cfgErr != nil {
		log.LogFatal("invalid configuration", cfgErr)
	}

	log.Info("starting voxpress worker",
		"version", "0.1.0",
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)
	shutdownMgr.RegisterSimple("worker-loop", cancel)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}

	sp, err := storage.NewProvider()
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	go func() {
		err := worker.Run(ctx, worker.Deps{
			Pool: pool,
			RDB:  rdb,
			SP:   sp,
			Cfg:  cfg,
			Log:  log,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.LogFatal("worker loop failed", err)
		}
	}()

	shutdownMgr.Wait()
}
