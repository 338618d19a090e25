package worker

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"voxpress/internal/config"
	"voxpress/internal/pkg/logger"
	"voxpress/internal/ports"
)

type Deps struct {
	Pool *pgxpool.Pool
	RDB  *redis.Client
	SP   ports.StorageProvider
	Cfg  config.Worker
	Log  *logger.Logger
}
