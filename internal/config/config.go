// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// API is the configuration for the HTTP API binary.
type API struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR,required"`

	QueueName string `env:"JOB_QUEUE_NAME" envDefault:"voxpress:jobs"`

	// Voices accepted by the submission API. Empty means the built-in catalog.
	Voices []string `env:"SYNTH_VOICES" envSeparator:","`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogSource bool   `env:"LOG_SOURCE" envDefault:"false"`
}

// Worker is the configuration for the synthesis worker binary.
type Worker struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisAddr   string `env:"REDIS_ADDR,required"`

	QueueName string `env:"JOB_QUEUE_NAME" envDefault:"voxpress:jobs"`

	SynthBaseURL string        `env:"SYNTH_HTTP_BASEURL,required"`
	SynthTimeout time.Duration `env:"SYNTH_TIMEOUT" envDefault:"300s"`

	// Reconciliation sweep tuning.
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	RequeueStuckAfter  time.Duration `env:"REQUEUE_STUCK_AFTER" envDefault:"10m"`
	RepublishPendAfter time.Duration `env:"REPUBLISH_PENDING_AFTER" envDefault:"2m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogSource bool   `env:"LOG_SOURCE" envDefault:"false"`
}

func LoadAPI() (API, error) {
	var cfg API
	err := env.Parse(&cfg)
	return cfg, err
}

func LoadWorker() (Worker, error) {
	var cfg Worker
	err := env.Parse(&cfg)
	return cfg, err
}
