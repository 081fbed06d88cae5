package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"rowkit/internal/logging"
	"rowkit/internal/pipeline"
	"rowkit/internal/telemetry"
)

type Config struct {
	JobFile       string
	InputOverride string // replaces the job's source path
	MetricsPort   int    // 0 disables the /metrics endpoint
}

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.JobFile == "" {
		return nil, errors.New("engine: job file is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. metrics
	var metrics *http.Server
	if cfg.MetricsPort > 0 {
		srv, err := telemetry.Expose(cfg.MetricsPort)
		if err != nil {
			return nil, err
		}
		metrics = srv
		logging.L().Info("metrics exposed", "addr", srv.Addr)
	}

	// 2. pipeline runner
	runner, err := pipeline.Compile(cfg.JobFile, pipeline.Options{
		InputOverride: cfg.InputOverride,
		Metrics:       telemetry.Default(),
		Logger:        logging.L(),
	})
	if err != nil {
		if metrics != nil {
			_ = metrics.Close()
		}
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	logging.L().Debug("pipeline compiled", "job", cfg.JobFile, "run_id", runner.ID())

	return &Engine{runner: runner, metrics: metrics}, nil
}
