package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rowkit/internal/engine"
	"rowkit/internal/logging"
)

func newRunCmd() *cobra.Command {
	var cfg engine.Config
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a job: load, compute columns, write sinks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runJob(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.JobFile, "job", "", "job file (YAML)")
	cmd.Flags().StringVar(&cfg.InputOverride, "input", "", "input file overriding the job's source path")
	cmd.Flags().IntVar(&cfg.MetricsPort, "metrics-port", 0, "serve Prometheus /metrics on this port (0 = off)")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func runJob(ctx context.Context, cfg engine.Config) error {
	logging.L().Debug("starting job", "job", cfg.JobFile, "input", cfg.InputOverride)
	e, err := engine.Bootstrap(ctx, cfg)
	if err != nil {
		logging.L().Error("bootstrap failed", "err", err)
		return err
	}
	out, err := e.Run(ctx)
	if err != nil {
		logging.L().Error("job failed", "err", err)
		return err
	}
	logging.L().Debug("finished job", "rows", out.Len(), "columns", out.Width())
	return nil
}
