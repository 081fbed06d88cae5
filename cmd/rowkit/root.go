package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"rowkit/internal/logging"
)

type rootFlags struct {
	logBase  string
	logLevel string
	logJSON  bool
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:   "rowkit",
		Short: "rowkit computes new columns for tabular datasets, row by row and in parallel",
		Long: `rowkit loads a dataset (csv, json, xlsx or a Kafka topic snapshot), derives
new columns from a job file, and writes the result to one or more sinks.

Usage:
  rowkit run --job job.yml [--input data.csv]
  rowkit head --input data.xlsx --rows 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(f, time.Now())
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.logBase, "log", "", "base path for the log file; a _YYYYmmdd_HHMMSS timestamp is inserted")
	pf.StringVar(&f.logLevel, "log-level", "debug", "debug, info, warn or error")
	pf.BoolVar(&f.logJSON, "log-json", false, "emit JSON log lines")

	cmd.AddCommand(newRunCmd(), newHeadCmd())
	return cmd
}

// runRoot executes cmd and closes the log file whether or not the command
// failed; cobra skips post-run hooks after a RunE error.
func runRoot(ctx context.Context, cmd *cobra.Command) (err error) {
	defer func() {
		if cerr := logging.Close(); err == nil {
			err = cerr
		}
	}()
	return cmd.ExecuteContext(ctx)
}

func setupLogging(f rootFlags, now time.Time) error {
	opts := logging.Options{Level: f.logLevel, JSON: f.logJSON}
	if f.logBase != "" {
		opts.File = logging.TimestampedPath(f.logBase, now)
	}
	if err := logging.Configure(opts); err != nil {
		return err
	}
	if opts.File != "" {
		abs, _ := filepath.Abs(opts.File)
		logging.L().Debug("logging to file", "path", abs)
	}
	return nil
}
