package transform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"rowkit/internal/frame"
)

// AutoWorkers asks Apply to size the pool from the host CPU count.
const AutoWorkers = 0

var numCPU = runtime.NumCPU

// ResolveWorkers maps a requested worker count to an effective one:
// non-positive means max(NumCPU-1, 1).
func ResolveWorkers(n int) int {
	if n > 0 {
		return n
	}
	if c := numCPU() - 1; c > 1 {
		return c
	}
	return 1
}

// RowError locates a failing row function.
type RowError struct {
	Column string
	Row    int
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("transform: column %q row %d: %v", e.Column, e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

type Option func(*config)

type config struct {
	workers      int
	keepOriginal bool
	executor     Executor
	logger       *slog.Logger
}

// WithWorkers sets the worker count; 1 is sequential, AutoWorkers (or any
// non-positive value) resolves via ResolveWorkers.
func WithWorkers(n int) Option { return func(c *config) { c.workers = n } }

// WithKeepOriginal controls whether input columns precede the new ones.
func WithKeepOriginal(keep bool) Option { return func(c *config) { c.keepOriginal = keep } }

// WithExecutor overrides the executor picked from the worker count.
func WithExecutor(e Executor) Option { return func(c *config) { c.executor = e } }

func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

func applyOptions(opts []Option) *config {
	cfg := &config{workers: AutoWorkers, keepOriginal: true}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.executor == nil {
		cfg.executor = NewExecutor(ResolveWorkers(cfg.workers))
	}
	return cfg
}

// Apply returns a new dataset with the spec's columns computed for every
// row of ds. ds is not modified. Row count and order are preserved; with
// keep-original the input columns come first, followed by the new columns in
// spec order. Any row error aborts the call and no dataset is returned.
func Apply(ctx context.Context, ds *frame.Dataset, spec *Spec, opts ...Option) (*frame.Dataset, error) {
	if ds == nil {
		return nil, errors.New("transform: nil dataset")
	}
	cfg := applyOptions(opts)

	var out *frame.Dataset
	if cfg.keepOriginal {
		out = ds.Clone()
	} else {
		out = frame.WithRows(ds.Len())
	}
	if spec.Len() == 0 {
		return out, nil
	}

	rows := ds.Rows()
	for _, name := range spec.names {
		fn := spec.fn(name)
		start := time.Now()
		cfg.logger.Debug("transform: column start", "column", name, "rows", len(rows))

		values, err := cfg.executor.Map(ctx, len(rows), func(ctx context.Context, i int) (any, error) {
			v, err := fn(ctx, rows[i])
			if err != nil {
				return nil, &RowError{Column: name, Row: i, Err: err}
			}
			return v, nil
		})
		if err != nil {
			var re *RowError
			if !errors.As(err, &re) && !errors.Is(err, ctx.Err()) {
				// panics are raised outside the RowError wrapper
				err = fmt.Errorf("transform: column %q: %w", name, err)
			}
			return nil, err
		}
		if err := out.SetColumn(name, values); err != nil {
			return nil, err
		}
		cfg.logger.Debug("transform: column done", "column", name, "took", time.Since(start))
	}
	return out, nil
}
