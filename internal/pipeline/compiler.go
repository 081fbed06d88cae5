package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rowkit/internal/config"
	"rowkit/internal/plugin"
	"rowkit/internal/rowfunc"
	"rowkit/internal/spec"
	"rowkit/internal/telemetry"
	"rowkit/internal/transform"
	"rowkit/sink"
	"rowkit/source"

	// drivers register themselves in init
	_ "rowkit/sink/file"
	_ "rowkit/sink/kafka"
	_ "rowkit/sink/stdout"
	_ "rowkit/source/file"
	_ "rowkit/source/kafka"
)

// Options tune Compile. The zero value is usable.
type Options struct {
	// InputOverride replaces source.path; the type is re-inferred from it.
	InputOverride string
	Metrics       *telemetry.Metrics
	Logger        *slog.Logger
	// Factory supplies row functions; nil means rowfunc.NewFactory().
	Factory *rowfunc.Factory
}

// Compile reads a job file and wires its source, computed columns and
// sinks into a Runner.
func Compile(path string, opts Options) (*Runner, error) {
	job, err := config.LoadJobSpec(path)
	if err != nil {
		return nil, err
	}
	if opts.InputOverride != "" {
		job.Source.Path, job.Source.Type = opts.InputOverride, ""
	}

	r := NewRunner(opts.Metrics, opts.Logger)
	if err := build(r, job, opts.Factory); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

func build(r *Runner, job spec.File, f *rowfunc.Factory) error {
	/*──────── source ───────*/
	kind, err := typeOf(job.Source.Type, job.Source.Path)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	src, err := source.NewAdapter(kind)
	if err != nil {
		return err
	}
	r.SetSource(kind, src)
	if err := src.Configure(job.Source); err != nil {
		return fmt.Errorf("source %s: %w", kind, err)
	}

	/*──────── computed columns ───────*/
	if f == nil {
		f = rowfunc.NewFactory()
	}
	f.Register("plugin", func(def spec.ColumnSpec) (transform.RowFunc, error) {
		if def.Address == "" {
			return nil, errors.New("address is required")
		}
		cli, err := plugin.NewGRPCClient(def.Address)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", def.Address, err)
		}
		r.AddCloser(cli)
		return plugin.RowFunc(cli, def.Columns, time.Duration(def.TimeoutMS)*time.Millisecond), nil
	})
	ts, err := f.Build(job.Transform.Columns)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	r.SetSpec(ts,
		transform.WithWorkers(job.Transform.NJobs),
		transform.WithKeepOriginal(job.Transform.KeepOriginalOrDefault()),
	)

	/*──────── sinks ───────*/
	sinks := job.Sinks
	if len(sinks) == 0 {
		sinks = []spec.SinkSpec{{Type: "stdout"}}
	}
	for i, s := range sinks {
		kind, err := typeOf(s.Type, s.Path)
		if err != nil {
			return fmt.Errorf("sinks[%d]: %w", i, err)
		}
		drv, err := sink.NewAdapter(kind)
		if err != nil {
			return fmt.Errorf("sinks[%d]: %w", i, err)
		}
		r.AddSink(kind, drv)
		if err := drv.Configure(s); err != nil {
			return fmt.Errorf("sinks[%d] %s: %w", i, kind, err)
		}
	}
	return nil
}

// typeOf returns kind, or infers a file type from path when kind is empty.
func typeOf(kind, path string) (string, error) {
	if kind != "" {
		return kind, nil
	}
	if path == "" {
		return "", errors.New("type or path is required")
	}
	return source.TypeForPath(path)
}
