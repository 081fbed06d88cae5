// Package stdout prints a dataset preview as an aligned table.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"rowkit/internal/frame"
	"rowkit/internal/spec"
	"rowkit/sink"
)

// DefaultMaxRows is used when max_rows is unset; a negative value prints
// every row.
const DefaultMaxRows = 10

type Config struct {
	MaxRows int
}

type driver struct {
	cfg Config
	out io.Writer
}

// New returns a stdout sink writing to w instead of os.Stdout.
func New(w io.Writer, maxRows int) sink.Adapter {
	return &driver{cfg: Config{MaxRows: maxRows}, out: w}
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	switch c := raw.(type) {
	case Config:
		d.cfg = c
	case spec.SinkSpec:
		d.cfg = Config{MaxRows: c.MaxRows}
	default:
		return fmt.Errorf("stdout-sink: expected Config or SinkSpec, got %T", raw)
	}
	return nil
}

func (d *driver) Write(ctx context.Context, ds *frame.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.out == nil {
		d.out = os.Stdout
	}
	limit := d.cfg.MaxRows
	switch {
	case limit == 0:
		limit = DefaultMaxRows
	case limit < 0:
		limit = ds.Len()
	}
	shown := ds.Head(limit)

	tw := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	cols := shown.Columns()
	fmt.Fprintln(tw, "\t"+strings.Join(cols, "\t"))
	cells := make([]string, len(cols))
	for i := 0; i < shown.Len(); i++ {
		for c := range cols {
			cells[c] = frame.Format(shown.Value(i, c))
		}
		fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if shown.Len() < ds.Len() {
		fmt.Fprintf(d.out, "... %d more rows\n", ds.Len()-shown.Len())
	}
	_, err := fmt.Fprintf(d.out, "[%d rows x %d columns]\n", ds.Len(), ds.Width())
	return err
}

func (d *driver) Close() error { return nil }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
