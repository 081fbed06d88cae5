package file

import (
	"bufio"
	"context"
	"encoding/csv"

	"rowkit/internal/frame"
	"rowkit/internal/spec"
)

type csvDriver struct{ cfg spec.SinkSpec }

func (d *csvDriver) Configure(raw any) (err error) {
	d.cfg, err = asSpec("csv", raw)
	return err
}

func (d *csvDriver) Write(ctx context.Context, ds *frame.Dataset) error {
	return replaceFile(ctx, d.cfg.Path, func(bw *bufio.Writer) error {
		w := csv.NewWriter(bw)
		if err := w.Write(ds.Columns()); err != nil {
			return err
		}
		rec := make([]string, ds.Width())
		for i := 0; i < ds.Len(); i++ {
			if i%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			for c := range rec {
				rec[c] = frame.Format(ds.Value(i, c))
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

func (*csvDriver) Close() error { return nil }
