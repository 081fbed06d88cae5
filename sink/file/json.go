package file

import (
	"bufio"
	"context"

	"rowkit/internal/frame"
	"rowkit/internal/spec"
)

// jsonDriver writes an array of objects, one per row, keys in column order.
type jsonDriver struct{ cfg spec.SinkSpec }

func (d *jsonDriver) Configure(raw any) (err error) {
	d.cfg, err = asSpec("json", raw)
	return err
}

func (d *jsonDriver) Write(ctx context.Context, ds *frame.Dataset) error {
	return replaceFile(ctx, d.cfg.Path, func(w *bufio.Writer) error {
		return writeRecords(ctx, w, ds)
	})
}

func writeRecords(ctx context.Context, w *bufio.Writer, ds *frame.Dataset) error {
	if ds.Len() == 0 {
		_, err := w.WriteString("[]\n")
		return err
	}
	w.WriteString("[\n")
	for i := 0; i < ds.Len(); i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		b, err := ds.MarshalRow(i)
		if err != nil {
			return err
		}
		w.WriteString("  ")
		w.Write(b)
		if i < ds.Len()-1 {
			w.WriteByte(',')
		}
		w.WriteByte('\n')
	}
	_, err := w.WriteString("]\n")
	return err
}

func (*jsonDriver) Close() error { return nil }
