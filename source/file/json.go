package file

import (
	"bufio"
	"context"
	"fmt"

	"rowkit/internal/frame"
	"rowkit/internal/spec"
)

// jsonDriver reads a top-level array of objects.
type jsonDriver struct{ cfg spec.SourceSpec }

func (d *jsonDriver) Configure(raw any) (err error) {
	d.cfg, err = asSpec("json", raw)
	return err
}

func (d *jsonDriver) Load(ctx context.Context) (*frame.Dataset, error) {
	f, err := open(ctx, d.cfg.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := frame.ReadJSON(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("json-source: %s: %w", d.cfg.Path, err)
	}
	return ds, nil
}

func (*jsonDriver) Close() error { return nil }
