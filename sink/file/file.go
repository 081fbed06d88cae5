// Package file writes datasets to local csv, json and xlsx files.
package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"rowkit/internal/spec"
	"rowkit/sink"
)

func asSpec(kind string, raw any) (spec.SinkSpec, error) {
	c, ok := raw.(spec.SinkSpec)
	if !ok {
		return c, fmt.Errorf("%s-sink: expected SinkSpec, got %T", kind, raw)
	}
	if c.Path == "" {
		return c, fmt.Errorf("%s-sink: path is required", kind)
	}
	return c, nil
}

// prepare creates the parent directories of path.
func prepare(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// replaceFile runs write against a temp file next to path and renames it
// into place only when write succeeds. A failed write leaves path as it was.
func replaceFile(ctx context.Context, path string, write func(w *bufio.Writer) error) error {
	if err := prepare(ctx, path); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	bw := bufio.NewWriter(f)
	err = write(bw)
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		err = f.Chmod(0o644)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
	}
	return err
}

func init() {
	sink.Register("csv", func() sink.Adapter { return &csvDriver{} })
	sink.Register("json", func() sink.Adapter { return &jsonDriver{} })
	sink.Register("xlsx", func() sink.Adapter { return &xlsxDriver{} })
}
