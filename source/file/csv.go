package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"rowkit/internal/frame"
	"rowkit/internal/spec"
)

type csvDriver struct {
	cfg   spec.SourceSpec
	comma rune
}

func (d *csvDriver) Configure(raw any) error {
	c, err := asSpec("csv", raw)
	if err != nil {
		return err
	}
	d.cfg, d.comma = c, ','
	switch {
	case c.Delimiter == `\t`:
		d.comma = '\t'
	case c.Delimiter != "":
		r, size := utf8.DecodeRuneInString(c.Delimiter)
		if size != len(c.Delimiter) {
			return fmt.Errorf("csv-source: delimiter %q must be a single character", c.Delimiter)
		}
		d.comma = r
	case strings.EqualFold(filepath.Ext(c.Path), ".tsv"):
		d.comma = '\t'
	}
	return nil
}

func (d *csvDriver) Load(ctx context.Context) (*frame.Dataset, error) {
	f, err := open(ctx, d.cfg.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = d.comma
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv-source: %s: no header row", d.cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("csv-source: %s: %w", d.cfg.Path, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv-source: %s: %w", d.cfg.Path, err)
		}
		rows = append(rows, rec)
		if len(rows)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	return fromCells(header, rows)
}

func (*csvDriver) Close() error { return nil }
