package file

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"rowkit/internal/frame"
	"rowkit/internal/spec"
)

// xlsxDriver reads one worksheet; the first row is the header.
type xlsxDriver struct{ cfg spec.SourceSpec }

func (d *xlsxDriver) Configure(raw any) (err error) {
	d.cfg, err = asSpec("xlsx", raw)
	return err
}

func (d *xlsxDriver) Load(ctx context.Context) (*frame.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wb, err := excelize.OpenFile(d.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer wb.Close()

	sheet := d.cfg.Sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx-source: %s: workbook has no sheets", d.cfg.Path)
		}
		sheet = sheets[0]
	}
	if idx, err := wb.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("xlsx-source: %s: sheet %q not found", d.cfg.Path, sheet)
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx-source: %s: %w", d.cfg.Path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx-source: %s: sheet %q has no header row", d.cfg.Path, sheet)
	}
	return fromCells(rows[0], rows[1:])
}

func (*xlsxDriver) Close() error { return nil }
