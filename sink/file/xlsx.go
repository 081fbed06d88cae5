package file

import (
	"bufio"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"rowkit/internal/frame"
	"rowkit/internal/spec"
)

const defaultSheet = "Sheet1"

type xlsxDriver struct{ cfg spec.SinkSpec }

func (d *xlsxDriver) Configure(raw any) (err error) {
	d.cfg, err = asSpec("xlsx", raw)
	return err
}

func (d *xlsxDriver) Write(ctx context.Context, ds *frame.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wb := excelize.NewFile()
	defer wb.Close()

	sheet := d.cfg.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := wb.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("xlsx-sink: %w", err)
		}
	}

	cols := ds.Columns()
	if len(cols) > 0 {
		header := make([]any, len(cols))
		for i, c := range cols {
			header[i] = c
		}
		if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("xlsx-sink: header: %w", err)
		}
		style, err := wb.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
		if err != nil {
			return fmt.Errorf("xlsx-sink: style: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(cols), 1)
		if err := wb.SetCellStyle(sheet, "A1", last, style); err != nil {
			return fmt.Errorf("xlsx-sink: style: %w", err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(cols))
		_ = wb.SetColWidth(sheet, "A", lastCol, 15)
		_ = wb.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}

	for i := 0; i < ds.Len(); i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		row := ds.Record(i)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx-sink: row %d: %w", i, err)
		}
	}
	err := replaceFile(ctx, d.cfg.Path, func(w *bufio.Writer) error { return wb.Write(w) })
	if err != nil {
		return fmt.Errorf("xlsx-sink: save %s: %w", d.cfg.Path, err)
	}
	return nil
}

func (*xlsxDriver) Close() error { return nil }
