// Package file loads datasets from local csv, json and xlsx files.
package file

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"rowkit/internal/frame"
	"rowkit/internal/spec"
	"rowkit/source"
)

func asSpec(kind string, raw any) (spec.SourceSpec, error) {
	c, ok := raw.(spec.SourceSpec)
	if !ok {
		return c, fmt.Errorf("%s-source: expected SourceSpec, got %T", kind, raw)
	}
	if c.Path == "" {
		return c, fmt.Errorf("%s-source: path is required", kind)
	}
	return c, nil
}

func open(ctx context.Context, path string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// fromCells turns a header plus text rows into typed columns. Short rows
// are padded with empty cells and every column goes through type inference.
func fromCells(header []string, rows [][]string) (*frame.Dataset, error) {
	names := uniqueHeader(header)
	cols := make([][]any, len(names))
	cells := make([]string, len(rows))
	for c := range names {
		for r, row := range rows {
			if c < len(row) {
				cells[r] = row[c]
			} else {
				cells[r] = ""
			}
		}
		cols[c] = frame.InferColumn(cells)
	}
	return frame.New(names, cols)
}

// uniqueHeader names blank header cells "Unnamed: i" and suffixes repeated
// names with ".1", ".2", ...
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func init() {
	source.Register("csv", func() source.Adapter { return &csvDriver{} })
	source.Register("json", func() source.Adapter { return &jsonDriver{} })
	source.Register("xlsx", func() source.Adapter { return &xlsxDriver{} })
}
