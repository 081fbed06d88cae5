package frame

import (
	"errors"
	"fmt"
)

var (
	ErrNoColumn        = errors.New("frame: no such column")
	ErrDuplicateColumn = errors.New("frame: duplicate column")
	ErrLength          = errors.New("frame: column length mismatch")
)

// Dataset is an immutable-by-convention, column-oriented table. Columns keep
// insertion order and every column holds exactly Len() values.
type Dataset struct {
	names []string
	index map[string]int
	cols  [][]any
	rows  int
}

// New builds a dataset from parallel name/column slices.
func New(names []string, cols [][]any) (*Dataset, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("frame: %d names for %d columns", len(names), len(cols))
	}
	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0])
	}
	d := WithRows(rows)
	for i, name := range names {
		if err := d.add(name, cols[i]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// FromRecords builds a dataset from row-major records. Short records are
// padded with nil.
func FromRecords(names []string, records [][]any) (*Dataset, error) {
	cols := make([][]any, len(names))
	for c := range cols {
		cols[c] = make([]any, len(records))
	}
	for r, rec := range records {
		if len(rec) > len(names) {
			return nil, fmt.Errorf("frame: record %d has %d values for %d columns", r, len(rec), len(names))
		}
		for c, v := range rec {
			cols[c][r] = v
		}
	}
	d := WithRows(len(records))
	for i, name := range names {
		if err := d.add(name, cols[i]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// WithRows returns a dataset with n rows and no columns.
func WithRows(n int) *Dataset {
	return &Dataset{index: make(map[string]int), rows: n}
}

func (d *Dataset) add(name string, values []any) error {
	if name == "" {
		return errors.New("frame: empty column name")
	}
	if _, dup := d.index[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	if len(values) != d.rows {
		return fmt.Errorf("%w: column %q has %d values, want %d", ErrLength, name, len(values), d.rows)
	}
	d.index[name] = len(d.names)
	d.names = append(d.names, name)
	d.cols = append(d.cols, values)
	return nil
}

// Len returns the row count.
func (d *Dataset) Len() int { return d.rows }

// Width returns the column count.
func (d *Dataset) Width() int { return len(d.names) }

// Columns returns the column names in order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.names...)
}

func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]any, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	return append([]any(nil), d.cols[i]...), nil
}

// Value returns the cell at (row, column index).
func (d *Dataset) Value(row, col int) any { return d.cols[col][row] }

// Record returns row i as a slice ordered like Columns().
func (d *Dataset) Record(i int) []any {
	rec := make([]any, len(d.cols))
	for c := range d.cols {
		rec[c] = d.cols[c][i]
	}
	return rec
}

func (d *Dataset) Row(i int) Row { return Row{ds: d, i: i} }

// Rows materializes a view for every row.
func (d *Dataset) Rows() []Row {
	rows := make([]Row, d.rows)
	for i := range rows {
		rows[i] = Row{ds: d, i: i}
	}
	return rows
}

// Clone returns a dataset sharing no column slices with d.
func (d *Dataset) Clone() *Dataset {
	out := WithRows(d.rows)
	for i, name := range d.names {
		_ = out.add(name, append([]any(nil), d.cols[i]...))
	}
	return out
}

// SetColumn appends the column, or replaces it in place when the name
// already exists. values is owned by the dataset afterwards.
func (d *Dataset) SetColumn(name string, values []any) error {
	if i, ok := d.index[name]; ok {
		if len(values) != d.rows {
			return fmt.Errorf("%w: column %q has %d values, want %d", ErrLength, name, len(values), d.rows)
		}
		d.cols[i] = values
		return nil
	}
	return d.add(name, values)
}

// Head returns a copy of the first n rows.
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 || n > d.rows {
		n = d.rows
	}
	out := WithRows(n)
	for i, name := range d.names {
		_ = out.add(name, append([]any(nil), d.cols[i][:n]...))
	}
	return out
}
