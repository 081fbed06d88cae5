package frame

import "fmt"

// Row is a read-only view over one row of a Dataset, addressable by column
// name. It is cheap to copy and safe to share between goroutines as long as
// the dataset is not modified.
type Row struct {
	ds *Dataset
	i  int
}

func (r Row) Index() int { return r.i }

// Get returns the value of the named column. A missing column is reported
// here, at evaluation time.
func (r Row) Get(name string) (any, error) {
	c, ok := r.ds.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, name)
	}
	return r.ds.cols[c][r.i], nil
}

func (r Row) Float(name string) (float64, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	f, err := ToFloat(v)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return f, nil
}

func (r Row) String(name string) (string, error) {
	v, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return Format(v), nil
}

// Map copies the row into a map keyed by column name.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.ds.names))
	for c, name := range r.ds.names {
		m[name] = r.ds.cols[c][r.i]
	}
	return m
}

func (r Row) Columns() []string { return r.ds.Columns() }
