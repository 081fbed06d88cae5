package transform

import (
	"context"
	"errors"
	"fmt"

	"rowkit/internal/frame"
)

var ErrDuplicateColumn = errors.New("transform: duplicate column")

// RowFunc computes one scalar for one row. It must not mutate shared state:
// under a worker pool it runs concurrently with itself.
type RowFunc func(ctx context.Context, row frame.Row) (any, error)

// Spec is an ordered mapping from new column name to RowFunc. Insertion
// order decides where the column lands in the output.
type Spec struct {
	names []string
	fns   map[string]RowFunc
}

func NewSpec() *Spec { return &Spec{fns: make(map[string]RowFunc)} }

func (s *Spec) Add(name string, fn RowFunc) error {
	if name == "" {
		return errors.New("transform: empty column name")
	}
	if fn == nil {
		return fmt.Errorf("transform: nil function for column %q", name)
	}
	if _, dup := s.fns[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	s.names = append(s.names, name)
	s.fns[name] = fn
	return nil
}

// MustAdd is Add for statically known specs; it panics on error.
func (s *Spec) MustAdd(name string, fn RowFunc) *Spec {
	if err := s.Add(name, fn); err != nil {
		panic(err)
	}
	return s
}

func (s *Spec) Names() []string { return append([]string(nil), s.names...) }

func (s *Spec) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

func (s *Spec) fn(name string) RowFunc { return s.fns[name] }
