// Package rowfunc turns declarative column definitions from a job file into
// row functions for the transformer.
package rowfunc

import (
	"fmt"
	"strings"

	"rowkit/internal/spec"
	"rowkit/internal/transform"
)

// CreatorFunc builds a row function from one column definition.
type CreatorFunc func(def spec.ColumnSpec) (transform.RowFunc, error)

// Factory maps op names to creators.
type Factory struct {
	creators map[string]CreatorFunc
}

// NewFactory returns a factory with every built-in op registered.
func NewFactory() *Factory {
	f := &Factory{creators: make(map[string]CreatorFunc)}
	f.Register("copy", newCopy)
	f.Register("const", newConst)
	f.Register("add", arithmetic(opAdd))
	f.Register("sub", arithmetic(opSub))
	f.Register("mul", arithmetic(opMul))
	f.Register("div", arithmetic(opDiv))
	f.Register("concat", newConcat)
	f.Register("upper", stringOp(strings.ToUpper))
	f.Register("lower", stringOp(strings.ToLower))
	f.Register("trim", stringOp(strings.TrimSpace))
	f.Register("round", newRound)
	f.Register("coalesce", newCoalesce)
	return f
}

// Register adds or replaces the creator for op.
func (f *Factory) Register(op string, c CreatorFunc) { f.creators[op] = c }

// Has reports whether op is registered.
func (f *Factory) Has(op string) bool {
	_, ok := f.creators[op]
	return ok
}

func (f *Factory) Create(def spec.ColumnSpec) (transform.RowFunc, error) {
	creator, ok := f.creators[def.Op]
	if !ok {
		return nil, fmt.Errorf("column %q: unknown op %q", def.Name, def.Op)
	}
	fn, err := creator(def)
	if err != nil {
		return nil, fmt.Errorf("column %q: op %s: %w", def.Name, def.Op, err)
	}
	return fn, nil
}

// Build creates a transform spec whose key order follows defs.
func (f *Factory) Build(defs []spec.ColumnSpec) (*transform.Spec, error) {
	s := transform.NewSpec()
	for _, def := range defs {
		fn, err := f.Create(def)
		if err != nil {
			return nil, err
		}
		if err := s.Add(def.Name, fn); err != nil {
			return nil, err
		}
	}
	return s, nil
}
