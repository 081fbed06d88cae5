package rowfunc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"rowkit/internal/frame"
	"rowkit/internal/spec"
	"rowkit/internal/transform"
)

var (
	ErrDivideByZero = errors.New("division by zero")
	ErrArity        = errors.New("wrong number of columns")
)

func exactlyOne(def spec.ColumnSpec) error {
	if len(def.Columns) != 1 {
		return fmt.Errorf("%w: want 1, got %d", ErrArity, len(def.Columns))
	}
	return nil
}

func newCopy(def spec.ColumnSpec) (transform.RowFunc, error) {
	if err := exactlyOne(def); err != nil {
		return nil, err
	}
	col := def.Columns[0]
	return func(_ context.Context, r frame.Row) (any, error) {
		return r.Get(col)
	}, nil
}

func newConst(def spec.ColumnSpec) (transform.RowFunc, error) {
	v := normalize(def.Value)
	return func(context.Context, frame.Row) (any, error) { return v, nil }, nil
}

// normalize widens YAML integers so every integer value is an int64.
func normalize(v any) any {
	if i, ok := frame.ToInt(v); ok {
		return i
	}
	return v
}

/* ───────────── arithmetic ───────────── */

type binop int

const (
	opAdd binop = iota
	opSub
	opMul
	opDiv
)

// arithmetic folds the referenced columns left to right, then the literal
// value when set. The result is int64 when every operand is an integer
// (except for div), float64 otherwise, and nil when any operand is nil.
func arithmetic(op binop) CreatorFunc {
	return func(def spec.ColumnSpec) (transform.RowFunc, error) {
		n := len(def.Columns)
		if def.Value != nil {
			n++
		}
		if n < 2 {
			return nil, fmt.Errorf("%w: need at least 2 operands, got %d", ErrArity, n)
		}
		cols, lit := def.Columns, normalize(def.Value)
		return func(_ context.Context, r frame.Row) (any, error) {
			operands := make([]any, 0, n)
			for _, c := range cols {
				v, err := r.Get(c)
				if err != nil {
					return nil, err
				}
				operands = append(operands, v)
			}
			if lit != nil {
				operands = append(operands, lit)
			}
			return fold(op, operands)
		}, nil
	}
}

func fold(op binop, operands []any) (any, error) {
	ints := op != opDiv
	for _, v := range operands {
		if v == nil {
			return nil, nil
		}
		if _, ok := frame.ToInt(v); !ok {
			ints = false
		}
	}
	if ints {
		acc, _ := frame.ToInt(operands[0])
		for _, v := range operands[1:] {
			x, _ := frame.ToInt(v)
			switch op {
			case opAdd:
				acc += x
			case opSub:
				acc -= x
			case opMul:
				acc *= x
			}
		}
		return acc, nil
	}

	acc, err := frame.ToFloat(operands[0])
	if err != nil {
		return nil, err
	}
	for _, v := range operands[1:] {
		x, err := frame.ToFloat(v)
		if err != nil {
			return nil, err
		}
		switch op {
		case opAdd:
			acc += x
		case opSub:
			acc -= x
		case opMul:
			acc *= x
		case opDiv:
			if x == 0 {
				return nil, ErrDivideByZero
			}
			acc /= x
		}
	}
	return acc, nil
}

/* ───────────── strings ───────────── */

func newConcat(def spec.ColumnSpec) (transform.RowFunc, error) {
	if len(def.Columns) == 0 {
		return nil, fmt.Errorf("%w: need at least 1 column", ErrArity)
	}
	cols, sep := def.Columns, def.Sep
	return func(_ context.Context, r frame.Row) (any, error) {
		parts := make([]string, len(cols))
		for i, c := range cols {
			s, err := r.String(c)
			if err != nil {
				return nil, err
			}
			parts[i] = s
		}
		return strings.Join(parts, sep), nil
	}, nil
}

// stringOp applies f to the text of a single column; nil stays nil.
func stringOp(f func(string) string) CreatorFunc {
	return func(def spec.ColumnSpec) (transform.RowFunc, error) {
		if err := exactlyOne(def); err != nil {
			return nil, err
		}
		col := def.Columns[0]
		return func(_ context.Context, r frame.Row) (any, error) {
			v, err := r.Get(col)
			if err != nil || v == nil {
				return nil, err
			}
			return f(frame.Format(v)), nil
		}, nil
	}
}

/* ───────────── misc ───────────── */

func newRound(def spec.ColumnSpec) (transform.RowFunc, error) {
	if err := exactlyOne(def); err != nil {
		return nil, err
	}
	if def.Digits < 0 {
		return nil, fmt.Errorf("digits must be >= 0, got %d", def.Digits)
	}
	col, scale := def.Columns[0], math.Pow10(def.Digits)
	return func(_ context.Context, r frame.Row) (any, error) {
		v, err := r.Get(col)
		if err != nil || v == nil {
			return nil, err
		}
		if i, ok := frame.ToInt(v); ok {
			return i, nil
		}
		x, err := frame.ToFloat(v)
		if err != nil {
			return nil, err
		}
		return math.Round(x*scale) / scale, nil
	}, nil
}

func newCoalesce(def spec.ColumnSpec) (transform.RowFunc, error) {
	if len(def.Columns) == 0 {
		return nil, fmt.Errorf("%w: need at least 1 column", ErrArity)
	}
	cols, fallback := def.Columns, normalize(def.Value)
	return func(_ context.Context, r frame.Row) (any, error) {
		for _, c := range cols {
			v, err := r.Get(c)
			if err != nil {
				return nil, err
			}
			if v != nil && v != "" {
				return v, nil
			}
		}
		return fallback, nil
	}, nil
}
