package plugin

import (
	"context"
	"fmt"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"rowkit/internal/frame"
	"rowkit/internal/transform"
)

// maxExactInt is the largest integer a protobuf double holds exactly.
const maxExactInt = 1 << 53

// RowFunc evaluates each row on c. Only the listed columns are sent, or the
// whole row when columns is empty. A positive timeout bounds every call.
func RowFunc(c Client, columns []string, timeout time.Duration) transform.RowFunc {
	return func(ctx context.Context, r frame.Row) (any, error) {
		in, err := rowStruct(r, columns)
		if err != nil {
			return nil, err
		}
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		out, err := c.Evaluate(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("plugin evaluate: %w", err)
		}
		return FromValue(out), nil
	}
}

func rowStruct(r frame.Row, columns []string) (*structpb.Struct, error) {
	cells := make(map[string]any, len(columns))
	if len(columns) == 0 {
		cells = r.Map()
	}
	for _, name := range columns {
		v, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		cells[name] = v
	}
	fields := make(map[string]*structpb.Value, len(cells))
	for name, v := range cells {
		pv, err := structpb.NewValue(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		fields[name] = pv
	}
	return &structpb.Struct{Fields: fields}, nil
}

// FromValue converts a protobuf value back to a cell. Integral numbers
// become int64, matching how JSON inputs are read.
func FromValue(v *structpb.Value) any {
	if v == nil {
		return nil
	}
	if n, ok := v.GetKind().(*structpb.Value_NumberValue); ok {
		f := n.NumberValue
		if f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
			return int64(f)
		}
		return f
	}
	return v.AsInterface()
}
