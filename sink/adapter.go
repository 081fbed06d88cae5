package sink

import (
	"context"
	"fmt"
	"sort"

	"rowkit/internal/frame"
)

// Adapter is the common behaviour every sink exposes.
type Adapter interface {
	Configure(any) error                         // spec.SinkSpec or a driver Config
	Write(context.Context, *frame.Dataset) error // whole dataset, in row order
	Close() error                                // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}

// Names lists registered sink types.
func Names() []string {
	out := make([]string, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
