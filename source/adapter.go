package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"rowkit/internal/frame"
)

// Adapter is the common behaviour every source exposes.
type Adapter interface {
	Configure(any) error                          // spec.SourceSpec
	Load(context.Context) (*frame.Dataset, error) // one full snapshot
	Close() error                                 // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown source %q", name)
}

// Names lists registered source types.
func Names() []string {
	out := make([]string, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// TypeForPath infers a file source type from the path extension.
func TypeForPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".tsv", ".txt":
		return "csv", nil
	case ".json":
		return "json", nil
	case ".xlsx", ".xlsm":
		return "xlsx", nil
	default:
		return "", fmt.Errorf("cannot infer source type from extension %q", ext)
	}
}
