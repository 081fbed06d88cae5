package frame

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrType = errors.New("frame: value is not numeric")

// ToFloat coerces a scalar to float64. Numeric strings are accepted.
func ToFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrType, x)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("%w: nil", ErrType)
	default:
		return 0, fmt.Errorf("%w: %T", ErrType, v)
	}
}

// ToInt reports whether v is an integer scalar and returns it.
func ToInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case int32:
		return int64(x), true
	default:
		return 0, false
	}
}

// Format renders a scalar the way writers and string functions see it.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// InferColumn converts raw text cells into typed values. The whole column
// gets one type: int64, then float64, then bool, falling back to string.
// Empty cells become nil.
func InferColumn(cells []string) []any {
	out := make([]any, len(cells))
	switch {
	case allCells(cells, func(s string) bool { _, err := strconv.ParseInt(s, 10, 64); return err == nil }):
		for i, s := range cells {
			if s = strings.TrimSpace(s); s != "" {
				out[i], _ = strconv.ParseInt(s, 10, 64)
			}
		}
	case allCells(cells, isFinite):
		for i, s := range cells {
			if s = strings.TrimSpace(s); s != "" {
				out[i], _ = strconv.ParseFloat(s, 64)
			}
		}
	case allCells(cells, isBool):
		for i, s := range cells {
			if s = strings.TrimSpace(s); s != "" {
				out[i] = strings.EqualFold(s, "true")
			}
		}
	default:
		for i, s := range cells {
			if s != "" {
				out[i] = s
			}
		}
	}
	return out
}

// isFinite rejects the nan/inf spellings ParseFloat accepts, so a column of
// words like "Nan" stays text.
func isFinite(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isBool(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

// allCells is false for a column with no non-empty cells.
func allCells(cells []string, ok func(string) bool) bool {
	seen := false
	for _, s := range cells {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !ok(s) {
			return false
		}
		seen = true
	}
	return seen
}
