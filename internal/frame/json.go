package frame

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// Field is one key/value pair of a record, in source order.
type Field struct {
	Name  string
	Value any
}

type Record []Field

// Builder assembles a dataset from records whose keys may differ. Columns
// appear in first-seen order; absent keys are nil.
type Builder struct {
	names []string
	index map[string]int
	cols  [][]any
	rows  int
}

func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

func (b *Builder) Append(rec Record) {
	for _, f := range rec {
		c, ok := b.index[f.Name]
		if !ok {
			c = len(b.names)
			b.index[f.Name] = c
			b.names = append(b.names, f.Name)
			b.cols = append(b.cols, make([]any, b.rows, b.rows+1))
		}
		if len(b.cols[c]) > b.rows {
			// repeated key inside one record: last one wins
			b.cols[c][b.rows] = f.Value
			continue
		}
		b.cols[c] = append(b.cols[c], f.Value)
	}
	b.rows++
	for c := range b.cols {
		if len(b.cols[c]) < b.rows {
			b.cols[c] = append(b.cols[c], nil)
		}
	}
}

func (b *Builder) Len() int { return b.rows }

func (b *Builder) Build() *Dataset {
	d := WithRows(b.rows)
	for i, name := range b.names {
		_ = d.add(name, b.cols[i])
	}
	return d
}

// ReadJSON decodes an array of JSON objects into a dataset.
func ReadJSON(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	b := NewBuilder()
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("record %d: %w", b.Len(), err)
		}
		rec, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", b.Len(), err)
		}
		b.Append(rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// ParseObject decodes a single JSON object keeping key order.
func ParseObject(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	return decodeObject(dec)
}

// decodeObject reads the members of an object whose '{' was consumed.
func decodeObject(dec *json.Decoder) (Record, error) {
	var rec Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("frame: unexpected key token %v", tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		rec = append(rec, Field{Name: key, Value: normalizeJSON(raw)})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return rec, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("frame: expected %q, got end of input", want)
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("frame: expected %q, got %v", want, tok)
	}
	return nil
}

func normalizeJSON(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case []any:
		for i := range x {
			x[i] = normalizeJSON(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalizeJSON(x[k])
		}
		return x
	default:
		return v
	}
}

// MarshalRow encodes row i as a JSON object with keys in column order.
func (d *Dataset) MarshalRow(i int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for c, name := range d.names {
		if c > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(jsonValue(d.cols[c][i]))
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue maps non-finite floats to nil; JSON has no NaN or Inf.
func jsonValue(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return nil
		}
	}
	return v
}
