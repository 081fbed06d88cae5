package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"rowkit/internal/frame"
	"rowkit/internal/telemetry"
	"rowkit/internal/transform"
)

type fakeSource struct {
	ds     *frame.Dataset
	err    error
	closed bool
}

func (f *fakeSource) Configure(any) error { return nil }
func (f *fakeSource) Load(context.Context) (*frame.Dataset, error) {
	return f.ds, f.err
}
func (f *fakeSource) Close() error { f.closed = true; return nil }

type captureSink struct {
	got    []*frame.Dataset
	err    error
	closed bool
}

func (c *captureSink) Configure(any) error { return nil }
func (c *captureSink) Write(_ context.Context, ds *frame.Dataset) error {
	if c.err != nil {
		return c.err
	}
	c.got = append(c.got, ds)
	return nil
}
func (c *captureSink) Close() error { c.closed = true; return nil }

func orders(t *testing.T) *frame.Dataset {
	t.Helper()
	ds, err := frame.New([]string{"qty", "price"}, [][]any{{int64(2), int64(3)}, {10.0, 5.0}})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}
	return ds
}

func total(_ context.Context, r frame.Row) (any, error) {
	q, err := r.Float("qty")
	if err != nil {
		return nil, err
	}
	p, err := r.Float("price")
	if err != nil {
		return nil, err
	}
	return q * p, nil
}

func TestRunner_LoadTransformWrite(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry())
	r := NewRunner(m, nil)
	src := &fakeSource{ds: orders(t)}
	a, b := &captureSink{}, &captureSink{}
	r.SetSource("fake", src)
	r.SetSpec(transform.NewSpec().MustAdd("total", total), transform.WithWorkers(2))
	r.AddSink("a", a)
	r.AddSink("b", b)

	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(a.got) != 1 || len(b.got) != 1 || a.got[0] != out {
		t.Fatal("every sink should receive the transformed dataset once")
	}
	col, _ := out.Column("total")
	if col[0] != 20.0 || col[1] != 15.0 {
		t.Fatalf("unexpected totals %v", col)
	}
	if got := testutil.ToFloat64(m.RowsWritten.WithLabelValues("b")); got != 2 {
		t.Fatalf("rows written = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ColumnsComputed); got != 1 {
		t.Fatalf("columns computed = %v, want 1", got)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !src.closed || !a.closed || !b.closed {
		t.Fatal("Close should close source and sinks")
	}
}

func TestRunner_TransformErrorSkipsSinks(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry())
	r := NewRunner(m, nil)
	boom := errors.New("boom")
	cs := &captureSink{}
	r.SetSource("fake", &fakeSource{ds: orders(t)})
	r.SetSpec(transform.NewSpec().MustAdd("x", func(context.Context, frame.Row) (any, error) { return nil, boom }))
	r.AddSink("cs", cs)

	if _, err := r.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if len(cs.got) != 0 {
		t.Fatal("sink must not be written after a transform failure")
	}
	if got := testutil.ToFloat64(m.Failures.WithLabelValues("transform")); got != 1 {
		t.Fatalf("transform failures = %v, want 1", got)
	}
}

func TestRunner_SinkErrorAbortsRemainingSinks(t *testing.T) {
	r := NewRunner(nil, nil)
	first, second := &captureSink{err: errors.New("disk full")}, &captureSink{}
	r.SetSource("fake", &fakeSource{ds: orders(t)})
	r.AddSink("first", first)
	r.AddSink("second", second)

	if _, err := r.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "sink first") {
		t.Fatalf("want sink error, got %v", err)
	}
	if len(second.got) != 0 {
		t.Fatal("second sink must not run")
	}
}

func TestRunner_NoSource(t *testing.T) {
	if _, err := NewRunner(nil, nil).Run(context.Background()); err == nil {
		t.Fatal("expected error without a source")
	}
}

func TestRunner_LoadError(t *testing.T) {
	r := NewRunner(nil, nil)
	r.SetSource("fake", &fakeSource{err: os.ErrNotExist})
	if _, err := r.Run(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want ErrNotExist, got %v", err)
	}
}

func writeJob(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, "job.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write job: %v", err)
	}
	return p
}

func TestCompile_CSVToJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "orders.csv"), []byte("qty,price\n2,10\n3,5\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	job := writeJob(t, dir, `schema_version: v1
source:
  path: orders.csv
transform:
  n_jobs: 2
  keep_original: false
  columns:
    - { name: total, op: mul, columns: [qty, price] }
    - { name: label, op: concat, columns: [qty, price], sep: "x" }
sinks:
  - path: out/orders.json
`)
	r, err := Compile(job, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer r.Close()

	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cols := out.Columns(); len(cols) != 2 || cols[0] != "total" || cols[1] != "label" {
		t.Fatalf("unexpected columns %v", cols)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "out", "orders.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(raw), `{"total":20,"label":"2x10"}`) {
		t.Fatalf("unexpected output:\n%s", raw)
	}
}

func TestCompile_InputOverride(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(other, []byte(`[{"qty":4}]`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}
	job := writeJob(t, dir, "source: { path: missing.csv }\nsinks: [{ type: csv, path: out.csv }]\n")

	r, err := Compile(job, Options{InputOverride: other})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer r.Close()
	out, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("want 1 row, got %d", out.Len())
	}
}

func TestCompile_Errors(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"unknown op":     "source: { path: in.csv }\ntransform: { columns: [{ name: a, op: nope }] }\n",
		"unknown sink":   "source: { path: in.csv }\nsinks: [{ type: parquet }]\n",
		"uninferable":    "source: { path: in.parquet }\n",
		"plugin no addr": "source: { path: in.csv }\ntransform: { columns: [{ name: a, op: plugin }] }\n",
		"unknown source": "source: { type: sql, path: in.db }\n",
	} {
		if _, err := Compile(writeJob(t, dir, body), Options{}); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestCompile_PluginColumnRegistersCloser(t *testing.T) {
	dir := t.TempDir()
	job := writeJob(t, dir, `source: { path: in.csv }
transform:
  columns:
    - { name: shout, op: plugin, address: "localhost:1", columns: [name], timeout_ms: 50 }
`)
	r, err := Compile(job, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(r.closers) != 1 {
		t.Fatalf("want 1 plugin client, got %d", len(r.closers))
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
