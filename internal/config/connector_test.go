package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConnector struct {
	Brokers []string      `koanf:"brokers"`
	Topic   string        `koanf:"topic"`
	Idle    time.Duration `koanf:"idle_timeout"`
	Limits  struct {
		Max int `koanf:"max"`
	} `koanf:"limits"`
}

func TestLoadConnector_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kafka.yml")
	body := []byte(`schema_version: v1
brokers: [b1:9092, b2:9092]
topic: orders
idle_timeout: 2s
limits:
  max: 10
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ROWKIT_TEST__TOPIC", "orders-v2")
	t.Setenv("ROWKIT_TEST__LIMITS__MAX", "25")

	var c testConnector
	if err := LoadConnector(path, "ROWKIT_TEST__", &c); err != nil {
		t.Fatalf("LoadConnector: %v", err)
	}
	if len(c.Brokers) != 2 || c.Brokers[1] != "b2:9092" {
		t.Fatalf("unexpected brokers %v", c.Brokers)
	}
	if c.Topic != "orders-v2" {
		t.Fatalf("env override not applied, topic=%q", c.Topic)
	}
	if c.Limits.Max != 25 {
		t.Fatalf("nested env override not applied, max=%d", c.Limits.Max)
	}
	if c.Idle != 2*time.Second {
		t.Fatalf("want 2s idle timeout, got %v", c.Idle)
	}
}

func TestLoadConnector_MissingFileIsNotAnError(t *testing.T) {
	var c testConnector
	if err := LoadConnector(filepath.Join(t.TempDir(), "absent.yml"), "", &c); err != nil {
		t.Fatalf("LoadConnector: %v", err)
	}
}

func TestLoadConnector_BadSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kafka.yml")
	if err := os.WriteFile(path, []byte("schema_version: v2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var c testConnector
	if err := LoadConnector(path, "", &c); err == nil {
		t.Fatal("expected schema_version error")
	}
}
