package kafka

import (
	"time"

	"rowkit/internal/config"
)

// EnvPrefix selects env overrides, e.g. ROWKIT_KAFKA__TOPIC=orders.
const EnvPrefix = "ROWKIT_KAFKA__"

type Config struct {
	Brokers    []string `koanf:"brokers"`
	Topic      string   `koanf:"topic"`
	Partitions []int32  `koanf:"partitions"` // empty = all partitions of Topic
	StartFrom  string   `koanf:"start_from"` // oldest|newest (default oldest)
	Version    string   `koanf:"version"`
	TLSEn      bool     `koanf:"tls_enabled"`
	SASLUser   string   `koanf:"sasl_user"`
	SASLPass   string   `koanf:"sasl_pass"`

	// A snapshot ends when either bound is hit.
	MaxMessages int64         `koanf:"max_messages"`
	IdleTimeout time.Duration `koanf:"idle_timeout"`
}

// LoadConfig merges YAML (if present) with env-vars
// (prefix `ROWKIT_KAFKA__`, delimiter `__`).
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if err := config.LoadConnector(path, EnvPrefix, &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.StartFrom != "newest" {
		c.StartFrom = "oldest"
	}
	if c.Version == "" {
		c.Version = "2.1.0"
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 2 * time.Second
	}
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
}
