package kafka

import (
	"rowkit/internal/config"
)

// EnvPrefix selects env overrides, e.g. ROWKIT_KAFKA_SINK__TOPIC=enriched.
const EnvPrefix = "ROWKIT_KAFKA_SINK__"

type Config struct {
	Brokers   []string `koanf:"brokers"`
	Topic     string   `koanf:"topic"`
	Acks      int16    `koanf:"required_acks"` // 0,1,-1
	KeyColumn string   `koanf:"key_column"`    // optional message key
	BatchSize int      `koanf:"batch_size"`    // messages per SendMessages
	Version   string   `koanf:"version"`
	TLSEn     bool     `koanf:"tls_enabled"`
	SASLUser  string   `koanf:"sasl_user"`
	SASLPass  string   `koanf:"sasl_pass"`
}

// LoadConfig merges YAML (if present) with env-vars
// (prefix `ROWKIT_KAFKA_SINK__`, delimiter `__`).
func LoadConfig(path string) (Config, error) {
	cfg := Config{Acks: -1}
	if err := config.LoadConnector(path, EnvPrefix, &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	if c.Version == "" {
		c.Version = "2.1.0"
	}
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
}
