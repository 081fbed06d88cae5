package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadConnector merges a connector YAML (if present) with env-vars and
// unmarshals the result into dst using `koanf` struct tags.
//
// Env keys use envPrefix and `__` as the nesting delimiter, e.g. with prefix
// ROWKIT_KAFKA__ the variable ROWKIT_KAFKA__MAX_MESSAGES sets max_messages
// and ROWKIT_KAFKA__LIMITS__MAX would set limits.max.
func LoadConnector(path, envPrefix string, dst any) error {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("connector config %s: %w", path, err)
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return fmt.Errorf("connector schema_version %q not supported (want %s)", sv, SupportedSchema)
	}

	if envPrefix != "" {
		_ = k.Load(env.Provider(envPrefix, ".", func(s string) string {
			s = strings.TrimPrefix(s, envPrefix)
			return strings.ReplaceAll(strings.ToLower(s), "__", ".")
		}), nil)
	}

	return k.Unmarshal("", dst)
}
