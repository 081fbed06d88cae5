package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"rowkit/internal/spec"
)

const SupportedSchema = "v1"

// LoadJobSpec parses a job YAML, validates schema_version, and resolves
// relative source/sink paths against the job file's directory.
func LoadJobSpec(path string) (spec.File, error) {
	var job spec.File
	raw, err := os.ReadFile(path)
	if err != nil {
		return job, err
	}
	if err := yaml.Unmarshal(raw, &job); err != nil {
		return job, fmt.Errorf("job %s: %w", path, err)
	}
	if job.SchemaVersion == "" {
		job.SchemaVersion = SupportedSchema
	}
	if job.SchemaVersion != SupportedSchema {
		return job, fmt.Errorf("job schema_version %q not supported (want %q)", job.SchemaVersion, SupportedSchema)
	}

	base := filepath.Dir(path)
	job.Source.Path = resolve(base, job.Source.Path)
	job.Source.Config = resolve(base, job.Source.Config)
	for i := range job.Sinks {
		job.Sinks[i].Path = resolve(base, job.Sinks[i].Path)
		job.Sinks[i].Config = resolve(base, job.Sinks[i].Config)
	}
	return job, validate(job)
}

func validate(job spec.File) error {
	if job.Source.Path == "" && job.Source.Type != "kafka" {
		return fmt.Errorf("job: source.path is required for source type %q", job.Source.Type)
	}
	seen := make(map[string]bool, len(job.Transform.Columns))
	for i, c := range job.Transform.Columns {
		if c.Name == "" {
			return fmt.Errorf("job: transform.columns[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("job: transform.columns[%d]: duplicate column %q", i, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
