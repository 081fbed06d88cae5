package spec

// ColumnSpec declares one computed column.
type ColumnSpec struct {
	Name      string   `yaml:"name"`
	Op        string   `yaml:"op"`      // copy, const, add, sub, mul, div, concat, upper, lower, trim, round, coalesce, plugin
	Columns   []string `yaml:"columns"` // referenced input columns
	Value     any      `yaml:"value"`   // literal operand / default
	Sep       string   `yaml:"sep"`
	Digits    int      `yaml:"digits"`
	Address   string   `yaml:"address"` // plugin only, e.g. "localhost:50052"
	TimeoutMS int      `yaml:"timeout_ms"`
}

type SourceSpec struct {
	Type      string `yaml:"type"` // csv, json, xlsx, kafka; inferred from path when empty
	Path      string `yaml:"path"`
	Sheet     string `yaml:"sheet"`
	Delimiter string `yaml:"delimiter"`
	Config    string `yaml:"config"` // connector config file (kafka)
}

type TransformSpec struct {
	NJobs        int          `yaml:"n_jobs"`
	KeepOriginal *bool        `yaml:"keep_original"` // nil → true
	Columns      []ColumnSpec `yaml:"columns"`
}

type SinkSpec struct {
	Type    string `yaml:"type"` // stdout, csv, json, xlsx, kafka
	Path    string `yaml:"path"`
	Sheet   string `yaml:"sheet"`
	MaxRows int    `yaml:"max_rows"`
	Config  string `yaml:"config"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	Source SourceSpec `yaml:"source"`

	// Columns are computed in the order listed.
	Transform TransformSpec `yaml:"transform"`

	Sinks []SinkSpec `yaml:"sinks"`
}

// KeepOriginalOrDefault applies the default of keeping input columns.
func (t TransformSpec) KeepOriginalOrDefault() bool {
	if t.KeepOriginal == nil {
		return true
	}
	return *t.KeepOriginal
}
