// Package config provides configuration management for the l2g CLI.
//
// Settings layer in the usual precedence order: flags over environment
// variables over the config file over built-in defaults.
package config

// Config holds all CLI configuration options.
type Config struct {
	// Input is the lineage document to compile.
	Input string `koanf:"input"`
	// Output is the Markdown file to write; empty means stdout.
	Output string `koanf:"output"`
	// ColumnsDir holds column-list CSV files, one per model.
	ColumnsDir string `koanf:"columns_dir"`
	// SchemasDir holds schema documents, one per model.
	SchemasDir string `koanf:"schemas_dir"`
	// AllProps renders every declared property, disabling usage filtering.
	AllProps bool `koanf:"all_props"`
	// Direction overrides the document's diagram direction.
	Direction string `koanf:"direction"`
	Verbose   bool   `koanf:"verbose"`
	// OutputFormat selects how command results print: auto, text,
	// markdown, or json. The diagram itself is always Mermaid Markdown.
	OutputFormat string `koanf:"output_format"`

	// ProjectRoot is the directory the config file was found in (or the
	// working directory); relative paths resolve against it.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultInput        = "lineage.yaml"
	DefaultDirection    = ""
	DefaultOutputFormat = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
