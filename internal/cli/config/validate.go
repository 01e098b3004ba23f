package config

import "fmt"

var validDirections = map[string]bool{
	"":   true, // defer to the document
	"LR": true,
	"RL": true,
	"TB": true,
	"BT": true,
}

var validOutputFormats = map[string]bool{
	"auto":     true,
	"text":     true,
	"markdown": true,
	"json":     true,
}

// Validate checks a loaded configuration for values no command can act on.
func Validate(cfg *Config) error {
	if !validDirections[cfg.Direction] {
		return fmt.Errorf("invalid direction %q, must be one of: LR, RL, TB, BT", cfg.Direction)
	}
	if !validOutputFormats[cfg.OutputFormat] {
		return fmt.Errorf("invalid output format %q, must be one of: auto, text, markdown, json", cfg.OutputFormat)
	}
	return nil
}
