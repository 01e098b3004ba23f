package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for
// config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// ConfigFileName is the canonical project configuration file.
const ConfigFileName = "l2g.yaml"

// configNames are the file names probed in each candidate directory.
var configNames = []string{ConfigFileName, "l2g.yml"}

// configExistsIn checks if an l2g config file exists in the directory.
func configExistsIn(dir string) (string, bool) {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// findProjectRootUpward searches upward from startDir for an l2g config
// file. Returns empty strings if none is found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) (root, cfgPath string) {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if path, ok := configExistsIn(dir); ok {
			return dir, path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not
// absolute. Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config file >
// defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// Locate the project root: the explicit config file's directory, or
	// the nearest ancestor carrying an l2g config file, or the CWD.
	projectRoot, foundCfg := locateProject(cfgFile)
	if cfgFile == "" {
		cfgFile = foundCfg
	}

	// Directory flags are relative to the CWD, not the project root.
	// Pin them to absolute paths before resolution.
	flagPaths := map[string]string{}
	if flags != nil {
		for _, name := range []string{"columns-dir", "schemas-dir"} {
			if flags.Changed(name) {
				if v, _ := flags.GetString(name); v != "" {
					abs, err := filepath.Abs(v)
					if err == nil {
						flagPaths[name] = abs
					}
				}
			}
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"input":         DefaultInput,
		"output":        "",
		"columns_dir":   "",
		"schemas_dir":   "",
		"all_props":     false,
		"direction":     DefaultDirection,
		"verbose":       false,
		"output_format": DefaultOutputFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load config file
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (L2G_ prefix)
	// Transform: L2G_COLUMNS_DIR -> columns_dir
	if err := k.Load(env.Provider("L2G_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "L2G_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")

			// EXPLICIT MAPPING: the -o/--output flag selects the print
			// format; the "output" config key is the diagram file path.
			if key == "output" {
				return "output_format", posflag.FlagVal(flags, f)
			}

			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve relative paths against the project root, except paths
	// given as flags, which were already pinned relative to the CWD.
	cfg.ProjectRoot = projectRoot
	if p, ok := flagPaths["columns-dir"]; ok {
		cfg.ColumnsDir = p
	} else {
		cfg.ColumnsDir = resolvePathRelativeTo(cfg.ColumnsDir, projectRoot)
	}
	if p, ok := flagPaths["schemas-dir"]; ok {
		cfg.SchemasDir = p
	} else {
		cfg.SchemasDir = resolvePathRelativeTo(cfg.SchemasDir, projectRoot)
	}
	cfg.Input = resolvePathRelativeTo(cfg.Input, projectRoot)
	cfg.Output = resolvePathRelativeTo(cfg.Output, projectRoot)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

func locateProject(cfgFile string) (root, found string) {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs), cfgFile
		}
		return filepath.Dir(cfgFile), cfgFile
	}
	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		cwd = "."
	}
	if r, path := findProjectRootUpward(cwd); r != "" {
		return r, path
	}
	return cwd, ""
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger. This allows
// the commands package to retrieve the logger from context without creating
// an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
