// Package commands implements the l2g subcommands.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/suwa-sh/lineage-to-graph/internal/cli/config"
	"github.com/suwa-sh/lineage-to-graph/internal/cli/output"
	"github.com/suwa-sh/lineage-to-graph/internal/engine"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	eng := engine.New(engine.Config{
		ColumnsDir: cfg.ColumnsDir,
		SchemasDir: cfg.SchemasDir,
		AllProps:   cfg.AllProps,
		Direction:  cfg.Direction,
		Logger:     logger,
	})

	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: r,
	}
}

// getConfig returns the current configuration. It uses
// config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		Input:        getEnvOrDefault("L2G_INPUT", config.DefaultInput),
		Output:       os.Getenv("L2G_OUTPUT"),
		ColumnsDir:   os.Getenv("L2G_COLUMNS_DIR"),
		SchemasDir:   os.Getenv("L2G_SCHEMAS_DIR"),
		AllProps:     os.Getenv("L2G_ALL_PROPS") == "true",
		Direction:    os.Getenv("L2G_DIRECTION"),
		Verbose:      os.Getenv("L2G_VERBOSE") == "true",
		OutputFormat: getEnvOrDefault("L2G_OUTPUT_FORMAT", config.DefaultOutputFormat),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
