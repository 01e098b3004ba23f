package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/suwa-sh/lineage-to-graph/internal/cli/config"
)

// debounceDelay coalesces editor save bursts into one regeneration.
const debounceDelay = 100 * time.Millisecond

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	Watch bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [input] [output]",
		Short: "Compile a lineage document into a Mermaid diagram",
		Long: `Compile a lineage document into a Mermaid flowchart embedded in Markdown.

The input and output paths default to the configured values; output to
stdout when no output file is configured.`,
		Example: `  # Compile the configured input (default: lineage.yaml) to stdout
  l2g generate

  # Compile a specific document to a file
  l2g generate flows/billing.yaml docs/billing.md

  # Regenerate on every change to the input document
  l2g generate --watch

  # Render every declared property, skip usage filtering
  l2g generate --all-props`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Regenerate whenever the input document changes")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, opts *GenerateOptions) error {
	cmdCtx := NewCommandContext(cmd)

	input := cmdCtx.Cfg.Input
	outputPath := cmdCtx.Cfg.Output
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		outputPath = args[1]
	}

	if !opts.Watch {
		return generateOnce(cmdCtx, input, outputPath)
	}
	return generateWatch(cmd.Context(), cmdCtx, input, outputPath)
}

func generateOnce(cmdCtx *CommandContext, input, outputPath string) error {
	res, err := cmdCtx.Engine.CompileFile(input)
	if err != nil {
		return err
	}

	if outputPath == "" {
		return cmdCtx.Engine.Render(cmdCtx.Renderer.Writer(), res)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := cmdCtx.Engine.Render(f, res); err != nil {
		return err
	}
	cmdCtx.Renderer.Success(fmt.Sprintf("Wrote %s (%d models, %d edges)", outputPath, res.Catalog.Len(), len(res.Entries)))
	return nil
}

func generateWatch(ctx context.Context, cmdCtx *CommandContext, input, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("--watch requires an output file")
	}

	if err := generateOnce(cmdCtx, input, outputPath); err != nil {
		// Keep watching: a broken document is the normal state mid-edit.
		cmdCtx.Renderer.Error(err.Error())
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch directories, not files: editors replace files on save, which
	// drops a file-level watch.
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", input, err)
	}
	sourceDirs := absSourceDirs(cmdCtx.Cfg)
	for _, dir := range sourceDirs {
		if err := watcher.Add(dir); err != nil {
			cmdCtx.Logger.Warn("cannot watch source directory", "dir", dir, "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx.Renderer.Printf("Watching %s (Ctrl+C to stop)\n", input)

	var debounceTimer *time.Timer
	absInput, _ := filepath.Abs(input)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !watchRelevant(event.Name, absInput, sourceDirs) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				cmdCtx.Logger.Debug("change detected", "file", event.Name)
				if err := generateOnce(cmdCtx, input, outputPath); err != nil {
					cmdCtx.Renderer.Error(err.Error())
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmdCtx.Logger.Warn("watch error", "error", err)
		}
	}
}

// absSourceDirs returns the configured columns and schemas directories as
// absolute paths, dropping empty and unresolvable entries.
func absSourceDirs(cfg *config.Config) []string {
	var dirs []string
	for _, dir := range []string{cfg.ColumnsDir, cfg.SchemasDir} {
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			dirs = append(dirs, abs)
		}
	}
	return dirs
}

// watchRelevant reports whether a filesystem event should trigger a
// regenerate: a change to the input document itself, or to any file directly
// inside a source directory.
func watchRelevant(name, absInput string, sourceDirs []string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	if abs == absInput {
		return true
	}
	dir := filepath.Dir(abs)
	for _, d := range sourceDirs {
		if dir == d {
			return true
		}
	}
	return false
}
