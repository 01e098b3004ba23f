package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suwa-sh/lineage-to-graph/internal/cli/config"
	"github.com/suwa-sh/lineage-to-graph/internal/cli/output"
	"github.com/suwa-sh/lineage-to-graph/internal/engine"
)

func TestWatchRelevant(t *testing.T) {
	input := filepath.Join(string(filepath.Separator), "proj", "lineage.yaml")
	columns := filepath.Join(string(filepath.Separator), "proj", "columns")

	tests := []struct {
		name  string
		event string
		want  bool
	}{
		{"input document", input, true},
		{"sibling of input", filepath.Join(string(filepath.Separator), "proj", "README.md"), false},
		{"file in columns dir", filepath.Join(columns, "users_table.csv"), true},
		{"file in nested dir", filepath.Join(columns, "sub", "x.csv"), false},
		{"columns dir itself", columns, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := watchRelevant(tt.event, input, []string{columns})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAbsSourceDirs(t *testing.T) {
	dirs := absSourceDirs(&config.Config{ColumnsDir: "columns"})
	require.Len(t, dirs, 1)
	assert.True(t, filepath.IsAbs(dirs[0]))

	assert.Empty(t, absSourceDirs(&config.Config{}))
}

func TestGenerateWatchRegeneratesOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	columns := filepath.Join(dir, "columns")
	require.NoError(t, os.Mkdir(columns, 0o755))
	csvPath := filepath.Join(columns, "users_table.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("column\nid\n"), 0o644))

	input := filepath.Join(dir, "lineage.yaml")
	require.NoError(t, os.WriteFile(input, []byte(`models: []
lineage:
  - from: src
    to: users_table.id
`), 0o644))
	outPath := filepath.Join(dir, "lineage.md")

	cmdCtx := &CommandContext{
		Cfg:      &config.Config{Input: input, ColumnsDir: columns, OutputFormat: "markdown"},
		Logger:   slog.New(slog.DiscardHandler),
		Engine:   engine.New(engine.Config{ColumnsDir: columns, AllProps: true}),
		Renderer: output.NewRenderer(io.Discard, io.Discard, output.ModeMarkdown),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- generateWatch(ctx, cmdCtx, input, outPath) }()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool {
		content, err := os.ReadFile(outPath)
		return err == nil && strings.Contains(string(content), "users_table_id")
	}, 5*time.Second, 20*time.Millisecond, "initial generate must write the diagram")

	// A column-list change must regenerate the diagram too. The write is
	// retried each poll in case it raced the watcher registration; the
	// interval stays above the debounce delay so the timer can fire.
	require.Eventually(t, func() bool {
		if err := os.WriteFile(csvPath, []byte("column\nid\nemail\n"), 0o644); err != nil {
			return false
		}
		content, err := os.ReadFile(outPath)
		return err == nil && strings.Contains(string(content), "users_table_email")
	}, 10*time.Second, 500*time.Millisecond, "source file change must trigger a regenerate")
}

func TestGenerateWatchRequiresOutput(t *testing.T) {
	cmdCtx := &CommandContext{
		Cfg:      &config.Config{},
		Logger:   slog.New(slog.DiscardHandler),
		Engine:   engine.New(engine.Config{}),
		Renderer: output.NewRenderer(io.Discard, io.Discard, output.ModeMarkdown),
	}
	err := generateWatch(context.Background(), cmdCtx, "lineage.yaml", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an output file")
}
