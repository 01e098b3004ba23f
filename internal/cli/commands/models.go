package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/suwa-sh/lineage-to-graph/internal/cli/output"
	"github.com/suwa-sh/lineage-to-graph/internal/engine"
	"github.com/suwa-sh/lineage-to-graph/internal/loader"
	"github.com/suwa-sh/lineage-to-graph/internal/model"
)

// NewModelsCommand creates the models command.
func NewModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models [input]",
		Short: "List the models of a lineage document",
		Long: `List every model of the compiled document with its kind, origin
(document, schema, or columns), instances, and properties.

Output adapts to environment:
  - Terminal: Styled table
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List models of the configured input
  l2g models

  # List models of a specific document as JSON
  l2g models flows/billing.yaml --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(cmd, args)
		},
	}

	return cmd
}

// modelRow is one line of the models listing.
type modelRow struct {
	Path      string   `json:"path"`
	Kind      string   `json:"kind"`
	Origin    string   `json:"origin"`
	Instances []string `json:"instances,omitempty"`
	Props     []string `json:"props,omitempty"`
}

func runModels(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)

	input := cmdCtx.Cfg.Input
	if len(args) > 0 {
		input = args[0]
	}

	res, err := cmdCtx.Engine.CompileFile(input)
	if err != nil {
		return err
	}

	rows := collectModelRows(res)
	r := cmdCtx.Renderer

	switch r.EffectiveMode() {
	case output.ModeJSON:
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case output.ModeMarkdown:
		return modelsMarkdown(r, input, rows)
	default:
		return modelsText(r, input, rows)
	}
}

func collectModelRows(res *engine.Result) []modelRow {
	var rows []modelRow
	res.Catalog.Walk(func(path string, d *model.Definition) {
		root := path
		if i := strings.IndexByte(path, '.'); i >= 0 {
			root = path[:i]
		}
		origin := res.Origins[root]
		if origin == "" {
			origin = loader.Origin("inferred")
		}
		rows = append(rows, modelRow{
			Path:      path,
			Kind:      string(d.Kind),
			Origin:    string(origin),
			Instances: res.Usage.Instances.Instances(d.Name),
			Props:     append([]string(nil), d.Props...),
		})
	})
	return rows
}

func modelsText(r *output.Renderer, input string, rows []modelRow) error {
	r.Header(1, fmt.Sprintf("Models (%d total) in %s", len(rows), input))

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Path", "Kind", "Origin", "Instances", "Props"})
	for _, row := range rows {
		t.AppendRow(table.Row{
			row.Path,
			row.Kind,
			row.Origin,
			strings.Join(row.Instances, ", "),
			len(row.Props),
		})
	}
	t.Render()
	return nil
}

func modelsMarkdown(r *output.Renderer, input string, rows []modelRow) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Models (%d total)", len(rows))))
	r.Println("")

	for _, row := range rows {
		r.Println(output.FormatHeader(2, row.Path))
		r.Println(output.FormatKeyValue("Kind", row.Kind))
		r.Println(output.FormatKeyValue("Origin", row.Origin))
		if len(row.Instances) > 0 {
			r.Println(output.FormatKeyValue("Instances", strings.Join(row.Instances, ", ")))
		}
		if len(row.Props) > 0 {
			r.Println(output.FormatKeyValue("Props", strings.Join(row.Props, ", ")))
		}
		r.Println("")
	}
	return nil
}
