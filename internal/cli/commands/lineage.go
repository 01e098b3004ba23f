package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suwa-sh/lineage-to-graph/internal/cli/output"
)

// LineageOptions holds options for the lineage command.
type LineageOptions struct {
	Input      string
	Upstream   bool
	Downstream bool
	Depth      int
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	opts := &LineageOptions{}

	cmd := &cobra.Command{
		Use:   "lineage <reference> [input]",
		Short: "Show upstream and downstream flow for a reference",
		Long: `Display everything that feeds a reference and everything it feeds.

References are the strings used in the document's lineage entries, e.g.
"users_table.id" or "Money#jpy.amount". This traces data flow for impact
analysis without rendering a diagram.`,
		Example: `  # Show full lineage for a field
  l2g lineage users_table.id

  # Show only upstream sources
  l2g lineage users_table.id --downstream=false

  # Limit traversal depth
  l2g lineage users_table.id --depth 2

  # Output as JSON
  l2g lineage users_table.id --output json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				opts.Input = args[1]
			}
			return runLineage(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Input, "input", "", "Lineage document (default: configured input)")
	cmd.Flags().BoolVar(&opts.Upstream, "upstream", true, "Include upstream sources")
	cmd.Flags().BoolVar(&opts.Downstream, "downstream", true, "Include downstream targets")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "Max traversal depth (0 = unlimited)")

	return cmd
}

// lineageReport is the JSON shape of a lineage query.
type lineageReport struct {
	Root       string   `json:"root"`
	Upstream   []string `json:"upstream,omitempty"`
	Downstream []string `json:"downstream,omitempty"`
}

func runLineage(cmd *cobra.Command, reference string, opts *LineageOptions) error {
	cmdCtx := NewCommandContext(cmd)

	input := cmdCtx.Cfg.Input
	if opts.Input != "" {
		input = opts.Input
	}

	res, err := cmdCtx.Engine.CompileFile(input)
	if err != nil {
		return err
	}

	graph := cmdCtx.Engine.LineageGraph(res)
	if !graph.Has(reference) {
		return fmt.Errorf("reference not found in lineage: %s", reference)
	}

	report := lineageReport{Root: reference}
	if opts.Upstream {
		report.Upstream = graph.Upstream(reference, opts.Depth)
	}
	if opts.Downstream {
		report.Downstream = graph.Downstream(reference, opts.Depth)
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return lineageText(r, report, opts)
}

func lineageText(r *output.Renderer, report lineageReport, opts *LineageOptions) error {
	r.Printf("Lineage for: %s\n\n", report.Root)

	if opts.Upstream {
		r.Printf("Upstream sources (%d):\n", len(report.Upstream))
		for _, node := range report.Upstream {
			r.Printf("  - %s\n", node)
		}
		r.Println()
	}

	if opts.Downstream {
		r.Printf("Downstream targets (%d):\n", len(report.Downstream))
		for _, node := range report.Downstream {
			r.Printf("  - %s\n", node)
		}
	}

	return nil
}
