package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suwa-sh/lineage-to-graph/internal/cli/output"
	"github.com/suwa-sh/lineage-to-graph/internal/engine"
	"github.com/suwa-sh/lineage-to-graph/internal/model"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [input]",
		Short: "Validate a lineage document without rendering",
		Long: `Compile a lineage document and report problems: lineage targets that
resolve to no field or model, circular data flow, models left without any
properties, and duplicate property declarations.

Exits non-zero when any problem is found, for use in CI.`,
		Example: `  # Check the configured input
  l2g check

  # Check a specific document
  l2g check flows/billing.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}

	return cmd
}

// finding is one reported problem.
type finding struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)

	input := cmdCtx.Cfg.Input
	if len(args) > 0 {
		input = args[0]
	}

	res, err := cmdCtx.Engine.CompileFile(input)
	if err != nil {
		return err
	}

	findings := collectFindings(cmdCtx.Engine, res)
	r := cmdCtx.Renderer

	if r.EffectiveMode() == output.ModeJSON {
		enc := json.NewEncoder(r.Writer())
		enc.SetIndent("", "  ")
		if err := enc.Encode(findings); err != nil {
			return err
		}
	} else {
		for _, f := range findings {
			r.Warning(fmt.Sprintf("%s: %s (%s)", f.Kind, f.Subject, f.Detail))
		}
	}

	if len(findings) > 0 {
		return fmt.Errorf("%d problem(s) found in %s", len(findings), input)
	}
	r.Success(fmt.Sprintf("%s is valid (%d models, %d lineage entries)", input, res.Catalog.Len(), len(res.Entries)))
	return nil
}

func collectFindings(eng *engine.Engine, res *engine.Result) []finding {
	var findings []finding

	// Targets the emitter would silently drop.
	for _, e := range res.Entries {
		if e.To == "" {
			continue
		}
		if _, ok := res.Graph.FieldNodeIDs[e.To]; ok {
			continue
		}
		if _, ok := res.Graph.Hierarchy[e.To]; ok {
			continue
		}
		findings = append(findings, finding{
			Kind:    "unresolved-target",
			Subject: e.To,
			Detail:  "matches no field or model, its edges will be dropped",
		})
	}

	if cyclic, path := eng.LineageGraph(res).HasCycle(); cyclic {
		findings = append(findings, finding{
			Kind:    "cycle",
			Subject: strings.Join(path, " -> "),
			Detail:  "data flows back into itself",
		})
	}

	res.Catalog.Walk(func(path string, d *model.Definition) {
		if len(d.Props) == 0 && len(d.Children) == 0 {
			findings = append(findings, finding{
				Kind:    "empty-model",
				Subject: path,
				Detail:  "no properties declared, referenced, or inferred",
			})
		}
		seen := make(map[string]bool, len(d.Props))
		for _, p := range d.Props {
			if seen[p] {
				findings = append(findings, finding{
					Kind:    "duplicate-prop",
					Subject: path + "." + p,
					Detail:  "property declared more than once",
				})
			}
			seen[p] = true
		}
	})

	return findings
}
