// Package emitter renders a model graph and its lineage entries as a Mermaid
// flowchart inside a fenced Markdown block.
package emitter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/suwa-sh/lineage-to-graph/internal/graph"
	"github.com/suwa-sh/lineage-to-graph/internal/lineage"
)

// classDefs style the four node families: program and datastore containers,
// field nodes, and opaque literal values.
var classDefs = []string{
	"classDef program_bg fill:#E3F2FD,stroke:#1565C0,stroke-width:2px;",
	"classDef datastore_bg fill:#E8F5E9,stroke:#2E7D32,stroke-width:2px;",
	"classDef property fill:#F5F5F5,stroke:#9E9E9E,stroke-width:1px,color:#424242;",
	"classDef literal fill:#FFF3E0,stroke:#EF6C00,stroke-width:1px,color:#BF360C;",
}

// Mermaid renders lineage diagrams. The zero value renders left-to-right
// with logging discarded.
type Mermaid struct {
	// Direction is the Mermaid graph direction: LR, RL, TB, or BT.
	// Empty means LR.
	Direction string
	Log       *slog.Logger
}

// Render writes the complete fenced diagram. Unresolvable edge endpoints on
// the target side are logged and skipped; unresolvable sources become
// literal nodes. The output is deterministic for a given graph and entry
// list.
func (m *Mermaid) Render(w io.Writer, g *graph.ModelGraph, entries []lineage.Entry) error {
	log := m.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	direction := m.Direction
	if direction == "" {
		direction = "LR"
	}

	lines := []string{"```mermaid", "graph " + direction}
	for _, def := range classDefs {
		lines = append(lines, "  "+def)
	}
	lines = append(lines, "")

	for _, key := range g.Roots() {
		lines = append(lines, subgraphLines(g, key, 1)...)
		lines = append(lines, "")
	}

	lits := newLiteralSet()
	for _, e := range entries {
		if e.To == "" {
			continue
		}
		targetID, ok := resolve(g, e.To)
		if !ok {
			log.Warn("unresolved lineage target, edge skipped", "ref", e.To)
			continue
		}
		for i, src := range e.From {
			sourceID, ok := resolve(g, src)
			if !ok {
				var defined bool
				sourceID, defined = lits.id(src)
				if !defined {
					lines = append(lines, fmt.Sprintf("  %s[%q]:::literal", sourceID, src))
				}
			}
			if i == 0 && e.Transform != "" {
				lines = append(lines, fmt.Sprintf("  %s -->|%q| %s", sourceID, e.Transform, targetID))
			} else {
				lines = append(lines, fmt.Sprintf("  %s --> %s", sourceID, targetID))
			}
		}
	}

	lines = append(lines, "```")
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// subgraphLines renders one graph node and, nested inside it, every instance
// of each child model.
func subgraphLines(g *graph.ModelGraph, key string, indent int) []string {
	spaces := strings.Repeat("  ", indent)
	info := g.Hierarchy[key]

	id := SubgraphID(key)
	label := displayName(key, info.Instance)

	lines := []string{fmt.Sprintf("%ssubgraph %s[%s]", spaces, id, label)}

	fields := g.FieldNodes[key]
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s  %s[%q]:::property", spaces, f.ID, f.Label))
	}

	// Child models exist once in the graph no matter how many instances
	// their parent has; emit them inside the first parent instance only,
	// a later re-declaration would pull the nodes out of the earlier ones.
	if len(info.Children) > 0 && firstInstanceOf(g, key, info.Instance) {
		if len(fields) > 0 {
			lines = append(lines, "")
		}
		for _, childPath := range info.Children {
			for _, childKey := range g.InstanceKeys(childPath) {
				lines = append(lines, subgraphLines(g, childKey, indent+1)...)
			}
		}
	}

	lines = append(lines, spaces+"end")
	lines = append(lines, fmt.Sprintf("%sclass %s %s_bg", spaces, id, g.Kinds[key]))
	return lines
}

// firstInstanceOf reports whether key is the first node built for its model
// path. A no-instance node is always alone and therefore first.
func firstInstanceOf(g *graph.ModelGraph, key, instance string) bool {
	if instance == "" {
		return true
	}
	keys := g.InstanceKeys(strings.TrimSuffix(key, "#"+instance))
	return len(keys) > 0 && keys[0] == key
}

// SubgraphID derives the container identifier for an instance path.
func SubgraphID(key string) string {
	return graph.Sanitize(strings.NewReplacer(".", "_", "#", "_").Replace(key))
}

// displayName is the container label: the model's own name, with the
// instance marker kept so two instances of one model stay tellable apart.
func displayName(key, instance string) string {
	path := key
	if instance != "" {
		path = strings.TrimSuffix(key, "#"+instance)
	}
	parts := strings.Split(path, ".")
	name := parts[len(parts)-1]
	if instance != "" {
		name += "#" + instance
	}
	return name
}

// resolve maps a reference to a diagram identifier: a field node when the
// exact reference is known, else the model container when the reference
// names a graph node.
func resolve(g *graph.ModelGraph, ref string) (string, bool) {
	if id, ok := g.FieldNodeIDs[ref]; ok {
		return id, true
	}
	if _, ok := g.Hierarchy[ref]; ok {
		return SubgraphID(ref), true
	}
	return "", false
}

// literalSet assigns one node per distinct literal label. Two labels that
// sanitize to the same identifier get numeric suffixes, so every literal
// keeps its own node.
type literalSet struct {
	byLabel map[string]string
	taken   map[string]struct{}
}

func newLiteralSet() *literalSet {
	return &literalSet{
		byLabel: make(map[string]string),
		taken:   make(map[string]struct{}),
	}
}

// id returns the node identifier for a literal label and whether it was
// already defined.
func (l *literalSet) id(label string) (string, bool) {
	if id, ok := l.byLabel[label]; ok {
		return id, true
	}
	id := graph.Sanitize("lit_" + label)
	for n := 2; ; n++ {
		if _, clash := l.taken[id]; !clash {
			break
		}
		id = fmt.Sprintf("%s_%d", graph.Sanitize("lit_"+label), n)
	}
	l.byLabel[label] = id
	l.taken[id] = struct{}{}
	return id, false
}
