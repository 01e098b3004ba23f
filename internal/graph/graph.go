// Package graph expands a model catalog against the instances discovered in
// lineage into render-ready nodes.
//
// A model referenced under N instance identifiers yields N graph nodes, each
// with its own field-node identifiers; a model never referenced with an
// instance yields exactly one. Node identifiers are pure functions of
// (path, instance, field), so re-running over the same input reproduces the
// same diagram byte for byte.
package graph

import (
	"sort"
	"strings"
	"unicode"

	"github.com/suwa-sh/lineage-to-graph/internal/lineage"
	"github.com/suwa-sh/lineage-to-graph/internal/model"
)

// FieldNode is one rendered field: its diagram identifier and display label.
type FieldNode struct {
	ID    string
	Label string
}

// NodeInfo records where a graph node sits in the containment tree.
type NodeInfo struct {
	// Parent is the full path of the containing model, empty at a root.
	// It carries no instance marker: containment is structural.
	Parent string
	// Children lists the immediate child model full paths in declaration
	// order, not yet instance-expanded.
	Children []string
	// Instance is the instance identifier of this node, empty for the
	// no-instance node.
	Instance string
}

// ModelGraph is the expanded graph keyed by instance path: the model's full
// dotted path, suffixed with "#instance" when the node represents a named
// instance.
type ModelGraph struct {
	Kinds        map[string]model.Kind
	FieldNodes   map[string][]FieldNode
	FieldNodeIDs map[string]string
	Hierarchy    map[string]NodeInfo
	// Order holds every instance path in build order: parents before their
	// children, instances of one model adjacent, no-instance node first and
	// the rest lexicographic.
	Order []string
}

// Options tunes the expansion.
type Options struct {
	// UsedFields enables usage-based field filtering when non-nil. Nil
	// means render every declared field (the "all properties" mode).
	UsedFields *lineage.UsedFields
	// Filterable names the models whose property lists may be filtered:
	// models sourced from a column list, where the declared set is far
	// wider than what any one diagram uses.
	Filterable map[string]struct{}
	// Instances supplies the instance identifiers seen per model name.
	Instances lineage.ModelInstances
}

// Build expands the catalog into a model graph. It is a pure function of its
// inputs; the catalog is read through copying accessors and never retained.
func Build(catalog *model.Catalog, opts Options) *ModelGraph {
	g := &ModelGraph{
		Kinds:        make(map[string]model.Kind),
		FieldNodes:   make(map[string][]FieldNode),
		FieldNodeIDs: make(map[string]string),
		Hierarchy:    make(map[string]NodeInfo),
	}
	for _, root := range catalog.Roots() {
		g.expand(root, "", opts)
	}
	return g
}

func (g *ModelGraph) expand(d *model.Definition, prefix string, opts Options) {
	fullPath := d.Name
	if prefix != "" {
		fullPath = prefix + "." + d.Name
	}

	// Instances resolve by plain model name, independently at every
	// nesting level. A model never seen with an instance still produces
	// one node, keyed by its bare path.
	instances := opts.Instances.Instances(d.Name)
	if len(instances) == 0 {
		instances = []string{""}
	} else {
		sort.Strings(instances)
	}

	childPaths := make([]string, 0, len(d.Children))
	for _, c := range d.Children {
		childPaths = append(childPaths, fullPath+"."+c.Name)
	}

	for _, inst := range instances {
		instancePath := fullPath
		if inst != "" {
			instancePath = fullPath + "#" + inst
		}

		g.Kinds[instancePath] = d.Kind
		g.Hierarchy[instancePath] = NodeInfo{
			Parent:   prefix,
			Children: childPaths,
			Instance: inst,
		}
		g.Order = append(g.Order, instancePath)

		filter := opts.UsedFields != nil &&
			opts.UsedFields.Contains(instancePath) &&
			contains(opts.Filterable, d.Name)

		nodes := make([]FieldNode, 0, len(d.Props))
		for _, f := range d.Props {
			if filter && !opts.UsedFields.Used(instancePath, f) {
				continue
			}
			id := NodeID(fullPath, inst, f)
			nodes = append(nodes, FieldNode{ID: id, Label: f})
			g.FieldNodeIDs[instancePath+"."+f] = id
		}
		g.FieldNodes[instancePath] = nodes
	}

	for _, c := range d.Children {
		g.expand(c, fullPath, opts)
	}
}

// InstanceKeys returns the instance paths built for a model full path, in
// node order: the no-instance node first, then instances lexicographically.
func (g *ModelGraph) InstanceKeys(fullPath string) []string {
	var keys []string
	for _, key := range g.Order {
		if key == fullPath || strings.HasPrefix(key, fullPath+"#") {
			keys = append(keys, key)
		}
	}
	return keys
}

// Roots returns the instance paths of all top-level nodes in node order.
func (g *ModelGraph) Roots() []string {
	var roots []string
	for _, key := range g.Order {
		if g.Hierarchy[key].Parent == "" {
			roots = append(roots, key)
		}
	}
	return roots
}

// NodeID derives the stable diagram identifier for a field node.
func NodeID(fullPath, instance, field string) string {
	key := strings.ReplaceAll(fullPath, ".", "_")
	if instance != "" {
		key += "_" + instance
	}
	return Sanitize(key + "_" + field)
}

// Sanitize turns an arbitrary string into a diagram-safe identifier. Letters
// (any script), digits, and underscores pass through; every other run of
// characters collapses to a single underscore. The result is never empty and
// never starts with an ASCII digit.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if r == '_' {
				if prevUnderscore {
					continue
				}
				prevUnderscore = true
			} else {
				prevUnderscore = false
			}
			b.WriteRune(r)
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "id"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "n_" + out
	}
	return out
}

func contains(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}
