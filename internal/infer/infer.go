// Package infer synthesizes model structure from lineage usage.
//
// A model declared without properties gets its property list filled from the
// fields the lineage references on it; a nested model path that does not
// exist at all is created, inheriting its kind from the nearest existing
// ancestor. Declared non-empty property lists are never touched: explicit
// schemas win over inference. Instance markers are ignored structurally, so
// all instances of a model share one inferred schema.
package infer

import (
	"sort"
	"strings"

	"github.com/suwa-sh/lineage-to-graph/internal/lineage"
	"github.com/suwa-sh/lineage-to-graph/internal/model"
	"github.com/suwa-sh/lineage-to-graph/internal/ref"
)

// node is an arena entry. Children are arena indices: pre-existing children
// first in declaration order, created children appended in the order their
// paths were first encountered.
type node struct {
	name     string
	kind     model.Kind
	props    []string
	children []int
}

type arena struct {
	nodes []node
	index map[string]int
	roots []int
}

// Infer returns a new catalog with inferred structure added. The input
// catalog and entries are never mutated. Unresolvable references are treated
// as literals and skipped; this operation has no failure mode.
func Infer(catalog *model.Catalog, entries []lineage.Entry) *model.Catalog {
	a := fromCatalog(catalog)

	pending, order := collectPending(a, entries)

	for _, path := range order {
		fields := sortedFields(pending[path])
		if idx, ok := a.index[path]; ok {
			if len(a.nodes[idx].props) == 0 {
				a.nodes[idx].props = fields
			}
			continue
		}
		a.createChain(path, fields)
	}

	return a.toCatalog()
}

func fromCatalog(catalog *model.Catalog) *arena {
	a := &arena{index: make(map[string]int)}
	for _, root := range catalog.Roots() {
		a.roots = append(a.roots, a.add(root, ""))
	}
	return a
}

func (a *arena) add(d *model.Definition, prefix string) int {
	path := d.Name
	if prefix != "" {
		path = prefix + "." + d.Name
	}
	idx := len(a.nodes)
	a.nodes = append(a.nodes, node{name: d.Name, kind: d.Kind, props: d.Props})
	a.index[path] = idx
	for _, child := range d.Children {
		ci := a.add(child, path)
		a.nodes[idx].children = append(a.nodes[idx].children, ci)
	}
	return idx
}

// collectPending walks every lineage reference containing a dot and, when
// its root names a known model, accumulates the leaf field under the full
// nested model path. Roots outside the catalog are literals and skipped
// entirely; that is what keeps strings like version numbers from spawning
// phantom models.
func collectPending(a *arena, entries []lineage.Entry) (map[string]map[string]struct{}, []string) {
	pending := make(map[string]map[string]struct{})
	var order []string

	record := func(s string) {
		if !strings.Contains(s, ".") {
			return
		}
		root := ref.RootModel(s)
		if root == "" {
			return
		}
		if _, ok := a.index[root]; !ok {
			return
		}
		stripped, ok := ref.StripInstance(s)
		if !ok {
			return
		}
		path, field, err := ref.SplitLeafField(stripped)
		if err != nil || path == "" || field == "" {
			return
		}
		for _, part := range model.SplitPath(path) {
			if part == "" {
				return
			}
		}
		set, seen := pending[path]
		if !seen {
			set = make(map[string]struct{})
			pending[path] = set
			order = append(order, path)
		}
		set[field] = struct{}{}
	}

	for _, e := range entries {
		for _, s := range e.From {
			record(s)
		}
		record(e.To)
	}
	return pending, order
}

// createChain materializes every missing part of path below its longest
// existing prefix. Created models inherit the kind of their nearest existing
// ancestor; only the leaf receives the pending fields, intermediates stay
// empty for a later pass to fill.
func (a *arena) createChain(path string, fields []string) {
	parts := model.SplitPath(path)
	cur := ""
	parent := -1
	for i, part := range parts {
		if cur == "" {
			cur = part
		} else {
			cur = cur + "." + part
		}
		if idx, ok := a.index[cur]; ok {
			parent = idx
			continue
		}

		kind := model.KindProgram
		if parent >= 0 {
			kind = a.nodes[parent].kind
		}
		n := node{name: part, kind: kind}
		if i == len(parts)-1 {
			n.props = fields
		}
		idx := len(a.nodes)
		a.nodes = append(a.nodes, n)
		a.index[cur] = idx
		if parent >= 0 {
			a.nodes[parent].children = append(a.nodes[parent].children, idx)
		} else {
			a.roots = append(a.roots, idx)
		}
		parent = idx
	}
}

func (a *arena) toCatalog() *model.Catalog {
	var build func(idx int) *model.Definition
	build = func(idx int) *model.Definition {
		n := a.nodes[idx]
		d := &model.Definition{Name: n.name, Kind: n.kind}
		if len(n.props) > 0 {
			d.Props = append([]string(nil), n.props...)
		}
		for _, ci := range n.children {
			d.Children = append(d.Children, build(ci))
		}
		return d
	}

	roots := make([]*model.Definition, 0, len(a.roots))
	for _, ri := range a.roots {
		roots = append(roots, build(ri))
	}
	return model.NewCatalog(roots...)
}

func sortedFields(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
