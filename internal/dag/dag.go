// Package dag builds the dependency graph over lineage references.
// It backs impact queries (what feeds this field, what does it feed) and
// cycle reporting; diagram rendering does not go through it.
package dag

import (
	"sort"

	"github.com/suwa-sh/lineage-to-graph/internal/lineage"
)

// Graph is a directed graph of reference strings. An edge runs from each
// source reference to its target, so "downstream" follows the data.
type Graph struct {
	nodes    map[string]struct{}
	children map[string][]string // source -> targets
	parents  map[string][]string // target -> sources
}

// FromEntries builds the graph from lineage entries. Self-loops and
// duplicate edges collapse silently; an empty entry list yields an empty
// graph, not an error.
func FromEntries(entries []lineage.Entry) *Graph {
	g := &Graph{
		nodes:    make(map[string]struct{}),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
	for _, e := range entries {
		if e.To == "" {
			continue
		}
		g.addNode(e.To)
		for _, src := range e.From {
			if src == "" || src == e.To {
				continue
			}
			g.addNode(src)
			g.addEdge(src, e.To)
		}
	}
	return g
}

func (g *Graph) addNode(id string) {
	g.nodes[id] = struct{}{}
}

func (g *Graph) addEdge(from, to string) {
	if !contains(g.children[from], to) {
		g.children[from] = append(g.children[from], to)
	}
	if !contains(g.parents[to], from) {
		g.parents[to] = append(g.parents[to], from)
	}
}

// Has reports whether a reference appears anywhere in the lineage.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns every reference, sorted.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// NodeCount returns the number of distinct references.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct source-to-target edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.children {
		count += len(targets)
	}
	return count
}

// Parents returns the direct sources feeding a reference, sorted.
func (g *Graph) Parents(id string) []string {
	return sortedCopy(g.parents[id])
}

// Children returns the direct targets fed by a reference, sorted.
func (g *Graph) Children(id string) []string {
	return sortedCopy(g.children[id])
}

// Upstream returns everything that transitively feeds a reference, sorted.
// depth limits how many hops to follow; zero or negative means unlimited.
func (g *Graph) Upstream(id string, depth int) []string {
	return g.traverse(id, depth, g.parents)
}

// Downstream returns everything a reference transitively feeds, sorted.
// depth limits how many hops to follow; zero or negative means unlimited.
func (g *Graph) Downstream(id string, depth int) []string {
	return g.traverse(id, depth, g.children)
}

func (g *Graph) traverse(id string, depth int, adj map[string][]string) []string {
	seen := map[string]struct{}{id: {}}
	frontier := []string{id}
	var result []string

	for hop := 0; len(frontier) > 0 && (depth <= 0 || hop < depth); hop++ {
		var next []string
		for _, cur := range frontier {
			for _, n := range adj[cur] {
				if _, ok := seen[n]; ok {
					continue
				}
				seen[n] = struct{}{}
				result = append(result, n)
				next = append(next, n)
			}
		}
		frontier = next
	}

	sort.Strings(result)
	return result
}

// Roots returns references with no sources, sorted.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns references that feed nothing further, sorted.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.children[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// HasCycle reports whether the lineage contains a circular flow, along with
// one witnessing path. Start nodes are visited in sorted order, so the
// reported path is stable across runs.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range g.children[id] {
			if !visited[next] {
				cameFrom[next] = id
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				cyclePath = []string{next}
				for cur := id; cur != next; cur = cameFrom[cur] {
					cyclePath = append([]string{cur}, cyclePath...)
				}
				cyclePath = append([]string{next}, cyclePath...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for _, id := range g.Nodes() {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}
	return false, nil
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
