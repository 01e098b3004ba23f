// Package model defines the model catalog: an immutable tree of model
// definitions with dotted-path lookup.
//
// A model path is the dot-joined chain of ancestor names plus the model's own
// name ("Parent.Child"). Paths are unique within a catalog. Catalogs are
// value-like: constructors deep-copy their input and accessors return
// independent copies, so a catalog held by one component can never be mutated
// through another.
package model

import (
	"fmt"
	"strings"
)

// Kind tags what a model represents in the diagram.
type Kind string

const (
	// KindProgram marks an application or process boundary.
	KindProgram Kind = "program"
	// KindDatastore marks a database, topic, or file store. This is the
	// default for models declared without a type.
	KindDatastore Kind = "datastore"
)

// ParseKind maps a declared type string to a Kind. Empty input defaults to
// datastore, matching the document format.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "":
		return KindDatastore, nil
	case string(KindProgram):
		return KindProgram, nil
	case string(KindDatastore):
		return KindDatastore, nil
	}
	return "", fmt.Errorf("unknown model type %q, must be program or datastore", s)
}

// Definition is a single model: a named entity with ordered properties and
// nested child models.
type Definition struct {
	Name     string
	Kind     Kind
	Props    []string
	Children []*Definition
}

// Clone returns a deep copy of the definition.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	c := &Definition{
		Name: d.Name,
		Kind: d.Kind,
	}
	if len(d.Props) > 0 {
		c.Props = append([]string(nil), d.Props...)
	}
	for _, child := range d.Children {
		c.Children = append(c.Children, child.Clone())
	}
	return c
}

// Catalog is an immutable collection of root model definitions indexed by
// dotted path. The index is an arena built once at construction: nodes are
// addressed by integer index with a side table mapping path to index, so
// lookups never re-parse path strings.
type Catalog struct {
	nodes []*Definition // arena; shared subtrees of the private root copies
	paths []string      // arena index -> full path, in depth-first order
	index map[string]int
	roots []int
}

// NewCatalog builds a catalog from root definitions. The input is deep-copied.
func NewCatalog(roots ...*Definition) *Catalog {
	c := &Catalog{index: make(map[string]int)}
	for _, r := range roots {
		if r == nil {
			continue
		}
		c.roots = append(c.roots, c.add(r.Clone(), ""))
	}
	return c
}

func (c *Catalog) add(d *Definition, prefix string) int {
	path := d.Name
	if prefix != "" {
		path = prefix + "." + d.Name
	}
	idx := len(c.nodes)
	c.nodes = append(c.nodes, d)
	c.paths = append(c.paths, path)
	c.index[path] = idx
	for _, child := range d.Children {
		c.add(child, path)
	}
	return idx
}

// Roots returns deep copies of the root definitions in declaration order.
func (c *Catalog) Roots() []*Definition {
	out := make([]*Definition, 0, len(c.roots))
	for _, i := range c.roots {
		out = append(out, c.nodes[i].Clone())
	}
	return out
}

// Len returns the number of root models.
func (c *Catalog) Len() int { return len(c.roots) }

// FindByName returns a copy of the root model with the given name.
func (c *Catalog) FindByName(name string) (*Definition, bool) {
	for _, i := range c.roots {
		if c.nodes[i].Name == name {
			return c.nodes[i].Clone(), true
		}
	}
	return nil, false
}

// HasPath reports whether a dotted path names a model in the catalog.
func (c *Catalog) HasPath(path string) bool {
	_, ok := c.index[path]
	return ok
}

// Paths returns every model path in depth-first declaration order.
func (c *Catalog) Paths() []string {
	return append([]string(nil), c.paths...)
}

// Names returns the root model names in declaration order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.roots))
	for _, i := range c.roots {
		out = append(out, c.nodes[i].Name)
	}
	return out
}

// Walk visits every model depth-first with its full path. The visited
// definitions are the catalog's own nodes and must not be mutated; callers
// needing ownership use Roots or Clone.
func (c *Catalog) Walk(fn func(path string, d *Definition)) {
	for i, d := range c.nodes {
		fn(c.paths[i], d)
	}
}

// Merge combines catalogs into a new one. Roots keep their first-seen
// position; a root appearing in a later catalog under an already-present name
// is skipped (earlier sources win).
func Merge(catalogs ...*Catalog) *Catalog {
	var roots []*Definition
	seen := make(map[string]struct{})
	for _, cat := range catalogs {
		if cat == nil {
			continue
		}
		for _, ri := range cat.roots {
			d := cat.nodes[ri]
			if _, dup := seen[d.Name]; dup {
				continue
			}
			seen[d.Name] = struct{}{}
			roots = append(roots, d)
		}
	}
	return NewCatalog(roots...)
}

// SplitPath splits a dotted model path into its parts.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
