// Package engine runs the lineage compilation pipeline: load the document,
// resolve external model sources, extract usage, infer missing structure,
// expand the model graph, and render the diagram.
package engine

import (
	"io"
	"log/slog"

	"github.com/suwa-sh/lineage-to-graph/internal/dag"
	"github.com/suwa-sh/lineage-to-graph/internal/emitter"
	"github.com/suwa-sh/lineage-to-graph/internal/graph"
	"github.com/suwa-sh/lineage-to-graph/internal/infer"
	"github.com/suwa-sh/lineage-to-graph/internal/lineage"
	"github.com/suwa-sh/lineage-to-graph/internal/loader"
	"github.com/suwa-sh/lineage-to-graph/internal/model"
)

// Config carries the pipeline settings.
type Config struct {
	// ColumnsDir holds column-list CSV files looked up by model name.
	ColumnsDir string
	// SchemasDir holds schema documents looked up by model name.
	SchemasDir string
	// AllProps disables usage-based field filtering.
	AllProps bool
	// Direction overrides the document's diagram direction when non-empty.
	Direction string
	Logger    *slog.Logger
}

// Result is everything a compilation produces. Commands pick the parts they
// need: generate renders the graph, models and lineage inspect the rest.
type Result struct {
	Document   *loader.Document
	Catalog    *model.Catalog
	Entries    []lineage.Entry
	Usage      lineage.Usage
	Graph      *graph.ModelGraph
	Filterable map[string]struct{}
	Origins    map[string]loader.Origin
	Direction  string
}

// Engine compiles lineage documents.
type Engine struct {
	cfg Config
	log *slog.Logger
}

// New creates an engine. A nil logger in the config discards logging.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{cfg: cfg, log: log}
}

// CompileFile loads and compiles a lineage document from disk.
func (e *Engine) CompileFile(path string) (*Result, error) {
	doc, err := loader.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return e.Compile(doc)
}

// Compile runs the pipeline over a parsed document.
func (e *Engine) Compile(doc *loader.Document) (*Result, error) {
	entries := doc.Entries()
	referenced := lineage.ReferencedModelNames(entries)

	resolver := &loader.Resolver{
		ColumnsDir: e.cfg.ColumnsDir,
		SchemasDir: e.cfg.SchemasDir,
		Log:        e.log,
	}
	resolution, err := resolver.Resolve(doc, referenced)
	if err != nil {
		return nil, err
	}

	// Usage is extracted against the resolved catalog, before inference:
	// classification must not be influenced by models inference creates.
	usage := lineage.ExtractUsage(entries, resolution.Catalog)
	catalog := infer.Infer(resolution.Catalog, entries)

	opts := graph.Options{
		Filterable: resolution.Filterable,
		Instances:  usage.Instances,
	}
	if !e.cfg.AllProps {
		opts.UsedFields = &usage.Fields
	}
	g := graph.Build(catalog, opts)

	direction := doc.Direction
	if e.cfg.Direction != "" {
		direction = e.cfg.Direction
	}

	e.log.Debug("compiled lineage document",
		"models", catalog.Len(),
		"entries", len(entries),
		"graph_nodes", len(g.Order))

	return &Result{
		Document:   doc,
		Catalog:    catalog,
		Entries:    entries,
		Usage:      usage,
		Graph:      g,
		Filterable: resolution.Filterable,
		Origins:    resolution.Origins,
		Direction:  direction,
	}, nil
}

// Render writes the Mermaid diagram for a compiled result.
func (e *Engine) Render(w io.Writer, res *Result) error {
	m := &emitter.Mermaid{Direction: res.Direction, Log: e.log}
	return m.Render(w, res.Graph, res.Entries)
}

// LineageGraph builds the reference dependency graph for impact queries.
func (e *Engine) LineageGraph(res *Result) *dag.Graph {
	return dag.FromEntries(res.Entries)
}
