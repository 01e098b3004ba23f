package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/suwa-sh/lineage-to-graph/internal/lineage"
	"github.com/suwa-sh/lineage-to-graph/internal/model"
)

// Origin names where a model definition came from.
type Origin string

const (
	OriginDocument Origin = "document"
	OriginSchema   Origin = "schema"
	OriginColumns  Origin = "columns"
)

// Resolution is the outcome of model resolution: the merged catalog, the set
// of filterable model names (column-list models, whose property lists are
// trimmed to used fields), and the origin of every resolved model.
type Resolution struct {
	Catalog    *model.Catalog
	Filterable map[string]struct{}
	Origins    map[string]Origin
}

// Resolver locates external definitions for models the lineage references
// but the document does not declare. Lookup order per model: an explicit
// source hint in the document, then <SchemasDir>/<name>.yaml, then
// <ColumnsDir>/<name>.csv. A model found nowhere stays unresolved and flows
// through as a literal.
type Resolver struct {
	ColumnsDir string
	SchemasDir string
	Log        *slog.Logger
}

// Resolve merges the document's own models with externally resolved ones.
// Document declarations always win over external files of the same name.
func (r *Resolver) Resolve(doc *Document, referenced lineage.ReferencedModels) (*Resolution, error) {
	log := r.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	res := &Resolution{
		Filterable: make(map[string]struct{}),
		Origins:    make(map[string]Origin),
	}

	docCatalog := doc.Catalog()
	for _, name := range docCatalog.Names() {
		res.Origins[name] = OriginDocument
	}

	hints := make(map[string]Source, len(doc.Sources))
	for _, s := range doc.Sources {
		if s.Model == "" {
			return nil, &DocumentParseError{Message: "source entry missing model"}
		}
		hints[s.Model] = s
	}

	var external []*model.Definition
	for _, name := range referenced.Names() {
		if docCatalog.HasPath(name) {
			continue
		}
		def, origin, err := r.lookup(name, hints)
		if err != nil {
			return nil, err
		}
		if def == nil {
			log.Debug("reference has no model definition, treating as literal or inferring", "model", name)
			continue
		}
		def.Name = name
		external = append(external, def)
		res.Origins[name] = origin
		if origin == OriginColumns {
			res.Filterable[name] = struct{}{}
		}
		log.Debug("resolved external model", "model", name, "origin", string(origin))
	}

	res.Catalog = model.Merge(docCatalog, model.NewCatalog(external...))
	return res, nil
}

func (r *Resolver) lookup(name string, hints map[string]Source) (*model.Definition, Origin, error) {
	if hint, ok := hints[name]; ok {
		switch {
		case hint.Schema != "":
			def, err := LoadSchema(hint.Schema)
			return def, OriginSchema, err
		case hint.Columns != "":
			def, err := LoadColumns(hint.Columns)
			return def, OriginColumns, err
		default:
			return nil, "", &DocumentParseError{
				Message: fmt.Sprintf("source for model %q names neither schema nor columns", name),
			}
		}
	}

	if r.SchemasDir != "" {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(r.SchemasDir, name+ext)
			if fileExists(path) {
				def, err := LoadSchema(path)
				return def, OriginSchema, err
			}
		}
	}

	if r.ColumnsDir != "" {
		path := filepath.Join(r.ColumnsDir, name+".csv")
		if fileExists(path) {
			def, err := LoadColumns(path)
			return def, OriginColumns, err
		}
	}

	return nil, "", nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
