// Package loader reads lineage documents and the external model sources they
// reference: column-list CSV files and schema documents.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/suwa-sh/lineage-to-graph/internal/lineage"
	"github.com/suwa-sh/lineage-to-graph/internal/model"
)

// Document is a parsed lineage document.
// Unknown top-level fields cause parse errors.
type Document struct {
	Direction string       `yaml:"direction"`
	Sources   []Source     `yaml:"sources"`
	Models    []ModelDef   `yaml:"models"`
	Lineage   []LineageDef `yaml:"lineage"`
}

// Source binds a model name to an external definition file, overriding the
// directory-based lookup for that model.
type Source struct {
	Model string `yaml:"model"`
	// Schema points at a schema document (YAML with props and children).
	Schema string `yaml:"schema"`
	// Columns points at a column-list CSV. Models loaded this way are
	// filterable: their property lists get trimmed to used fields.
	Columns string `yaml:"columns"`
}

// ModelDef is a model declaration as written in the document.
type ModelDef struct {
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"`
	Props    []string   `yaml:"props"`
	Children []ModelDef `yaml:"children"`
}

// LineageDef is a lineage declaration as written in the document. From
// accepts a single string or a list.
type LineageDef struct {
	From      FlexStrings `yaml:"from"`
	To        string      `yaml:"to"`
	Transform string      `yaml:"transform"`
}

// FlexStrings decodes either a YAML scalar or a sequence of scalars.
type FlexStrings []string

func (f *FlexStrings) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*f = FlexStrings{s}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := value.Decode(&ss); err != nil {
			return err
		}
		*f = FlexStrings(ss)
		return nil
	}
	return fmt.Errorf("from must be a string or a list of strings (line %d)", value.Line)
}

// ParseDocument parses lineage document YAML with strict field validation.
func ParseDocument(content []byte) (*Document, error) {
	var rawMap map[string]any
	if err := yaml.Unmarshal(content, &rawMap); err != nil {
		return nil, &DocumentParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	knownFields := map[string]bool{
		"direction": true,
		"sources":   true,
		"models":    true,
		"lineage":   true,
	}
	for field := range rawMap {
		if !knownFields[field] {
			return nil, &UnknownFieldError{Field: field}
		}
	}

	var doc Document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &DocumentParseError{Message: fmt.Sprintf("failed to parse document: %v", err)}
	}

	for i, m := range doc.Models {
		if err := validateModelDef(m); err != nil {
			return nil, &DocumentParseError{Message: fmt.Sprintf("models[%d]: %v", i, err)}
		}
	}
	for i, l := range doc.Lineage {
		if l.To == "" {
			return nil, &DocumentParseError{Message: fmt.Sprintf("lineage[%d]: missing to", i)}
		}
	}

	return &doc, nil
}

// LoadDocument reads and parses a lineage document from disk.
func LoadDocument(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(content)
	if err != nil {
		setFile(err, path)
		return nil, err
	}
	return doc, nil
}

func validateModelDef(m ModelDef) error {
	if m.Name == "" {
		return fmt.Errorf("missing name")
	}
	if _, err := model.ParseKind(m.Type); err != nil {
		return fmt.Errorf("model %q: %w", m.Name, err)
	}
	for _, c := range m.Children {
		if err := validateModelDef(c); err != nil {
			return err
		}
	}
	return nil
}

// Catalog converts the document's model declarations into a catalog.
func (d *Document) Catalog() *model.Catalog {
	roots := make([]*model.Definition, 0, len(d.Models))
	for _, m := range d.Models {
		roots = append(roots, toDefinition(m))
	}
	return model.NewCatalog(roots...)
}

func toDefinition(m ModelDef) *model.Definition {
	// Validation already rejected unknown types.
	kind, _ := model.ParseKind(m.Type)
	def := &model.Definition{
		Name:  m.Name,
		Kind:  kind,
		Props: append([]string(nil), m.Props...),
	}
	for _, c := range m.Children {
		def.Children = append(def.Children, toDefinition(c))
	}
	return def
}

// Entries converts the document's lineage declarations into lineage entries.
func (d *Document) Entries() []lineage.Entry {
	entries := make([]lineage.Entry, 0, len(d.Lineage))
	for _, l := range d.Lineage {
		entries = append(entries, lineage.Entry{
			From:      append([]string(nil), l.From...),
			To:        l.To,
			Transform: l.Transform,
		})
	}
	return entries
}

// DocumentParseError represents a lineage document parsing error.
type DocumentParseError struct {
	File    string
	Message string
}

func (e *DocumentParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// UnknownFieldError represents an unknown top-level document field.
type UnknownFieldError struct {
	File  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	msg := fmt.Sprintf("unknown field %q in lineage document, expected direction, sources, models, or lineage", e.Field)
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, msg)
	}
	return msg
}

func setFile(err error, path string) {
	switch e := err.(type) {
	case *DocumentParseError:
		e.File = path
	case *UnknownFieldError:
		e.File = path
	}
}
