package loader

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/suwa-sh/lineage-to-graph/internal/model"
)

// refPrefix is the only reference form schema documents support: a pointer
// into the document's own shared definitions.
const refPrefix = "#/models/"

// schemaNode is either an inline model definition or a $ref to a shared one.
type schemaNode struct {
	Ref      string       `yaml:"$ref"`
	Name     string       `yaml:"name"`
	Type     string       `yaml:"type"`
	Props    []string     `yaml:"props"`
	Children []schemaNode `yaml:"children"`
}

// schemaDoc is a schema document: one root model plus shared definitions
// addressable via "#/models/<name>".
type schemaDoc struct {
	Model  schemaNode            `yaml:"model"`
	Models map[string]schemaNode `yaml:"models"`
}

// LoadSchema reads a schema document and resolves it to a model definition.
// Self-referential $ref chains are an error, not a stack overflow.
func LoadSchema(path string) (*model.Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def, err := ParseSchema(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// ParseSchema parses schema document YAML and resolves every $ref.
func ParseSchema(content []byte) (*model.Definition, error) {
	var doc schemaDoc
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &DocumentParseError{Message: fmt.Sprintf("invalid schema YAML: %v", err)}
	}
	if doc.Model.Name == "" && doc.Model.Ref == "" {
		return nil, &DocumentParseError{Message: "schema document missing model"}
	}
	return resolveSchemaNode(doc.Model, doc.Models, map[string]bool{})
}

func resolveSchemaNode(n schemaNode, shared map[string]schemaNode, active map[string]bool) (*model.Definition, error) {
	if n.Ref != "" {
		name, ok := strings.CutPrefix(n.Ref, refPrefix)
		if !ok {
			return nil, &DocumentParseError{Message: fmt.Sprintf("unsupported $ref %q, expected %q prefix", n.Ref, refPrefix)}
		}
		target, ok := shared[name]
		if !ok {
			return nil, &DocumentParseError{Message: fmt.Sprintf("$ref %q: no such shared model", n.Ref)}
		}
		if active[name] {
			return nil, &DocumentParseError{Message: fmt.Sprintf("$ref cycle through %q", name)}
		}
		if target.Name == "" {
			target.Name = name
		}
		active[name] = true
		def, err := resolveSchemaNode(target, shared, active)
		delete(active, name)
		return def, err
	}

	if n.Name == "" {
		return nil, &DocumentParseError{Message: "schema model missing name"}
	}
	kind, err := model.ParseKind(n.Type)
	if err != nil {
		return nil, &DocumentParseError{Message: fmt.Sprintf("model %q: %v", n.Name, err)}
	}

	def := &model.Definition{
		Name:  n.Name,
		Kind:  kind,
		Props: append([]string(nil), n.Props...),
	}
	for _, child := range n.Children {
		c, err := resolveSchemaNode(child, shared, active)
		if err != nil {
			return nil, err
		}
		def.Children = append(def.Children, c)
	}
	return def, nil
}
