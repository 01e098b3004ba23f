package lineage

import (
	"sort"

	"github.com/suwa-sh/lineage-to-graph/internal/model"
	"github.com/suwa-sh/lineage-to-graph/internal/ref"
)

// Wildcard marks a tracking key whose model/instance is referenced as a
// whole: every declared field counts as used. Once recorded it dominates,
// later per-field insertions for the same key are no-ops.
const Wildcard = "*"

// RefClass is the three-way classification of a lineage endpoint, computed
// once during extraction and consumed everywhere else.
type RefClass int

const (
	// ClassLiteral is a reference whose root is not a catalog model:
	// opaque data flowing through the diagram, never an error.
	ClassLiteral RefClass = iota
	// ClassModelRef addresses a model (or model instance) as a whole.
	ClassModelRef
	// ClassFieldRef addresses a field within a model.
	ClassFieldRef
)

// Classify determines how a parsed reference is to be treated against a
// catalog. A reference bears fields when it names a field outright, names an
// instance, or is itself a known catalog path; a bare identifier matching no
// catalog path is a literal.
func Classify(r ref.Reference, catalog *model.Catalog) RefClass {
	if r.HasField() {
		return ClassFieldRef
	}
	if r.HasInstance() || catalog.HasPath(r.Model) {
		return ClassModelRef
	}
	return ClassLiteral
}

// ReferencedModels is the set of model names appearing as the model part of
// any lineage reference.
type ReferencedModels struct {
	names map[string]struct{}
}

// NewReferencedModels builds the set from model names.
func NewReferencedModels(names ...string) ReferencedModels {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return ReferencedModels{names: m}
}

// Contains reports whether a model name is in the set.
func (r ReferencedModels) Contains(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Names returns the model names, sorted.
func (r ReferencedModels) Names() []string {
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Difference returns the names present here but absent from other.
func (r ReferencedModels) Difference(other ReferencedModels) ReferencedModels {
	diff := make(map[string]struct{})
	for n := range r.names {
		if _, ok := other.names[n]; !ok {
			diff[n] = struct{}{}
		}
	}
	return ReferencedModels{names: diff}
}

// Len returns the number of referenced models.
func (r ReferencedModels) Len() int { return len(r.names) }

// ModelInstances maps a model name to the instance identifiers seen for it.
// A model present with an empty set was referenced without any instance.
type ModelInstances struct {
	instances map[string]map[string]struct{}
}

// NewModelInstances builds the mapping from name -> instance ids.
func NewModelInstances(m map[string][]string) ModelInstances {
	mi := ModelInstances{instances: make(map[string]map[string]struct{}, len(m))}
	for name, ids := range m {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		mi.instances[name] = set
	}
	return mi
}

// Has reports whether the model was referenced at all.
func (m ModelInstances) Has(name string) bool {
	_, ok := m.instances[name]
	return ok
}

// Instances returns the sorted instance identifiers recorded for a model.
// The result is empty both for an unreferenced model and for one referenced
// only without an instance.
func (m ModelInstances) Instances(name string) []string {
	set, ok := m.instances[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (m ModelInstances) record(name, instance string) {
	set, ok := m.instances[name]
	if !ok {
		set = make(map[string]struct{})
		m.instances[name] = set
	}
	if instance != "" {
		set[instance] = struct{}{}
	}
}

// UsedFields maps a tracking key ("Model" or "Model#instance") to the set of
// field names used under it. The Wildcard value means every declared field.
type UsedFields struct {
	fields map[string]map[string]struct{}
}

// NewUsedFields builds the mapping from key -> field names.
func NewUsedFields(m map[string][]string) UsedFields {
	uf := UsedFields{fields: make(map[string]map[string]struct{}, len(m))}
	for key, names := range m {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		uf.fields[key] = set
	}
	return uf
}

// Contains reports whether any usage was recorded for a tracking key.
func (u UsedFields) Contains(key string) bool {
	_, ok := u.fields[key]
	return ok
}

// Fields returns a copy of the field set recorded for a tracking key.
func (u UsedFields) Fields(key string) map[string]struct{} {
	set, ok := u.fields[key]
	if !ok {
		return map[string]struct{}{}
	}
	out := make(map[string]struct{}, len(set))
	for f := range set {
		out[f] = struct{}{}
	}
	return out
}

// Used reports whether a specific field counts as used under a tracking key:
// either the wildcard is recorded or the field itself is.
func (u UsedFields) Used(key, field string) bool {
	set, ok := u.fields[key]
	if !ok {
		return false
	}
	if _, wild := set[Wildcard]; wild {
		return true
	}
	_, ok = set[field]
	return ok
}

// markWildcard records whole-model usage. Wildcard replaces any fields
// recorded so far and suppresses later per-field additions.
func (u UsedFields) markWildcard(key string) {
	u.fields[key] = map[string]struct{}{Wildcard: {}}
}

// addField records a single used field unless the key already holds the
// wildcard.
func (u UsedFields) addField(key, field string) {
	set, ok := u.fields[key]
	if !ok {
		u.fields[key] = map[string]struct{}{field: {}}
		return
	}
	if _, wild := set[Wildcard]; wild {
		return
	}
	set[field] = struct{}{}
}

// Usage is the combined result of walking every lineage endpoint.
type Usage struct {
	Models    ReferencedModels
	Instances ModelInstances
	Fields    UsedFields
}

// ReferencedModelNames collects the model part of every lineage endpoint
// without consulting a catalog. The result over-approximates: literal roots
// are included, and it is the caller's policy to treat anything that cannot
// be resolved to a model source as opaque data.
func ReferencedModelNames(entries []Entry) ReferencedModels {
	names := make(map[string]struct{})
	for _, e := range entries {
		for _, s := range e.refs() {
			if m := ref.Parse(s).Model; m != "" {
				names[m] = struct{}{}
			}
		}
	}
	return ReferencedModels{names: names}
}

// ExtractUsage walks every entry's sources and target and computes the
// referenced models, the instances used per model, and the fields used per
// tracking key. Processing order does not affect the result apart from
// wildcard dominance, which is order-free by construction.
func ExtractUsage(entries []Entry, catalog *model.Catalog) Usage {
	u := Usage{
		Models:    ReferencedModels{names: make(map[string]struct{})},
		Instances: ModelInstances{instances: make(map[string]map[string]struct{})},
		Fields:    UsedFields{fields: make(map[string]map[string]struct{})},
	}

	for _, e := range entries {
		for _, s := range e.refs() {
			r := ref.Parse(s)
			if r.Model == "" {
				continue
			}
			u.Models.names[r.Model] = struct{}{}
			u.Instances.record(r.Model, r.Instance)

			switch Classify(r, catalog) {
			case ClassModelRef:
				u.Fields.markWildcard(r.TrackingKey())
			case ClassFieldRef:
				u.Fields.addField(r.TrackingKey(), r.Field)
			}
		}
	}

	return u
}
