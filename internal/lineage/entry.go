// Package lineage holds lineage entries and extracts usage information from
// them: which models are referenced, under which instance identifiers, and
// which fields of each model/instance path actually carry data.
package lineage

// Entry is a single data-flow edge: one or more source references feeding a
// single target reference, optionally annotated with a transform label.
type Entry struct {
	// From holds the source reference strings. A literal source (a string
	// that resolves to no model) is permitted and passes through as opaque
	// data.
	From []string
	// To is the target reference string.
	To string
	// Transform is an optional label describing how sources map to the
	// target. It is rendered on the edge, never executed.
	Transform string
}

// CloneEntries returns a deep copy of a lineage entry list.
func CloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{
			From:      append([]string(nil), e.From...),
			To:        e.To,
			Transform: e.Transform,
		}
	}
	return out
}

// refsOf yields every reference string of an entry, sources first.
func (e Entry) refs() []string {
	refs := make([]string, 0, len(e.From)+1)
	refs = append(refs, e.From...)
	if e.To != "" {
		refs = append(refs, e.To)
	}
	return refs
}
