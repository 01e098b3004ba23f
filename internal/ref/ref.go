// Package ref parses lineage reference strings.
//
// A reference names a model, optionally a named instance of that model, and
// optionally a field within it:
//
//	Money
//	Money#jpy
//	Money.amount
//	Money#jpy.amount
//	Parent.Child.code
//
// Two distinct parses exist and must not be conflated. Parse splits on the
// first dot, so "Parent.Child.code" yields field "Child.code" relative to
// model "Parent". SplitLeafField splits on the last dot, yielding the
// container path "Parent.Child" and leaf field "code". The former is the
// lenient surface parse applied to every lineage endpoint; the latter is the
// strict path-aware parse used where a string is already known to denote a
// field.
package ref

import (
	"fmt"
	"strings"
)

// Reference is the parsed form of a lineage reference string.
type Reference struct {
	// Model is the model name. Never empty for a non-empty input; for an
	// opaque literal it holds the text before the first separator.
	Model string
	// Instance is the "#id" suffix of the model part, without the marker.
	// Empty when the reference carries no instance.
	Instance string
	// Field is everything after the first dot. It may itself contain dots
	// for nested references. Empty when the reference has no field part.
	Field string
	// Raw is the original reference string.
	Raw string
}

// HasInstance reports whether the reference names a model instance.
func (r Reference) HasInstance() bool { return r.Instance != "" }

// HasField reports whether the reference names a field.
func (r Reference) HasField() bool { return r.Field != "" }

// TrackingKey returns the key under which field usage is recorded:
// "Model" or "Model#instance".
func (r Reference) TrackingKey() string {
	if r.Instance != "" {
		return r.Model + "#" + r.Instance
	}
	return r.Model
}

func (r Reference) String() string { return r.Raw }

// Parse splits a reference string into model, instance, and field parts.
// It is total: malformed input degrades to a bare model (field empty) and is
// never an error. The instance marker is isolated first, then the remainder
// is split on the first dot.
func Parse(s string) Reference {
	r := Reference{Raw: s}

	rest := s
	if i := strings.IndexByte(s, '#'); i >= 0 {
		r.Model = s[:i]
		rest = s[i+1:]
		if j := strings.IndexByte(rest, '.'); j >= 0 {
			r.Instance = rest[:j]
			r.Field = rest[j+1:]
		} else {
			r.Instance = rest
		}
		return r
	}

	if j := strings.IndexByte(rest, '.'); j >= 0 {
		r.Model = rest[:j]
		r.Field = rest[j+1:]
	} else {
		r.Model = rest
	}
	return r
}

// RootModel returns the model name of a reference string: the portion before
// any '#' marker or first dot.
func RootModel(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	if j := strings.IndexByte(s, '.'); j >= 0 {
		s = s[:j]
	}
	return s
}

// StripInstance removes a "#id" marker from a reference string, keeping the
// field part intact: "Money#jpy.amount" becomes "Money.amount". The second
// return value is false when the string has an instance marker but no field,
// in which case there is no field reference to recover.
func StripInstance(s string) (string, bool) {
	i := strings.IndexByte(s, '#')
	if i < 0 {
		return s, true
	}
	j := strings.IndexByte(s[i:], '.')
	if j < 0 {
		return s[:i], false
	}
	return s[:i] + s[i+j:], true
}

// MalformedReferenceError reports a reference that was contractually
// required to denote a field but contains no separator.
type MalformedReferenceError struct {
	Ref string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("field reference must be 'Model.field' or 'Model.Child.field': %s", e.Ref)
}

// SplitLeafField splits a field reference on its last dot, returning the
// containing model path and the leaf field name. Unlike Parse this is a hard
// contract: a string with no dot yields a MalformedReferenceError.
func SplitLeafField(s string) (path, field string, err error) {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return "", "", &MalformedReferenceError{Ref: s}
	}
	return s[:i], s[i+1:], nil
}
