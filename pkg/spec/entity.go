package spec

import (
	"slices"
	"strings"
)

// TypeComponent is the entity type that is never independently visible in
// the graph: component entities are always inlined into the component tree
// of a referencing parent.
const TypeComponent = "component"

// defaultTypes is the closed vocabulary of recognized entity type tokens.
// Extending it is a configuration concern of the calling system, not of the
// parsing algorithm; see NewVocabulary.
var defaultTypes = []string{
	"screen",
	"dialog",
	"event",
	"action",
	"component",
	"layout",
	"entity",
	"context",
	"service",
	"flow",
}

// Vocabulary is the set of entity type tokens a parse pass recognizes.
// Top-level document keys whose first segment is not in the vocabulary are
// silently ignored, which lets documents carry free-form metadata entries.
type Vocabulary map[string]struct{}

// DefaultVocabulary returns the standard vocabulary.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(defaultTypes...)
}

// NewVocabulary builds a vocabulary from the given type tokens.
func NewVocabulary(types ...string) Vocabulary {
	v := make(Vocabulary, len(types))
	for _, t := range types {
		v[t] = struct{}{}
	}
	return v
}

// Extend returns a copy of the vocabulary with the extra types added.
func (v Vocabulary) Extend(types ...string) Vocabulary {
	out := make(Vocabulary, len(v)+len(types))
	for t := range v {
		out[t] = struct{}{}
	}
	for _, t := range types {
		out[t] = struct{}{}
	}
	return out
}

// Contains reports whether the type token is in the vocabulary.
func (v Vocabulary) Contains(typ string) bool {
	_, ok := v[typ]
	return ok
}

// Types returns the vocabulary's type tokens in sorted order.
func (v Vocabulary) Types() []string {
	out := make([]string, 0, len(v))
	for t := range v {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// ID is a parsed colon-delimited entity identifier.
//
// The first segment is the entity type. With three or more segments the
// second is the epic (the domain grouping used for layout clustering) and
// the remaining segments joined by colons form the name. With exactly two
// segments the epic is empty; with one segment the type doubles as the name.
type ID struct {
	Raw  string // the identifier as written, e.g. "screen:checkout:summary"
	Type string // e.g. "screen"
	Epic string // e.g. "checkout"; empty for 1- and 2-segment ids
	Name string // e.g. "summary"
}

// ParseID classifies raw as an entity identifier against the vocabulary.
// The bool reports whether the first segment is a recognized type token;
// when it is not, the key is not an entity id and must be ignored.
func ParseID(raw string, vocab Vocabulary) (ID, bool) {
	segs := strings.Split(raw, ":")
	typ := segs[0]
	if !vocab.Contains(typ) {
		return ID{}, false
	}
	id := ID{Raw: raw, Type: typ}
	switch len(segs) {
	case 1:
		id.Name = typ
	case 2:
		id.Name = segs[1]
	default:
		id.Epic = segs[1]
		id.Name = strings.Join(segs[2:], ":")
	}
	return id, true
}

// IsComponent reports whether the id names a component entity.
func (id ID) IsComponent() bool { return id.Type == TypeComponent }

// Entity is one parsed top-level record from a behavior document.
type Entity struct {
	ID          ID
	Description string
	Tags        []string

	// Components is the entity's parsed component tree (roots at depth 0).
	Components []Component

	// Effects holds the entity's effect entries structurally opaque: they
	// are interpreted only as reference sources and flattened for display
	// by the graph builder.
	Effects []Value

	// Layout and Target are passthrough scalars for the rendering layer.
	Layout string
	Target string

	// Raw is the untouched record, kept for later display.
	Raw Value
}

// HasComponents reports whether the entity declares at least one component.
func (e *Entity) HasComponents() bool { return len(e.Components) > 0 }

// HasEffects reports whether the entity declares at least one effect entry.
func (e *Entity) HasEffects() bool { return len(e.Effects) > 0 }

// parseEntity builds an Entity from a classified id and its decoded record.
func parseEntity(id ID, raw Value) *Entity {
	e := &Entity{
		ID:          id,
		Description: raw.GetString("description"),
		Layout:      raw.GetString("layout"),
		Target:      raw.GetString("target"),
		Raw:         raw,
	}
	for _, tag := range raw.GetList("tags") {
		// Non-string tag entries are dropped.
		if tag.IsString() {
			e.Tags = append(e.Tags, tag.Str)
		}
	}
	e.Components = parseComponents(raw.GetList("components"), id.Raw, 0)
	e.Effects = raw.GetList("effects")
	return e
}
