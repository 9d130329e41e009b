package spec

import "fmt"

// Component is one element of an entity's component tree.
//
// Components form a tree during parsing; the graph builder flattens the
// tree depth-first for display, preserving the Depth values assigned here
// (roots at 0, children at parent+1).
type Component struct {
	ID     string
	Type   string
	Label  string
	Value  string
	Action string
	Depth  int

	// Ref is the normalized target id of the first reference carried by
	// this component's own fields, or "" when the component references
	// nothing. Edges anchored at a component come from this field.
	Ref string

	Children []Component
}

// componentTypeGroup is the default type for components that carry nested
// children; componentTypeUnknown is the default for everything else.
const (
	componentTypeGroup   = "components"
	componentTypeUnknown = "unknown"
)

// parseComponents turns a record's component list into a tree, depth-first.
//
// Each list element becomes one Component. A bare string element uses the
// string itself as both id and value. A mapping element uses its explicit
// "id" field when present, falling back to a synthesized "<parentID>_<index>"
// token. Nested children recurse with the resolved id as their parent prefix.
func parseComponents(list []Value, parentID string, depth int) []Component {
	if len(list) == 0 {
		return nil
	}
	out := make([]Component, 0, len(list))
	for i, item := range list {
		out = append(out, parseComponent(item, parentID, i, depth))
	}
	return out
}

func parseComponent(item Value, parentID string, index, depth int) Component {
	if item.IsString() {
		return Component{
			ID:    item.Str,
			Type:  componentTypeUnknown,
			Value: item.Str,
			Depth: depth,
			Ref:   FirstReferenceTarget(item.Str),
		}
	}

	c := Component{
		ID:     item.GetString("id"),
		Type:   item.GetString("type"),
		Label:  item.GetString("label"),
		Value:  item.GetString("value"),
		Action: item.GetString("action"),
		Depth:  depth,
	}
	if c.ID == "" {
		c.ID = fmt.Sprintf("%s_%d", parentID, index)
	}

	children := item.GetList("components")
	if c.Type == "" {
		if len(children) > 0 {
			c.Type = componentTypeGroup
		} else {
			c.Type = componentTypeUnknown
		}
	}
	c.Children = parseComponents(children, c.ID, depth+1)

	// The first reference in the component's own scalars anchors its edge.
	for _, s := range []string{c.Value, c.Action, c.Label} {
		if target := FirstReferenceTarget(s); target != "" {
			c.Ref = target
			break
		}
	}
	return c
}
