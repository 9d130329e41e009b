package spec

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindNull is an absent or explicit null value.
	KindNull Kind = iota
	// KindString is a text scalar.
	KindString
	// KindNumber is an integer or float scalar, stored as float64.
	KindNumber
	// KindBool is a boolean scalar.
	KindBool
	// KindList is an ordered sequence of values.
	KindList
	// KindMap is a mapping with preserved key order.
	KindMap
)

// Value is a tagged recursive representation of an arbitrary record value.
// Behavior documents carry free-form nested structures, so entities keep
// their raw records as Values and the reference extractor walks them
// without assuming any particular shape.
//
// The zero Value is a valid null.
type Value struct {
	Kind Kind

	Str  string
	Num  float64
	Bool bool

	List []Value

	// Keys preserves mapping key order; Fields holds the values.
	Keys   []string
	Fields map[string]Value
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsString reports whether the value is a text scalar.
func (v Value) IsString() bool { return v.Kind == KindString }

// Get returns the field for key in a map value.
// The bool reports whether the key exists.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindMap {
		return Value{}, false
	}
	f, ok := v.Fields[key]
	return f, ok
}

// GetString returns the string field for key, or "" when the key is missing
// or the field is not a text scalar.
func (v Value) GetString(key string) string {
	f, ok := v.Get(key)
	if !ok || f.Kind != KindString {
		return ""
	}
	return f.Str
}

// GetList returns the list field for key, or nil when the key is missing
// or the field is not a sequence.
func (v Value) GetList(key string) []Value {
	f, ok := v.Get(key)
	if !ok || f.Kind != KindList {
		return nil
	}
	return f.List
}

// WalkStrings visits every text scalar reachable from v in document order,
// recursing through lists and maps. The path describes where the string was
// found, e.g. "components[0].value"; the initial path is used as the prefix.
func (v Value) WalkStrings(path string, fn func(path, s string)) {
	switch v.Kind {
	case KindString:
		fn(path, v.Str)
	case KindList:
		for i, item := range v.List {
			item.WalkStrings(fmt.Sprintf("%s[%d]", path, i), fn)
		}
	case KindMap:
		for _, key := range v.Keys {
			child := v.Fields[key]
			childPath := key
			if path != "" {
				childPath = path + "." + key
			}
			child.WalkStrings(childPath, fn)
		}
	}
}

// fromNode converts a decoded yaml.Node tree into a Value.
// Aliases are resolved through their anchors and merge keys ("<<") are
// spliced into the containing mapping, so callers never see either.
func fromNode(n *yaml.Node) Value {
	if n == nil {
		return Value{}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Value{}
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.ScalarNode:
		return fromScalar(n)
	case yaml.SequenceNode:
		list := make([]Value, 0, len(n.Content))
		for _, item := range n.Content {
			list = append(list, fromNode(item))
		}
		return Value{Kind: KindList, List: list}
	case yaml.MappingNode:
		return fromMapping(n)
	}
	return Value{}
}

func fromScalar(n *yaml.Node) Value {
	switch n.Tag {
	case "!!null", "":
		if n.Tag == "" && n.Value == "" {
			return Value{}
		}
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err == nil {
			return Value{Kind: KindBool, Bool: b}
		}
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err == nil {
			return Value{Kind: KindNumber, Num: float64(i)}
		}
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err == nil {
			return Value{Kind: KindNumber, Num: f}
		}
	case "!!str":
		return Value{Kind: KindString, Str: n.Value}
	}
	if n.Tag == "!!null" {
		return Value{}
	}
	// Unrecognized scalar tags (timestamps, custom tags) keep their text form.
	return Value{Kind: KindString, Str: n.Value}
}

func fromMapping(n *yaml.Node) Value {
	v := Value{
		Kind:   KindMap,
		Keys:   make([]string, 0, len(n.Content)/2),
		Fields: make(map[string]Value, len(n.Content)/2),
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Value == "<<" {
			// Merge key: splice the aliased mapping without overriding
			// keys already present.
			merged := fromNode(valNode)
			if merged.Kind == KindMap {
				for _, mk := range merged.Keys {
					v.set(mk, merged.Fields[mk], false)
				}
			}
			continue
		}
		v.set(keyNode.Value, fromNode(valNode), true)
	}
	return v
}

// set assigns key to val. When override is false an existing key is kept.
// Overriding preserves the key's original position.
func (v *Value) set(key string, val Value, override bool) {
	if _, exists := v.Fields[key]; exists {
		if override {
			v.Fields[key] = val
		}
		return
	}
	v.Keys = append(v.Keys, key)
	v.Fields[key] = val
}
