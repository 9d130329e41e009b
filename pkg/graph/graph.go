// Package graph derives the navigable reference graph from parsed behavior
// documents.
//
// A node is a visible entity together with its fully flattened component
// list; an edge connects two visible entities that reference one another.
// The Graph type is also the canonical serialization format handed to the
// rendering collaborator: the JSON is stable and designed for round-trip
// fidelity (build → export → re-import produces identical results).
package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Constants
// =============================================================================

// Component types synthesized while flattening effects.
const (
	ComponentTypeEffect    = "effect"
	ComponentTypeCondition = "condition"
	ComponentTypeThen      = "then"
	ComponentTypeElse      = "else"
)

// RefStatus is the reference-resolution status of a component, reported to
// the rendering collaborator.
type RefStatus string

const (
	// RefStatusNone marks a component that references nothing.
	RefStatusNone RefStatus = ""
	// RefStatusConnected marks a reference whose target is a visible node.
	RefStatusConnected RefStatus = "connected"
	// RefStatusDangling marks a reference whose target never materialized.
	RefStatusDangling RefStatus = "dangling"
)

// =============================================================================
// Graph - Reference Graph Serialization
// =============================================================================

// Graph is the built reference graph.
//
// Invariant: every edge's source and target are members of the node id set.
// Dangling references are excluded from the edge set during the build but
// remain available on the parse result for collaborators to report.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`

	index map[string]int // node id -> Nodes position
}

// =============================================================================
// Node
// =============================================================================

// Node is a visible entity plus its flattened component list.
type Node struct {
	ID          string   `json:"id" bson:"id"`
	Type        string   `json:"type" bson:"type"`
	Epic        string   `json:"epic,omitempty" bson:"epic,omitempty"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" bson:"tags,omitempty"`

	// Components is the flattened component tree followed by the flattened
	// rendering of the entity's effects, in document order.
	Components []Component `json:"components,omitempty" bson:"components,omitempty"`

	// Referenced reports whether any reference targets this node.
	Referenced bool `json:"referenced,omitempty" bson:"referenced,omitempty"`
}

// Component is one flattened component inside a node.
type Component struct {
	ID     string    `json:"id" bson:"id"`
	Type   string    `json:"type" bson:"type"`
	Label  string    `json:"label,omitempty" bson:"label,omitempty"`
	Value  string    `json:"value,omitempty" bson:"value,omitempty"`
	Action string    `json:"action,omitempty" bson:"action,omitempty"`
	Depth  int       `json:"depth" bson:"depth"`
	Ref    string    `json:"ref,omitempty" bson:"ref,omitempty"`
	Status RefStatus `json:"status,omitempty" bson:"status,omitempty"`
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed reference between two visible nodes.
// At most one edge exists per ordered (source, target) pair.
type Edge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`

	// Anchor is the id of the flattened component that visually originates
	// the edge, or empty for edges derived from raw references.
	Anchor string `json:"anchor,omitempty" bson:"anchor,omitempty"`

	// TargetType is the resolved type of the target node.
	TargetType string `json:"target_type,omitempty" bson:"target_type,omitempty"`
}

// =============================================================================
// Accessors
// =============================================================================

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	if g.index == nil {
		g.reindex()
	}
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return &g.Nodes[i]
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool { return g.Node(id) != nil }

func (g *Graph) reindex() {
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.index[n.ID] = i
	}
}

// =============================================================================
// Serialization
// =============================================================================

// MarshalGraph serializes a Graph to pretty-printed JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGraph deserializes JSON bytes into a Graph.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("unmarshal graph: %w", err)
	}
	g.reindex()
	return &g, nil
}

// WriteGraphFile writes a Graph to a JSON file.
func WriteGraphFile(g *Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadGraphFile reads a Graph from a JSON file.
func ReadGraphFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalGraph(data)
}
