// Package layout computes spatial positions for a reference graph.
//
// The graph is grouped by epic, epics are partitioned into communities, and
// the resulting containment tree (communities → epic clusters → leaf nodes)
// is handed level by level to a layout Engine as independent sub-problems.
// The engine returns relative placements; the resolver accumulates parent
// offsets into one absolute position per node.
//
// The clustering heuristics here are greedy, single-pass approximations
// driven by the named constants in Config. They are not optimal modularity
// solutions; tests pin their exact behavior for the default constants.
package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - Position Serialization
// =============================================================================

// Position is an absolute coordinate for one node.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Layout is the computed result handed to the rendering collaborator.
type Layout struct {
	// Positions maps node id to its absolute position.
	Positions map[string]Position `json:"positions" bson:"positions"`

	// Width and Height are the overall bounds.
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Communities records the epic partition used for the layout.
	Communities []Community `json:"communities,omitempty" bson:"communities,omitempty"`

	// Engine names the engine that produced the placements.
	Engine string `json:"engine,omitempty" bson:"engine,omitempty"`
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	return &l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l *Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

// =============================================================================
// Config - Named Tuning Constants
// =============================================================================

// Config holds the layout tuning constants. The clustering values are
// inherited heuristics kept for compatibility; they are policy, not derived
// quantities, and should not be assumed optimal.
type Config struct {
	// ExternalWeight is the factor applied to an epic's external edge
	// count when computing centrality. The default of 2 weighs
	// connections to other epics twice as heavily as internal cohesion,
	// biasing clustering toward strongly inter-connected epics.
	ExternalWeight int

	// StrongTie is the pairwise epic weight at or above which a neighbor
	// is absorbed into a community unconditionally.
	StrongTie int

	// WeakAbsorbLimit caps how many below-threshold neighbors a seed may
	// absorb to avoid singleton communities.
	WeakAbsorbLimit int

	// MaxCommunitySize caps community size to bound layout fan-out.
	MaxCommunitySize int

	// TrivialEpicCount is the epic count at or below which clustering is
	// skipped and a single community holds everything.
	TrivialEpicCount int

	// Leaf sizing: nodes have a fixed width and a height derived linearly
	// from component count with a fixed floor.
	NodeWidth      float64
	NodeBaseHeight float64
	NodeRowHeight  float64
	NodeMinHeight  float64

	// Spacing within an epic cluster (tight, directional packing) and
	// among clusters and communities (looser, force-style spacing).
	ClusterNodeSpacing float64
	ClusterRankSpacing float64
	GroupSpacing       float64

	// Padding added around each container's content.
	Padding float64
}

// DefaultConfig returns the standard tuning constants.
func DefaultConfig() Config {
	return Config{
		ExternalWeight:   2,
		StrongTie:        3,
		WeakAbsorbLimit:  2,
		MaxCommunitySize: 4,
		TrivialEpicCount: 3,

		NodeWidth:      280,
		NodeBaseHeight: 80,
		NodeRowHeight:  24,
		NodeMinHeight:  96,

		ClusterNodeSpacing: 40,
		ClusterRankSpacing: 80,
		GroupSpacing:       120,

		Padding: 48,
	}
}
