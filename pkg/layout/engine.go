package layout

import "context"

// Level identifies which tier of the containment tree a sub-problem
// belongs to. Engines use it together with Tuning to pick an algorithm.
type Level string

const (
	// LevelRoot arranges the top tier: communities, or epic clusters
	// when only one community exists.
	LevelRoot Level = "root"
	// LevelCommunity arranges the epic clusters inside one community.
	LevelCommunity Level = "community"
	// LevelCluster arranges the leaf nodes inside one epic cluster.
	LevelCluster Level = "cluster"
)

// Item is one sized element of a sub-problem.
type Item struct {
	ID     string
	Width  float64
	Height float64
}

// ProblemEdge is a connection between two items of the same sub-problem.
// Priority marks edges crossing epic boundaries; engines should route
// them straighter.
type ProblemEdge struct {
	From     string
	To       string
	Priority bool
}

// Tuning carries the level-appropriate engine parameters: tight
// directional packing inside an epic cluster, looser force-style spacing
// among clusters and communities.
type Tuning struct {
	// Directional requests top-to-bottom flow packing.
	Directional bool
	// NodeSpacing is the minimum gap between sibling items.
	NodeSpacing float64
	// RankSpacing is the gap between flow ranks (directional only).
	RankSpacing float64
}

// Problem is one independent containment level handed to an engine.
type Problem struct {
	ID     string
	Level  Level
	Items  []Item
	Edges  []ProblemEdge
	Tuning Tuning
}

// Placement is an engine-assigned relative rectangle.
type Placement struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Solution maps item id to its placement, relative to the problem's
// container. Engines may drop items; the resolver falls back to the
// origin for anything missing.
type Solution map[string]Placement

// Engine computes placements for one sub-problem. Implementations must
// honor ctx cancellation: a superseded layout request is cancelled and
// its partial work discarded.
//
// The engine is an external collaborator; this package only prepares its
// input and interprets its output.
type Engine interface {
	// Name identifies the engine for logging and cache keys.
	Name() string

	// Solve computes relative placements for the problem's items.
	Solve(ctx context.Context, p Problem) (Solution, error)
}
