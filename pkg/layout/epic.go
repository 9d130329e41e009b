package layout

import (
	"slices"

	"github.com/flowatlas/flowatlas/pkg/graph"
)

// EpicOther is the bucket for nodes whose id carries no epic segment.
const EpicOther = "Other"

// EpicStats holds one epic's membership and connectivity.
type EpicStats struct {
	Name  string
	Nodes []string

	// Internal counts edges whose endpoints share this epic.
	Internal int
	// External counts edges connecting this epic to another.
	External int

	// Weights accumulates the pairwise edge count toward each other epic.
	// Accumulation is symmetric: an A↔B edge increments both directions.
	Weights map[string]int

	// Centrality is ExternalWeight×External + Internal, computed after
	// the edge pass.
	Centrality int
}

// epicOf returns the epic bucket for a node.
func epicOf(n *graph.Node) string {
	if n.Epic == "" {
		return EpicOther
	}
	return n.Epic
}

// AnalyzeEpics groups the graph's nodes by epic and scores each epic's
// connectivity in a single pass over the edges.
func AnalyzeEpics(g *graph.Graph, cfg Config) map[string]*EpicStats {
	stats := make(map[string]*EpicStats)
	byNode := make(map[string]string, len(g.Nodes))

	get := func(name string) *EpicStats {
		s, ok := stats[name]
		if !ok {
			s = &EpicStats{Name: name, Weights: make(map[string]int)}
			stats[name] = s
		}
		return s
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		epic := epicOf(n)
		s := get(epic)
		s.Nodes = append(s.Nodes, n.ID)
		byNode[n.ID] = epic
	}

	for _, e := range g.Edges {
		src, dst := byNode[e.Source], byNode[e.Target]
		if src == dst {
			get(src).Internal++
			continue
		}
		a, b := get(src), get(dst)
		a.External++
		b.External++
		a.Weights[dst]++
		b.Weights[src]++
	}

	for _, s := range stats {
		s.Centrality = cfg.ExternalWeight*s.External + s.Internal
	}
	return stats
}

// epicsByCentrality returns epic names in descending centrality order,
// ties broken by name for determinism.
func epicsByCentrality(stats map[string]*EpicStats) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if d := stats[b].Centrality - stats[a].Centrality; d != 0 {
			return d
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return names
}
