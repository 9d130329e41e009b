package layout

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/flowatlas/flowatlas/pkg/graph"
)

// Composer builds the containment tree for a graph and drives an Engine
// through its levels.
type Composer struct {
	Engine Engine
	Config Config
	Logger *log.Logger
}

// NewComposer creates a composer. A nil logger falls back to log.Default.
func NewComposer(engine Engine, cfg Config, logger *log.Logger) *Composer {
	if logger == nil {
		logger = log.Default()
	}
	return &Composer{Engine: engine, Config: cfg, Logger: logger}
}

// container is one tier of the containment tree. Leaves are nodes; inner
// containers are epic clusters and communities.
type container struct {
	id       string
	children []*container
	width    float64
	height   float64
	rel      Placement // position within the parent, set when the parent level is solved
}

// Compose derives epic statistics and communities, lays out every
// containment level as an independent engine sub-problem, and resolves
// absolute positions.
//
// Engine failure on a sub-problem falls back to deterministic origin
// placement for that level's items; it never aborts the build. The only
// returned error is context cancellation.
func (c *Composer) Compose(ctx context.Context, g *graph.Graph) (*Layout, error) {
	out := &Layout{
		Positions: make(map[string]Position, g.NodeCount()),
		Engine:    c.Engine.Name(),
	}
	if g.NodeCount() == 0 {
		return out, nil
	}

	stats := AnalyzeEpics(g, c.Config)
	communities := DetectCommunities(stats, c.Config)
	out.Communities = communities

	epicByNode := make(map[string]string, g.NodeCount())
	for i := range g.Nodes {
		epicByNode[g.Nodes[i].ID] = epicOf(&g.Nodes[i])
	}

	// Leaf tier: one cluster per epic, nodes laid out inside it.
	clusters := make(map[string]*container, len(stats))
	for _, epic := range epicsByCentrality(stats) {
		cluster, err := c.composeCluster(ctx, g, stats[epic], epicByNode)
		if err != nil {
			return nil, err
		}
		clusters[epic] = cluster
	}

	root := &container{id: "root"}
	if len(communities) > 1 {
		// Middle tier: arrange clusters within each community, then
		// communities at the root.
		for _, comm := range communities {
			cc, err := c.composeGroup(ctx, fmt.Sprintf("community:%d", comm.ID), LevelCommunity,
				comm.Epics, clusters, crossEpicPairs(g, epicByNode, comm.Epics))
			if err != nil {
				return nil, err
			}
			root.children = append(root.children, cc)
		}
		if err := c.solveGroup(ctx, root, LevelRoot, crossCommunityPairs(g, epicByNode, communities)); err != nil {
			return nil, err
		}
	} else {
		// Single community: clusters sit directly at the root.
		epics := make([]string, 0, len(clusters))
		if len(communities) == 1 {
			epics = communities[0].Epics
		}
		for _, epic := range epics {
			root.children = append(root.children, clusters[epic])
		}
		if err := c.solveGroup(ctx, root, LevelRoot, crossEpicPairs(g, epicByNode, epics)); err != nil {
			return nil, err
		}
	}

	resolve(root, 0, 0, out.Positions)

	// Leaves absent from every solution fall back to the origin.
	for i := range g.Nodes {
		if _, ok := out.Positions[g.Nodes[i].ID]; !ok {
			out.Positions[g.Nodes[i].ID] = Position{}
		}
	}

	out.Width, out.Height = root.width, root.height
	return out, nil
}

// composeCluster lays out one epic's nodes with tight directional packing.
func (c *Composer) composeCluster(ctx context.Context, g *graph.Graph, s *EpicStats, epicByNode map[string]string) (*container, error) {
	cluster := &container{id: "epic:" + s.Name}
	for _, id := range s.Nodes {
		n := g.Node(id)
		cluster.children = append(cluster.children, &container{
			id:     id,
			width:  c.Config.NodeWidth,
			height: c.nodeHeight(n),
		})
	}

	var edges []ProblemEdge
	for _, e := range g.Edges {
		if epicByNode[e.Source] == s.Name && epicByNode[e.Target] == s.Name {
			edges = append(edges, ProblemEdge{From: e.Source, To: e.Target})
		}
	}

	if err := c.solve(ctx, cluster, Problem{
		ID:    cluster.id,
		Level: LevelCluster,
		Edges: edges,
		Tuning: Tuning{
			Directional: true,
			NodeSpacing: c.Config.ClusterNodeSpacing,
			RankSpacing: c.Config.ClusterRankSpacing,
		},
	}); err != nil {
		return nil, err
	}
	return cluster, nil
}

// composeGroup lays out a set of epic clusters inside one community.
func (c *Composer) composeGroup(ctx context.Context, id string, level Level, epics []string, clusters map[string]*container, edges []ProblemEdge) (*container, error) {
	group := &container{id: id}
	for _, epic := range epics {
		group.children = append(group.children, clusters[epic])
	}
	if err := c.solveGroup(ctx, group, level, edges); err != nil {
		return nil, err
	}
	return group, nil
}

func (c *Composer) solveGroup(ctx context.Context, group *container, level Level, edges []ProblemEdge) error {
	return c.solve(ctx, group, Problem{
		ID:    group.id,
		Level: level,
		Edges: edges,
		Tuning: Tuning{
			NodeSpacing: c.Config.GroupSpacing,
		},
	})
}

// solve runs one sub-problem for a container's children and applies the
// solution. Engine failure falls back to origin placement.
func (c *Composer) solve(ctx context.Context, parent *container, p Problem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(parent.children) == 0 {
		parent.width, parent.height = 2*c.Config.Padding, 2*c.Config.Padding
		return nil
	}

	p.Items = make([]Item, len(parent.children))
	for i, child := range parent.children {
		p.Items[i] = Item{ID: child.id, Width: child.width, Height: child.height}
	}

	sol, err := c.Engine.Solve(ctx, p)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("layout engine failed, using origin fallback",
			"problem", p.ID, "level", p.Level, "err", err)
		sol = originFallback(p)
	}
	c.apply(parent, sol)
	return nil
}

// apply normalizes a solution so its minimum lands at the padding offset
// and sizes the parent from the bounding box.
func (c *Composer) apply(parent *container, sol Solution) {
	minX, minY := 0.0, 0.0
	first := true
	for _, child := range parent.children {
		pl, ok := sol[child.id]
		if !ok {
			continue
		}
		if first || pl.X < minX {
			minX = pl.X
		}
		if first || pl.Y < minY {
			minY = pl.Y
		}
		first = false
	}

	maxX, maxY := 0.0, 0.0
	pad := c.Config.Padding
	for _, child := range parent.children {
		pl, ok := sol[child.id]
		if !ok {
			// Dropped by the engine: origin fallback, inside the padding.
			child.rel = Placement{X: pad, Y: pad, Width: child.width, Height: child.height}
		} else {
			child.rel = Placement{
				X:      pl.X - minX + pad,
				Y:      pl.Y - minY + pad,
				Width:  child.width,
				Height: child.height,
			}
		}
		if x := child.rel.X + child.width; x > maxX {
			maxX = x
		}
		if y := child.rel.Y + child.height; y > maxY {
			maxY = y
		}
	}
	parent.width = maxX + pad
	parent.height = maxY + pad
}

// originFallback is the deterministic default when an engine fails: every
// item at the origin.
func originFallback(p Problem) Solution {
	sol := make(Solution, len(p.Items))
	for _, item := range p.Items {
		sol[item.ID] = Placement{Width: item.Width, Height: item.Height}
	}
	return sol
}

// nodeHeight derives a leaf's height linearly from its component count,
// with a fixed floor.
func (c *Composer) nodeHeight(n *graph.Node) float64 {
	h := c.Config.NodeBaseHeight + c.Config.NodeRowHeight*float64(len(n.Components))
	if h < c.Config.NodeMinHeight {
		return c.Config.NodeMinHeight
	}
	return h
}

// resolve walks the containment tree accumulating parent offsets to yield
// absolute positions for the leaves.
func resolve(ct *container, x, y float64, out map[string]Position) {
	absX, absY := x+ct.rel.X, y+ct.rel.Y
	if len(ct.children) == 0 {
		out[ct.id] = Position{X: absX, Y: absY}
		return
	}
	for _, child := range ct.children {
		resolve(child, absX, absY, out)
	}
}

// crossEpicPairs flags edges crossing epic boundaries within the given
// epic set with elevated routing priority, one problem edge per pair.
func crossEpicPairs(g *graph.Graph, epicByNode map[string]string, epics []string) []ProblemEdge {
	inSet := make(map[string]bool, len(epics))
	for _, e := range epics {
		inSet[e] = true
	}

	seen := make(map[string]struct{})
	var out []ProblemEdge
	for _, e := range g.Edges {
		src, dst := epicByNode[e.Source], epicByNode[e.Target]
		if src == dst || !inSet[src] || !inSet[dst] {
			continue
		}
		key := src + "\x00" + dst
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ProblemEdge{From: "epic:" + src, To: "epic:" + dst, Priority: true})
	}
	return out
}

// crossCommunityPairs aggregates edges crossing community boundaries.
func crossCommunityPairs(g *graph.Graph, epicByNode map[string]string, communities []Community) []ProblemEdge {
	commByEpic := make(map[string]int)
	for _, comm := range communities {
		for _, epic := range comm.Epics {
			commByEpic[epic] = comm.ID
		}
	}

	seen := make(map[string]struct{})
	var out []ProblemEdge
	for _, e := range g.Edges {
		src, dst := commByEpic[epicByNode[e.Source]], commByEpic[epicByNode[e.Target]]
		if src == dst {
			continue
		}
		key := fmt.Sprintf("%d\x00%d", src, dst)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ProblemEdge{
			From:     fmt.Sprintf("community:%d", src),
			To:       fmt.Sprintf("community:%d", dst),
			Priority: true,
		})
	}
	return out
}
