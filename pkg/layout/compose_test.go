package layout_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/flowatlas/flowatlas/pkg/graph"
	"github.com/flowatlas/flowatlas/pkg/layout"
	"github.com/flowatlas/flowatlas/pkg/layout/grid"
)

type failingEngine struct{}

func (failingEngine) Name() string { return "failing" }
func (failingEngine) Solve(context.Context, layout.Problem) (layout.Solution, error) {
	return nil, errors.New("boom")
}

// droppingEngine omits the first item from every solution and spreads the
// rest along the X axis.
type droppingEngine struct{}

func (droppingEngine) Name() string { return "dropping" }
func (droppingEngine) Solve(_ context.Context, p layout.Problem) (layout.Solution, error) {
	sol := make(layout.Solution, len(p.Items))
	for i, item := range p.Items {
		if i == 0 {
			continue
		}
		sol[item.ID] = layout.Placement{X: float64(i) * 600, Width: item.Width, Height: item.Height}
	}
	return sol, nil
}

// recordingEngine captures every sub-problem before delegating.
type recordingEngine struct {
	inner    layout.Engine
	problems []layout.Problem
}

func (e *recordingEngine) Name() string { return e.inner.Name() }
func (e *recordingEngine) Solve(ctx context.Context, p layout.Problem) (layout.Solution, error) {
	e.problems = append(e.problems, p)
	return e.inner.Solve(ctx, p)
}

func composer(e layout.Engine) *layout.Composer {
	return layout.NewComposer(e, layout.DefaultConfig(), nil)
}

func TestComposeEmptyGraph(t *testing.T) {
	l, err := composer(grid.New()).Compose(context.Background(), &graph.Graph{})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(l.Positions) != 0 {
		t.Errorf("positions = %v, want empty", l.Positions)
	}
	if l.Engine != "grid" {
		t.Errorf("engine = %q, want grid", l.Engine)
	}
}

func TestComposeSingleNodeBounds(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{{ID: "screen:shop:home", Type: "screen", Epic: "shop", Name: "home"}},
	}

	l, err := composer(grid.New()).Compose(context.Background(), g)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	// One cluster at the root: node offset by two paddings on each axis,
	// bounds are the node box plus four paddings.
	cfg := layout.DefaultConfig()
	wantPos := layout.Position{X: 2 * cfg.Padding, Y: 2 * cfg.Padding}
	if got := l.Positions["screen:shop:home"]; got != wantPos {
		t.Errorf("position = %v, want %v", got, wantPos)
	}
	if want := cfg.NodeWidth + 4*cfg.Padding; l.Width != want {
		t.Errorf("width = %v, want %v", l.Width, want)
	}
	if want := cfg.NodeMinHeight + 4*cfg.Padding; l.Height != want {
		t.Errorf("height = %v, want %v", l.Height, want)
	}
}

func TestComposeEveryNodePositioned(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "screen:a:one", Epic: "a"},
			{ID: "screen:a:two", Epic: "a"},
			{ID: "screen:b:one", Epic: "b"},
			{ID: "screen:c:one", Epic: "c"},
			{ID: "screen:d:one", Epic: "d"},
			{ID: "event:loaded", Type: "event", Name: "loaded"},
		},
		Edges: []graph.Edge{
			{Source: "screen:a:one", Target: "screen:a:two"},
			{Source: "screen:a:one", Target: "screen:b:one"},
			{Source: "screen:c:one", Target: "screen:d:one"},
		},
	}

	l, err := composer(grid.New()).Compose(context.Background(), g)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(l.Positions) != len(g.Nodes) {
		t.Fatalf("positions = %d, want %d", len(l.Positions), len(g.Nodes))
	}
	for id, pos := range l.Positions {
		if pos.X < 0 || pos.Y < 0 {
			t.Errorf("%s at %v, want non-negative", id, pos)
		}
		if pos.X >= l.Width || pos.Y >= l.Height {
			t.Errorf("%s at %v, outside bounds %vx%v", id, pos, l.Width, l.Height)
		}
	}
	if len(l.Communities) == 0 {
		t.Error("communities not recorded")
	}
}

func TestComposeDeterministic(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "screen:a:one", Epic: "a"},
			{ID: "screen:b:one", Epic: "b"},
			{ID: "screen:c:one", Epic: "c"},
			{ID: "screen:d:one", Epic: "d"},
		},
		Edges: []graph.Edge{
			{Source: "screen:a:one", Target: "screen:b:one"},
		},
	}

	first, err := composer(grid.New()).Compose(context.Background(), g)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	second, err := composer(grid.New()).Compose(context.Background(), g)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("layouts differ between runs:\n%v\n%v", first, second)
	}
}

func TestComposeDirectionalFlow(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "screen:shop:cart", Epic: "shop"},
			{ID: "screen:shop:checkout", Epic: "shop"},
		},
		Edges: []graph.Edge{
			{Source: "screen:shop:cart", Target: "screen:shop:checkout"},
		},
	}

	l, err := composer(grid.New()).Compose(context.Background(), g)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if l.Positions["screen:shop:cart"].Y >= l.Positions["screen:shop:checkout"].Y {
		t.Errorf("cart at %v not above checkout at %v",
			l.Positions["screen:shop:cart"], l.Positions["screen:shop:checkout"])
	}
}

func TestComposeEngineFailureFallsBack(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "screen:shop:a", Epic: "shop"},
			{ID: "screen:shop:b", Epic: "shop"},
		},
	}

	l, err := composer(failingEngine{}).Compose(context.Background(), g)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	// Origin fallback stacks everything at the padded origin.
	cfg := layout.DefaultConfig()
	want := layout.Position{X: 2 * cfg.Padding, Y: 2 * cfg.Padding}
	for id, pos := range l.Positions {
		if pos != want {
			t.Errorf("%s at %v, want fallback %v", id, pos, want)
		}
	}
	if l.Engine != "failing" {
		t.Errorf("engine = %q, want failing", l.Engine)
	}
}

func TestComposePartialSolutionFallsBack(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "screen:shop:cart", Epic: "shop"},
			{ID: "screen:shop:checkout", Epic: "shop"},
			{ID: "screen:shop:receipt", Epic: "shop"},
		},
	}

	l, err := composer(droppingEngine{}).Compose(context.Background(), g)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(l.Positions) != len(g.Nodes) {
		t.Fatalf("positions = %d, want %d", len(l.Positions), len(g.Nodes))
	}

	// The engine drops the first item at every level, so the cart node and
	// its cluster both fall back to the padded origin.
	cfg := layout.DefaultConfig()
	want := layout.Position{X: 2 * cfg.Padding, Y: 2 * cfg.Padding}
	if got := l.Positions["screen:shop:cart"]; got != want {
		t.Errorf("dropped node at %v, want padded origin %v", got, want)
	}

	// Items the engine did place keep their normalized offsets: receipt sat
	// 600 to the right of checkout, the solution's leftmost placed item.
	wantReceipt := layout.Position{X: 2*cfg.Padding + 600, Y: 2 * cfg.Padding}
	if got := l.Positions["screen:shop:receipt"]; got != wantReceipt {
		t.Errorf("placed node at %v, want %v", got, wantReceipt)
	}
}

func TestComposeCrossEpicEdgesHavePriority(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "screen:a:one", Epic: "a"},
			{ID: "screen:b:one", Epic: "b"},
		},
		Edges: []graph.Edge{
			{Source: "screen:a:one", Target: "screen:b:one"},
		},
	}

	rec := &recordingEngine{inner: grid.New()}
	if _, err := composer(rec).Compose(context.Background(), g); err != nil {
		t.Fatalf("Compose: %v", err)
	}

	found := false
	for _, p := range rec.problems {
		if p.Level != layout.LevelRoot {
			continue
		}
		for _, e := range p.Edges {
			if e.From == "epic:a" && e.To == "epic:b" {
				found = true
				if !e.Priority {
					t.Error("cross-epic edge not marked priority")
				}
			}
		}
	}
	if !found {
		t.Error("root problem carries no cross-epic edge")
	}
}

func TestComposeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := &graph.Graph{Nodes: []graph.Node{{ID: "screen:shop:a", Epic: "shop"}}}
	if _, err := composer(grid.New()).Compose(ctx, g); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	l := &layout.Layout{
		Positions:   map[string]layout.Position{"screen:shop:home": {X: 96, Y: 96}},
		Width:       472,
		Height:      288,
		Communities: []layout.Community{{ID: 0, Epics: []string{"shop"}}},
		Engine:      "grid",
	}

	data, err := layout.MarshalLayout(l)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	got, err := layout.UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout: %v", err)
	}
	if !reflect.DeepEqual(got, l) {
		t.Errorf("round trip mismatch:\n%v\n%v", got, l)
	}
}
