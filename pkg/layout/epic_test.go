package layout

import (
	"reflect"
	"testing"

	"github.com/flowatlas/flowatlas/pkg/graph"
)

func twoEpicGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "screen:checkout:payment", Type: "screen", Epic: "checkout", Name: "payment"},
			{ID: "screen:checkout:review", Type: "screen", Epic: "checkout", Name: "review"},
			{ID: "screen:cart:summary", Type: "screen", Epic: "cart", Name: "summary"},
		},
		Edges: []graph.Edge{
			{Source: "screen:cart:summary", Target: "screen:checkout:payment"},
			{Source: "screen:checkout:review", Target: "screen:cart:summary"},
		},
	}
}

func TestAnalyzeEpicsCentrality(t *testing.T) {
	stats := AnalyzeEpics(twoEpicGraph(), DefaultConfig())

	if len(stats) != 2 {
		t.Fatalf("epics = %d, want 2", len(stats))
	}
	for _, name := range []string{"checkout", "cart"} {
		s := stats[name]
		if s == nil {
			t.Fatalf("missing epic %q", name)
		}
		if s.Internal != 0 {
			t.Errorf("%s internal = %d, want 0", name, s.Internal)
		}
		if s.External != 2 {
			t.Errorf("%s external = %d, want 2", name, s.External)
		}
		if s.Centrality != 4 {
			t.Errorf("%s centrality = %d, want 4", name, s.Centrality)
		}
	}
	if w := stats["checkout"].Weights["cart"]; w != 2 {
		t.Errorf("checkout->cart weight = %d, want 2", w)
	}
	if w := stats["cart"].Weights["checkout"]; w != 2 {
		t.Errorf("cart->checkout weight = %d, want 2", w)
	}
}

func TestAnalyzeEpicsInternalEdges(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{ID: "screen:shop:a", Epic: "shop"},
			{ID: "screen:shop:b", Epic: "shop"},
		},
		Edges: []graph.Edge{
			{Source: "screen:shop:a", Target: "screen:shop:b"},
		},
	}
	stats := AnalyzeEpics(g, DefaultConfig())

	s := stats["shop"]
	if s.Internal != 1 || s.External != 0 {
		t.Errorf("internal/external = %d/%d, want 1/0", s.Internal, s.External)
	}
	if s.Centrality != 1 {
		t.Errorf("centrality = %d, want 1", s.Centrality)
	}
}

func TestAnalyzeEpicsOtherBucket(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{{ID: "screen:home", Type: "screen", Name: "home"}},
	}
	stats := AnalyzeEpics(g, DefaultConfig())

	s, ok := stats[EpicOther]
	if !ok {
		t.Fatalf("epic-less node not bucketed under %q", EpicOther)
	}
	if !reflect.DeepEqual(s.Nodes, []string{"screen:home"}) {
		t.Errorf("nodes = %v", s.Nodes)
	}
}

func TestEpicsByCentralityOrder(t *testing.T) {
	stats := map[string]*EpicStats{
		"low":  {Name: "low", Centrality: 1},
		"high": {Name: "high", Centrality: 9},
		"bbb":  {Name: "bbb", Centrality: 5},
		"aaa":  {Name: "aaa", Centrality: 5},
	}
	got := epicsByCentrality(stats)
	want := []string{"high", "aaa", "bbb", "low"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}
