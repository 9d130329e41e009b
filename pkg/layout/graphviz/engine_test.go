package graphviz

import (
	"strings"
	"testing"

	"github.com/flowatlas/flowatlas/pkg/layout"
)

func TestToDOTDirectional(t *testing.T) {
	dot := toDOT(layout.Problem{
		ID:    "epic:shop",
		Level: layout.LevelCluster,
		Items: []layout.Item{
			{ID: "screen:shop:cart", Width: 280, Height: 96},
			{ID: "screen:shop:checkout", Width: 280, Height: 120},
		},
		Edges: []layout.ProblemEdge{
			{From: "screen:shop:cart", To: "screen:shop:checkout", Priority: true},
			{From: "screen:shop:checkout", To: "screen:shop:cart"},
		},
		Tuning: layout.Tuning{Directional: true, NodeSpacing: 40, RankSpacing: 80},
	})

	// Spacing is emitted in inches, sizes pinned so only positions come back.
	for _, want := range []string{
		"rankdir=TB;",
		"nodesep=0.556;",
		"ranksep=1.111;",
		"node [shape=box, fixedsize=true, label=\"\"];",
		`"screen:shop:cart" [width=3.889, height=1.333];`,
		`"screen:shop:checkout" [width=3.889, height=1.667];`,
		`"screen:shop:cart" -> "screen:shop:checkout" [weight=4];`,
		`"screen:shop:checkout" -> "screen:shop:cart";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTLoose(t *testing.T) {
	dot := toDOT(layout.Problem{
		ID:     "root",
		Level:  layout.LevelRoot,
		Items:  []layout.Item{{ID: "epic:shop", Width: 472, Height: 288}},
		Tuning: layout.Tuning{NodeSpacing: 120},
	})

	if strings.Contains(dot, "rankdir") {
		t.Errorf("loose level emitted rankdir:\n%s", dot)
	}
	if strings.Contains(dot, "ranksep") {
		t.Errorf("zero RankSpacing emitted ranksep:\n%s", dot)
	}
	if !strings.Contains(dot, "nodesep=1.667;") {
		t.Errorf("DOT missing nodesep:\n%s", dot)
	}
}

func TestParsePositions(t *testing.T) {
	p := layout.Problem{
		Items: []layout.Item{
			{ID: "screen:shop:cart", Width: 280, Height: 96},
			{ID: "screen:shop:checkout", Width: 280, Height: 96},
			{ID: "screen:shop:receipt", Width: 280, Height: 96},
		},
	}

	// Graphviz pos values are node centers with Y growing upward; the second
	// node statement exercises attribute line continuations.
	xdot := []byte(`digraph G {
	graph [bb="0,0,280,448"];
	node [label=""];
	"screen:shop:cart" [height=1.333, pos="140,400", width=3.889];
	"screen:shop:checkout" [height=1.333,
		pos="140,\
100", width=3.889];
	"ghost" [pos="10,10"];
}
`)

	sol := parsePositions(xdot, p)

	want := map[string]layout.Placement{
		"screen:shop:cart":     {X: 0, Y: -448, Width: 280, Height: 96},
		"screen:shop:checkout": {X: 0, Y: -148, Width: 280, Height: 96},
	}
	for id, wantPl := range want {
		if got := sol[id]; got != wantPl {
			t.Errorf("%s = %+v, want %+v", id, got, wantPl)
		}
	}

	// The Y flip keeps visual order: cart sits higher in graphviz space,
	// so it gets the smaller top-left Y.
	if sol["screen:shop:cart"].Y >= sol["screen:shop:checkout"].Y {
		t.Errorf("cart at %v not above checkout at %v",
			sol["screen:shop:cart"], sol["screen:shop:checkout"])
	}

	if _, ok := sol["ghost"]; ok {
		t.Error("unknown node id made it into the solution")
	}
	if _, ok := sol["screen:shop:receipt"]; ok {
		t.Error("item absent from xdot got a placement")
	}
}

func TestParsePositionsEscapedID(t *testing.T) {
	p := layout.Problem{
		Items: []layout.Item{{ID: `screen:shop:"sale"`, Width: 100, Height: 50}},
	}
	xdot := []byte(`"screen:shop:\"sale\"" [pos="50,25"];`)

	sol := parsePositions(xdot, p)
	want := layout.Placement{X: 0, Y: -50, Width: 100, Height: 50}
	if got := sol[`screen:shop:"sale"`]; got != want {
		t.Errorf("placement = %+v, want %+v", got, want)
	}
}
