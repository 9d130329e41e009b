// Package graphviz adapts the Graphviz layout algorithms to the
// layout.Engine contract.
//
// Each sub-problem is translated to a DOT graph with fixed-size nodes,
// solved with dot (directional levels) or fdp (loose levels), rendered to
// xdot, and the computed pos attributes parsed back into placements.
package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gv "github.com/goccy/go-graphviz"

	"github.com/flowatlas/flowatlas/pkg/layout"
)

// pointsPerInch converts between DOT's node size unit (inches) and its
// coordinate unit (points).
const pointsPerInch = 72.0

// Engine implements layout.Engine on top of Graphviz.
type Engine struct{}

// New creates a Graphviz engine.
func New() *Engine { return &Engine{} }

// Name implements layout.Engine.
func (*Engine) Name() string { return "graphviz" }

// Solve implements layout.Engine.
func (e *Engine) Solve(ctx context.Context, p layout.Problem) (layout.Solution, error) {
	if len(p.Items) == 0 {
		return layout.Solution{}, nil
	}

	g, err := gv.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer g.Close()

	if p.Tuning.Directional {
		g.SetLayout(gv.DOT)
	} else {
		g.SetLayout(gv.FDP)
	}

	graph, err := gv.ParseBytes([]byte(toDOT(p)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := g.Render(ctx, graph, gv.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("solve %s: %w", p.ID, err)
	}
	return parsePositions(buf.Bytes(), p), nil
}

// toDOT translates a sub-problem into DOT source. Node sizes are pinned
// with fixedsize so Graphviz only decides positions.
func toDOT(p layout.Problem) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if p.Tuning.Directional {
		buf.WriteString("  rankdir=TB;\n")
	}
	fmt.Fprintf(&buf, "  nodesep=%.3f;\n", p.Tuning.NodeSpacing/pointsPerInch)
	if p.Tuning.RankSpacing > 0 {
		fmt.Fprintf(&buf, "  ranksep=%.3f;\n", p.Tuning.RankSpacing/pointsPerInch)
	}
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n\n")

	for _, item := range p.Items {
		fmt.Fprintf(&buf, "  %q [width=%.3f, height=%.3f];\n",
			item.ID, item.Width/pointsPerInch, item.Height/pointsPerInch)
	}

	buf.WriteString("\n")
	for _, e := range p.Edges {
		if e.Priority {
			// Heavier edges pull their endpoints straighter and closer.
			fmt.Fprintf(&buf, "  %q -> %q [weight=4];\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

var (
	continuationRe = regexp.MustCompile(`\\\r?\n`)
	nodeStmtRe     = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"\s*\[([^\]]*)\]`)
	posAttrRe      = regexp.MustCompile(`\bpos="(-?[0-9.]+),(-?[0-9.]+)"`)
)

// parsePositions extracts pos attributes from xdot output. Graphviz pos
// values are node centers with Y growing upward; placements are top-left
// with Y growing downward. Items missing from the output are left out of
// the solution; the composer treats that as origin fallback.
func parsePositions(xdot []byte, p layout.Problem) layout.Solution {
	size := make(map[string]layout.Item, len(p.Items))
	for _, item := range p.Items {
		size[item.ID] = item
	}

	flat := continuationRe.ReplaceAll(xdot, nil)
	sol := make(layout.Solution, len(p.Items))
	for _, stmt := range nodeStmtRe.FindAllSubmatch(flat, -1) {
		id := unescapeID(string(stmt[1]))
		item, ok := size[id]
		if !ok {
			continue
		}
		pos := posAttrRe.FindSubmatch(stmt[2])
		if pos == nil {
			continue
		}
		cx, _ := strconv.ParseFloat(string(pos[1]), 64)
		cy, _ := strconv.ParseFloat(string(pos[2]), 64)
		sol[id] = layout.Placement{
			X:      cx - item.Width/2,
			Y:      -cy - item.Height/2,
			Width:  item.Width,
			Height: item.Height,
		}
	}
	return sol
}

func unescapeID(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}
