// Package grid provides a dependency-free layout engine.
//
// It is fully deterministic and never fails, which makes it the fallback
// engine and the engine of choice in tests. Directional problems get a
// longest-path ranking with ranks stacked top to bottom; everything else
// is packed into near-square rows.
package grid

import (
	"context"
	"math"

	"github.com/flowatlas/flowatlas/pkg/layout"
)

// Engine implements layout.Engine with deterministic row packing.
type Engine struct{}

// New creates a grid engine.
func New() *Engine { return &Engine{} }

// Name implements layout.Engine.
func (*Engine) Name() string { return "grid" }

// Solve implements layout.Engine.
func (e *Engine) Solve(ctx context.Context, p layout.Problem) (layout.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(p.Items) == 0 {
		return layout.Solution{}, nil
	}

	var rows [][]layout.Item
	if p.Tuning.Directional {
		rows = rankRows(p)
	} else {
		rows = packRows(p.Items)
	}

	sol := make(layout.Solution, len(p.Items))
	y := 0.0
	for _, row := range rows {
		x, rowH := 0.0, 0.0
		for _, item := range row {
			sol[item.ID] = layout.Placement{X: x, Y: y, Width: item.Width, Height: item.Height}
			x += item.Width + p.Tuning.NodeSpacing
			if item.Height > rowH {
				rowH = item.Height
			}
		}
		gap := p.Tuning.RankSpacing
		if !p.Tuning.Directional {
			gap = p.Tuning.NodeSpacing
		}
		y += rowH + gap
	}
	return sol, nil
}

// rankRows assigns each item the length of the longest edge path leading
// to it and groups items by rank. Relaxation is capped at the item count,
// so cycles settle instead of looping.
func rankRows(p layout.Problem) [][]layout.Item {
	rank := make(map[string]int, len(p.Items))
	known := make(map[string]bool, len(p.Items))
	for _, item := range p.Items {
		known[item.ID] = true
	}

	for range p.Items {
		changed := false
		for _, e := range p.Edges {
			if !known[e.From] || !known[e.To] {
				continue
			}
			if r := rank[e.From] + 1; r > rank[e.To] {
				rank[e.To] = r
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	maxRank := 0
	for _, r := range rank {
		if r > maxRank {
			maxRank = r
		}
	}
	rows := make([][]layout.Item, maxRank+1)
	for _, item := range p.Items {
		r := rank[item.ID]
		rows[r] = append(rows[r], item)
	}

	out := rows[:0]
	for _, row := range rows {
		if len(row) > 0 {
			out = append(out, row)
		}
	}
	return out
}

// packRows splits items into rows of ceil(sqrt(n)) in input order.
func packRows(items []layout.Item) [][]layout.Item {
	perRow := int(math.Ceil(math.Sqrt(float64(len(items)))))
	var rows [][]layout.Item
	for start := 0; start < len(items); start += perRow {
		end := start + perRow
		if end > len(items) {
			end = len(items)
		}
		rows = append(rows, items[start:end])
	}
	return rows
}
