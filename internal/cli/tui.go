package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowatlas/flowatlas/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// EntityListModel - Interactive entity browser
// =============================================================================

// EntityListModel is the bubbletea model for browsing graph nodes. The left
// pane lists entities; enter toggles a detail view of the selected entity's
// components and references.
type EntityListModel struct {
	Graph    *graph.Graph
	Cursor   int
	Height   int
	Offset   int
	Detail   bool
	outgoing map[string][]graph.Edge
}

// NewEntityListModel creates an entity browser over the graph's nodes.
func NewEntityListModel(g *graph.Graph) EntityListModel {
	outgoing := make(map[string][]graph.Edge)
	for _, e := range g.Edges {
		outgoing[e.Source] = append(outgoing[e.Source], e)
	}
	return EntityListModel{
		Graph:    g,
		Height:   15,
		outgoing: outgoing,
	}
}

func (m EntityListModel) Init() tea.Cmd {
	return nil
}

func (m EntityListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Detail {
				m.Detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if !m.Detail && m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if !m.Detail && m.Cursor < len(m.Graph.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m EntityListModel) View() string {
	if m.Detail {
		return m.detailView()
	}
	return m.listView()
}

func (m EntityListModel) listView() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Entities"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Graph.Nodes) {
		end = len(m.Graph.Nodes)
	}

	for i := m.Offset; i < end; i++ {
		n := m.Graph.Nodes[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		epic := n.Epic
		if epic == "" {
			epic = "—"
		}
		line := fmt.Sprintf("%s%-34s %-10s %-14s %2d components  %2d refs",
			cursor, n.ID, n.Type, epic, len(n.Components), len(m.outgoing[n.ID]))

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case n.Referenced:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Graph.Nodes))))

	return b.String()
}

func (m EntityListModel) detailView() string {
	n := m.Graph.Nodes[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(n.ID))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("⏎/esc back  q quit"))
	b.WriteString("\n\n")

	if n.Description != "" {
		b.WriteString(StyleValue.Render(n.Description))
		b.WriteString("\n\n")
	}
	if len(n.Tags) > 0 {
		b.WriteString(listDimStyle.Render("tags: " + strings.Join(n.Tags, ", ")))
		b.WriteString("\n\n")
	}

	if len(n.Components) > 0 {
		b.WriteString(StyleHighlight.Render("Components"))
		b.WriteString("\n")
		for _, comp := range n.Components {
			indent := strings.Repeat("  ", comp.Depth+1)
			label := comp.Label
			if label == "" {
				label = comp.ID
			}
			line := fmt.Sprintf("%s%s (%s)", indent, label, comp.Type)
			if comp.Ref != "" {
				line += "  " + refBadge(comp.Status) + " " + comp.Ref
			}
			b.WriteString(listNormalStyle.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if edges := m.outgoing[n.ID]; len(edges) > 0 {
		b.WriteString(StyleHighlight.Render("References"))
		b.WriteString("\n")
		for _, e := range edges {
			line := fmt.Sprintf("  %s %s", iconArrow, e.Target)
			if e.Anchor != "" {
				line += listDimStyle.Render("  via " + e.Anchor)
			}
			b.WriteString(listNormalStyle.Render(line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func refBadge(status graph.RefStatus) string {
	switch status {
	case graph.RefStatusConnected:
		return StyleSuccess.Render("✓")
	case graph.RefStatusDangling:
		return StyleWarning.Render("?")
	default:
		return ""
	}
}
