package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/render"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// LayerViewModel - Interactive layer browser
// =============================================================================

// LayerViewModel is the bubbletea model of the view command. It shows one
// layer at a time with a net table underneath.
type LayerViewModel struct {
	Title  string
	Grid   *grid.Grid
	Layout *render.Layout
	Report *render.Report

	// Layer is the layer on screen.
	Layer int
	// Highlight is the input index of the selected net, or -1.
	Highlight int
}

// NewLayerViewModel creates a view of a routed grid starting at layer 0
// with no net selected.
func NewLayerViewModel(title string, g *grid.Grid, layout *render.Layout, report *render.Report) LayerViewModel {
	return LayerViewModel{
		Title:     title,
		Grid:      g,
		Layout:    layout,
		Report:    report,
		Highlight: -1,
	}
}

func (m LayerViewModel) Init() tea.Cmd {
	return nil
}

func (m LayerViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "right", "l", "pgdown":
			if m.Layer < m.Grid.Layers()-1 {
				m.Layer++
			}
		case "left", "h", "pgup":
			if m.Layer > 0 {
				m.Layer--
			}
		case "n", "down", "j", "tab":
			m.Highlight = m.step(1)
		case "p", "up", "k", "shift+tab":
			m.Highlight = m.step(-1)
		case "esc":
			m.Highlight = -1
		}
	}
	return m, nil
}

// step moves the net selection by delta, wrapping through "none".
func (m LayerViewModel) step(delta int) int {
	n := len(m.Report.Results)
	if n == 0 {
		return -1
	}
	// Positions 0..n-1 are nets, n is "none".
	pos := m.Highlight
	if pos < 0 {
		pos = n
	}
	pos = ((pos+delta)%(n+1) + n + 1) % (n + 1)
	if pos == n {
		return -1
	}
	return pos
}

func (m LayerViewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ layer  n/p net  esc clear  q quit"))
	b.WriteString("\n\n")

	b.WriteString(listSelectedStyle.Render(fmt.Sprintf("Layer %d/%d", m.Layer+1, m.Grid.Layers())))
	b.WriteString("\n")
	b.WriteString(styledLayer(m.Layout, m.Grid, m.Layer, m.Highlight))
	b.WriteString("\n")
	b.WriteString(m.netTable())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d/%d routed · total cost %d",
		m.Report.Routed, m.Report.Nets, m.Report.TotalCost)))

	return b.String()
}

// netTable lists every net with its marker, cost, vias and status.
func (m LayerViewModel) netTable() string {
	rows := make([][]string, 0, len(m.Report.Results))
	for i, r := range m.Report.Results {
		cursor := "  "
		if i == m.Highlight {
			cursor = "▸ "
		}
		status := iconSuccess
		cost, vias := fmt.Sprint(r.Cost), fmt.Sprint(r.Vias)
		if !r.Routed {
			status = iconError + " " + string(r.Code)
			cost, vias = "—", "—"
		}
		rows = append(rows, []string{cursor, r.Marker, r.ID, cost, vias, status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Net", "Cost", "Vias", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(m.Report.Results) {
				return lipgloss.NewStyle()
			}
			r := m.Report.Results[row]
			base := lipgloss.NewStyle()
			if col == 1 {
				base = base.Foreground(lipgloss.Color(render.NetColor(row))).Bold(true)
			}
			switch {
			case !r.Routed:
				return base.Foreground(colorRed)
			case row == m.Highlight:
				return base.Bold(true)
			case m.Highlight >= 0:
				return base.Foreground(colorDim)
			}
			return base
		})

	return t.Render()
}
