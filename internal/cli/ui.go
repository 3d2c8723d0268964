package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/pipeline"
	"github.com/matzehuels/layerroute/pkg/render"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, vias
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleVia  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	styleFree = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(w io.Writer, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(w, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Routing Summary
// =============================================================================

// printOutcome prints the headline, search statistics and any failed nets.
func printOutcome(w io.Writer, res *pipeline.Result) {
	out := res.Outcome
	headline := fmt.Sprintf("Routed %s/%d nets with total cost %s",
		StyleNumber.Render(fmt.Sprint(out.Routed)), len(out.Results),
		StyleNumber.Render(fmt.Sprint(out.TotalCost)))
	if out.Complete() {
		printSuccess(w, "%s", headline)
	} else {
		printWarning(w, "%s", headline)
	}

	ids := make([]string, len(out.Order))
	for i, r := range out.Results {
		ids[i] = r.Net.ID
	}
	printKeyValue(w, "order", strings.Join(ids, " "+iconArrow+" "))
	printKeyValue(w, "strategy", fmt.Sprintf("%s (%d/%d orders)", res.Search.Strategy, res.Search.Trials, res.Search.Total))
	printStats(w, res.Stats.RouteTime.String(), res.CacheInfo.RouteHit)

	for _, r := range out.Unrouted() {
		printError(w, "%s %s %s %s: %s", r.Net.ID, r.Net.Start, iconArrow, r.Net.Target, failureReason(r.Err))
	}
}

func failureReason(err error) string {
	if err == nil {
		return "not routed"
	}
	return fmt.Sprintf("%s (%s)", errors.UserMessage(err), errors.GetCode(err))
}

// printStats prints a dim detail line with a cache marker.
func printStats(w io.Writer, detail string, cached bool) {
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	fmt.Fprintln(w, "  "+StyleDim.Render(detail)+StyleDim.Render(" · ")+statusStyle.Render(status))
}

// =============================================================================
// Coloured Layout
// =============================================================================

// styledLayer renders one layer of l with each net in its own colour.
// highlight, when >= 0, dims every net except that one.
func styledLayer(l *render.Layout, g *grid.Grid, layer, highlight int) string {
	var b strings.Builder
	for y := range g.Rows() {
		for x := range g.Cols() {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(styleCell(l.At(grid.Pt(x, y, layer)), highlight))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func styleCell(sym rune, highlight int) string {
	s := string(sym)
	switch {
	case sym == render.FreeMarker:
		return styleFree.Render(s)
	case sym == render.ViaMarker:
		return styleVia.Render(s)
	case sym >= 'A' && sym <= 'Z':
		idx := int(sym - 'A')
		if highlight >= 0 && idx != highlight {
			return styleFree.Render(s)
		}
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(render.NetColor(idx))).Render(s)
	default:
		return StyleValue.Render(s)
	}
}
