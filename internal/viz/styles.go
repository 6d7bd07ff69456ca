package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type panelStyles struct {
	canvas  lipgloss.Style
	stats   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	failed  lipgloss.Style
	cursor  lipgloss.Style
	spark   [3]lipgloss.Style
}

func stylesFor(t Theme) panelStyles {
	return panelStyles{
		canvas:  lipgloss.NewStyle().Padding(1, 2).Foreground(t.Text),
		stats:   lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(45),
		header:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		graph:   lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Muted).MarginTop(2),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		failed:  lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		cursor:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		spark: [3]lipgloss.Style{
			lipgloss.NewStyle().Foreground(t.Muted),
			lipgloss.NewStyle().Foreground(t.Warning),
			lipgloss.NewStyle().Foreground(t.Success),
		},
	}
}

// sparkline renders the last width values as block characters scaled to
// their own range.
func (s panelStyles) sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var result strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(s.spark[2].Render(c))
		case norm > 0.3:
			result.WriteString(s.spark[1].Render(c))
		default:
			result.WriteString(s.spark[0].Render(c))
		}
	}
	return result.String()
}
