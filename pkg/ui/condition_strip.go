package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// conditionStrip renders the condition variable groups with the values of
// the current conditioning point, plus the path progress bar. The selected
// group is highlighted; tab cycles it.
func (m Model) conditionStrip(width int) string {
	var cells []string
	for gi, group := range m.sess.Groups {
		var parts []string
		for _, name := range group {
			v, ok := m.snap.Point[name]
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%s", name, v.String()))
		}
		cell := " " + strings.Join(parts, " ") + " "
		if gi == m.selectedGroup {
			cell = m.theme.Selected.Render(cell)
		} else {
			cell = m.theme.Muted.Render(cell)
		}
		cells = append(cells, cell)
	}

	strip := lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(cells, " "))

	barWidth := width - 14
	if barWidth < 10 {
		barWidth = 10
	}
	bar := progress.New(progress.WithGradient("#6B47D9", "#BD93F9"), progress.WithWidth(barWidth), progress.WithoutPercentage())
	pct := 0.0
	if m.snap.PathLength > 1 {
		pct = float64(m.snap.State.PathIndex-1) / float64(m.snap.PathLength-1)
	}
	progressLine := fmt.Sprintf(" %s %3d/%-3d", bar.ViewAs(pct), m.snap.State.PathIndex, m.snap.PathLength)

	return lipgloss.JoinVertical(lipgloss.Left, strip, progressLine)
}
