package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/condtour/pkg/frame"
)

// Observation glyphs by weight band. Heavier weights get denser glyphs on
// top of a brighter style.
const (
	glyphLow  = '·'
	glyphMid  = '•'
	glyphHigh = '●'
	glyphFit  = '─'
)

// sectionView renders the weighted scatter of the section variables against
// the response as a character grid. With one section variable this is a
// plain 2-D scatter; with two, the points are projected through the current
// camera orbit.
func (m Model) sectionView(width, height int) string {
	if width < MinPlotWidth {
		width = MinPlotWidth
	}
	if height < 5 {
		height = 5
	}

	yc, ok := m.sess.Table.Column(m.sess.Partition.Response)
	if !ok {
		return m.theme.Muted.Render("response column missing")
	}

	xs, ys, ok := m.projected(yc)
	if !ok {
		return m.theme.Muted.Render("section column missing")
	}

	// Reserve a column of y-axis plus a row of x-axis.
	plotW, plotH := width-2, height-2
	grid := make([][]rune, plotH)
	style := make([][]*lipgloss.Style, plotH)
	for r := range grid {
		grid[r] = make([]rune, plotW)
		style[r] = make([]*lipgloss.Style, plotW)
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}

	xmin, xmax := rangeOf(xs)
	ymin, ymax := rangeOf(ys)

	toCol := func(v float64) int { return scaleTo(v, xmin, xmax, plotW) }
	toRow := func(v float64) int { return plotH - 1 - scaleTo(v, ymin, ymax, plotH) }

	// Fitted curve first so observations draw over it.
	if m.sess.Model != nil && len(m.sess.Partition.Section) == 1 {
		m.drawCurve(grid, style, toRow, xmin, xmax, plotW)
	}

	for i := range xs {
		w := 0.0
		if i < len(m.snap.Weights) {
			w = m.snap.Weights[i]
		}
		if w <= 0 {
			continue // zero weight is invisible, not faint
		}
		r, c := toRow(ys[i]), toCol(xs[i])
		if r < 0 || r >= plotH || c < 0 || c >= plotW {
			continue
		}
		switch {
		case w < 0.33:
			grid[r][c] = glyphLow
			style[r][c] = &m.theme.WeightLow
		case w < 0.66:
			grid[r][c] = glyphMid
			style[r][c] = &m.theme.WeightMid
		default:
			grid[r][c] = glyphHigh
			style[r][c] = &m.theme.WeightHigh
		}
	}

	return m.assemble(grid, style, plotW, plotH, xmin, xmax, ymin, ymax)
}

// projected returns plotting coordinates for every observation. For two
// section variables the pair is rotated by the camera azimuth and tilted by
// the colatitude before projecting onto the screen plane.
func (m Model) projected(yc frame.Column) (xs, ys []float64, ok bool) {
	sec := m.sess.Partition.Section
	s0, found := m.sess.Table.Column(sec[0])
	if !found || s0.Kind != frame.Numeric {
		return nil, nil, false
	}
	n := m.sess.Table.NumRows()
	xs = make([]float64, n)
	ys = make([]float64, n)

	if len(sec) == 1 {
		copy(xs, s0.Floats)
		copy(ys, yc.Floats)
		return xs, ys, true
	}

	s1, found := m.sess.Table.Column(sec[1])
	if !found || s1.Kind != frame.Numeric {
		return nil, nil, false
	}
	az, col := m.snap.Camera.Azimuth, m.snap.Camera.Colatitude
	sinA, cosA := math.Sin(az), math.Cos(az)
	sinC, cosC := math.Sin(col), math.Cos(col)
	for i := 0; i < n; i++ {
		u := s0.Floats[i]*cosA - s1.Floats[i]*sinA
		v := s0.Floats[i]*sinA + s1.Floats[i]*cosA
		xs[i] = u
		ys[i] = yc.Floats[i]*cosC + v*sinC
	}
	return xs, ys, true
}

func (m Model) drawCurve(grid [][]rune, style [][]*lipgloss.Style, toRow func(float64) int, xmin, xmax float64, plotW int) {
	sec := m.sess.Partition.Section[0]
	gridVals := make([]float64, plotW)
	for c := 0; c < plotW; c++ {
		gridVals[c] = xmin + (xmax-xmin)*float64(c)/float64(plotW-1)
	}
	cols := []frame.Column{frame.NumericColumn(sec, gridVals)}
	for _, name := range m.sess.Partition.Condition {
		v, ok := m.snap.Point[name]
		if !ok {
			continue
		}
		if v.Kind == frame.Numeric {
			vals := make([]float64, plotW)
			for i := range vals {
				vals[i] = v.Num
			}
			cols = append(cols, frame.NumericColumn(name, vals))
		} else {
			labels := make([]string, plotW)
			for i := range labels {
				labels[i] = v.Level
			}
			cols = append(cols, frame.FactorColumn(name, labels))
		}
	}
	covs, err := frame.NewTable(cols...)
	if err != nil {
		return
	}
	preds, err := m.sess.Model.Predict(covs)
	if err != nil {
		return
	}
	for c, y := range preds {
		r := toRow(y)
		if r < 0 || r >= len(grid) {
			continue
		}
		grid[r][c] = glyphFit
		style[r][c] = &m.theme.Curve
	}
}

func (m Model) assemble(grid [][]rune, style [][]*lipgloss.Style, plotW, plotH int, xmin, xmax, ymin, ymax float64) string {
	var sb strings.Builder
	for r := 0; r < plotH; r++ {
		sb.WriteString(m.theme.Axis.Render("│"))
		run := func(from, to int, st *lipgloss.Style) {
			s := string(grid[r][from:to])
			if st == nil {
				sb.WriteString(s)
			} else {
				sb.WriteString(st.Render(s))
			}
		}
		start := 0
		for c := 1; c <= plotW; c++ {
			if c == plotW || style[r][c] != style[r][start] {
				run(start, c, style[r][start])
				start = c
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(m.theme.Axis.Render("└" + strings.Repeat("─", plotW)))
	sb.WriteByte('\n')

	lo := fmt.Sprintf("%.3g", xmin)
	hi := fmt.Sprintf("%.3g", xmax)
	gap := plotW - runewidth.StringWidth(lo) - runewidth.StringWidth(hi)
	if gap < 1 {
		gap = 1
	}
	axisLabel := m.sectionAxisLabel()
	sb.WriteString(m.theme.Muted.Render(" " + lo + spaces(gap) + hi + "  " + axisLabel))
	return sb.String()
}

func (m Model) sectionAxisLabel() string {
	sec := m.sess.Partition.Section
	if len(sec) == 1 {
		return fmt.Sprintf("%s vs %s", m.sess.Partition.Response, sec[0])
	}
	return fmt.Sprintf("%s vs (%s, %s)  az %.2f col %.2f",
		m.sess.Partition.Response, sec[0], sec[1],
		m.snap.Camera.Azimuth, m.snap.Camera.Colatitude)
}

func rangeOf(vals []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return 0, 1
	}
	return lo, hi
}

// scaleTo maps v in [lo, hi] onto a cell index in [0, n).
func scaleTo(v, lo, hi float64, n int) int {
	if hi == lo {
		return n / 2
	}
	i := int(math.Round((v - lo) / (hi - lo) * float64(n-1)))
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return i
}
