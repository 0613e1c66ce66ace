// Package export renders static snapshots of the current tour state. The
// interactive UI stays terminal-side; this is what "snapshot" hands to the
// outside world: an SVG or PNG of the section view with weight-shaded
// observations, an optional fitted curve, and a small summary block.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/metrics"
	"github.com/vanderheijden86/condtour/pkg/predict"
	"github.com/vanderheijden86/condtour/pkg/tour"
)

// SectionSnapshotOptions controls section snapshot export behaviour.
type SectionSnapshotOptions struct {
	Path     string // Output path; format inferred from extension when Format empty
	Format   string // "svg" or "png" (case-insensitive). If empty, inferred from Path.
	Title    string // Optional title rendered in the summary block
	Table    *frame.Table
	Response string
	Section  string            // section variable on the x axis
	Snap     tour.Snapshot     // current tour state, weights included
	Model    predict.Predictor // optional; nil skips the fitted curve
	CondCols []string          // condition columns, used to fill curve covariates
}

// SaveSectionSnapshot renders the current section view to a static file.
// Observations with weight 0 are not drawn at all; everything else fades
// with its weight, mirroring the interactive display.
func SaveSectionSnapshot(opts SectionSnapshotOptions) error {
	defer metrics.Timer(metrics.SnapshotExport)()
	if opts.Table == nil || opts.Table.NumRows() == 0 {
		return fmt.Errorf("no observations to export")
	}
	if len(opts.Snap.Weights) != opts.Table.NumRows() {
		return fmt.Errorf("snapshot has %d weights for %d rows", len(opts.Snap.Weights), opts.Table.NumRows())
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".svg":
			format = "svg"
		case ".png":
			format = "png"
		default:
			format = "svg" // safe default
			if opts.Path != "" && filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout, err := buildLayout(opts)
	if err != nil {
		return err
	}

	switch format {
	case "svg":
		return renderSVG(opts.Path, layout)
	default:
		return renderPNG(opts.Path, layout)
	}
}

// --- layout computation ----------------------------------------------------

type layoutPoint struct {
	X, Y   float64 // canvas coordinates
	Weight float64
}

type layoutResult struct {
	Width, Height int
	Header        float64
	PlotX, PlotY  float64
	PlotW, PlotH  float64
	Points        []layoutPoint
	Curve         []struct{ X, Y float64 }
	XLabel        string
	YLabel        string
	XMin, XMax    float64
	YMin, YMax    float64
	Summary       summaryInfo
}

type summaryInfo struct {
	Title     string
	Position  string
	Bandwidth string
	Point     string
	Visible   int
	Total     int
}

const (
	canvasW      = 840
	canvasH      = 620
	headerHeight = 96.0
	padding      = 56.0
)

func buildLayout(opts SectionSnapshotOptions) (layoutResult, error) {
	xc, ok := opts.Table.Column(opts.Section)
	if !ok || xc.Kind != frame.Numeric {
		return layoutResult{}, fmt.Errorf("section variable %q missing or not numeric", opts.Section)
	}
	yc, ok := opts.Table.Column(opts.Response)
	if !ok || yc.Kind != frame.Numeric {
		return layoutResult{}, fmt.Errorf("response %q missing or not numeric", opts.Response)
	}

	l := layoutResult{
		Width:  canvasW,
		Height: canvasH,
		Header: headerHeight,
		PlotX:  padding,
		PlotY:  headerHeight + padding/2,
		PlotW:  canvasW - 2*padding,
		PlotH:  canvasH - headerHeight - 1.5*padding,
		XLabel: opts.Section,
		YLabel: opts.Response,
	}

	l.XMin, l.XMax = dataRange(xc.Floats)
	l.YMin, l.YMax = dataRange(yc.Floats)

	visible := 0
	for i := 0; i < opts.Table.NumRows(); i++ {
		w := opts.Snap.Weights[i]
		if w <= 0 {
			continue // weight 0 means not drawn
		}
		visible++
		l.Points = append(l.Points, layoutPoint{
			X:      l.toX(xc.Floats[i]),
			Y:      l.toY(yc.Floats[i]),
			Weight: w,
		})
	}

	if opts.Model != nil {
		curve, err := fitCurve(opts, l)
		if err != nil {
			return layoutResult{}, err
		}
		l.Curve = curve
	}

	pos := fmt.Sprintf("tour %d/%d", opts.Snap.State.PathIndex, opts.Snap.PathLength)
	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Section Snapshot"
	}
	l.Summary = summaryInfo{
		Title:     title,
		Position:  pos,
		Bandwidth: fmt.Sprintf("bandwidth %.4g (%s)", opts.Snap.State.Bandwidth, opts.Snap.State.Kind),
		Point:     formatPoint(opts.Snap.Point, opts.CondCols),
		Visible:   visible,
		Total:     opts.Table.NumRows(),
	}
	return l, nil
}

// fitCurve evaluates the model along the section axis with every condition
// variable pinned at the current conditioning point.
func fitCurve(opts SectionSnapshotOptions, l layoutResult) ([]struct{ X, Y float64 }, error) {
	const steps = 80
	grid := make([]float64, steps+1)
	for i := range grid {
		grid[i] = l.XMin + (l.XMax-l.XMin)*float64(i)/steps
	}
	cols := []frame.Column{frame.NumericColumn(opts.Section, grid)}
	for _, name := range opts.CondCols {
		v, ok := opts.Snap.Point[name]
		if !ok {
			continue
		}
		if v.Kind == frame.Numeric {
			vals := make([]float64, len(grid))
			for i := range vals {
				vals[i] = v.Num
			}
			cols = append(cols, frame.NumericColumn(name, vals))
		} else {
			labels := make([]string, len(grid))
			for i := range labels {
				labels[i] = v.Level
			}
			cols = append(cols, frame.FactorColumn(name, labels))
		}
	}
	covs, err := frame.NewTable(cols...)
	if err != nil {
		return nil, err
	}
	preds, err := opts.Model.Predict(covs)
	if err != nil {
		return nil, fmt.Errorf("evaluating fitted curve: %w", err)
	}
	out := make([]struct{ X, Y float64 }, 0, len(grid))
	for i, y := range preds {
		if math.IsNaN(y) {
			continue
		}
		out = append(out, struct{ X, Y float64 }{l.toX(grid[i]), l.toY(y)})
	}
	return out, nil
}

func (l layoutResult) toX(v float64) float64 {
	if l.XMax == l.XMin {
		return l.PlotX + l.PlotW/2
	}
	return l.PlotX + (v-l.XMin)/(l.XMax-l.XMin)*l.PlotW
}

func (l layoutResult) toY(v float64) float64 {
	if l.YMax == l.YMin {
		return l.PlotY + l.PlotH/2
	}
	// Canvas y grows downward.
	return l.PlotY + l.PlotH - (v-l.YMin)/(l.YMax-l.YMin)*l.PlotH
}

func dataRange(vals []float64) (float64, float64) {
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

func formatPoint(p frame.Point, cols []string) string {
	parts := make([]string, 0, len(cols))
	for _, name := range cols {
		if v, ok := p[name]; ok {
			if v.Kind == frame.Numeric {
				parts = append(parts, fmt.Sprintf("%s=%.3g", name, v.Num))
			} else {
				parts = append(parts, fmt.Sprintf("%s=%s", name, v.Level))
			}
		}
		if len(parts) == 6 {
			parts = append(parts, "…")
			break
		}
	}
	return strings.Join(parts, "  ")
}

// --- rendering -------------------------------------------------------------

var (
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorAxis     = color.RGBA{0x99, 0x9e, 0xa5, 0xff}
	colorObs      = color.RGBA{0x1f, 0x77, 0xb4, 0xff}
	colorCurve    = color.RGBA{0xd6, 0x27, 0x28, 0xff}
)

func renderPNG(path string, l layoutResult) error {
	dc := gg.NewContext(l.Width, l.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(16, 16, float64(l.Width)-32, l.Header-24, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawString(l.Summary.Title, 32, 40)
	dc.SetColor(colorSubtle)
	dc.DrawString(fmt.Sprintf("%s  %s  showing %d/%d obs", l.Summary.Position, l.Summary.Bandwidth, l.Summary.Visible, l.Summary.Total), 32, 58)
	dc.DrawString(l.Summary.Point, 32, 76)

	// axes
	dc.SetColor(colorAxis)
	dc.SetLineWidth(1)
	dc.DrawLine(l.PlotX, l.PlotY+l.PlotH, l.PlotX+l.PlotW, l.PlotY+l.PlotH)
	dc.DrawLine(l.PlotX, l.PlotY, l.PlotX, l.PlotY+l.PlotH)
	dc.Stroke()
	dc.SetColor(colorSubtle)
	dc.DrawString(l.XLabel, l.PlotX+l.PlotW/2, l.PlotY+l.PlotH+28)
	dc.DrawString(l.YLabel, 14, l.PlotY-8)

	// observations, faded by weight
	for _, p := range l.Points {
		a := uint8(math.Round(255 * p.Weight))
		dc.SetColor(color.RGBA{colorObs.R, colorObs.G, colorObs.B, a})
		dc.DrawCircle(p.X, p.Y, 3.2)
		dc.Fill()
	}

	// fitted curve
	if len(l.Curve) > 1 {
		dc.SetColor(colorCurve)
		dc.SetLineWidth(2)
		dc.MoveTo(l.Curve[0].X, l.Curve[0].Y)
		for _, pt := range l.Curve[1:] {
			dc.LineTo(pt.X, pt.Y)
		}
		dc.Stroke()
	}

	return dc.SavePNG(path)
}

func renderSVG(path string, l layoutResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return renderSVGToWriter(file, l)
}

func renderSVGToWriter(w io.Writer, l layoutResult) error {
	canvas := svg.New(w)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(16, 16, l.Width-32, int(l.Header-24), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	text := func(x, y int, s string, c color.RGBA) {
		canvas.Text(x, y, s, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(c)))
	}
	text(32, 40, l.Summary.Title, colorText)
	text(32, 58, fmt.Sprintf("%s  %s  showing %d/%d obs", l.Summary.Position, l.Summary.Bandwidth, l.Summary.Visible, l.Summary.Total), colorSubtle)
	text(32, 76, l.Summary.Point, colorSubtle)

	axis := fmt.Sprintf("stroke:%s;stroke-width:1", css(colorAxis))
	canvas.Line(int(l.PlotX), int(l.PlotY+l.PlotH), int(l.PlotX+l.PlotW), int(l.PlotY+l.PlotH), axis)
	canvas.Line(int(l.PlotX), int(l.PlotY), int(l.PlotX), int(l.PlotY+l.PlotH), axis)
	text(int(l.PlotX+l.PlotW/2), int(l.PlotY+l.PlotH+28), l.XLabel, colorSubtle)
	text(14, int(l.PlotY-8), l.YLabel, colorSubtle)

	for _, p := range l.Points {
		canvas.Circle(int(p.X), int(p.Y), 3,
			fmt.Sprintf("fill:%s;fill-opacity:%.3f", css(colorObs), p.Weight))
	}

	if len(l.Curve) > 1 {
		xs := make([]int, len(l.Curve))
		ys := make([]int, len(l.Curve))
		for i, pt := range l.Curve {
			xs[i] = int(pt.X)
			ys[i] = int(pt.Y)
		}
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", css(colorCurve)))
	}

	canvas.End()
	return nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
