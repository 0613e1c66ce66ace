// Package ui is the interactive terminal front-end of the tour engine. One
// bubbletea model owns a tour controller and renders the linked views: the
// weighted section view, the condition strip, and a status bar. All
// controller mutation happens inside Update, so the single-goroutine
// contract of the controller holds.
package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/condtour/pkg/config"
	"github.com/vanderheijden86/condtour/pkg/debug"
	"github.com/vanderheijden86/condtour/pkg/export"
	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/metrics"
	"github.com/vanderheijden86/condtour/pkg/predict"
	"github.com/vanderheijden86/condtour/pkg/tour"
)

// Width thresholds for adaptive layout.
const (
	SplitViewThreshold = 100
	MinPlotWidth       = 30
)

// BandwidthStep is the multiplicative nudge applied per keypress.
const BandwidthStep = 0.1

// OrbitStep is the camera rotation applied per keypress, in radians.
const OrbitStep = 0.1

// Session is everything the UI needs to drive one tour.
type Session struct {
	Table      *frame.Table
	Partition  frame.Partition
	Controller *tour.Controller
	Model      predict.Predictor // optional fitted model, nil disables the curve
	Groups     [][]string        // condition variable groups in display order
	Dataset    string            // dataset path shown in the header
}

// FileChangedMsg is sent when the dataset file changes on disk.
type FileChangedMsg struct{}

// ReloadedMsg delivers a freshly rebuilt session after a dataset change.
type ReloadedMsg struct {
	Session Session
	Err     error
}

// statusExpireMsg clears a transient status message.
type statusExpireMsg struct{ id int }

// Options configures the model beyond the session itself.
type Options struct {
	Config      config.Config
	SnapshotDir string                  // where "s" writes snapshot files
	Reload      func() (Session, error) // nil disables live reload
}

// Model is the bubbletea model for a tour session.
type Model struct {
	sess  Session
	theme Theme
	opts  Options

	snap tour.Snapshot

	width, height int
	selectedGroup int
	showHelp      bool
	quitting      bool

	status   string
	statusID int
}

// New builds the UI model around an already-running session.
func New(sess Session, opts Options) Model {
	m := Model{
		sess:  sess,
		theme: DefaultTheme(lipgloss.DefaultRenderer()),
		opts:  opts,
		snap:  sess.Controller.Snapshot(),
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case FileChangedMsg:
		if m.opts.Reload == nil {
			return m, nil
		}
		reload := m.opts.Reload
		m2, cmd := m.setStatus("dataset changed, reloading")
		return m2, tea.Batch(cmd, func() tea.Msg {
			sess, err := reload()
			return ReloadedMsg{Session: sess, Err: err}
		})

	case ReloadedMsg:
		if msg.Err != nil {
			return m.setStatus(fmt.Sprintf("reload failed: %v", msg.Err))
		}
		m.sess = msg.Session
		m.snap = m.sess.Controller.Snapshot()
		if m.selectedGroup >= len(m.sess.Groups) {
			m.selectedGroup = 0
		}
		return m.setStatus("dataset reloaded")

	case statusExpireMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// handleMouse maps a click on the progress strip to a jump: the horizontal
// position picks the path index proportionally.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if m.width <= 1 || m.showHelp {
		return m, nil
	}
	c := m.sess.Controller
	l := c.PathLength()
	idx := 1 + int(float64(msg.X)/float64(m.width-1)*float64(l-1)+0.5)
	c.JumpTo(idx)
	m.snap = c.Snapshot()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "q", "esc", "?":
			m.showHelp = false
		}
		return m, nil
	}

	c := m.sess.Controller
	switch msg.String() {
	case "ctrl+c", "q":
		c.End()
		m.quitting = true
		return m, tea.Quit

	case "right", "l", " ":
		c.Advance()
	case "left", "h":
		c.Retreat()
	case "g", "home":
		c.JumpTo(1)
	case "G", "end":
		c.JumpTo(c.PathLength())

	case "+", "=":
		if err := c.AdjustBandwidth(BandwidthStep); err != nil {
			return m.setStatus(fmt.Sprintf("bandwidth: %v", err))
		}
	case "-", "_":
		if err := c.AdjustBandwidth(-BandwidthStep); err != nil {
			return m.setStatus(fmt.Sprintf("bandwidth: %v", err))
		}

	case "up":
		if len(m.sess.Partition.Section) == 2 {
			c.Orbit(0, OrbitStep)
		}
	case "down":
		if len(m.sess.Partition.Section) == 2 {
			c.Orbit(0, -OrbitStep)
		}
	case "<", ",":
		if len(m.sess.Partition.Section) == 2 {
			c.Orbit(-OrbitStep, 0)
		}
	case ">", ".":
		if len(m.sess.Partition.Section) == 2 {
			c.Orbit(OrbitStep, 0)
		}

	case "tab":
		if n := len(m.sess.Groups); n > 0 {
			m.selectedGroup = (m.selectedGroup + 1) % n
		}
	case "shift+tab":
		if n := len(m.sess.Groups); n > 0 {
			m.selectedGroup = (m.selectedGroup + n - 1) % n
		}

	case "s":
		return m.saveSnapshot()

	case "?":
		m.showHelp = true
	}

	m.snap = c.Snapshot()
	return m, nil
}

func (m Model) saveSnapshot() (tea.Model, tea.Cmd) {
	dir := m.opts.SnapshotDir
	if dir == "" {
		dir = "."
	}
	name := fmt.Sprintf("condtour-%s.svg", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	err := export.SaveSectionSnapshot(export.SectionSnapshotOptions{
		Path:     path,
		Title:    filepath.Base(m.sess.Dataset),
		Table:    m.sess.Table,
		Response: m.sess.Partition.Response,
		Section:  m.sess.Partition.Section[0],
		Snap:     m.sess.Controller.Snapshot(),
		Model:    m.sess.Model,
		CondCols: m.sess.Partition.Condition,
	})
	if err != nil {
		return m.setStatus(fmt.Sprintf("snapshot failed: %v", err))
	}
	if cp := m.opts.Config.UI.CopySnapshot; cp != nil && *cp {
		if err := clipboard.WriteAll(path); err != nil {
			debug.Log("clipboard: %v", err)
		}
	}
	return m.setStatus("saved " + path)
}

// setStatus shows a transient message in the status bar and schedules its
// expiry.
func (m Model) setStatus(s string) (Model, tea.Cmd) {
	m.status = s
	m.statusID++
	id := m.statusID
	return m, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return statusExpireMsg{id: id}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}
	if m.showHelp {
		return m.helpView()
	}

	header := m.headerView()
	strip := m.conditionStrip(m.width)
	statusBar := m.statusView()

	plotH := m.height - lipgloss.Height(header) - lipgloss.Height(strip) - lipgloss.Height(statusBar) - 2
	if plotH < 5 {
		plotH = 5
	}
	plot := m.sectionView(m.width-4, plotH)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.theme.Pane.Render(plot),
		strip,
		statusBar,
	)
}

func (m Model) headerView() string {
	s := m.snap
	title := fmt.Sprintf("condtour  %s", filepath.Base(m.sess.Dataset))
	pos := fmt.Sprintf("point %d/%d  bw %.3g  %s",
		s.State.PathIndex, s.PathLength, s.State.Bandwidth, s.State.Kind)
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(pos) - 4
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Render(title + spaces(gap) + pos)
}

func (m Model) statusView() string {
	if m.status != "" {
		return m.theme.StatusBar.Render(" " + m.status)
	}
	hint := " ←/→ move  +/- bandwidth  tab group  s snapshot  ? help  q quit"
	if sw := m.opts.Config.UI.ShowWeights; sw == nil || *sw {
		visible := 0
		for _, w := range m.snap.Weights {
			if w > 0 {
				visible++
			}
		}
		diag := fmt.Sprintf(" %d/%d obs visible", visible, len(m.snap.Weights))
		if yc, ok := m.sess.Table.Column(m.sess.Partition.Response); ok && yc.Kind == frame.Numeric && visible > 0 {
			wm := stat.Mean(yc.Floats, m.snap.Weights)
			diag += fmt.Sprintf("  local mean %s %.3g", m.sess.Partition.Response, wm)
		}
		hint = diag + " " + hint
	}
	return m.theme.StatusBar.Render(hint)
}

func (m Model) helpView() string {
	rows := []struct{ key, what string }{
		{"→ l space", "advance along the path"},
		{"← h", "retreat along the path"},
		{"g / G", "jump to first / last path point"},
		{"+ / -", "widen / narrow the bandwidth"},
		{"tab", "cycle the highlighted condition group"},
		{"↑ ↓ < >", "orbit the 3-D section view (two section variables)"},
		{"s", "save an SVG snapshot of the section view"},
		{"q", "end the tour and quit"},
	}
	var b []string
	b = append(b, m.theme.Header.Render("condtour keys"), "")
	for _, r := range rows {
		b = append(b, fmt.Sprintf("  %-12s %s", r.key, m.theme.Muted.Render(r.what)))
	}
	b = append(b, "", m.theme.Muted.Render("  press ? or esc to close"))
	return lipgloss.JoinVertical(lipgloss.Left, b...)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
