package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/condtour/pkg/frame"
	"github.com/vanderheijden86/condtour/pkg/kernel"
	"github.com/vanderheijden86/condtour/pkg/seriate"
	"github.com/vanderheijden86/condtour/pkg/tour"
)

func testSession(t *testing.T) Session {
	t.Helper()
	tab, err := frame.NewTable(
		frame.NumericColumn("y", []float64{1, 2, 3, 4, 5, 6}),
		frame.NumericColumn("s", []float64{0, 1, 2, 3, 4, 5}),
		frame.NumericColumn("z1", []float64{0, 0, 5, 5, 10, 10}),
		frame.NumericColumn("z2", []float64{1, 1, 1, 9, 9, 9}),
	)
	if err != nil {
		t.Fatal(err)
	}
	part, err := frame.NewPartition(tab, "y", "s")
	if err != nil {
		t.Fatal(err)
	}
	scales := tab.Scales()
	path, err := tour.BuildPath(context.Background(), tab, part.Condition, tour.PathOptions{
		NCentroids: 3, NInterp: 1, Seed: 1, Scales: scales,
	})
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := tour.NewController(context.Background(), tab, part.Condition, path, 1.0,
		kernel.Options{Kind: kernel.Euclidean, Scales: scales})
	if err != nil {
		t.Fatal(err)
	}
	groups, err := seriate.Arrange(tab, part.Condition, seriate.MethodAssociation)
	if err != nil {
		t.Fatal(err)
	}
	return Session{
		Table:      tab,
		Partition:  part,
		Controller: ctrl,
		Groups:     groups,
		Dataset:    "test.csv",
	}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func key(t *testing.T, m Model, k string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNavigationKeys(t *testing.T) {
	sess := testSession(t)
	m := sized(t, New(sess, Options{}))

	m = key(t, m, "right")
	if got := sess.Controller.State().PathIndex; got != 2 {
		t.Errorf("after right, PathIndex = %d, want 2", got)
	}
	m = key(t, m, "left")
	if got := sess.Controller.State().PathIndex; got != 1 {
		t.Errorf("after left, PathIndex = %d, want 1", got)
	}
	m = key(t, m, "G")
	if got := sess.Controller.State().PathIndex; got != sess.Controller.PathLength() {
		t.Errorf("after G, PathIndex = %d, want %d", got, sess.Controller.PathLength())
	}
	m = key(t, m, "g")
	if got := sess.Controller.State().PathIndex; got != 1 {
		t.Errorf("after g, PathIndex = %d, want 1", got)
	}
	if m.snap.State.PathIndex != 1 {
		t.Errorf("model snapshot out of step: %d", m.snap.State.PathIndex)
	}
}

func TestBandwidthKeys(t *testing.T) {
	sess := testSession(t)
	m := sized(t, New(sess, Options{}))

	key(t, m, "+")
	if got := sess.Controller.State().Bandwidth; got != 1.1 {
		t.Errorf("after +, bandwidth = %g, want 1.1", got)
	}
}

func TestGroupCycling(t *testing.T) {
	sess := testSession(t)
	m := sized(t, New(sess, Options{}))

	if m.selectedGroup != 0 {
		t.Fatalf("initial group = %d", m.selectedGroup)
	}
	m = key(t, m, "tab")
	want := 1 % len(sess.Groups)
	if m.selectedGroup != want {
		t.Errorf("after tab, group = %d, want %d", m.selectedGroup, want)
	}
}

func TestQuitEndsSession(t *testing.T) {
	sess := testSession(t)
	m := sized(t, New(sess, Options{}))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("q should produce a quit command")
	}
	if !sess.Controller.Ended() {
		t.Error("q should end the tour session")
	}
	if !next.(Model).quitting {
		t.Error("model should be quitting")
	}
}

func TestViewRenders(t *testing.T) {
	sess := testSession(t)
	m := sized(t, New(sess, Options{}))

	out := m.View()
	if out == "" {
		t.Fatal("empty view")
	}
	if !strings.Contains(out, "condtour") {
		t.Error("header missing")
	}
	if !strings.Contains(out, "z1") || !strings.Contains(out, "z2") {
		t.Error("condition strip should name the condition variables")
	}
}

func TestHelpToggle(t *testing.T) {
	sess := testSession(t)
	m := sized(t, New(sess, Options{}))

	m = key(t, m, "?")
	if !m.showHelp {
		t.Fatal("? should open help")
	}
	if !strings.Contains(m.View(), "advance along the path") {
		t.Error("help content missing")
	}
	m = key(t, m, "?")
	if m.showHelp {
		t.Error("? should close help")
	}
}

func TestReloadedMsgSwapsSession(t *testing.T) {
	sess := testSession(t)
	m := sized(t, New(sess, Options{}))

	fresh := testSession(t)
	next, _ := m.Update(ReloadedMsg{Session: fresh})
	m = next.(Model)
	if m.sess.Controller != fresh.Controller {
		t.Error("reload should swap in the new session")
	}
	if m.snap.State.PathIndex != 1 {
		t.Errorf("snapshot not refreshed, PathIndex = %d", m.snap.State.PathIndex)
	}
}
