package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/matzehuels/mazeroute/pkg/maze"
)

func init() {
	// Plain glyphs make the rendered map comparable.
	lipgloss.SetColorProfile(termenv.Ascii)
}

// routedCrossing builds a 3×7 grid where b runs straight across row 1 and
// a is left unrouted.
func routedCrossing(t *testing.T) *maze.Grid {
	t.Helper()
	g := maze.New(3, 7)
	g.AddBlock(0, 0, 0, 0)
	if err := g.AddNet(0, "a", 3, 0, 3, 2); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNet(1, "b", 1, 1, 5, 1); err != nil {
		t.Fatal(err)
	}
	g.InitPins()
	if !g.RouteLegal(1) {
		t.Fatal("b should route")
	}
	g.Commit(1)
	return g
}

func TestRenderGridMap(t *testing.T) {
	g := routedCrossing(t)
	lines := strings.Split(strings.TrimRight(renderGridMap(g, -1), "\n"), "\n")
	want := []string{
		"█··x···",
		"·o•••o·",
		"···x···",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderGridMapSelected(t *testing.T) {
	g := routedCrossing(t)
	got := renderGridMap(g, 1)
	if !strings.Contains(got, "·S•••T·") {
		t.Errorf("selected net should show S and T pins:\n%s", got)
	}
}

func TestRenderGridMapCropsLargeGrids(t *testing.T) {
	g := maze.New(maxMapRows+5, maxMapCols+5)
	g.InitPins()
	got := renderGridMap(g, -1)
	if !strings.Contains(got, "(showing") {
		t.Error("cropped map should say so")
	}
}

func TestRenderNetTable(t *testing.T) {
	g := routedCrossing(t)
	got := renderNetTable(g, 1, 0, 10)
	for _, s := range []string{"Net", "FAILED", "routed", "(1,1)", "▸"} {
		if !strings.Contains(got, s) {
			t.Errorf("table should contain %q:\n%s", s, got)
		}
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNetViewModelNavigation(t *testing.T) {
	m := NewNetViewModel(routedCrossing(t), "crossing")

	next, _ := m.Update(key("j"))
	m = next.(NetViewModel)
	if m.Cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.Cursor)
	}

	next, _ = m.Update(key("j"))
	m = next.(NetViewModel)
	if m.Cursor != 1 {
		t.Errorf("cursor should stop at the last net, got %d", m.Cursor)
	}

	next, _ = m.Update(key("g"))
	m = next.(NetViewModel)
	if m.Cursor != 0 {
		t.Errorf("g should jump to the first net, got %d", m.Cursor)
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestNetViewModelScrolls(t *testing.T) {
	g := maze.New(2, 20)
	for i := range 8 {
		if err := g.AddNet(i, string(rune('a'+i)), i, 0, i, 1); err != nil {
			t.Fatal(err)
		}
	}
	g.InitPins()

	m := NewNetViewModel(g, "nets")
	m.Height = 3
	for range 5 {
		next, _ := m.Update(key("j"))
		m = next.(NetViewModel)
	}
	if m.Cursor != 5 || m.Offset != 3 {
		t.Errorf("cursor/offset = %d/%d, want 5/3", m.Cursor, m.Offset)
	}
}

func TestNetViewModelView(t *testing.T) {
	m := NewNetViewModel(routedCrossing(t), "crossing 7×3")
	view := m.View()
	for _, s := range []string{"crossing 7×3", "S", "[1/2]", "1 failed"} {
		if !strings.Contains(view, s) {
			t.Errorf("view should contain %q", s)
		}
	}
}

func TestNetViewModelEmptyGrid(t *testing.T) {
	g := maze.New(2, 2)
	g.InitPins()
	m := NewNetViewModel(g, "empty")
	next, _ := m.Update(key("G"))
	m = next.(NetViewModel)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor)
	}
	if !strings.Contains(m.View(), "[0/0]") {
		t.Error("empty grid should show [0/0]")
	}
}
