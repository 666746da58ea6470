package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mazeroute/pkg/maze"
	"github.com/matzehuels/mazeroute/pkg/render/griddot"
)

// Map size limits; larger grids are cropped to the top-left corner.
const (
	maxMapCols = 160
	maxMapRows = 80
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	styleBlock   = lipgloss.NewStyle().Foreground(colorGray)
	styleCursor  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorCyan)
)

// netStyle colors a net the same way the SVG renderer does.
func netStyle(id int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(griddot.Color(id)))
}

// =============================================================================
// Grid map
// =============================================================================

// renderGridMap draws g with one character per cell. Routed cells take their
// net's color, pins show as o (x when the net is unrouted), and the selected
// net is highlighted with its pins marked S and T. Pass -1 to select nothing.
func renderGridMap(g *maze.Grid, selected int) string {
	rows, cols := min(g.Rows, maxMapRows), min(g.Cols, maxMapCols)

	var b strings.Builder
	for y := range rows {
		for x := range cols {
			b.WriteString(cellGlyph(g, maze.Point{X: x, Y: y}, selected))
		}
		b.WriteByte('\n')
	}
	if rows < g.Rows || cols < g.Cols {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("(showing %d×%d of %d×%d)", cols, rows, g.Cols, g.Rows)))
		b.WriteByte('\n')
	}
	return b.String()
}

func cellGlyph(g *maze.Grid, p maze.Point, selected int) string {
	state := g.State(p)
	if state == maze.Block {
		return styleBlock.Render(iconBlock)
	}
	if pin := g.Pin(p); pin != maze.Empty {
		n := g.Net(pin)
		switch {
		case pin == selected && p == n.Source:
			return styleCursor.Render("S")
		case pin == selected:
			return styleCursor.Render("T")
		case !n.Routed:
			return styleIconError.Render("x")
		}
		return netStyle(pin).Render("o")
	}
	switch state {
	case maze.Empty:
		return listDimStyle.Render(iconEmpty)
	case selected:
		return styleCursor.Render("•")
	}
	return netStyle(state).Render("•")
}

// =============================================================================
// Net table
// =============================================================================

// renderNetTable lists nets [offset, offset+height) with the cursor row
// highlighted. A negative cursor highlights nothing.
func renderNetTable(g *maze.Grid, cursor, offset, height int) string {
	end := min(offset+height, g.NetCount())

	rows := [][]string{}
	for i := offset; i < end; i++ {
		n := g.Net(i)
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		status := StyleSuccess.Render(iconSuccess + " routed")
		segs, cells := fmt.Sprint(len(n.Segments())), fmt.Sprint(n.Usage())
		if !n.Routed {
			status = styleIconError.Render(iconError + " FAILED")
			segs, cells = "—", "—"
		}
		rows = append(rows, []string{marker, n.Name, n.Source.String(), n.Target.String(), segs, cells, status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Net", "Source", "Target", "Segments", "Cells", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := offset + row
			base := lipgloss.NewStyle()
			if idx < g.NetCount() && col == 1 {
				base = netStyle(idx)
			}
			if idx == cursor {
				return base.Bold(true)
			}
			return base
		})
	return t.Render()
}

// =============================================================================
// NetViewModel - Interactive routed grid browser
// =============================================================================

// NetViewModel is the bubbletea model of the view command: the grid map on
// top and a scrollable net list below; the net under the cursor is
// highlighted on the map.
type NetViewModel struct {
	Grid   *maze.Grid
	Title  string
	Cursor int
	Height int
	Offset int
}

// NewNetViewModel creates a browser for a routed grid.
func NewNetViewModel(g *maze.Grid, title string) NetViewModel {
	return NetViewModel{
		Grid:   g,
		Title:  title,
		Height: 10,
	}
}

func (m NetViewModel) Init() tea.Cmd {
	return nil
}

func (m NetViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	last := m.Grid.NetCount() - 1
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < last {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(last, 0)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-min(m.Grid.Rows, maxMapRows)-10, 3)
	}

	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m, nil
}

func (m NetViewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ select net  g/G first/last  q quit"))
	b.WriteString("\n\n")

	selected := -1
	if m.Grid.NetCount() > 0 {
		selected = m.Cursor
	}
	b.WriteString(renderGridMap(m.Grid, selected))
	b.WriteString("\n")
	b.WriteString(renderNetTable(m.Grid, selected, m.Offset, m.Height))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  cost %d  %d failed",
		selected+1, m.Grid.NetCount(), m.Grid.Usage(), len(m.Grid.Failed()))))

	return b.String()
}
