package workbench

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/settings"
	"github.com/odvcencio/zcode/store"
)

type styleKey struct {
	fg, bg string
}

// painter turns an AppState into a frame. It keeps no state besides a
// style cache keyed by theme slots.
type painter struct {
	theme  settings.Theme
	styles map[styleKey]lipgloss.Style
}

func newPainter(theme settings.Theme) *painter {
	return &painter{theme: theme, styles: make(map[styleKey]lipgloss.Style)}
}

// setTheme drops cached styles when the theme changes.
func (p *painter) setTheme(theme settings.Theme) {
	if len(theme) == len(p.theme) {
		same := true
		for k, v := range theme {
			if p.theme[k] != v {
				same = false
				break
			}
		}
		if same {
			return
		}
	}
	p.theme = theme
	p.styles = make(map[styleKey]lipgloss.Style)
}

// style returns a style with foreground and background taken from theme
// slots. An empty or unset slot leaves the terminal default.
func (p *painter) style(fg, bg string) lipgloss.Style {
	k := styleKey{fg, bg}
	if s, ok := p.styles[k]; ok {
		return s
	}
	s := lipgloss.NewStyle()
	if c := p.theme.Color(fg); fg != "" && c != "" {
		s = s.Foreground(lipgloss.Color(c))
	}
	if c, ok := p.theme[bg]; bg != "" && ok && c != "" {
		s = s.Background(lipgloss.Color(c))
	}
	p.styles[k] = s
	return s
}

// canvas is a frame of exactly width × height cells.
type canvas struct {
	w     int
	lines []string
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, lines: make([]string, h)}
	blank := strings.Repeat(" ", w)
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

// put draws block into r, one string per row, clipping and padding each
// row to the rectangle.
func (c *canvas) put(r explorer.Rect, block []string) {
	for i := 0; i < r.H && r.Y+i < len(c.lines); i++ {
		if r.Y+i < 0 {
			continue
		}
		row := ""
		if i < len(block) {
			row = block[i]
		}
		c.set(r.Y+i, r.X, fit(row, r.W, lipgloss.NewStyle()))
	}
}

// set splices s into line y at column x.
func (c *canvas) set(y, x int, s string) {
	if y < 0 || y >= len(c.lines) || x >= c.w {
		return
	}
	w := min(lipgloss.Width(s), c.w-x)
	line := c.lines[y]
	c.lines[y] = clip(line, 0, x) + clip(s, 0, w) + clip(line, x+w, c.w-x-w)
}

func (c *canvas) String() string { return strings.Join(c.lines, "\n") }

// render draws the whole screen.
func (p *painter) render(st *store.AppState, l screenLayout) string {
	c := newCanvas(l.Width, l.Height)
	if l.Sidebar.W > 0 {
		c.put(l.Sidebar, p.sidebar(st, l.Sidebar))
		div := p.style("border", "").Render("│")
		for y := l.Sidebar.Y; y < l.Sidebar.Y+l.Sidebar.H; y++ {
			c.set(y, l.Sidebar.X+l.Sidebar.W, div)
		}
	}
	for i, pl := range l.Panes {
		p.pane(c, st, i, pl)
		if i > 0 {
			div := p.style("border", "").Render("│")
			for y := pl.Area.Y; y < pl.Area.Y+pl.Area.H; y++ {
				c.set(y, pl.Area.X-1, div)
			}
		}
	}
	if l.Bottom.H > 0 {
		c.put(l.Bottom, p.bottomPanel(st, l.Bottom))
	}
	c.put(l.Status, []string{p.statusBar(st, l.Status.W)})
	p.overlays(c, st, l)
	return c.String()
}
