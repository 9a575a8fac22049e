package workbench

import (
	"strconv"

	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/store"
)

// Rows the sidebar search view spends above its results: title, query,
// options and a rule.
const searchHeaderRows = 4

// paneLayout places one editor pane.
type paneLayout struct {
	Area   explorer.Rect
	TabBar explorer.Rect
	Bar    explorer.Rect
	Gutter explorer.Rect
	Text   explorer.Rect
	// HScroll is the first display column shown; it follows the cursor.
	HScroll int
	// Lines are the buffer rows shown, top to bottom.
	Lines []int
}

// screenLayout is where everything goes for one frame. The painter and the
// mouse router share it, so a click always lands where it was drawn.
type screenLayout struct {
	Width, Height int
	Sidebar       explorer.Rect
	Panes         []paneLayout
	Bottom        explorer.Rect
	Status        explorer.Rect
}

// computeLayout mirrors the sizes the store gives its viewports.
func computeLayout(st *store.AppState) screenLayout {
	w, h := max(st.UI.Width, 1), max(st.UI.Height, 1)
	l := screenLayout{Width: w, Height: h}
	body := max(h-1, 1)
	l.Status = explorer.Rect{X: 0, Y: body, W: w, H: 1}

	x := 0
	if st.UI.SidebarVisible && w >= 20 {
		sw := min(max(w/4, 16), 40, w/2)
		l.Sidebar = explorer.Rect{X: 0, Y: 0, W: sw, H: body}
		x = sw + 1
	}
	panel := 0
	if st.UI.BottomVisible {
		panel = max(body/3, 3)
		l.Bottom = explorer.Rect{X: x, Y: body - panel, W: max(w-x, 1), H: panel}
	}
	edW := max(w-x, 1)
	edH := max(body-panel, 2)
	n := len(st.Layout.Panes)
	for i, p := range st.Layout.Panes {
		pw := edW
		px := x
		if n > 1 {
			left := edW / 2
			if i == 0 {
				pw = left
			} else {
				px = x + left + 1
				pw = max(edW-left-1, 1)
			}
		}
		l.Panes = append(l.Panes, layoutPane(p, explorer.Rect{X: px, Y: 0, W: pw, H: edH}, tabSize(st)))
	}
	return l
}

func layoutPane(p *store.Pane, area explorer.Rect, tabSize int) paneLayout {
	pl := paneLayout{Area: area, TabBar: explorer.Rect{X: area.X, Y: area.Y, W: area.W, H: 1}}
	y := area.Y + 1
	if p.Bar.Visible {
		pl.Bar = explorer.Rect{X: area.X, Y: y, W: area.W, H: 2}
		y += 2
	}
	textH := max(area.Y+area.H-y, 1)
	t := p.ActiveTab()
	gw := 0
	if t != nil {
		gw = gutterWidth(t.Buffer.LineCount())
	}
	pl.Gutter = explorer.Rect{X: area.X, Y: y, W: gw, H: textH}
	pl.Text = explorer.Rect{X: area.X + gw, Y: y, W: max(area.W-gw, 1), H: textH}
	if t == nil {
		return pl
	}
	pl.Lines = visibleLines(t, textH)
	cur := t.Buffer.Cursor()
	col := displayCol(t.Buffer.Line(cur.Row), cur.Col, tabSize)
	if col >= pl.Text.W {
		pl.HScroll = col - pl.Text.W + 1
	}
	return pl
}

func tabSize(st *store.AppState) int {
	if st.Config.TabSize > 0 {
		return st.Config.TabSize
	}
	return 4
}

// gutterWidth fits the largest line number plus a marker and a space.
func gutterWidth(lines int) int {
	return max(len(strconv.Itoa(lines)), 3) + 2
}

// visibleLines lists up to n rows from the tab's scroll position, skipping
// folded lines.
func visibleLines(t *store.Tab, n int) []int {
	total := t.Buffer.LineCount()
	out := make([]int, 0, n)
	for row := t.Scroll; row < total && len(out) < n; row++ {
		if t.Folds != nil && t.Folds.IsLineHidden(row) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// hit resolves a cell to the region the store understands. For the editor
// Row and Col are a buffer position; for lists Row is an item index.
func (l screenLayout) hit(st *store.AppState, x, y int) (store.Region, int, int, int) {
	for i, pl := range l.Panes {
		switch {
		case pl.TabBar.Contains(x, y):
			p := st.Layout.Pane(i)
			return store.RegionTabBar, 0, tabAtX(tabLabels(p), x-pl.TabBar.X), i
		case pl.Text.Contains(x, y) || pl.Gutter.Contains(x, y):
			t := st.Layout.Pane(i).ActiveTab()
			if t == nil {
				return store.RegionEditor, 0, 0, i
			}
			row := t.Buffer.LineCount() - 1
			if k := y - pl.Text.Y; k < len(pl.Lines) {
				row = pl.Lines[k]
			}
			col := 0
			if x >= pl.Text.X {
				col = colAtDisplay(t.Buffer.Line(row), x-pl.Text.X+pl.HScroll, tabSize(st))
			}
			return store.RegionEditor, row, col, i
		}
	}
	if l.Sidebar.Contains(x, y) {
		if st.UI.Sidebar == store.SidebarSearch {
			return store.RegionSearch, st.Search.Sidebar.Scroll + y - l.Sidebar.Y - searchHeaderRows, 0, 0
		}
		return store.RegionExplorer, st.Explorer.Scroll() + y - l.Sidebar.Y - 1, 0, 0
	}
	if l.Bottom.Contains(x, y) && y > l.Bottom.Y {
		scroll := st.UI.PanelScroll
		if st.UI.Bottom == store.BottomSearchResults {
			scroll = st.Search.Panel.Scroll
		}
		return store.RegionBottomPanel, scroll + y - l.Bottom.Y - 1, 0, 0
	}
	return store.RegionNone, 0, 0, 0
}

// dropTargets lists where a drag may end: explorer directories above the
// editor panes.
func (l screenLayout) dropTargets(st *store.AppState) []explorer.Target {
	var out []explorer.Target
	for i, pl := range l.Panes {
		out = append(out, explorer.Target{Kind: explorer.TargetPane, Pane: i, Area: pl.Area, Z: 0})
	}
	if l.Sidebar.W == 0 || st.UI.Sidebar != store.SidebarExplorer {
		return out
	}
	rows := st.Explorer.Rows()
	for y := 1; y < l.Sidebar.H; y++ {
		i := st.Explorer.Scroll() + y - 1
		if i >= len(rows) {
			break
		}
		r := rows[i]
		if r.Kind != explorer.Dir || r.Placeholder {
			continue
		}
		out = append(out, explorer.Target{
			Kind: explorer.TargetDir,
			Path: st.Explorer.Path(r.Node),
			Area: explorer.Rect{X: l.Sidebar.X, Y: l.Sidebar.Y + y, W: l.Sidebar.W, H: 1},
			Z:    1,
		})
	}
	return out
}
