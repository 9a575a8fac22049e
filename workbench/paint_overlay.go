package workbench

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/store"
)

const (
	completionRows = 10
	paletteRows    = 12
	popupMaxWidth  = 72
)

// overlays draws popups over the finished frame. Modal dialogs go last so
// they are always on top.
func (p *painter) overlays(c *canvas, st *store.AppState, l screenLayout) {
	if x, y, ok := l.caret(st); ok {
		switch {
		case st.Completion.Visible && len(st.Completion.Items) > 0:
			p.completion(c, st, x, y)
		case st.UI.Signature != "":
			p.tooltip(c, st.UI.Signature, x, y, true)
		case st.UI.Hover != "":
			p.tooltip(c, st.UI.Hover, x, y, false)
		}
	}
	if m := st.UI.Menu; m != nil {
		p.menu(c, m)
	}
	switch {
	case st.UI.Confirm != nil:
		p.confirm(c, st.UI.Confirm)
	case st.UI.Palette != nil:
		p.palette(c, st.UI.Palette)
	case st.UI.Input != nil:
		p.input(c, st.UI.Input)
	}
}

// caret returns the screen cell of the primary cursor of the active pane.
func (l screenLayout) caret(st *store.AppState) (int, int, bool) {
	if st.Layout.Active >= len(l.Panes) {
		return 0, 0, false
	}
	pl := l.Panes[st.Layout.Active]
	t := st.Layout.ActiveTab()
	if t == nil {
		return 0, 0, false
	}
	cur := t.Buffer.Cursor()
	for k, row := range pl.Lines {
		if row == cur.Row {
			x := pl.Text.X + displayCol(t.Buffer.Line(row), cur.Col, tabSize(st)) - pl.HScroll
			return x, pl.Text.Y + k, true
		}
	}
	return 0, 0, false
}

// box frames lines in a rounded border w cells wide inside.
func (p *painter) box(title string, lines []string, w int) []string {
	b := p.style("border", "")
	fill := p.style("foreground", "statusbar")
	top := b.Render("╭" + strings.Repeat("─", w) + "╮")
	if title != "" {
		t := clip(" "+title+" ", 0, w-1)
		top = b.Render("╭─") + p.style("accent", "").Bold(true).Render(t) +
			b.Render(strings.Repeat("─", max(w-1-lipgloss.Width(t), 0))+"╮")
	}
	out := []string{top}
	for _, l := range lines {
		out = append(out, b.Render("│")+fit(l, w, fill)+b.Render("│"))
	}
	return append(out, b.Render("╰"+strings.Repeat("─", w)+"╯"))
}

func (c *canvas) draw(x, y int, block []string) {
	for i, row := range block {
		c.set(y+i, max(x, 0), row)
	}
}

// below places a block of h rows under row y, or above it when it does
// not fit.
func (c *canvas) below(y, h int) int {
	if y+1+h <= len(c.lines)-1 {
		return y + 1
	}
	return max(y-h, 0)
}

func (p *painter) completion(c *canvas, st *store.AppState, x, y int) {
	cs := &st.Completion
	first := max(0, min(cs.Selected-completionRows+1, len(cs.Items)-completionRows))
	first = max(first, 0)
	w := 20
	end := min(first+completionRows, len(cs.Items))
	for _, it := range cs.Items[first:end] {
		w = max(w, lipgloss.Width(it.Item.Label)+lipgloss.Width(it.Item.Detail)+3)
	}
	w = min(w, popupMaxWidth, c.w-2)
	var lines []string
	for i := first; i < end; i++ {
		it := cs.Items[i].Item
		bg := "statusbar"
		if i == cs.Selected {
			bg = "selection"
		}
		label := p.style("foreground", bg).Render(" " + it.Label)
		detail := p.style("muted", bg).Render(" " + it.Detail)
		lw := lipgloss.Width(label)
		row := fit(label, min(lw, w), p.style("", bg))
		if lw < w {
			row += fit(detail, w-lw, p.style("", bg))
		}
		lines = append(lines, row)
	}
	block := p.box("", lines, w)
	x = min(x-1, c.w-w-2)
	c.draw(x, c.below(y, len(block)), block)
}

// tooltip draws wrapped hover or signature text next to the caret.
func (p *painter) tooltip(c *canvas, text string, x, y int, above bool) {
	w := min(popupMaxWidth, c.w-4)
	if w < 8 {
		return
	}
	wrapped := strings.Split(strings.TrimRight(wordwrap.String(text, w), "\n"), "\n")
	if len(wrapped) > 12 {
		wrapped = append(wrapped[:11], "…")
	}
	inner := 0
	for _, l := range wrapped {
		inner = max(inner, lipgloss.Width(l))
	}
	inner = min(inner, w)
	lines := make([]string, len(wrapped))
	for i, l := range wrapped {
		lines[i] = p.style("foreground", "statusbar").Render(l)
	}
	block := p.box("", lines, inner)
	x = min(x, c.w-inner-2)
	ty := c.below(y, len(block))
	if above && y-len(block) >= 0 {
		ty = y - len(block)
	}
	c.draw(x, ty, block)
}

// menuRect is the screen area of a context menu including its border.
func menuRect(m *store.ContextMenu, cw, ch int) explorer.Rect {
	w := 12
	for _, it := range m.Items {
		w = max(w, lipgloss.Width(it.Label)+2)
	}
	h := len(m.Items) + 2
	x := max(min(m.X, cw-w-2), 0)
	y := max(min(m.Y, ch-1-h), 0)
	return explorer.Rect{X: x, Y: y, W: w + 2, H: h}
}

func (p *painter) menu(c *canvas, m *store.ContextMenu) {
	r := menuRect(m, c.w, len(c.lines))
	w := r.W - 2
	lines := make([]string, len(m.Items))
	for i, it := range m.Items {
		bg := "statusbar"
		if i == m.Selected {
			bg = "selection"
		}
		lines[i] = fit(p.style("foreground", bg).Render(" "+it.Label), w, p.style("", bg))
	}
	c.draw(r.X, r.Y, p.box("", lines, w))
}

// dialogWidth is the inner width of centred dialogs.
func dialogWidth(cw int) int { return max(min(60, cw-6), 10) }

func (c *canvas) centre(block []string) {
	w := 0
	for _, l := range block {
		w = max(w, lipgloss.Width(l))
	}
	c.draw((c.w-w)/2, max(len(c.lines)/4, 1), block)
}

func (p *painter) input(c *canvas, d *store.InputDialog) {
	w := dialogWidth(c.w)
	lines := []string{" " + p.field(&d.Field, true, w-2)}
	if d.Err != "" {
		lines = append(lines, p.style("error", "statusbar").Render(" "+d.Err))
	}
	c.centre(p.box(d.Title, lines, w))
}

func (p *painter) confirm(c *canvas, d *store.ConfirmDialog) {
	w := dialogWidth(c.w)
	var lines []string
	for _, l := range strings.Split(wordwrap.String(d.Message, w-2), "\n") {
		lines = append(lines, p.style("foreground", "statusbar").Render(" "+l))
	}
	keys := p.style("accent", "statusbar").Render(" [y]") + p.style("foreground", "statusbar").Render(" Yes  ") +
		p.style("accent", "statusbar").Render("[n]") + p.style("foreground", "statusbar").Render(" No")
	lines = append(lines, "", keys)
	c.centre(p.box("Confirm", lines, w))
}

func (p *painter) palette(c *canvas, pal *store.Palette) {
	w := dialogWidth(c.w)
	lines := []string{" " + p.field(&pal.Query, true, w-2)}
	rows := min(paletteRows, max(len(c.lines)/2, 3))
	first := max(0, min(pal.Scroll, len(pal.Matches)-rows))
	if pal.Selected < first {
		first = pal.Selected
	}
	if pal.Selected >= first+rows {
		first = pal.Selected - rows + 1
	}
	for i := first; i < len(pal.Matches) && i < first+rows; i++ {
		e := pal.Matches[i]
		bg := "statusbar"
		if i == pal.Selected {
			bg = "selection"
		}
		label := e.Label
		if e.Category != "" {
			label = e.Category + ": " + label
		}
		keys := p.style("muted", bg).Render(e.Keys + " ")
		kw := lipgloss.Width(keys)
		lines = append(lines, fit(p.style("foreground", bg).Render(" "+label), max(w-kw, 0), p.style("", bg))+keys)
	}
	noun := "commands"
	title := "Commands"
	if pal.Files {
		noun, title = "files", "Files"
	}
	switch {
	case pal.Loading:
		lines = append(lines, p.style("muted", "statusbar").Render(" Listing files…"))
	case len(pal.Matches) == 0:
		lines = append(lines, p.style("muted", "statusbar").Render(" No matching "+noun))
	}
	if n := len(pal.Matches); n > rows {
		title = fmt.Sprintf("%s (%s)", title, humanize.Comma(int64(n)))
		if pal.Truncated {
			title += "+"
		}
	}
	c.centre(p.box(title, lines, w))
}
