package workbench

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/keymap"
	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/search"
	"github.com/odvcencio/zcode/store"
	"github.com/odvcencio/zcode/syntax"
)

// cellStyle is everything that decides how one grapheme is drawn.
type cellStyle struct {
	kind       syntax.TokenKind
	hint       bool
	selected   bool
	match      bool
	current    bool
	caret      bool
	cursorLine bool
}

func (p *painter) cellStyle(cs cellStyle) lipgloss.Style {
	fg := cs.kind.String()
	if cs.kind == syntax.KindNone {
		fg = "foreground"
	}
	if cs.hint {
		fg = "inlayHint"
	}
	bg := ""
	switch {
	case cs.current:
		bg = "accent"
	case cs.selected:
		bg = "selection"
	case cs.match:
		bg = "match"
	case cs.cursorLine:
		bg = "cursorline"
	}
	s := p.style(fg, bg)
	if cs.caret {
		s = s.Reverse(true)
	}
	if cs.hint {
		s = s.Italic(true)
	}
	return s
}

// pane draws tab bar, search bar, gutter and text of pane i.
func (p *painter) pane(c *canvas, st *store.AppState, i int, pl paneLayout) {
	pane := st.Layout.Pane(i)
	focused := i == st.Layout.Active && st.UI.Focus == store.FocusEditor
	c.put(pl.TabBar, []string{p.renderTabBar(tabLabels(pane), focused, pl.TabBar.W)})
	if pl.Bar.H > 0 {
		c.put(pl.Bar, p.searchBar(&pane.Bar, focused && pane.BarFocused, pl.Bar.W))
	}
	t := pane.ActiveTab()
	if t == nil {
		c.put(pl.Text, p.welcome(st, pl.Text))
		return
	}
	diags := diagnosticRows(st.Diagnostics[t.Path])
	folds := make(map[int]bool)
	if t.Folds != nil {
		for _, r := range t.Folds.Regions() {
			folds[r.StartLine] = r.Folded
		}
	}
	var matches []search.TextMatch
	current := -1
	if pane.Bar.Visible {
		matches = pane.Bar.Matches
		current = pane.Bar.Current
	}
	cur := t.Buffer.Cursor()
	gutter := make([]string, len(pl.Lines))
	text := make([]string, len(pl.Lines))
	for k, row := range pl.Lines {
		gutter[k] = p.gutterCell(row, pl.Gutter.W, row == cur.Row, diags[row], folds)
		text[k] = clip(p.line(st, t, row, row == cur.Row, matches, current), pl.HScroll, pl.Text.W)
		if row == cur.Row {
			text[k] = fit(text[k], pl.Text.W, p.style("", "cursorline"))
		}
	}
	c.put(pl.Gutter, gutter)
	c.put(pl.Text, text)
}

// diagnosticRows maps each row to the most severe diagnostic on it.
func diagnosticRows(diags []lsp.Diagnostic) map[int]int {
	out := make(map[int]int, len(diags))
	for _, d := range diags {
		sev := d.Severity
		if sev == 0 {
			sev = lsp.SeverityError
		}
		if prev, ok := out[d.Range.Start.Line]; !ok || sev < prev {
			out[d.Range.Start.Line] = sev
		}
	}
	return out
}

var severitySlots = map[int]string{
	lsp.SeverityError:       "error",
	lsp.SeverityWarning:     "warning",
	lsp.SeverityInformation: "info",
	lsp.SeverityHint:        "hint",
}

func (p *painter) gutterCell(row, w int, current bool, severity int, folds map[int]bool) string {
	if w == 0 {
		return ""
	}
	marker := p.style("gutter", "").Render(" ")
	switch folded, ok := folds[row]; {
	case severity > 0:
		marker = p.style(severitySlots[severity], "").Render("●")
	case ok && folded:
		marker = p.style("accent", "").Render("▸")
	case ok:
		marker = p.style("gutter", "").Render("▾")
	}
	num := p.style("gutter", "")
	if current {
		num = p.style("foreground", "")
	}
	return marker + num.Render(fmt.Sprintf("%*d ", w-2, row+1))
}

// line renders one buffer row in full; the caller clips it horizontally.
func (p *painter) line(st *store.AppState, t *store.Tab, row int, cursorRow bool, matches []search.TextMatch, current int) string {
	b := t.Buffer
	text := b.Line(row)
	start := b.Rope().LineStart(row)
	end := start + len([]rune(text))
	cursors := b.Cursors()
	spans := t.HighlightsAt(row)
	hints := t.HintsAt(row)
	sort.Slice(hints, func(i, j int) bool { return hints[i].Position.Character < hints[j].Position.Character })
	enc := t.HintsEnc
	if enc == "" {
		enc = lsp.UTF16
	}

	// Matches overlapping this row.
	mi := sort.Search(len(matches), func(i int) bool { return matches[i].End > start })

	var sb strings.Builder
	var run strings.Builder
	var runStyle cellStyle
	flush := func() {
		if run.Len() > 0 {
			sb.WriteString(p.cellStyle(runStyle).Render(run.String()))
			run.Reset()
		}
	}
	emit := func(cs cellStyle, s string) {
		if cs != runStyle {
			flush()
			runStyle = cs
		}
		run.WriteString(s)
	}
	si, hi := 0, 0
	cells := splitCells(text, tabSize(st))
	for _, cl := range cells {
		for hi < len(hints) && enc.CharCol(text, hints[hi].Position.Character) <= cl.char {
			emit(cellStyle{hint: true, cursorLine: cursorRow}, hintText(hints[hi]))
			hi++
		}
		for si < len(spans) && spans[si].EndCol <= cl.byte {
			si++
		}
		cs := cellStyle{cursorLine: cursorRow}
		if si < len(spans) && spans[si].StartCol <= cl.byte {
			cs.kind = spans[si].Kind
		}
		off := start + cl.char
		for _, cur := range cursors {
			if s, e := cur.Range(); off >= s && off < e {
				cs.selected = true
			}
			if cur.Pos == off {
				cs.caret = true
			}
		}
		for j := mi; j < len(matches) && matches[j].Start <= off; j++ {
			if off < matches[j].End {
				cs.match = true
				cs.current = j == current
			}
		}
		g := cl.g
		if g == "\t" {
			g = strings.Repeat(" ", cl.w)
		}
		emit(cs, g)
	}
	for ; hi < len(hints); hi++ {
		emit(cellStyle{hint: true, cursorLine: cursorRow}, hintText(hints[hi]))
	}
	for _, cur := range cursors {
		if cur.Pos == end {
			emit(cellStyle{caret: true, cursorLine: cursorRow}, " ")
			break
		}
	}
	flush()
	return sb.String()
}

func hintText(h lsp.InlayHint) string {
	s := h.Text()
	if h.PaddingLeft {
		s = " " + s
	}
	if h.PaddingRight {
		s += " "
	}
	return s
}

// searchBar draws the two rows of a pane's find/replace bar.
func (p *painter) searchBar(bar *search.Bar, focused bool, w int) []string {
	label := p.style("muted", "statusbar")
	toggle := func(on bool, s string) string {
		if on {
			return p.style("accent", "statusbar").Bold(true).Render(s)
		}
		return label.Render(s)
	}
	status := bar.Status()
	if bar.Err != "" {
		status = p.style("error", "statusbar").Render(bar.Err)
	} else {
		status = label.Render(status)
	}
	find := label.Render(" Find    ") + p.field(&bar.Find, focused && bar.Focus == search.FieldFind, w/2) + " " +
		toggle(bar.CaseSensitive, "Aa") + " " + toggle(bar.Regex, ".*") + "  " + status
	rows := []string{fit(find, w, label)}
	if bar.Mode == search.ModeReplace {
		repl := label.Render(" Replace ") + p.field(&bar.Replace, focused && bar.Focus == search.FieldReplace, w/2)
		rows = append(rows, fit(repl, w, label))
	} else {
		rows = append(rows, fit("", w, label))
	}
	return rows
}

// field draws a one-line input w cells wide with its caret when focused.
func (p *painter) field(f *editor.Field, focused bool, w int) string {
	w = max(w, 4)
	base := p.style("foreground", "cursorline")
	text := f.Text
	cursorX := f.CursorWidth()
	shift := max(cursorX-w+1, 0)
	var out string
	if focused {
		gs := graphemes(text)
		pre := strings.Join(gs[:min(f.Cursor, len(gs))], "")
		at := " "
		post := ""
		if f.Cursor < len(gs) {
			at = gs[f.Cursor]
			post = strings.Join(gs[f.Cursor+1:], "")
		}
		out = base.Render(pre) + base.Reverse(true).Render(at) + base.Render(post)
	} else {
		out = base.Render(text)
	}
	return fit(clip(out, shift, w), w, base)
}

var welcomeCommands = []struct {
	label string
	cmd   commands.Command
}{
	{"Quick Open", commands.QuickOpen},
	{"New File", commands.NewFile},
	{"Command Palette", commands.CommandPalette},
	{"Search in Files", commands.ShowSearch},
	{"Toggle Terminal", commands.ShowTerminal},
	{"Quit", commands.Quit},
}

// welcome fills an empty pane with the keys of common commands.
func (p *painter) welcome(st *store.AppState, r explorer.Rect) []string {
	muted := p.style("muted", "")
	key := p.style("accent", "")
	rows := make([]string, r.H)
	top := max((r.H-len(welcomeCommands)-2)/2, 0)
	if top < r.H {
		rows[top] = center(p.style("foreground", "").Bold(true).Render("zcode"), r.W)
	}
	for i, wc := range welcomeCommands {
		y := top + 2 + i
		if y >= r.H {
			break
		}
		keys := strings.Join(st.Keymap.KeysFor(keymap.Global, wc.cmd), ", ")
		if keys == "" {
			keys = "palette"
		}
		rows[y] = center(muted.Render(fmt.Sprintf("%-18s", wc.label))+key.Render(fmt.Sprintf("%12s", keys)), r.W)
	}
	return rows
}

func center(s string, w int) string {
	pad := max((w-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}
