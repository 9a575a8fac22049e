package workbench

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/odvcencio/zcode/explorer"
	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/search"
	"github.com/odvcencio/zcode/store"
)

var gitSlots = map[explorer.GitStatus]string{
	explorer.GitModified:   "warning",
	explorer.GitAdded:      "hint",
	explorer.GitUntracked:  "hint",
	explorer.GitRenamed:    "info",
	explorer.GitDeleted:    "error",
	explorer.GitConflicted: "error",
	explorer.GitIgnored:    "muted",
}

// sidebar draws the explorer tree or the search view.
func (p *painter) sidebar(st *store.AppState, r explorer.Rect) []string {
	focused := st.UI.Focus == store.FocusExplorer && !st.UI.Blocked()
	if st.UI.Sidebar == store.SidebarSearch {
		return p.searchSidebar(st, r, focused)
	}
	rows := make([]string, 0, r.H)
	rows = append(rows, p.title("EXPLORER", r.W, focused))
	m := st.Explorer
	if m == nil {
		return rows
	}
	all := m.Rows()
	for i := m.Scroll(); i < len(all) && len(rows) < r.H; i++ {
		rows = append(rows, p.explorerRow(all[i], i == m.Selected(), focused, r.W))
	}
	return rows
}

func (p *painter) explorerRow(row explorer.Row, selected, focused bool, w int) string {
	bg := ""
	if selected {
		bg = "cursorline"
		if focused {
			bg = "selection"
		}
	}
	indent := strings.Repeat("  ", row.Depth)
	icon := "  "
	if row.Kind == explorer.Dir {
		icon = "▸ "
		if row.Expanded {
			icon = "▾ "
		}
	}
	name := row.Name
	fg := "foreground"
	switch {
	case row.Placeholder:
		fg = "muted"
	case row.Load == explorer.Loading:
		name += " …"
	}
	if slot, ok := gitSlots[row.Git]; ok {
		fg = slot
	}
	s := p.style(fg, bg)
	out := s.Render(indent + icon + name)
	if row.Git != explorer.GitClean {
		mark := " " + row.Git.String()
		out = fit(out, max(w-lipgloss.Width(mark), 0), s) + s.Render(mark)
	}
	return fit(out, w, s)
}

func (p *painter) title(s string, w int, focused bool) string {
	st := p.style("muted", "statusbar")
	if focused {
		st = p.style("accent", "statusbar").Bold(true)
	}
	return fit(st.Render(" "+s), w, p.style("", "statusbar"))
}

// searchSidebar draws the query, options, status and the result list.
func (p *painter) searchSidebar(st *store.AppState, r explorer.Rect, focused bool) []string {
	s := &st.Search
	inputFocused := focused && !st.UI.SearchResultsFocused
	rows := make([]string, 0, r.H)
	rows = append(rows, p.title("SEARCH", r.W, focused))
	rows = append(rows, " "+p.field(&s.Query, inputFocused, r.W-2))
	opt := func(on bool, label string) string {
		if on {
			return p.style("accent", "").Bold(true).Render(label)
		}
		return p.style("muted", "").Render(label)
	}
	rows = append(rows, " "+opt(s.CaseSensitive, "Aa")+" "+opt(s.Regex, ".*")+"  "+p.searchStatus(s))
	rows = append(rows, p.style("border", "").Render(strings.Repeat("─", r.W)))
	listFocused := focused && st.UI.SearchResultsFocused
	return append(rows, p.results(s, &s.Sidebar, r.W, r.H-searchHeaderRows, listFocused)...)
}

func (p *painter) searchStatus(s *search.State) string {
	switch {
	case s.Err != "":
		return p.style("error", "").Render(s.Err)
	case s.Running:
		return p.style("muted", "").Render(fmt.Sprintf("searching %s files…", humanize.Comma(int64(s.FilesSearched))))
	case s.ActiveID == 0 && len(s.Files) == 0:
		return ""
	}
	return p.style("muted", "").Render(fmt.Sprintf("%s results in %s files",
		humanize.Comma(int64(s.TotalMatches)), humanize.Comma(int64(s.FilesWithMatches))))
}

// results draws the visible window of a search result viewport.
func (p *painter) results(s *search.State, v *search.Viewport, w, h int, focused bool) []string {
	var rows []string
	for i := v.Scroll; i < len(s.Items) && len(rows) < h; i++ {
		it := s.Items[i]
		bg := ""
		if i == v.Selected {
			bg = "cursorline"
			if focused {
				bg = "selection"
			}
		}
		f := s.Files[it.File]
		var line string
		if it.Kind == search.ItemFileHeader {
			icon := "▸ "
			if f.Expanded {
				icon = "▾ "
			}
			line = p.style("foreground", bg).Bold(true).Render(icon+s.DisplayPath(f.Path)) +
				p.style("muted", bg).Render(fmt.Sprintf(" %d", len(f.Matches)))
		} else {
			m := f.Matches[it.Match]
			line = p.style("gutter", bg).Render(fmt.Sprintf("    %4d ", m.Line+1)) + p.preview(m, bg)
		}
		rows = append(rows, fit(line, w, p.style("", bg)))
	}
	return rows
}

// preview highlights the matched part of a result line.
func (p *painter) preview(m search.Match, bg string) string {
	rs := []rune(m.Preview)
	start := max(0, min(m.Col, len(rs)))
	end := max(start, min(m.Col+m.Len, len(rs)))
	lead := strings.TrimLeft(string(rs[:start]), " \t")
	return p.style("foreground", bg).Render(lead) +
		p.style("foreground", "match").Render(string(rs[start:end])) +
		p.style("foreground", bg).Render(string(rs[end:]))
}

// bottomPanel draws the tab header and the rows of the current tab.
func (p *painter) bottomPanel(st *store.AppState, r explorer.Rect) []string {
	focused := st.UI.Focus == store.FocusBottomPanel && !st.UI.Blocked()
	var hdr strings.Builder
	for _, t := range store.BottomTabs() {
		label := " " + t.String() + " "
		if n := bottomCount(st, t); n > 0 {
			label = fmt.Sprintf(" %s (%d) ", t, n)
		}
		s := p.style("muted", "statusbar")
		if t == st.UI.Bottom {
			s = p.style("foreground", "")
			if focused {
				s = s.Bold(true).Underline(true)
			}
		}
		hdr.WriteString(s.Render(label))
	}
	rows := []string{fit(hdr.String(), r.W, p.style("", "statusbar"))}
	h := r.H - 1
	if st.UI.Bottom == store.BottomSearchResults {
		return append(rows, p.results(&st.Search, &st.Search.Panel, r.W, h, focused)...)
	}
	if st.UI.Bottom == store.BottomTerminal {
		for _, l := range st.Terminal.Tail(h) {
			rows = append(rows, fit(p.style("foreground", "").Render(l), r.W, lipgloss.NewStyle()))
		}
		if !st.TerminalRunning && st.Terminal.Len() == 0 {
			rows = append(rows, p.style("muted", "").Render(" No terminal running."))
		}
		return rows
	}
	n := st.PanelLen()
	if n == 0 {
		return append(rows, p.style("muted", "").Render(" "+emptyPanelText(st.UI.Bottom)))
	}
	for i := st.UI.PanelScroll; i < n && len(rows) <= h; i++ {
		bg := ""
		if i == st.UI.PanelSelected {
			bg = "cursorline"
			if focused {
				bg = "selection"
			}
		}
		rows = append(rows, fit(p.panelRow(st, i, bg), r.W, p.style("", bg)))
	}
	return rows
}

func bottomCount(st *store.AppState, t store.BottomTab) int {
	switch t {
	case store.BottomProblems:
		return len(st.Problems)
	case store.BottomLocations:
		return len(st.Locations)
	case store.BottomCodeActions:
		return len(st.CodeActions)
	}
	return 0
}

func emptyPanelText(t store.BottomTab) string {
	switch t {
	case store.BottomProblems:
		return "No problems have been detected."
	case store.BottomLogs:
		return "No log output."
	case store.BottomSymbols:
		return "No symbols."
	case store.BottomCodeActions:
		return "No code actions available."
	}
	return "Nothing to show."
}

// panelRow draws row i of a list-like bottom tab.
func (p *painter) panelRow(st *store.AppState, i int, bg string) string {
	fg := p.style("foreground", bg)
	muted := p.style("muted", bg)
	switch st.UI.Bottom {
	case store.BottomProblems:
		l := st.Problems[i]
		sev := l.Severity
		if sev == 0 {
			sev = lsp.SeverityError
		}
		return p.style(severitySlots[sev], bg).Render(" ● ") + fg.Render(l.Text) +
			muted.Render(fmt.Sprintf("  %s:%d:%d", p.rel(st, l.Path), l.Line+1, l.Col+1))
	case store.BottomLocations:
		l := st.Locations[i]
		return muted.Render(fmt.Sprintf(" %s:%d:%d  ", p.rel(st, l.Path), l.Line+1, l.Col+1)) + fg.Render(strings.TrimSpace(l.Text))
	case store.BottomLogs:
		return fg.Render(" " + st.Logs.At(i))
	case store.BottomSymbols:
		sym := st.Symbols[i]
		return fg.Render(" "+strings.Repeat("  ", sym.Depth)+sym.Name) +
			muted.Render(fmt.Sprintf("  %s  %d", sym.Detail, sym.Location.Range.Start.Line+1))
	case store.BottomCodeActions:
		a := st.CodeActions[i]
		return fg.Render(" "+a.Title) + muted.Render("  "+a.Kind)
	}
	return ""
}

func (p *painter) rel(st *store.AppState, path string) string {
	if rel, err := filepath.Rel(st.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

// statusBar draws the bottom line: document info on the left, plugin
// items and the latest message on the right.
// Format: " {title}{dirty}  {lang}  Ln {row+1}, Col {col+1}"
func (p *painter) statusBar(st *store.AppState, w int) string {
	base := p.style("foreground", "statusbar")
	muted := p.style("muted", "statusbar")
	var left strings.Builder
	t := st.Layout.ActiveTab()
	if t == nil {
		left.WriteString(base.Render(" " + filepath.Base(st.Root)))
	} else {
		cur := t.Buffer.Cursor()
		left.WriteString(base.Render(" " + t.Title()))
		if t.Dirty {
			left.WriteString(p.style("warning", "statusbar").Render(" [modified]"))
		}
		left.WriteString(muted.Render("  " + strings.ToUpper(t.Lang)))
		left.WriteString(base.Render(fmt.Sprintf("  Ln %d, Col %d", cur.Row+1, cur.Col+1)))
		cursors := t.Buffer.Cursors()
		sel := 0
		for _, c := range cursors {
			s, e := c.Range()
			sel += e - s
		}
		switch {
		case len(cursors) > 1:
			left.WriteString(base.Render(fmt.Sprintf("  %d cursors", len(cursors))))
		case sel > 0:
			left.WriteString(base.Render(fmt.Sprintf("  Sel %s", humanize.Comma(int64(sel)))))
		}
		left.WriteString(p.diagnosticSummary(st.Diagnostics[t.Path]))
		if s := lspStatus(st, t); s != "" {
			left.WriteString(muted.Render("  " + s))
		}
	}
	var right []string
	for _, it := range st.StatusItems() {
		right = append(right, base.Render(it.Text))
	}
	if st.UI.Message != "" {
		right = append(right, p.style("accent", "statusbar").Render(st.UI.Message))
	}
	r := strings.Join(right, muted.Render("  ")) + base.Render(" ")
	lw := max(w-lipgloss.Width(r), 0)
	return fit(left.String(), lw, base) + clip(r, 0, w-lw)
}

func (p *painter) diagnosticSummary(diags []lsp.Diagnostic) string {
	var errs, warns int
	for _, d := range diags {
		switch d.Severity {
		case lsp.SeverityError, 0:
			errs++
		case lsp.SeverityWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return ""
	}
	return p.style("error", "statusbar").Render(fmt.Sprintf("  ✖ %d", errs)) +
		p.style("warning", "statusbar").Render(fmt.Sprintf(" ⚠ %d", warns))
}

// lspStatus names the state of the session serving t unless it is ready.
func lspStatus(st *store.AppState, t *store.Tab) string {
	srv, ok := st.Servers[t.Lang]
	if !ok || srv.Command == "" || st.LspDisabled {
		return ""
	}
	for _, s := range st.Lsp {
		if s.Server != srv.Command {
			continue
		}
		if s.Root != "" && !strings.HasPrefix(t.Path, s.Root) {
			continue
		}
		if s.State == lsp.StateReady {
			return ""
		}
		return filepath.Base(s.Server) + ": " + s.State.String()
	}
	return ""
}
