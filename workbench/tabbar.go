package workbench

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/store"
)

// tabInfo holds display data for a single tab.
type tabInfo struct {
	title  string
	dirty  bool
	active bool
}

func tabLabels(p *store.Pane) []tabInfo {
	if p == nil {
		return nil
	}
	out := make([]tabInfo, len(p.Tabs))
	for i, t := range p.Tabs {
		out[i] = tabInfo{title: t.Title(), dirty: t.Dirty, active: i == p.Active}
	}
	return out
}

// label is " title* " or " title ".
func (t tabInfo) label() string {
	l := " " + t.title
	if t.dirty {
		l += "*"
	}
	return l + " "
}

// tabAtX returns the tab index at column x of the bar, or -1. Tabs are
// separated by one column.
func tabAtX(tabs []tabInfo, x int) int {
	pos := 0
	for i, tab := range tabs {
		w := editor.DisplayWidth(tab.label())
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

// renderTabBar draws the tabs of one pane on a single row of width w.
func (p *painter) renderTabBar(tabs []tabInfo, focused bool, w int) string {
	normal := p.style("muted", "statusbar")
	active := p.style("foreground", "")
	if focused {
		active = active.Bold(true).Underline(true)
	}
	sep := p.style("border", "statusbar").Render("│")
	var sb strings.Builder
	for i, tab := range tabs {
		s := normal
		if tab.active {
			s = active
		}
		sb.WriteString(s.Render(tab.label()))
		if i < len(tabs)-1 {
			sb.WriteString(sep)
		}
	}
	return fit(sb.String(), w, normal)
}

// fit clips or pads s to exactly w cells, padding in fill.
func fit(s string, w int, fill lipgloss.Style) string {
	if w <= 0 {
		return ""
	}
	vw := lipgloss.Width(s)
	if vw > w {
		return clip(s, 0, w)
	}
	if vw < w {
		s += fill.Render(strings.Repeat(" ", w-vw))
	}
	return s
}
