package store

import (
	"path/filepath"
	"strings"

	"github.com/odvcencio/zcode/completion"
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/lsp"
	"github.com/odvcencio/zcode/search"
	"github.com/odvcencio/zcode/syntax"
)

// MaxPanes is the number of editor panes a split can reach.
const MaxPanes = 2

// TabID identifies a tab for its whole life.
type TabID uint64

// Tab is one open document. A split shows the same Tab in both panes.
type Tab struct {
	ID     TabID
	Path   string
	Buffer *editor.TextBuffer
	// Version is the edit version: bumped on every mutation and sent to
	// language servers as the document version.
	Version uint64
	Dirty   bool
	Lang    string
	Indent  string

	Strategy completion.Strategy
	Doc      *syntax.Document
	Folds    *editor.FoldState

	Semantic        [][]syntax.Span
	SemanticVersion uint64
	Hints           []lsp.InlayHint
	HintsVersion    uint64
	HintsEnc        lsp.Encoding
	FoldVersion     uint64

	Scroll int
}

// Title is the name shown on the tab.
func (t *Tab) Title() string {
	if t.Path == "" {
		return "untitled"
	}
	return filepath.Base(t.Path)
}

// Untitled reports whether the tab has never been saved.
func (t *Tab) Untitled() bool { return t.Path == "" }

// HighlightsAt returns the spans of row, preferring semantic tokens that
// match the current version.
func (t *Tab) HighlightsAt(row int) []syntax.Span {
	if t.SemanticVersion == t.Version && row < len(t.Semantic) && len(t.Semantic[row]) > 0 {
		return t.Semantic[row]
	}
	if t.Doc == nil {
		return nil
	}
	return t.Doc.Highlights(row)
}

// HintsAt returns the inlay hints of row computed for the current version.
func (t *Tab) HintsAt(row int) []lsp.InlayHint {
	if t.HintsVersion != t.Version {
		return nil
	}
	var out []lsp.InlayHint
	for _, h := range t.Hints {
		if h.Position.Line == row {
			out = append(out, h)
		}
	}
	return out
}

// renamePath moves the tab to the path a rename of from to to gives it.
// Directory renames match by prefix.
func (t *Tab) renamePath(from, to string, isDir bool) bool {
	switch {
	case t.Path == from:
		t.Path = to
	case isDir && strings.HasPrefix(t.Path, from+string(filepath.Separator)):
		t.Path = to + t.Path[len(from):]
	default:
		return false
	}
	return true
}

// Pane is an ordered set of tabs with the active index, tracked the way
// the tab bar shows them. The search bar is shared by the pane's tabs.
type Pane struct {
	Tabs    []*Tab
	Active  int // -1 when the pane is empty
	Hovered int

	Bar        search.Bar
	BarFocused bool
	ViewHeight int

	// barTab and barVersion identify the text the bar matches were
	// computed against.
	barTab     TabID
	barVersion uint64
}

func newPane() *Pane { return &Pane{Active: -1, Hovered: -1, ViewHeight: 1} }

// Count returns the number of open tabs.
func (p *Pane) Count() int { return len(p.Tabs) }

// ActiveTab returns the active tab, or nil if the pane is empty.
func (p *Pane) ActiveTab() *Tab { return p.Tab(p.Active) }

// Tab returns the tab at index, or nil if out of range.
func (p *Pane) Tab(index int) *Tab {
	if index < 0 || index >= len(p.Tabs) {
		return nil
	}
	return p.Tabs[index]
}

// IndexOf returns the index of the tab showing path, or -1.
func (p *Pane) IndexOf(path string) int {
	for i, t := range p.Tabs {
		if path != "" && t.Path == path {
			return i
		}
	}
	return -1
}

// Add appends t and makes it active.
func (p *Pane) Add(t *Tab) int {
	p.Tabs = append(p.Tabs, t)
	p.Active = len(p.Tabs) - 1
	return p.Active
}

// SetActive switches tabs. Out of range indices are ignored.
func (p *Pane) SetActive(index int) {
	if index < 0 || index >= len(p.Tabs) {
		return
	}
	p.Active = index
}

// Cycle moves the active tab by delta, wrapping.
func (p *Pane) Cycle(delta int) {
	if n := len(p.Tabs); n > 0 {
		p.Active = ((p.Active+delta)%n + n) % n
	}
}

// Close removes the tab at index. The active index shifts down when a tab
// before it closes and is clamped when the active tab itself closes.
func (p *Pane) Close(index int) *Tab {
	if index < 0 || index >= len(p.Tabs) {
		return nil
	}
	t := p.Tabs[index]
	p.Tabs = append(p.Tabs[:index], p.Tabs[index+1:]...)
	switch {
	case len(p.Tabs) == 0:
		p.Active = -1
	case index < p.Active:
		p.Active--
	case index == p.Active && p.Active >= len(p.Tabs):
		p.Active = len(p.Tabs) - 1
	}
	if p.Hovered >= len(p.Tabs) {
		p.Hovered = -1
	}
	return t
}

// Layout is the editor area: one or two panes side by side.
type Layout struct {
	Panes  []*Pane
	Active int
	Split  float64
}

func newLayout() Layout {
	return Layout{Panes: []*Pane{newPane()}, Split: 0.5}
}

// ActivePane returns the focused pane.
func (l *Layout) ActivePane() *Pane { return l.Panes[l.Active] }

// Pane returns the pane at i, or nil.
func (l *Layout) Pane(i int) *Pane {
	if i < 0 || i >= len(l.Panes) {
		return nil
	}
	return l.Panes[i]
}

// ActiveTab returns the active tab of the active pane.
func (l *Layout) ActiveTab() *Tab { return l.ActivePane().ActiveTab() }

// Tabs returns every distinct open tab, in pane then tab order.
func (l *Layout) Tabs() []*Tab {
	seen := make(map[TabID]bool)
	var out []*Tab
	for _, p := range l.Panes {
		for _, t := range p.Tabs {
			if !seen[t.ID] {
				seen[t.ID] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// FindPath returns the first tab showing path.
func (l *Layout) FindPath(path string) *Tab {
	for _, p := range l.Panes {
		if i := p.IndexOf(path); i >= 0 {
			return p.Tabs[i]
		}
	}
	return nil
}

// refs counts the panes still showing t.
func (l *Layout) refs(t *Tab) int {
	n := 0
	for _, p := range l.Panes {
		for _, o := range p.Tabs {
			if o == t {
				n++
			}
		}
	}
	return n
}

// split duplicates the active tab into a new pane.
func (l *Layout) split() bool {
	if len(l.Panes) >= MaxPanes {
		return false
	}
	t := l.ActiveTab()
	p := newPane()
	p.ViewHeight = l.ActivePane().ViewHeight
	if t != nil {
		p.Add(t)
	}
	l.Panes = append(l.Panes, p)
	l.Active = len(l.Panes) - 1
	return true
}

// closePane removes pane i, keeping at least one, and returns its tabs.
func (l *Layout) closePane(i int) ([]*Tab, bool) {
	if len(l.Panes) <= 1 || i < 0 || i >= len(l.Panes) {
		return nil, false
	}
	tabs := l.Panes[i].Tabs
	l.Panes = append(l.Panes[:i], l.Panes[i+1:]...)
	if i < l.Active || l.Active >= len(l.Panes) {
		l.Active = max(l.Active-1, 0)
	}
	return tabs, true
}
