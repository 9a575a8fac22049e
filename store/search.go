package store

import (
	"strings"

	"github.com/odvcencio/zcode/commands"
	"github.com/odvcencio/zcode/keymap"
	"github.com/odvcencio/zcode/search"
)

// runBarSearch restarts the in-file search of pane pi against the text its
// active tab has now. An empty query clears the results.
func (s *Store) runBarSearch(pi int) {
	p := s.st.Layout.Pane(pi)
	if p == nil || !p.Bar.Visible {
		return
	}
	t := p.ActiveTab()
	if t == nil || p.Bar.Find.Text == "" {
		p.Bar.SearchID = 0
		p.Bar.Pending = false
		p.Bar.Matches = nil
		p.Bar.Current = 0
		p.Bar.Err = ""
		s.emit(CancelEditorSearch{Pane: pi})
		return
	}
	s.st.nextSearch++
	id := s.st.nextSearch
	p.Bar.Begin(id)
	p.barTab, p.barVersion = t.ID, t.Version
	s.emit(StartEditorSearch{Pane: pi, Request: search.EditorRequest{
		ID:            id,
		Pane:          pi,
		Text:          t.Buffer.Rope(),
		Pattern:       p.Bar.Find.Text,
		CaseSensitive: p.Bar.CaseSensitive,
		Regex:         p.Bar.Regex,
	}})
}

// editorSearchMsg folds in-file search results into their pane. The first
// batch and completion pick the match nearest the cursor.
func (s *Store) editorSearchMsg(msg search.EditorMessage) bool {
	p := s.st.Layout.Pane(msg.Pane)
	if p == nil || !p.Bar.Apply(msg) {
		return false
	}
	first := msg.Kind == search.EditorBatch && len(p.Bar.Matches) == len(msg.Matches)
	if t := p.ActiveTab(); t != nil && (first || msg.Kind == search.EditorComplete) {
		start, _ := t.Buffer.Primary().Range()
		p.Bar.SelectNearest(start)
	}
	return true
}

// barStale reports whether the bar's matches were computed for other text
// than t has now.
func barStale(p *Pane, t *Tab) bool {
	return p.barTab != t.ID || p.barVersion != t.Version || p.Bar.Pending
}

// barCommand runs the in-file find and replace commands.
func (s *Store) barCommand(cmd commands.Command, now int64) bool {
	l := &s.st.Layout
	pi := l.Active
	p := l.ActivePane()
	t := p.ActiveTab()
	switch cmd {
	case commands.Find, commands.Replace:
		if t == nil {
			return false
		}
		mode := search.ModeSearch
		if cmd == commands.Replace {
			mode = search.ModeReplace
		}
		p.Bar.Open(mode, selectionSeed(t))
		p.BarFocused = true
		s.st.UI.Focus = FocusEditor
		s.relayout()
		s.runBarSearch(pi)
		return true
	case commands.SearchBarToggleField:
		p.Bar.ToggleField()
		return true
	case commands.SearchBarClose:
		if !p.Bar.Visible {
			return false
		}
		p.Bar.Close()
		p.BarFocused = false
		s.emit(CancelEditorSearch{Pane: pi})
		s.relayout()
		return true
	}
	if t == nil || !p.Bar.Visible {
		return false
	}
	switch cmd {
	case commands.FindNext, commands.FindPrev:
		cur, ok := p.Bar.CurrentMatch()
		if !ok {
			return false
		}
		start, end := t.Buffer.Primary().Range()
		if start == cur.Start && end == cur.End {
			delta := 1
			if cmd == commands.FindPrev {
				delta = -1
			}
			cur, _ = p.Bar.Next(delta)
		}
		t.Buffer.ClearSecondary()
		t.Buffer.SetSelection(cur.Start, cur.End)
		s.reveal(t)
		return true
	case commands.ReplaceCurrent, commands.ReplaceAll:
		if barStale(p, t) {
			s.runBarSearch(pi)
			s.message("search results are out of date, try again")
			return true
		}
		matches := p.Bar.Matches
		if cmd == commands.ReplaceCurrent {
			cur, ok := p.Bar.CurrentMatch()
			if !ok {
				return false
			}
			matches = []search.TextMatch{cur}
		}
		if len(matches) == 0 {
			return false
		}
		edits, err := p.Bar.ReplaceEdits(t.Buffer.Rope(), matches)
		if err != nil {
			p.Bar.Err = err.Error()
			return true
		}
		t.Buffer.ClearSecondary()
		if cmd == commands.ReplaceCurrent {
			t.Buffer.SetCursorOffset(matches[0].End)
		}
		s.edited(t, t.Buffer.ApplyEdits(edits, now), now)
		if cmd == commands.ReplaceAll {
			s.message("replaced %d occurrences", len(edits))
		}
		return true
	}
	return false
}

// searchViewport is the result list the search commands act on.
func (s *Store) searchViewport() *search.Viewport {
	if s.st.UI.Focus == FocusBottomPanel && s.st.UI.Bottom == BottomSearchResults {
		return &s.st.Search.Panel
	}
	return &s.st.Search.Sidebar
}

// searchCommand runs workspace search commands. The toggles act on the
// in-file bar when it has focus.
func (s *Store) searchCommand(cmd commands.Command) bool {
	st := &s.st.Search
	switch cmd {
	case commands.SearchToggleCase, commands.SearchToggleRegex:
		if s.st.KeyContext() == keymap.EditorSearchBar {
			p := s.st.Layout.ActivePane()
			if cmd == commands.SearchToggleCase {
				p.Bar.CaseSensitive = !p.Bar.CaseSensitive
			} else {
				p.Bar.Regex = !p.Bar.Regex
			}
			s.runBarSearch(s.st.Layout.Active)
			return true
		}
		if cmd == commands.SearchToggleCase {
			st.CaseSensitive = !st.CaseSensitive
		} else {
			st.Regex = !st.Regex
		}
		if strings.TrimSpace(st.Query.Text) != "" {
			s.startSearch()
		}
		return true
	case commands.SearchRun:
		return s.startSearch()
	case commands.SearchCancel:
		if st.Running {
			s.emit(CancelGlobalSearch{ID: st.ActiveID})
			st.Cancel()
			s.message("search cancelled")
			return true
		}
		s.st.UI.Focus = FocusEditor
		return true
	}

	v := s.searchViewport()
	sidebar := v == &st.Sidebar
	switch cmd {
	case commands.SearchNextResult:
		if len(st.Items) == 0 {
			return false
		}
		if sidebar && !s.st.UI.SearchResultsFocused {
			s.st.UI.SearchResultsFocused = true
			return true
		}
		st.Move(v, 1)
	case commands.SearchPrevResult:
		if sidebar && s.st.UI.SearchResultsFocused && v.Selected == 0 {
			s.st.UI.SearchResultsFocused = false
			return true
		}
		st.Move(v, -1)
	case commands.SearchOpenResult:
		return s.openSearchTarget(v)
	case commands.SearchToggleExpand:
		it, ok := st.ItemAt(v.Selected)
		if !ok {
			return false
		}
		st.ToggleFile(it.File)
		if it.Kind == search.ItemMatchLine {
			for i, o := range st.Items {
				if o.Kind == search.ItemFileHeader && o.File == it.File {
					v.Selected = i
				}
			}
			st.Move(v, 0)
		}
	default:
		return false
	}
	return true
}

// startSearch cancels the running workspace search and starts one for the
// current query.
func (s *Store) startSearch() bool {
	st := &s.st.Search
	q := st.Query.Text
	if strings.TrimSpace(q) == "" {
		return false
	}
	if st.Running {
		s.emit(CancelGlobalSearch{ID: st.ActiveID})
	}
	s.st.nextSearch++
	id := s.st.nextSearch
	st.Begin(id, s.st.Root)
	s.emit(StartGlobalSearch{Request: search.Request{
		ID:            id,
		Root:          s.st.Root,
		Pattern:       q,
		CaseSensitive: st.CaseSensitive,
		Regex:         st.Regex,
	}})
	return true
}

// openSearchTarget opens the selected match, or toggles a file header.
func (s *Store) openSearchTarget(v *search.Viewport) bool {
	st := &s.st.Search
	path, m, isMatch, ok := st.Target(*v)
	if !ok {
		return false
	}
	if !isMatch {
		it, _ := st.ItemAt(v.Selected)
		st.ToggleFile(it.File)
		return true
	}
	s.openPath(OpenPath{Path: path, Line: m.Line, Col: m.Col})
	return true
}

// searchClick selects a result row and acts on it.
func (s *Store) searchClick(a SearchClickRow) bool {
	st := &s.st.Search
	if _, ok := st.ItemAt(a.Row); !ok {
		return false
	}
	v := &st.Sidebar
	if a.Panel {
		v = &st.Panel
		s.st.UI.Focus = FocusBottomPanel
	} else {
		s.st.UI.Focus = FocusExplorer
		s.st.UI.Sidebar = SidebarSearch
		s.st.UI.SearchResultsFocused = true
	}
	v.Selected = a.Row
	st.Move(v, 0)
	return s.openSearchTarget(v)
}
