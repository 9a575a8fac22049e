package search

import (
	"path/filepath"

	"github.com/odvcencio/zcode/editor"
)

// ItemKind distinguishes the rows of the flattened result list.
type ItemKind int

const (
	ItemFileHeader ItemKind = iota
	ItemMatchLine
)

// Item is one visible result row. Match is -1 for file headers.
type Item struct {
	Kind  ItemKind
	File  int
	Match int
}

// FileResult is the accumulated hits of one file.
type FileResult struct {
	Path     string
	Matches  []Match
	Expanded bool
}

// Viewport is a scrolled window over Items with its own selection.
type Viewport struct {
	Scroll   int
	Height   int
	Selected int
}

func (v *Viewport) clamp(n int) {
	if n == 0 {
		v.Selected, v.Scroll = 0, 0
		return
	}
	v.Selected = max(0, min(v.Selected, n-1))
	if v.Height > 0 {
		if v.Selected < v.Scroll {
			v.Scroll = v.Selected
		}
		if v.Selected >= v.Scroll+v.Height {
			v.Scroll = v.Selected - v.Height + 1
		}
		v.Scroll = max(0, min(v.Scroll, n-v.Height))
	}
	v.Scroll = max(v.Scroll, 0)
}

// State is the global search panel: query, toggles, streamed results and
// the two viewports that show them.
type State struct {
	Query         editor.Field
	CaseSensitive bool
	Regex         bool

	Root     string
	ActiveID uint64
	Running  bool
	Err      string

	Files []FileResult
	Items []Item

	FilesSearched    int
	FilesWithMatches int
	TotalFiles       int
	TotalMatches     int

	Sidebar Viewport
	Panel   Viewport
}

// Begin resets the results for a new search id.
func (s *State) Begin(id uint64, root string) {
	s.ActiveID = id
	s.Root = root
	s.Running = true
	s.Err = ""
	s.Files = nil
	s.Items = nil
	s.FilesSearched, s.FilesWithMatches, s.TotalFiles, s.TotalMatches = 0, 0, 0, 0
	s.Sidebar.Selected, s.Sidebar.Scroll = 0, 0
	s.Panel.Selected, s.Panel.Scroll = 0, 0
}

// Apply folds msg into the state. Messages from any search other than the
// active one are ignored and Apply reports false.
func (s *State) Apply(msg Message) bool {
	if msg.SearchID != s.ActiveID || s.ActiveID == 0 {
		return false
	}
	switch msg.Kind {
	case MsgProgress:
		s.FilesSearched = msg.FilesSearched
		s.FilesWithMatches = msg.FilesWithMatches
	case MsgFileMatches:
		s.Files = append(s.Files, FileResult{Path: msg.File.Path, Matches: msg.File.Matches, Expanded: true})
		s.FilesWithMatches = len(s.Files)
		s.TotalMatches += len(msg.File.Matches)
		s.rebuild()
	case MsgComplete:
		s.Running = false
		s.FilesSearched = msg.FilesSearched
		s.TotalFiles = msg.TotalFiles
		s.TotalMatches = msg.TotalMatches
	case MsgCancelled:
		s.Running = false
	case MsgError:
		s.Running = false
		s.Err = msg.Err
	}
	return true
}

// Cancel marks the active search as abandoned; later messages for it are
// dropped.
func (s *State) Cancel() {
	s.ActiveID = 0
	s.Running = false
}

func (s *State) rebuild() {
	s.Items = s.Items[:0]
	for fi, f := range s.Files {
		s.Items = append(s.Items, Item{Kind: ItemFileHeader, File: fi, Match: -1})
		if !f.Expanded {
			continue
		}
		for mi := range f.Matches {
			s.Items = append(s.Items, Item{Kind: ItemMatchLine, File: fi, Match: mi})
		}
	}
	s.Sidebar.clamp(len(s.Items))
	s.Panel.clamp(len(s.Items))
}

// ToggleFile flips the expansion of file fi.
func (s *State) ToggleFile(fi int) {
	if fi < 0 || fi >= len(s.Files) {
		return
	}
	s.Files[fi].Expanded = !s.Files[fi].Expanded
	s.rebuild()
}

// SetExpandedAll expands or collapses every file.
func (s *State) SetExpandedAll(expanded bool) {
	for i := range s.Files {
		s.Files[i].Expanded = expanded
	}
	s.rebuild()
}

// Move shifts the selection of v by delta rows.
func (s *State) Move(v *Viewport, delta int) {
	v.Selected += delta
	v.clamp(len(s.Items))
}

// SetHeight resizes v.
func (s *State) SetHeight(v *Viewport, h int) {
	v.Height = max(h, 0)
	v.clamp(len(s.Items))
}

// Scroll moves v's window without changing the selection beyond keeping it
// inside the window.
func (s *State) Scroll(v *Viewport, delta int) {
	n := len(s.Items)
	v.Scroll = max(0, min(v.Scroll+delta, n-max(v.Height, 1)))
	if v.Height > 0 {
		v.Selected = max(v.Scroll, min(v.Selected, v.Scroll+v.Height-1))
	}
	v.clamp(n)
}

// ItemAt returns the item at row or false.
func (s *State) ItemAt(row int) (Item, bool) {
	if row < 0 || row >= len(s.Items) {
		return Item{}, false
	}
	return s.Items[row], true
}

// Target resolves the selected row of v to a file and, for match rows, the
// match. ok is false when nothing is selected.
func (s *State) Target(v Viewport) (path string, m Match, isMatch bool, ok bool) {
	it, ok := s.ItemAt(v.Selected)
	if !ok {
		return "", Match{}, false, false
	}
	f := s.Files[it.File]
	if it.Kind == ItemFileHeader {
		return f.Path, Match{}, false, true
	}
	return f.Path, f.Matches[it.Match], true, true
}

// DisplayPath returns path relative to the searched root when possible.
func (s *State) DisplayPath(path string) string {
	if s.Root == "" {
		return path
	}
	if rel, err := filepath.Rel(s.Root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
