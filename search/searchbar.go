package search

import (
	"fmt"
	"sort"

	"github.com/odvcencio/zcode/editor"
)

// BarMode selects whether the replace row is shown.
type BarMode int

const (
	ModeSearch BarMode = iota
	ModeReplace
)

// BarField identifies the focused input of the bar.
type BarField int

const (
	FieldFind BarField = iota
	FieldReplace
)

// Bar is the in-file search bar of a pane.
type Bar struct {
	Visible bool
	Mode    BarMode
	Focus   BarField
	Find    editor.Field
	Replace editor.Field

	CaseSensitive bool
	Regex         bool

	SearchID uint64
	Pending  bool
	Matches  []TextMatch
	Current  int
	Err      string
}

// Open shows the bar in mode with the find field focused. A non-empty seed
// replaces the query.
func (b *Bar) Open(mode BarMode, seed string) {
	b.Visible = true
	b.Mode = mode
	b.Focus = FieldFind
	if seed != "" {
		b.Find.SetText(seed)
		b.Find.End()
	}
}

// Close hides the bar and drops its results.
func (b *Bar) Close() {
	b.Visible = false
	b.Focus = FieldFind
	b.Pending = false
	b.Matches = nil
	b.Current = 0
	b.Err = ""
}

// ToggleField moves focus between find and replace. In search mode the
// find field keeps focus.
func (b *Bar) ToggleField() {
	if b.Mode != ModeReplace {
		b.Focus = FieldFind
		return
	}
	if b.Focus == FieldFind {
		b.Focus = FieldReplace
	} else {
		b.Focus = FieldFind
	}
}

// Active returns the focused field.
func (b *Bar) Active() *editor.Field {
	if b.Focus == FieldReplace {
		return &b.Replace
	}
	return &b.Find
}

// Begin resets the results for a new search id.
func (b *Bar) Begin(id uint64) {
	b.SearchID = id
	b.Pending = true
	b.Matches = nil
	b.Current = 0
	b.Err = ""
}

// Apply folds msg into the bar. Messages for other ids are ignored and
// Apply reports false.
func (b *Bar) Apply(msg EditorMessage) bool {
	if msg.SearchID != b.SearchID || b.SearchID == 0 {
		return false
	}
	switch msg.Kind {
	case EditorBatch:
		b.Matches = append(b.Matches, msg.Matches...)
	case EditorComplete, EditorCancelled:
		b.Pending = false
	case EditorError:
		b.Pending = false
		b.Matches = nil
		b.Err = msg.Err
	}
	return true
}

// SelectNearest makes the first match at or after off current, wrapping to
// the first match.
func (b *Bar) SelectNearest(off int) {
	i := sort.Search(len(b.Matches), func(i int) bool { return b.Matches[i].Start >= off })
	if i == len(b.Matches) {
		i = 0
	}
	b.Current = i
}

// Next advances the current match by delta, wrapping around.
func (b *Bar) Next(delta int) (TextMatch, bool) {
	n := len(b.Matches)
	if n == 0 {
		return TextMatch{}, false
	}
	b.Current = ((b.Current+delta)%n + n) % n
	return b.Matches[b.Current], true
}

// CurrentMatch returns the current match.
func (b *Bar) CurrentMatch() (TextMatch, bool) {
	if b.Current < 0 || b.Current >= len(b.Matches) {
		return TextMatch{}, false
	}
	return b.Matches[b.Current], true
}

// Status is the text shown at the right of the find field.
func (b *Bar) Status() string {
	switch {
	case b.Err != "":
		return b.Err
	case b.Find.Text == "":
		return ""
	case len(b.Matches) == 0 && b.Pending:
		return "searching"
	case len(b.Matches) == 0:
		return "No results"
	}
	return fmt.Sprintf("%d/%d", b.Current+1, len(b.Matches))
}

// ReplaceEdits builds one edit per match substituting the replace field.
// text is the buffer contents the matches were computed against.
func (b *Bar) ReplaceEdits(text editor.Rope, matches []TextMatch) ([]editor.Edit, error) {
	edits := make([]editor.Edit, 0, len(matches))
	for _, m := range matches {
		repl, err := Replacement(text.Slice(m.Start, m.End), b.Find.Text, b.Replace.Text, b.CaseSensitive, b.Regex)
		if err != nil {
			return nil, err
		}
		edits = append(edits, editor.Edit{Start: m.Start, End: m.End, Inserted: repl})
	}
	return edits, nil
}
