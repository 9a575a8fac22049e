package completion

import (
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/lsp"
)

// Pending describes the request in flight.
type Pending struct {
	Path    string
	Version uint64
	Anchor  int
}

// State is the completion popup.
type State struct {
	Visible    bool
	Pending    *Pending
	Path       string
	Lang       string
	Anchor     int
	Prefix     string
	Incomplete bool
	Items      []Candidate
	Selected   int

	raw []lsp.CompletionItem
}

// Request records a request for path at version. anchor is the rune
// offset where the completed word starts.
func (s *State) Request(path string, version uint64, anchor int) {
	s.Pending = &Pending{Path: path, Version: version, Anchor: anchor}
}

// Apply installs a server response. Responses for another document, or
// older than the pending request, are ignored. It reports whether the
// popup changed.
func (s *State) Apply(path string, version uint64, items []lsp.CompletionItem, incomplete bool, prefix, lang string, r *Ranker, now int64) bool {
	p := s.Pending
	if p == nil || p.Path != path || version < p.Version {
		return false
	}
	s.Pending = nil
	s.Path, s.Lang, s.Anchor = path, lang, p.Anchor
	s.raw, s.Incomplete = items, incomplete
	s.Refilter(prefix, r, now)
	return true
}

// Refilter re-ranks the last response for a new prefix. The popup hides
// when nothing matches.
func (s *State) Refilter(prefix string, r *Ranker, now int64) {
	s.Prefix = prefix
	s.Items = Rank(s.raw, prefix, s.Lang, r, now)
	s.Selected = 0
	s.Visible = len(s.Items) > 0
}

// Move changes the selection by delta, wrapping at both ends.
func (s *State) Move(delta int) {
	n := len(s.Items)
	if n == 0 {
		return
	}
	s.Selected = ((s.Selected+delta)%n + n) % n
}

// Selection returns the highlighted candidate.
func (s *State) Selection() (Candidate, bool) {
	if !s.Visible || s.Selected < 0 || s.Selected >= len(s.Items) {
		return Candidate{}, false
	}
	return s.Items[s.Selected], true
}

// Close hides the popup and forgets any pending request.
func (s *State) Close() {
	*s = State{}
}

// Insertion is the result of accepting a completion.
type Insertion struct {
	Edit editor.Edit
	// Cursor and SelectEnd are rune offsets after the edit. A first
	// placeholder with default text is selected.
	Cursor, SelectEnd int
}

// Accept converts item into an edit of text. The word between anchor and
// cursor is replaced unless the item carries its own range, which is then
// extended to the cursor for text typed since the request.
func Accept(item lsp.CompletionItem, text editor.Rope, anchor, cursor int, enc lsp.Encoding) Insertion {
	start, end := anchor, cursor
	if item.TextEdit != nil {
		start, end = enc.RangeOffsets(text, item.TextEdit.Range)
		end = max(end, cursor)
	}
	start, end = min(start, end), max(start, end)
	insert := item.Text()
	var exp Expansion
	if item.IsSnippet() {
		exp = ExpandSnippet(insert)
	} else {
		exp = Expansion{Text: insert, runes: len([]rune(insert))}
	}
	cs, ce := exp.Cursor()
	return Insertion{
		Edit:      editor.Edit{Start: start, End: end, Deleted: text.Slice(start, end), Inserted: exp.Text},
		Cursor:    start + cs,
		SelectEnd: start + ce,
	}
}
