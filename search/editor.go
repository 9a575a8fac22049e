package search

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"

	"github.com/odvcencio/zcode/editor"
)

// editorBatch is the number of matches per EditorMessage.
const editorBatch = 100

// TextMatch is a match in a buffer as a half-open character range.
type TextMatch struct {
	Start int
	End   int
}

// EditorRequest asks for every match of Pattern in Text. Text is a rope
// snapshot, so the buffer can keep changing while the worker runs.
type EditorRequest struct {
	ID            uint64
	Pane          int
	Text          editor.Rope
	Pattern       string
	CaseSensitive bool
	Regex         bool
}

// EditorMessageKind tags an EditorMessage.
type EditorMessageKind int

const (
	EditorBatch EditorMessageKind = iota
	EditorComplete
	EditorCancelled
	EditorError
)

// EditorMessage streams results of an in-buffer search.
type EditorMessage struct {
	SearchID uint64
	Pane     int
	Kind     EditorMessageKind
	Matches  []TextMatch
	Total    int
	Err      string
}

// StartEditor runs req in the background and returns a cancel handle.
func StartEditor(ctx context.Context, req EditorRequest, out chan<- EditorMessage) *Handle {
	wctx, cancel := context.WithCancel(ctx)
	h := &Handle{ID: req.ID, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer cancel()
		send := func(m EditorMessage) bool {
			m.SearchID, m.Pane = req.ID, req.Pane
			select {
			case out <- m:
				return true
			case <-wctx.Done():
				return false
			}
		}
		final := runEditor(h, req, send)
		final.SearchID, final.Pane = req.ID, req.Pane
		select {
		case out <- final:
		case <-ctx.Done():
		}
	}()
	return h
}

func runEditor(h *Handle, req EditorRequest, send func(EditorMessage) bool) EditorMessage {
	matches, err := FindAll(req.Text.String(), req.Pattern, req.CaseSensitive, req.Regex)
	if err != nil {
		return EditorMessage{Kind: EditorError, Err: err.Error()}
	}
	for start := 0; start < len(matches); start += editorBatch {
		if h.Cancelled() {
			return EditorMessage{Kind: EditorCancelled}
		}
		batch := matches[start:min(start+editorBatch, len(matches))]
		if !send(EditorMessage{Kind: EditorBatch, Matches: batch}) {
			return EditorMessage{Kind: EditorCancelled}
		}
	}
	if h.Cancelled() {
		return EditorMessage{Kind: EditorCancelled}
	}
	return EditorMessage{Kind: EditorComplete, Total: len(matches)}
}

// FindAll returns the non-overlapping, non-empty matches of pattern in text
// as character ranges.
func FindAll(text, pattern string, caseSensitive, regex bool) ([]TextMatch, error) {
	if pattern == "" {
		return nil, nil
	}
	if !regex && caseSensitive {
		return findLiteral(text, pattern), nil
	}
	re, err := compile(pattern, caseSensitive, regex, regexp2.Multiline)
	if err != nil {
		return nil, err
	}
	return matchRanges(re, text)
}

func findLiteral(text, pattern string) []TextMatch {
	var out []TextMatch
	n := utf8.RuneCountInString(pattern)
	chars, last := 0, 0
	for from := 0; ; {
		i := strings.Index(text[from:], pattern)
		if i < 0 {
			return out
		}
		at := from + i
		chars += utf8.RuneCountInString(text[last:at])
		out = append(out, TextMatch{Start: chars, End: chars + n})
		chars += n
		from = at + len(pattern)
		last = from
	}
}

// Replacement returns the text that replaces match when substituting repl.
// Regex replacements expand $1 style group references.
func Replacement(match, pattern, repl string, caseSensitive, regex bool) (string, error) {
	if !regex {
		return repl, nil
	}
	re, err := compile(pattern, caseSensitive, true, regexp2.Multiline)
	if err != nil {
		return "", err
	}
	return re.Replace(match, repl, -1, 1)
}
