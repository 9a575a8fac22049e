package editor

import (
	"sort"
	"strings"
)

// Point locates an offset by line plus the column in every unit a consumer
// may need: UTF-8 bytes (tree-sitter, LSP utf-8), UTF-16 code units (LSP
// default) and runes (LSP utf-32).
type Point struct {
	Line  int
	Byte  int
	UTF16 int
	Char  int
}

// EditDelta describes one applied edit in both char and byte coordinates.
// Deltas of a multi-edit operation are listed in application order, each
// relative to the text produced by the previous one.
type EditDelta struct {
	StartChar, OldEndChar, NewEndChar int
	StartByte, OldEndByte, NewEndByte int
	Start, OldEnd, NewEnd             Point
	Text                              string
}

// EditResult reports what a buffer operation changed.
type EditResult struct {
	Changed bool
	Deltas  []EditDelta
}

// TextBuffer is a rope with cursors and an undo DAG. Operations never fail:
// out of range input is clamped.
type TextBuffer struct {
	rope      Rope
	cursors   []Cursor
	history   *History
	savedHead OpID
}

// NewTextBuffer creates a buffer holding text with one cursor at the start.
func NewTextBuffer(text string) *TextBuffer {
	r := NewRope(text)
	h := NewHistory(r)
	return &TextBuffer{
		rope:      r,
		cursors:   []Cursor{caret(0)},
		history:   h,
		savedHead: h.Head(),
	}
}

// RestoreTextBuffer builds a buffer from a recovered history. The saved
// state is the history root.
func RestoreTextBuffer(h *History, r Rope) *TextBuffer {
	return &TextBuffer{
		rope:      r,
		cursors:   []Cursor{caret(0)},
		history:   h,
		savedHead: h.Root(),
	}
}

// Text returns the full text.
func (b *TextBuffer) Text() string { return b.rope.String() }

// Rope returns the current persistent rope.
func (b *TextBuffer) Rope() Rope { return b.rope }

// History exposes the undo DAG.
func (b *TextBuffer) History() *History { return b.history }

// LineCount returns the number of lines.
func (b *TextBuffer) LineCount() int { return b.rope.LineCount() }

// Line returns line row without its newline.
func (b *TextBuffer) Line(row int) string { return b.rope.Line(row) }

// Modified reports whether HEAD differs from the last saved node.
func (b *TextBuffer) Modified() bool { return b.history.Head() != b.savedHead }

// MarkSaved records HEAD as the saved state.
func (b *TextBuffer) MarkSaved() { b.savedHead = b.history.Head() }

// CanUndo reports whether an undo is possible.
func (b *TextBuffer) CanUndo() bool { return b.history.CanUndo() }

// CanRedo reports whether a redo is possible.
func (b *TextBuffer) CanRedo() bool { return b.history.CanRedo() }

// Cursors returns a copy of all cursors, primary first.
func (b *TextBuffer) Cursors() []Cursor { return cloneCursors(b.cursors) }

// Primary returns the primary cursor.
func (b *TextBuffer) Primary() Cursor { return b.cursors[0] }

// Cursor returns the primary cursor position in grapheme units.
func (b *TextBuffer) Cursor() Position { return b.PositionOf(b.cursors[0].Pos) }

// Selection returns the primary selection, if any.
func (b *TextBuffer) Selection() (Selection, bool) {
	c := b.cursors[0]
	if !c.HasSelection() {
		return Selection{}, false
	}
	return Selection{
		Anchor:      b.PositionOf(c.Anchor),
		Active:      b.PositionOf(c.Pos),
		Granularity: c.Granularity,
	}, true
}

// SelectedText joins the text of every selection with newlines.
func (b *TextBuffer) SelectedText() string {
	var parts []string
	for _, c := range b.sortedCursors() {
		if s, e := c.Range(); s != e {
			parts = append(parts, b.rope.Slice(s, e))
		}
	}
	return strings.Join(parts, "\n")
}

// PositionOf converts a rune offset to a grapheme position.
func (b *TextBuffer) PositionOf(off int) Position {
	off = b.rope.clamp(off)
	row := b.rope.CharToLine(off)
	start := b.rope.LineStart(row)
	return Position{Row: row, Col: charToGraphemeCol(b.rope.Line(row), off-start)}
}

// OffsetOf converts a grapheme position to a rune offset, clamping both
// row and column.
func (b *TextBuffer) OffsetOf(p Position) int {
	row := p.Row
	if row < 0 {
		row = 0
	}
	if last := b.rope.LineCount() - 1; row > last {
		row = last
	}
	return b.rope.LineStart(row) + graphemeColToChar(b.rope.Line(row), p.Col)
}

// PointAt returns the multi-unit point of a rune offset.
func (b *TextBuffer) PointAt(off int) Point { return pointAt(b.rope, off) }

// Point returns the multi-unit point of a rune offset in r.
func (r Rope) Point(off int) Point { return pointAt(r, off) }

func pointAt(r Rope, off int) Point {
	off = r.clamp(off)
	line := r.CharToLine(off)
	ls := r.LineStart(line)
	prefix := r.Slice(ls, off)
	return Point{Line: line, Byte: len(prefix), UTF16: UTF16Len(prefix), Char: off - ls}
}

func (b *TextBuffer) sortedCursors() []Cursor {
	cs := b.Cursors()
	sort.SliceStable(cs, func(i, j int) bool {
		si, _ := cs[i].Range()
		sj, _ := cs[j].Range()
		return si < sj
	})
	return cs
}

// CheckInvariants validates cursor bounds and non-overlap.
func (b *TextBuffer) CheckInvariants() error {
	return checkCursorInvariants(b.rope, b.cursors)
}

// normalizeEdits clamps, sorts, fills Deleted and drops overlapping or empty
// edits, keeping the first of any overlapping pair. Pure inserts at the same
// offset are joined in input order.
func normalizeEdits(r Rope, edits []Edit) []Edit {
	out := make([]Edit, 0, len(edits))
	for _, e := range edits {
		e.Start, e.End = r.clamp(e.Start), r.clamp(e.End)
		if e.Start > e.End {
			e.Start, e.End = e.End, e.Start
		}
		if e.Start == e.End && e.Inserted == "" {
			continue
		}
		e.Deleted = r.Slice(e.Start, e.End)
		if e.Deleted == e.Inserted {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start == out[j].Start {
			return out[i].End < out[j].End
		}
		return out[i].Start < out[j].Start
	})
	merged := out[:0]
	for _, e := range out {
		n := len(merged)
		if n > 0 && e.Start < merged[n-1].End {
			continue
		}
		if n > 0 && e.Start == merged[n-1].Start && e.End == merged[n-1].End {
			if e.Start == e.End {
				// Inserts at one offset land in the order given.
				merged[n-1].Inserted += e.Inserted
			}
			continue
		}
		merged = append(merged, e)
	}
	return merged
}

// commit applies edits as one history operation and shifts every cursor.
func (b *TextBuffer) commit(edits []Edit, now int64) EditResult {
	return b.commitPlaced(edits, now, nil)
}

// commitPlaced is commit with explicit post-edit cursors. A nil place keeps
// the shift rule.
func (b *TextBuffer) commitPlaced(edits []Edit, now int64, place []Cursor) EditResult {
	edits = normalizeEdits(b.rope, edits)
	if len(edits) == 0 {
		return EditResult{}
	}
	before := cloneCursors(b.cursors)
	deltas := make([]EditDelta, 0, len(edits))
	r := b.rope
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		d := EditDelta{
			StartChar:  e.Start,
			OldEndChar: e.End,
			NewEndChar: e.Start + runeLen(e.Inserted),
			StartByte:  r.CharToByte(e.Start),
			OldEndByte: r.CharToByte(e.End),
			Start:      pointAt(r, e.Start),
			OldEnd:     pointAt(r, e.End),
			Text:       e.Inserted,
		}
		r = r.Replace(e.Start, e.End, e.Inserted)
		d.NewEndByte = d.StartByte + len(e.Inserted)
		d.NewEnd = pointAt(r, d.NewEndChar)
		deltas = append(deltas, d)
	}
	cursors := make([]Cursor, len(b.cursors))
	for i, c := range b.cursors {
		c.Pos = shiftThrough(c.Pos, edits)
		c.Anchor = shiftThrough(c.Anchor, edits)
		c.Goal = -1
		c.Granularity = GranularityChar
		cursors[i] = c
	}
	if place != nil {
		cursors = place
	}
	b.rope = r
	b.cursors = normalizeCursors(r, cursors)
	b.history.Record(now, edits, before, b.cursors, r)
	return EditResult{Changed: true, Deltas: deltas}
}

// replaceWhole swaps in a rope produced by undo/redo and reports it as a
// single minimal delta.
func (b *TextBuffer) replaceWhole(next Rope, cursors []Cursor) EditResult {
	prev := b.rope
	b.rope = next
	b.cursors = normalizeCursors(next, cursors)
	oldText, newText := prev.String(), next.String()
	if oldText == newText {
		return EditResult{Changed: true}
	}
	start, oldEnd, newEnd := diffBounds(oldText, newText)
	d := EditDelta{
		StartChar:  prev.ByteToChar(start),
		OldEndChar: prev.ByteToChar(oldEnd),
		NewEndChar: next.ByteToChar(newEnd),
		StartByte:  start,
		OldEndByte: oldEnd,
		NewEndByte: newEnd,
		Text:       newText[start:newEnd],
	}
	d.Start = pointAt(prev, d.StartChar)
	d.OldEnd = pointAt(prev, d.OldEndChar)
	d.NewEnd = pointAt(next, d.NewEndChar)
	return EditResult{Changed: true, Deltas: []EditDelta{d}}
}

// diffBounds returns the byte range [start, oldEnd) of a that was replaced
// by [start, newEnd) of b, aligned to rune boundaries.
func diffBounds(a, b string) (start, oldEnd, newEnd int) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for start < n && a[start] == b[start] {
		start++
	}
	for start > 0 && (start < len(a) && !isRuneStart(a[start]) || start < len(b) && !isRuneStart(b[start])) {
		start--
	}
	oldEnd, newEnd = len(a), len(b)
	for oldEnd > start && newEnd > start && a[oldEnd-1] == b[newEnd-1] {
		oldEnd--
		newEnd--
	}
	for oldEnd < len(a) && !isRuneStart(a[oldEnd]) || newEnd < len(b) && !isRuneStart(b[newEnd]) {
		oldEnd++
		newEnd++
	}
	return start, oldEnd, newEnd
}

func isRuneStart(c byte) bool { return c&0xC0 != 0x80 }

// InsertText replaces every selection (or inserts at every caret) with text.
func (b *TextBuffer) InsertText(text string, now int64) EditResult {
	if text == "" {
		return EditResult{}
	}
	edits := make([]Edit, 0, len(b.cursors))
	for _, c := range b.cursors {
		s, e := c.Range()
		edits = append(edits, Edit{Start: s, End: e, Inserted: text})
	}
	return b.commit(edits, now)
}

// InsertNewline inserts a newline at every cursor, copying the current
// line's indentation and indenting once more after an opening bracket.
func (b *TextBuffer) InsertNewline(now int64) EditResult {
	edits := make([]Edit, 0, len(b.cursors))
	for _, c := range b.cursors {
		s, e := c.Range()
		row := b.rope.CharToLine(s)
		prefix := b.rope.Slice(b.rope.LineStart(row), s)
		edits = append(edits, Edit{Start: s, End: e, Inserted: "\n" + ComputeIndent(prefix)})
	}
	return b.commit(edits, now)
}

// DeleteBackward removes selections, or the grapheme before each caret.
func (b *TextBuffer) DeleteBackward(now int64) EditResult {
	edits := make([]Edit, 0, len(b.cursors))
	for _, c := range b.cursors {
		s, e := c.Range()
		if s == e {
			if s == 0 {
				continue
			}
			s = prevBoundary(b.rope, s)
		}
		edits = append(edits, Edit{Start: s, End: e})
	}
	return b.commit(edits, now)
}

// DeleteForward removes selections, or the grapheme after each caret.
func (b *TextBuffer) DeleteForward(now int64) EditResult {
	edits := make([]Edit, 0, len(b.cursors))
	for _, c := range b.cursors {
		s, e := c.Range()
		if s == e {
			if e >= b.rope.Len() {
				continue
			}
			e = nextBoundary(b.rope, e)
		}
		edits = append(edits, Edit{Start: s, End: e})
	}
	return b.commit(edits, now)
}

// DeleteWordBackward removes selections, or back to the previous word
// boundary.
func (b *TextBuffer) DeleteWordBackward(now int64) EditResult {
	edits := make([]Edit, 0, len(b.cursors))
	for _, c := range b.cursors {
		s, e := c.Range()
		if s == e {
			s = prevWordBoundary(b.rope, s)
		}
		edits = append(edits, Edit{Start: s, End: e})
	}
	return b.commit(edits, now)
}

// DeleteWordForward removes selections, or up to the next word boundary.
func (b *TextBuffer) DeleteWordForward(now int64) EditResult {
	edits := make([]Edit, 0, len(b.cursors))
	for _, c := range b.cursors {
		s, e := c.Range()
		if s == e {
			e = nextWordBoundary(b.rope, e)
		}
		edits = append(edits, Edit{Start: s, End: e})
	}
	return b.commit(edits, now)
}

// DeleteSelection removes every non-empty selection.
func (b *TextBuffer) DeleteSelection(now int64) EditResult {
	var edits []Edit
	for _, c := range b.cursors {
		if s, e := c.Range(); s != e {
			edits = append(edits, Edit{Start: s, End: e})
		}
	}
	return b.commit(edits, now)
}

// ReplaceRange substitutes the runes [start, end) with text.
func (b *TextBuffer) ReplaceRange(start, end int, text string, now int64) EditResult {
	return b.commit([]Edit{{Start: start, End: end, Inserted: text}}, now)
}

// ApplyEdits applies several non-overlapping edits, expressed against the
// current text, as one undoable operation.
func (b *TextBuffer) ApplyEdits(edits []Edit, now int64) EditResult {
	return b.commit(edits, now)
}

// SetText replaces the whole document as one undoable operation.
func (b *TextBuffer) SetText(text string, now int64) EditResult {
	return b.commit([]Edit{{Start: 0, End: b.rope.Len(), Inserted: text}}, now)
}

// Undo moves to the parent history node.
func (b *TextBuffer) Undo() EditResult {
	r, cursors, ok := b.history.Undo()
	if !ok {
		return EditResult{}
	}
	return b.replaceWhole(r, cursors)
}

// Redo follows the most recently added child.
func (b *TextBuffer) Redo() EditResult {
	r, cursors, ok := b.history.Redo(b.rope)
	if !ok {
		return EditResult{}
	}
	return b.replaceWhole(r, cursors)
}
