package editor

import "strings"

// CursorCount reports how many cursors are active.
func (b *TextBuffer) CursorCount() int { return len(b.cursors) }

// IsMulti reports whether more than one cursor exists.
func (b *TextBuffer) IsMulti() bool { return len(b.cursors) > 1 }

// ClearSecondary keeps only the primary cursor.
func (b *TextBuffer) ClearSecondary() {
	b.cursors = b.cursors[:1]
}

// AddCursor adds a caret at p. A caret overlapping an existing cursor is
// merged into it.
func (b *TextBuffer) AddCursor(p Position) {
	next := append(b.Cursors(), caret(b.OffsetOf(p)))
	b.cursors = normalizeCursors(b.rope, next)
}

// AddCursorVertical adds a caret delta rows away from the outermost cursor
// in that direction, at the same display column.
func (b *TextBuffer) AddCursorVertical(delta int) {
	edge := b.cursors[0]
	for _, c := range b.cursors[1:] {
		if delta < 0 && c.Pos < edge.Pos || delta > 0 && c.Pos > edge.Pos {
			edge = c
		}
	}
	row := b.rope.CharToLine(edge.Pos) + delta
	if row < 0 || row >= b.rope.LineCount() {
		return
	}
	goal := edge.Goal
	if goal < 0 {
		goal = DisplayWidth(b.rope.Slice(b.rope.LineStart(row-delta), edge.Pos))
	}
	c := caret(b.rope.LineStart(row) + displayColToChar(b.rope.Line(row), goal))
	c.Goal = goal
	b.cursors = normalizeCursors(b.rope, append(b.Cursors(), c))
}

// AddNextOccurrence selects the next occurrence of the newest cursor's
// selection, wrapping at the end of the document. With no selection it
// first selects the word under the primary caret.
func (b *TextBuffer) AddNextOccurrence() bool {
	last := b.cursors[len(b.cursors)-1]
	start, end := last.Range()
	if start == end {
		s, e := wordRangeAt(b.rope, last.Pos)
		if s == e {
			return false
		}
		c := Cursor{Pos: e, Anchor: s, Goal: -1}
		next := b.Cursors()
		next[len(next)-1] = c
		b.cursors = normalizeCursors(b.rope, next)
		return true
	}

	text := b.rope.String()
	query := b.rope.Slice(start, end)
	qlen := runeLen(query)
	search := func(fromByte int) int {
		for fromByte <= len(text) {
			idx := strings.Index(text[fromByte:], query)
			if idx < 0 {
				return -1
			}
			off := b.rope.ByteToChar(fromByte + idx)
			if !b.hasRange(off, off+qlen) {
				return off
			}
			fromByte += idx + len(query)
		}
		return -1
	}
	candidate := search(b.rope.CharToByte(end))
	if candidate < 0 {
		candidate = search(0)
	}
	if candidate < 0 {
		return false
	}
	c := Cursor{Pos: candidate + qlen, Anchor: candidate, Goal: -1}
	b.cursors = normalizeCursors(b.rope, append(b.Cursors(), c))
	return true
}

func (b *TextBuffer) hasRange(start, end int) bool {
	for _, c := range b.cursors {
		if s, e := c.Range(); s == start && e == end {
			return true
		}
	}
	return false
}

// SelectBlock replaces the cursors with one selection per row spanning the
// display columns between anchor and active. Rows shorter than the left
// column get a caret at their end.
func (b *TextBuffer) SelectBlock(anchor, active Position) {
	r0, r1 := orderedRange(anchor.Row, active.Row)
	if r0 < 0 {
		r0 = 0
	}
	if last := b.rope.LineCount() - 1; r1 > last {
		r1 = last
	}
	aw := DisplayWidth(b.rope.Slice(b.rope.LineStart(anchor.Row), b.OffsetOf(anchor)))
	vw := DisplayWidth(b.rope.Slice(b.rope.LineStart(active.Row), b.OffsetOf(active)))

	cursors := make([]Cursor, 0, r1-r0+1)
	for row := r0; row <= r1; row++ {
		ls := b.rope.LineStart(row)
		line := b.rope.Line(row)
		c := caret(ls + displayColToChar(line, vw))
		c.Anchor = ls + displayColToChar(line, aw)
		if row == active.Row {
			cursors = append([]Cursor{c}, cursors...)
			continue
		}
		cursors = append(cursors, c)
	}
	b.cursors = normalizeCursors(b.rope, cursors)
}
