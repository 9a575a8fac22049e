package editor

import "strings"

// prevBoundary returns the grapheme boundary before off. A line start steps
// over the preceding newline.
func prevBoundary(r Rope, off int) int {
	off = r.clamp(off)
	if off == 0 {
		return 0
	}
	row := r.CharToLine(off)
	ls := r.LineStart(row)
	if off == ls {
		return off - 1
	}
	starts := graphemeStarts(r.Line(row))
	col := off - ls
	for i := len(starts) - 1; i >= 0; i-- {
		if starts[i] < col {
			return ls + starts[i]
		}
	}
	return ls
}

// nextBoundary returns the grapheme boundary after off. A line end steps
// over the newline.
func nextBoundary(r Rope, off int) int {
	off = r.clamp(off)
	if off >= r.Len() {
		return r.Len()
	}
	row := r.CharToLine(off)
	ls := r.LineStart(row)
	if off >= r.LineEnd(row) {
		return off + 1
	}
	col := off - ls
	for _, s := range graphemeStarts(r.Line(row)) {
		if s > col {
			return ls + s
		}
	}
	return r.LineEnd(row)
}

func (b *TextBuffer) moveEach(extend bool, fn func(c Cursor) Cursor) {
	next := make([]Cursor, len(b.cursors))
	for i, c := range b.cursors {
		n := fn(c)
		if !extend {
			n.Anchor = n.Pos
		} else {
			n.Anchor = c.Anchor
		}
		next[i] = n
	}
	b.cursors = normalizeCursors(b.rope, next)
}

// MoveCursorByGrapheme moves every cursor delta grapheme clusters. Without extend
// a selection collapses to its edge in the direction of motion.
func (b *TextBuffer) MoveCursorByGrapheme(delta int, extend bool) {
	b.moveEach(extend, func(c Cursor) Cursor {
		if !extend && c.HasSelection() {
			s, e := c.Range()
			if delta < 0 {
				c.Pos = s
			} else {
				c.Pos = e
			}
			c.Goal = -1
			return c
		}
		for i := 0; i < delta; i++ {
			c.Pos = nextBoundary(b.rope, c.Pos)
		}
		for i := 0; i > delta; i-- {
			c.Pos = prevBoundary(b.rope, c.Pos)
		}
		c.Goal = -1
		return c
	})
}

// MoveCursorByWord moves every cursor to the next (dir > 0) or previous word
// boundary.
func (b *TextBuffer) MoveCursorByWord(dir int, extend bool) {
	b.moveEach(extend, func(c Cursor) Cursor {
		if dir < 0 {
			c.Pos = prevWordBoundary(b.rope, c.Pos)
		} else {
			c.Pos = nextWordBoundary(b.rope, c.Pos)
		}
		c.Pos = snapOffset(b.rope, c.Pos)
		c.Goal = -1
		return c
	})
}

// MoveCursorVertical moves every cursor delta rows, keeping a goal display column
// across short lines.
func (b *TextBuffer) MoveCursorVertical(delta int, extend bool) {
	last := b.rope.LineCount() - 1
	b.moveEach(extend, func(c Cursor) Cursor {
		row := b.rope.CharToLine(c.Pos)
		ls := b.rope.LineStart(row)
		goal := c.Goal
		if goal < 0 {
			goal = DisplayWidth(b.rope.Slice(ls, c.Pos))
		}
		target := row + delta
		switch {
		case target < 0:
			c.Pos = 0
		case target > last:
			c.Pos = b.rope.Len()
		default:
			c.Pos = b.rope.LineStart(target) + displayColToChar(b.rope.Line(target), goal)
		}
		c.Goal = goal
		return c
	})
}

// MoveLineStart moves to the first non-blank column, or to column zero when
// already there.
func (b *TextBuffer) MoveLineStart(extend bool) {
	b.moveEach(extend, func(c Cursor) Cursor {
		row := b.rope.CharToLine(c.Pos)
		ls := b.rope.LineStart(row)
		line := b.rope.Line(row)
		indent := runeLen(line) - runeLen(strings.TrimLeft(line, " \t"))
		if c.Pos == ls+indent {
			c.Pos = ls
		} else {
			c.Pos = ls + indent
		}
		c.Goal = -1
		return c
	})
}

// MoveLineEnd moves to the end of the current line.
func (b *TextBuffer) MoveLineEnd(extend bool) {
	b.moveEach(extend, func(c Cursor) Cursor {
		c.Pos = b.rope.LineEnd(b.rope.CharToLine(c.Pos))
		c.Goal = -1
		return c
	})
}

// MoveDocStart moves to offset zero.
func (b *TextBuffer) MoveDocStart(extend bool) {
	b.moveEach(extend, func(c Cursor) Cursor {
		c.Pos, c.Goal = 0, -1
		return c
	})
}

// MoveDocEnd moves to the end of the document.
func (b *TextBuffer) MoveDocEnd(extend bool) {
	b.moveEach(extend, func(c Cursor) Cursor {
		c.Pos, c.Goal = b.rope.Len(), -1
		return c
	})
}

// SetCursor collapses to a single caret at p.
func (b *TextBuffer) SetCursor(p Position) {
	b.cursors = normalizeCursors(b.rope, []Cursor{caret(b.OffsetOf(p))})
}

// SetCursorOffset collapses to a single caret at a rune offset.
func (b *TextBuffer) SetCursorOffset(off int) {
	b.cursors = normalizeCursors(b.rope, []Cursor{caret(off)})
}

// SetSelection replaces all cursors with one selection from anchor to
// active.
func (b *TextBuffer) SetSelection(anchor, active int) {
	c := caret(active)
	c.Anchor = anchor
	b.cursors = normalizeCursors(b.rope, []Cursor{c})
}

// SetCursors replaces the cursor set. An empty set becomes one caret at 0.
func (b *TextBuffer) SetCursors(cs []Cursor) {
	b.cursors = normalizeCursors(b.rope, cloneCursors(cs))
}

// SelectAll selects the whole document with a single cursor.
func (b *TextBuffer) SelectAll() {
	b.SetSelection(0, b.rope.Len())
}

// SelectWordAt selects the word under p and switches the primary cursor to
// word granularity.
func (b *TextBuffer) SelectWordAt(p Position) {
	off := b.OffsetOf(p)
	s, e := wordRangeAt(b.rope, off)
	c := Cursor{Pos: e, Anchor: s, Goal: -1, Granularity: GranularityWord}
	b.cursors = normalizeCursors(b.rope, []Cursor{c})
}

// SelectLineAt selects row including its newline.
func (b *TextBuffer) SelectLineAt(row int) {
	s, e := b.lineSpan(row)
	c := Cursor{Pos: e, Anchor: s, Goal: -1, Granularity: GranularityLine}
	b.cursors = normalizeCursors(b.rope, []Cursor{c})
}

func (b *TextBuffer) lineSpan(row int) (int, int) {
	if row < 0 {
		row = 0
	}
	if last := b.rope.LineCount() - 1; row > last {
		row = last
	}
	s := b.rope.LineStart(row)
	e := b.rope.LineEnd(row)
	if row < b.rope.LineCount()-1 {
		e++
	}
	return s, e
}

// ExtendSelectionTo moves the primary cursor's active end to p, growing by
// the cursor's granularity so the original word or line stays selected.
func (b *TextBuffer) ExtendSelectionTo(p Position) {
	c := b.cursors[0]
	off := b.OffsetOf(p)
	switch c.Granularity {
	case GranularityWord:
		os, oe := wordRangeAt(b.rope, c.Anchor)
		ws, we := wordRangeAt(b.rope, off)
		if off >= os {
			c.Anchor, c.Pos = os, maxInt(we, oe)
		} else {
			c.Anchor, c.Pos = oe, ws
		}
	case GranularityLine:
		anchorRow := b.rope.CharToLine(c.Anchor)
		if !c.forward() {
			anchorRow = b.rope.CharToLine(maxInt(c.Anchor-1, 0))
		}
		row := b.rope.CharToLine(off)
		as, ae := b.lineSpan(anchorRow)
		rs, re := b.lineSpan(row)
		if row >= anchorRow {
			c.Anchor, c.Pos = as, re
		} else {
			c.Anchor, c.Pos = ae, rs
		}
	default:
		c.Pos = off
	}
	c.Goal = -1
	next := b.Cursors()
	next[0] = c
	b.cursors = normalizeCursors(b.rope, next)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
