package editor

import (
	"sort"
	"strings"
)

// LineCount returns the number of lines in the text.
// An empty string is considered to have 1 line.
func LineCount(text string) int {
	return strings.Count(text, "\n") + 1
}

type rowSpan struct{ first, last int }

// cursorRows returns the merged row spans touched by the cursors. A
// selection ending at column zero does not claim that last row.
func (b *TextBuffer) cursorRows() []rowSpan {
	spans := make([]rowSpan, 0, len(b.cursors))
	for _, c := range b.cursors {
		s, e := c.Range()
		r0 := b.rope.CharToLine(s)
		r1 := b.rope.CharToLine(e)
		if e > s && r1 > r0 && e == b.rope.LineStart(r1) {
			r1--
		}
		spans = append(spans, rowSpan{r0, r1})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].first < spans[j].first })
	merged := spans[:0]
	for _, sp := range spans {
		if n := len(merged); n > 0 && sp.first <= merged[n-1].last+1 {
			if sp.last > merged[n-1].last {
				merged[n-1].last = sp.last
			}
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

// DeleteLines removes every line touched by a cursor.
func (b *TextBuffer) DeleteLines(now int64) EditResult {
	last := b.rope.LineCount() - 1
	var edits []Edit
	for _, sp := range b.cursorRows() {
		s := b.rope.LineStart(sp.first)
		var e int
		if sp.last < last {
			e = b.rope.LineStart(sp.last + 1)
		} else {
			e = b.rope.Len()
			if sp.first > 0 {
				s = b.rope.LineEnd(sp.first - 1)
			}
		}
		edits = append(edits, Edit{Start: s, End: e})
	}
	return b.commit(edits, now)
}

// DuplicateLines copies every touched line block below itself and moves the
// cursors onto the copy.
func (b *TextBuffer) DuplicateLines(now int64) EditResult {
	var edits []Edit
	for _, sp := range b.cursorRows() {
		s := b.rope.LineStart(sp.first)
		block := b.rope.Slice(s, b.rope.LineEnd(sp.last))
		edits = append(edits, Edit{Start: s, End: s, Inserted: block + "\n"})
	}
	return b.commit(edits, now)
}

// MoveLines swaps every touched line block with the line above (delta < 0)
// or below. Nothing moves if any block is already at the document edge.
func (b *TextBuffer) MoveLines(delta int, now int64) EditResult {
	if delta == 0 {
		return EditResult{}
	}
	last := b.rope.LineCount() - 1
	spans := b.cursorRows()
	var edits []Edit
	type shift struct{ from, to, by int }
	var shifts []shift
	for _, sp := range spans {
		block := b.rope.Slice(b.rope.LineStart(sp.first), b.rope.LineEnd(sp.last))
		if delta < 0 {
			if sp.first == 0 {
				return EditResult{}
			}
			above := b.rope.Line(sp.first - 1)
			s := b.rope.LineStart(sp.first - 1)
			edits = append(edits, Edit{Start: s, End: b.rope.LineEnd(sp.last), Inserted: block + "\n" + above})
			shifts = append(shifts, shift{b.rope.LineStart(sp.first), b.rope.LineEnd(sp.last), -(runeLen(above) + 1)})
			continue
		}
		if sp.last == last {
			return EditResult{}
		}
		below := b.rope.Line(sp.last + 1)
		s := b.rope.LineStart(sp.first)
		edits = append(edits, Edit{Start: s, End: b.rope.LineEnd(sp.last + 1), Inserted: below + "\n" + block})
		shifts = append(shifts, shift{s, b.rope.LineEnd(sp.last), runeLen(below) + 1})
	}
	move := func(off int) int {
		for _, sh := range shifts {
			if off >= sh.from && off <= sh.to {
				return off + sh.by
			}
		}
		return off
	}
	place := make([]Cursor, len(b.cursors))
	for i, c := range b.cursors {
		c.Pos, c.Anchor, c.Goal = move(c.Pos), move(c.Anchor), -1
		place[i] = c
	}
	return b.commitPlaced(edits, now, place)
}

// IndentLines prefixes every touched line with unit. Selections grow to
// keep covering the indented text.
func (b *TextBuffer) IndentLines(unit string, now int64) EditResult {
	var edits []Edit
	for _, sp := range b.cursorRows() {
		for row := sp.first; row <= sp.last; row++ {
			s := b.rope.LineStart(row)
			edits = append(edits, Edit{Start: s, End: s, Inserted: unit})
		}
	}
	n := runeLen(unit)
	place := make([]Cursor, len(b.cursors))
	for i, c := range b.cursors {
		c.Pos = b.shiftForLineInserts(c.Pos, edits, n)
		c.Anchor = b.shiftForLineInserts(c.Anchor, edits, n)
		c.Goal = -1
		place[i] = c
	}
	return b.commitPlaced(edits, now, place)
}

// shiftForLineInserts moves off right by n for every line-start insertion at
// or before it.
func (b *TextBuffer) shiftForLineInserts(off int, edits []Edit, n int) int {
	out := off
	for _, e := range edits {
		if e.Start <= off {
			out += n
		}
	}
	return out
}

// OutdentLines removes up to one indent unit (a tab or tabSize spaces) from
// every touched line.
func (b *TextBuffer) OutdentLines(tabSize int, now int64) EditResult {
	if tabSize <= 0 {
		tabSize = 4
	}
	var edits []Edit
	for _, sp := range b.cursorRows() {
		for row := sp.first; row <= sp.last; row++ {
			line := b.rope.Line(row)
			n := 0
			if strings.HasPrefix(line, "\t") {
				n = 1
			} else {
				for n < tabSize && n < len(line) && line[n] == ' ' {
					n++
				}
			}
			if n > 0 {
				s := b.rope.LineStart(row)
				edits = append(edits, Edit{Start: s, End: s + n})
			}
		}
	}
	return b.commit(edits, now)
}
