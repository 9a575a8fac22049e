package editor

import (
	"fmt"
	"sort"
)

// Granularity is the unit a selection grows by while dragging.
type Granularity int

const (
	GranularityChar Granularity = iota
	GranularityWord
	GranularityLine
)

// Cursor is one caret with an optional selection. Offsets are rune offsets
// into the document; Pos is the active end and Anchor equals Pos when there
// is no selection.
type Cursor struct {
	Pos         int
	Anchor      int
	Goal        int // goal display column for vertical motion, -1 when unset
	Granularity Granularity
}

func caret(pos int) Cursor {
	return Cursor{Pos: pos, Anchor: pos, Goal: -1}
}

// HasSelection reports whether the cursor covers a non-empty range.
func (c Cursor) HasSelection() bool {
	return c.Pos != c.Anchor
}

// Range returns the ordered selection bounds.
func (c Cursor) Range() (int, int) {
	return orderedRange(c.Pos, c.Anchor)
}

func (c Cursor) forward() bool {
	return c.Pos >= c.Anchor
}

func orderedRange(a, b int) (int, int) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Position is a (row, column) pair with the column in grapheme clusters.
type Position struct {
	Row int
	Col int
}

// Selection is the public view of a cursor's selection.
type Selection struct {
	Anchor      Position
	Active      Position
	Granularity Granularity
}

// shiftOffset applies the three-case rule for an edit replacing
// [start, end) with newLen runes.
func shiftOffset(off, start, end, newLen int) int {
	switch {
	case off < start:
		return off
	case off <= end:
		return start + newLen
	default:
		return off + newLen - (end - start)
	}
}

// shiftThrough moves off through a sorted, non-overlapping list of edits
// expressed against the pre-edit text.
func shiftThrough(off int, edits []Edit) int {
	cur := off
	delta := 0
	for _, e := range edits {
		start := e.Start + delta
		end := e.End + delta
		n := runeLen(e.Inserted)
		cur = shiftOffset(cur, start, end, n)
		delta += n - (e.End - e.Start)
	}
	return cur
}

func overlaps(a, b Cursor) bool {
	as, ae := a.Range()
	bs, be := b.Range()
	if as == ae && bs == be {
		return as == bs
	}
	if as == ae {
		return bs <= as && as <= be
	}
	if bs == be {
		return as <= bs && bs <= ae
	}
	return as < be && bs < ae
}

// normalizeCursors clamps every cursor to the rope, snaps it to grapheme
// boundaries and unions overlapping ranges. The primary (index 0) wins a
// merge and stays first; secondaries are sorted by position.
func normalizeCursors(r Rope, cursors []Cursor) []Cursor {
	if len(cursors) == 0 {
		return []Cursor{caret(0)}
	}
	out := make([]Cursor, len(cursors))
	for i, c := range cursors {
		c.Pos = snapOffset(r, c.Pos)
		c.Anchor = snapOffset(r, c.Anchor)
		out[i] = c
	}

	type indexed struct {
		c       Cursor
		primary bool
	}
	items := make([]indexed, len(out))
	for i, c := range out {
		items[i] = indexed{c: c, primary: i == 0}
	}
	sort.SliceStable(items, func(i, j int) bool {
		si, _ := items[i].c.Range()
		sj, _ := items[j].c.Range()
		return si < sj
	})

	merged := make([]indexed, 0, len(items))
	for _, it := range items {
		if len(merged) == 0 {
			merged = append(merged, it)
			continue
		}
		last := &merged[len(merged)-1]
		if !overlaps(last.c, it.c) {
			merged = append(merged, it)
			continue
		}
		ls, le := last.c.Range()
		is, ie := it.c.Range()
		s, e := ls, le
		if is < s {
			s = is
		}
		if ie > e {
			e = ie
		}
		winner := last.c
		primary := last.primary || it.primary
		if it.primary {
			winner = it.c
		}
		if winner.forward() {
			winner.Anchor, winner.Pos = s, e
		} else {
			winner.Anchor, winner.Pos = e, s
		}
		*last = indexed{c: winner, primary: primary}
	}

	result := make([]Cursor, 0, len(merged))
	for _, it := range merged {
		if it.primary {
			result = append(result, it.c)
		}
	}
	for _, it := range merged {
		if !it.primary {
			result = append(result, it.c)
		}
	}
	return result
}

// snapOffset clamps off to the rope and moves it back to the start of the
// grapheme cluster containing it.
func snapOffset(r Rope, off int) int {
	off = r.clamp(off)
	row := r.CharToLine(off)
	start := r.LineStart(row)
	if off-start == 0 {
		return off
	}
	return start + snapToGrapheme(r.Line(row), off-start)
}

// checkCursorInvariants validates bounds and non-overlap. It is used by
// tests and debug assertions.
func checkCursorInvariants(r Rope, cursors []Cursor) error {
	if len(cursors) == 0 {
		return fmt.Errorf("no cursors")
	}
	for i, c := range cursors {
		if c.Pos < 0 || c.Pos > r.Len() || c.Anchor < 0 || c.Anchor > r.Len() {
			return fmt.Errorf("cursor %d out of bounds: %+v (len %d)", i, c, r.Len())
		}
		if snapOffset(r, c.Pos) != c.Pos {
			return fmt.Errorf("cursor %d not on a grapheme boundary: %d", i, c.Pos)
		}
	}
	for i := range cursors {
		for j := i + 1; j < len(cursors); j++ {
			if overlaps(cursors[i], cursors[j]) {
				return fmt.Errorf("cursors %d and %d overlap: %+v %+v", i, j, cursors[i], cursors[j])
			}
		}
	}
	for i := 2; i < len(cursors); i++ {
		a, _ := cursors[i-1].Range()
		b, _ := cursors[i].Range()
		if a > b {
			return fmt.Errorf("secondary cursors unsorted at %d", i)
		}
	}
	return nil
}
