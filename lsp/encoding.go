package lsp

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/odvcencio/zcode/editor"
)

// Encoding is the unit of Position.Character negotiated with a server.
type Encoding string

const (
	UTF8  Encoding = "utf-8"
	UTF16 Encoding = "utf-16"
	UTF32 Encoding = "utf-32"
)

// ParseEncoding maps a wire name to an Encoding. Unknown or empty names
// mean the protocol default, UTF-16.
func ParseEncoding(name string) (Encoding, bool) {
	switch Encoding(name) {
	case UTF8, UTF16, UTF32:
		return Encoding(name), true
	}
	return UTF16, false
}

// Column returns the column of p in enc.
func (e Encoding) Column(p editor.Point) int {
	switch e {
	case UTF8:
		return p.Byte
	case UTF32:
		return p.Char
	}
	return p.UTF16
}

// PositionOf converts a point to a wire position.
func (e Encoding) PositionOf(p editor.Point) Position {
	return Position{Line: p.Line, Character: e.Column(p)}
}

// CharCol converts col, measured in enc, to a rune column of line. Columns
// past the end clamp to the line length and columns inside a code point
// snap to its start.
func (e Encoding) CharCol(line string, col int) int {
	if col <= 0 {
		return 0
	}
	chars, units := 0, 0
	for _, r := range line {
		var w int
		switch e {
		case UTF8:
			w = utf8.RuneLen(r)
		case UTF32:
			w = 1
		default:
			w = utf16.RuneLen(r)
		}
		if units+w > col {
			return chars
		}
		units += w
		chars++
	}
	return chars
}

// Offset converts a wire position to a rune offset in r.
func (e Encoding) Offset(r editor.Rope, p Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= r.LineCount() {
		return r.Len()
	}
	return r.LineStart(p.Line) + e.CharCol(r.Line(p.Line), p.Character)
}

// RangeOffsets converts a wire range to rune offsets with start <= end.
func (e Encoding) RangeOffsets(r editor.Rope, rng Range) (int, int) {
	start, end := e.Offset(r, rng.Start), e.Offset(r, rng.End)
	if end < start {
		end = start
	}
	return start, end
}

// ToPosition converts a rune offset in r to a wire position.
func (e Encoding) ToPosition(r editor.Rope, off int) Position {
	return e.PositionOf(r.Point(off))
}

// ByteCol converts col, measured in enc, to a byte column of line.
func (e Encoding) ByteCol(line string, col int) int {
	chars := e.CharCol(line, col)
	b := 0
	for i := 0; i < chars && b < len(line); i++ {
		_, size := utf8.DecodeRuneInString(line[b:])
		b += size
	}
	return b
}

// TextEdits converts wire edits for r into buffer edits sorted by start.
// Overlapping edits keep the first one. Inserts sharing a position keep their
// wire order.
func (e Encoding) TextEdits(r editor.Rope, edits []TextEdit) []editor.Edit {
	out := make([]editor.Edit, 0, len(edits))
	for _, te := range edits {
		s, en := e.RangeOffsets(r, te.Range)
		out = append(out, editor.Edit{Start: s, End: en, Inserted: te.NewText})
	}
	sortEdits(out)
	kept := out[:0]
	for _, ed := range out {
		if n := len(kept); n > 0 && ed.Start < kept[n-1].End {
			continue
		}
		kept = append(kept, ed)
	}
	return kept
}

func sortEdits(edits []editor.Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Start == edits[j].Start {
			return edits[i].End < edits[j].End
		}
		return edits[i].Start < edits[j].Start
	})
}
