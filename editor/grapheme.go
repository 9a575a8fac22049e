package editor

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// graphemeStarts returns the rune offsets at which grapheme clusters of
// line begin, followed by the rune length of line.
func graphemeStarts(line string) []int {
	out := make([]int, 0, len(line)+1)
	pos := 0
	state := -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		out = append(out, pos)
		pos += utf8.RuneCountInString(cluster)
	}
	return append(out, pos)
}

// GraphemeLen returns the number of grapheme clusters in line.
func GraphemeLen(line string) int {
	return uniseg.GraphemeClusterCount(line)
}

// graphemeColToChar maps a grapheme column of line to a rune offset within
// the line. Columns past the end clamp to the line length.
func graphemeColToChar(line string, col int) int {
	starts := graphemeStarts(line)
	if col <= 0 {
		return 0
	}
	if col >= len(starts) {
		return starts[len(starts)-1]
	}
	return starts[col]
}

// charToGraphemeCol maps a rune offset within line to its grapheme column.
// Offsets inside a cluster resolve to the cluster that contains them.
func charToGraphemeCol(line string, char int) int {
	starts := graphemeStarts(line)
	for i := len(starts) - 1; i >= 0; i-- {
		if starts[i] <= char {
			return i
		}
	}
	return 0
}

// snapToGrapheme moves a rune offset within line back to the start of its
// grapheme cluster.
func snapToGrapheme(line string, char int) int {
	starts := graphemeStarts(line)
	for i := len(starts) - 1; i >= 0; i-- {
		if starts[i] <= char {
			return starts[i]
		}
	}
	return 0
}

// DisplayWidth returns the terminal cell width of s.
func DisplayWidth(s string) int {
	return uniseg.StringWidth(s)
}

// displayColToChar finds the rune offset in line whose display column is the
// closest one not exceeding goal. Wide clusters are never split.
func displayColToChar(line string, goal int) int {
	pos, width := 0, 0
	state := -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if width+w > goal {
			return pos
		}
		width += w
		pos += utf8.RuneCountInString(cluster)
	}
	return pos
}

// RuneWidth is the cell width of a single rune as used by the painter.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// UTF16Len returns the number of UTF-16 code units needed for s.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
