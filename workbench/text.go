package workbench

import (
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"
)

// cell is one grapheme cluster of a line with its screen width and its
// rune and byte offsets in the line.
type cell struct {
	g    string
	w    int
	char int
	byte int
}

// splitCells breaks line into grapheme cells. A tab takes tabSize cells;
// zero width clusters take one so they stay visible and clickable.
func splitCells(line string, tabSize int) []cell {
	out := make([]cell, 0, len(line))
	state := -1
	rest := line
	char, off := 0, 0
	for len(rest) > 0 {
		var g string
		var w int
		g, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if g == "\t" {
			w = max(tabSize, 1)
		}
		out = append(out, cell{g: g, w: max(w, 1), char: char, byte: off})
		char += utf8.RuneCountInString(g)
		off += len(g)
	}
	return out
}

func graphemes(s string) []string {
	var out []string
	state := -1
	for len(s) > 0 {
		var g string
		g, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, g)
	}
	return out
}

// displayCol is the screen column of grapheme col in line.
func displayCol(line string, col, tabSize int) int {
	x := 0
	for i, c := range splitCells(line, tabSize) {
		if i >= col {
			break
		}
		x += c.w
	}
	return x
}

// colAtDisplay returns the grapheme column whose cells cover screen
// column x, or the line end past it.
func colAtDisplay(line string, x, tabSize int) int {
	cells := splitCells(line, tabSize)
	w := 0
	for i, c := range cells {
		if x < w+c.w {
			return i
		}
		w += c.w
	}
	return len(cells)
}

// clip returns the w cells of s starting at cell start, keeping styles.
func clip(s string, start, w int) string {
	if w <= 0 {
		return ""
	}
	if start <= 0 {
		return ansi.Truncate(s, w, "")
	}
	return ansi.TruncateLeft(ansi.Truncate(s, start+w, ""), start, "")
}
