package editor

import "strings"

// DetectIndentStyle returns the indent unit used by text: a tab, or the
// narrowest run of leading spaces when space-indented lines dominate.
func DetectIndentStyle(text string) string {
	tabs, spaces, narrowest := 0, 0, 0
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "\t"):
			tabs++
		case strings.HasPrefix(line, " "):
			spaces++
			w := len(line) - len(strings.TrimLeft(line, " "))
			if w == len(line) {
				continue
			}
			if narrowest == 0 || w < narrowest {
				narrowest = w
			}
		}
	}
	if spaces > tabs && narrowest > 0 {
		return strings.Repeat(" ", narrowest)
	}
	return "\t"
}

// leadingIndent returns the run of spaces and tabs that starts line.
func leadingIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// opensBlock reports whether a line ending in r starts an indented block.
func opensBlock(r byte) bool {
	switch r {
	case '{', '(', '[', ':':
		return true
	}
	return false
}

// ComputeIndent returns the indentation for a new line typed after line. The
// indent is copied and grows by one unit after an opening bracket or a
// trailing colon.
func ComputeIndent(line string) string {
	indent := leadingIndent(line)
	trimmed := strings.TrimRight(line, " \t")
	if trimmed == "" || !opensBlock(trimmed[len(trimmed)-1]) {
		return indent
	}
	if indent == "" || strings.Contains(indent, "\t") {
		return indent + "\t"
	}
	return indent + "    "
}
