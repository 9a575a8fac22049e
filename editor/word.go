package editor

import "unicode"

type runeClass int

const (
	classSpace runeClass = iota
	classWord
	classPunct
)

// isCJKPunct covers CJK symbols and punctuation plus the fullwidth ASCII
// punctuation block; these always break words.
func isCJKPunct(r rune) bool {
	switch {
	case r >= 0x3000 && r <= 0x303F:
		return true
	case r >= 0xFF01 && r <= 0xFF0F, r >= 0xFF1A && r <= 0xFF20,
		r >= 0xFF3B && r <= 0xFF40, r >= 0xFF5B && r <= 0xFF65:
		return true
	case r == 0x2018 || r == 0x2019 || r == 0x201C || r == 0x201D || r == 0x2026:
		return true
	}
	return false
}

// IsWordRune reports whether r continues an identifier-like word: letters,
// marks, digits, letter numbers, connector punctuation, zero-width joiners
// and underscore.
func IsWordRune(r rune) bool {
	if r == '_' || r == 0x200C || r == 0x200D {
		return true
	}
	if isCJKPunct(r) {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me, unicode.Nl, unicode.Pc)
}

func classOf(r rune) runeClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case IsWordRune(r):
		return classWord
	default:
		return classPunct
	}
}

// nextWordBoundary skips whitespace after pos, then the run of the class
// found there. The result never splits a grapheme cluster.
func nextWordBoundary(r Rope, pos int) int {
	return clusterEnd(r, scanWordForward(r, pos))
}

// prevWordBoundary mirrors nextWordBoundary towards the start of text.
func prevWordBoundary(r Rope, pos int) int {
	return snapOffset(r, scanWordBackward(r, pos))
}

// clusterEnd moves pos forward to the end of the cluster it falls inside.
func clusterEnd(r Rope, pos int) int {
	if s := snapOffset(r, pos); s != pos {
		return nextBoundary(r, s)
	}
	return pos
}

func scanWordForward(r Rope, pos int) int {
	n := r.Len()
	for pos < n && classOf(r.RuneAt(pos)) == classSpace {
		pos++
	}
	if pos >= n {
		return n
	}
	cls := classOf(r.RuneAt(pos))
	for pos < n && classOf(r.RuneAt(pos)) == cls {
		pos++
	}
	return pos
}

func scanWordBackward(r Rope, pos int) int {
	for pos > 0 && classOf(r.RuneAt(pos-1)) == classSpace {
		pos--
	}
	if pos <= 0 {
		return 0
	}
	cls := classOf(r.RuneAt(pos - 1))
	for pos > 0 && classOf(r.RuneAt(pos-1)) == cls {
		pos--
	}
	return pos
}

// wordRangeAt returns the word (or punctuation run) touching pos. Whitespace
// yields an empty range at pos.
func wordRangeAt(r Rope, pos int) (int, int) {
	n := r.Len()
	if n == 0 {
		return 0, 0
	}
	probe := pos
	if probe >= n || (probe > 0 && classOf(r.RuneAt(probe)) != classWord && classOf(r.RuneAt(probe-1)) == classWord) {
		probe--
	}
	if probe < 0 {
		return pos, pos
	}
	cls := classOf(r.RuneAt(probe))
	if cls == classSpace {
		return pos, pos
	}
	start, end := probe, probe+1
	for start > 0 && classOf(r.RuneAt(start-1)) == cls {
		start--
	}
	for end < n && classOf(r.RuneAt(end)) == cls {
		end++
	}
	return start, end
}
