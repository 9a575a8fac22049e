package editor

// bracketPairs maps each bracket character to its matching partner.
var bracketPairs = map[rune]rune{
	'(': ')',
	')': '(',
	'{': '}',
	'}': '{',
	'[': ']',
	']': '[',
}

// openBrackets is the set of opening bracket characters.
var openBrackets = map[rune]bool{
	'(': true,
	'{': true,
	'[': true,
}

// maxBracketScan bounds how far a match is searched for.
const maxBracketScan = 1 << 20

// matchBracket finds the partner of the bracket at pos, scanning at most
// maxBracketScan runes.
func matchBracket(r Rope, pos int) (int, bool) {
	n := r.Len()
	if pos < 0 || pos >= n {
		return 0, false
	}
	ch := r.RuneAt(pos)
	partner, isBracket := bracketPairs[ch]
	if !isBracket {
		return 0, false
	}
	step := -1
	if openBrackets[ch] {
		step = 1
	}
	depth := 1
	for i, scanned := pos+step, 0; i >= 0 && i < n && scanned < maxBracketScan; i, scanned = i+step, scanned+1 {
		switch r.RuneAt(i) {
		case ch:
			depth++
		case partner:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// MatchingBracket returns the bracket under the primary caret (or just before
// it) and its partner.
func (b *TextBuffer) MatchingBracket() (at, match Position, ok bool) {
	pos := b.cursors[0].Pos
	for _, p := range []int{pos, pos - 1} {
		if m, found := matchBracket(b.rope, p); found {
			return b.PositionOf(p), b.PositionOf(m), true
		}
	}
	return Position{}, Position{}, false
}

// JumpToMatchingBracket moves the primary caret to the partner bracket.
func (b *TextBuffer) JumpToMatchingBracket() bool {
	_, m, ok := b.MatchingBracket()
	if ok {
		b.SetCursor(m)
	}
	return ok
}
