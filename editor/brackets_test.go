package editor

import (
	"strings"
	"testing"
)

func TestMatchingBracketAroundCaret(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		caret  int
		at     Position
		match  Position
		wantOK bool
	}{
		{"on open paren", "a(b)", 1, Position{0, 1}, Position{0, 3}, true},
		{"after close paren", "a(b)", 4, Position{0, 3}, Position{0, 1}, true},
		{"nested picks the outer pair", "((a))", 0, Position{0, 0}, Position{0, 4}, true},
		{"brace across lines", "f {\n\tx\n}", 2, Position{0, 2}, Position{2, 0}, true},
		{"square bracket from the close", "[x]", 3, Position{0, 2}, Position{0, 0}, true},
		{"bracket under caret wins", ")(x)", 1, Position{0, 1}, Position{0, 3}, true},
		{"unbalanced", "a(b", 2, Position{}, Position{}, false},
		{"no bracket", "abc", 1, Position{}, Position{}, false},
		{"empty", "", 0, Position{}, Position{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTextBuffer(tt.text)
			b.SetCursorOffset(tt.caret)
			at, match, ok := b.MatchingBracket()
			if ok != tt.wantOK || at != tt.at || match != tt.match {
				t.Errorf("MatchingBracket() = (%v, %v, %v), want (%v, %v, %v)",
					at, match, ok, tt.at, tt.match, tt.wantOK)
			}
		})
	}
}

func TestJumpToMatchingBracketRoundTrip(t *testing.T) {
	b := NewTextBuffer("if (a[0] == b) {\n}")
	b.SetCursorOffset(3)
	if !b.JumpToMatchingBracket() {
		t.Fatal("JumpToMatchingBracket found no partner for (")
	}
	if got := b.Primary().Pos; got != 13 {
		t.Fatalf("caret after jump = %d, want 13", got)
	}
	if !b.JumpToMatchingBracket() {
		t.Fatal("JumpToMatchingBracket found no partner for )")
	}
	if got := b.Primary().Pos; got != 3 {
		t.Fatalf("caret after second jump = %d, want 3", got)
	}

	b.SetCursorOffset(1)
	if b.JumpToMatchingBracket() {
		t.Fatal("JumpToMatchingBracket moved without a bracket at the caret")
	}
	if got := b.Primary().Pos; got != 1 {
		t.Fatalf("caret moved to %d", got)
	}
}

func TestMatchingBracketScanLimit(t *testing.T) {
	near := NewRope("(" + strings.Repeat("x", maxBracketScan-1) + ")")
	if m, ok := matchBracket(near, 0); !ok || m != maxBracketScan {
		t.Fatalf("matchBracket within the limit = (%d, %v), want (%d, true)", m, ok, maxBracketScan)
	}
	far := NewRope("(" + strings.Repeat("x", maxBracketScan) + ")")
	if _, ok := matchBracket(far, 0); ok {
		t.Fatal("matchBracket found a partner beyond the scan limit")
	}
	if _, ok := matchBracket(far, far.Len()-1); ok {
		t.Fatal("backward scan found a partner beyond the scan limit")
	}
}
