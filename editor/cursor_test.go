package editor

import "testing"

func TestShiftOffsetThreeCases(t *testing.T) {
	tests := []struct {
		name                    string
		off, start, end, newLen int
		want                    int
	}{
		{"before edit", 2, 5, 8, 1, 2},
		{"at edit start", 5, 5, 8, 1, 6},
		{"inside edit", 6, 5, 8, 1, 6},
		{"at edit end", 8, 5, 8, 1, 6},
		{"after edit", 10, 5, 8, 1, 8},
		{"insertion before", 9, 5, 5, 3, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shiftOffset(tt.off, tt.start, tt.end, tt.newLen); got != tt.want {
				t.Fatalf("shiftOffset(%d, %d, %d, %d) = %d, want %d", tt.off, tt.start, tt.end, tt.newLen, got, tt.want)
			}
		})
	}
}

func TestNormalizeCursorsMergesAndKeepsPrimaryFirst(t *testing.T) {
	r := NewRope("0123456789")
	cs := normalizeCursors(r, []Cursor{
		{Pos: 6, Anchor: 6, Goal: -1},
		{Pos: 2, Anchor: 2, Goal: -1},
		{Pos: 6, Anchor: 4, Goal: -1},
		{Pos: 2, Anchor: 2, Goal: -1},
	})
	if len(cs) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(cs), cs)
	}
	if s, e := cs[0].Range(); s != 4 || e != 6 {
		t.Fatalf("primary = [%d,%d], want [4,6]", s, e)
	}
	if cs[1].Pos != 2 {
		t.Fatalf("secondary = %+v, want caret at 2", cs[1])
	}
	if err := checkCursorInvariants(r, cs); err != nil {
		t.Fatal(err)
	}
}

func TestNormalizeCursorsTouchingSelectionsStaySeparate(t *testing.T) {
	r := NewRope("abcdef")
	cs := normalizeCursors(r, []Cursor{
		{Pos: 3, Anchor: 0, Goal: -1},
		{Pos: 6, Anchor: 3, Goal: -1},
	})
	if len(cs) != 2 {
		t.Fatalf("len = %d, want 2", len(cs))
	}
}

func TestNormalizeCursorsSnapsIntoClusters(t *testing.T) {
	r := NewRope("e\u0301x")
	cs := normalizeCursors(r, []Cursor{caret(1)})
	if cs[0].Pos != 0 {
		t.Fatalf("Pos = %d, want 0", cs[0].Pos)
	}
}

func TestNormalizeCursorsEmptyYieldsOrigin(t *testing.T) {
	cs := normalizeCursors(NewRope("abc"), nil)
	if len(cs) != 1 || cs[0].Pos != 0 {
		t.Fatalf("normalizeCursors(nil) = %+v", cs)
	}
}
