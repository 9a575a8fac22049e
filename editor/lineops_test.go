package editor

import "testing"

func TestLineCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 1},
		{"hello", 1},
		{"a\nb\nc", 3},
		{"a\nb\n", 3},
	}
	for _, tt := range tests {
		if got := LineCount(tt.text); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestDeleteLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		row  int
		want string
	}{
		{"single line", "hello", 0, ""},
		{"first of two", "first\nsecond", 0, "second"},
		{"last of two", "first\nsecond", 1, "first"},
		{"middle", "aaa\nbbb\nccc", 1, "aaa\nccc"},
		{"empty text", "", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTextBuffer(tt.text)
			b.SetCursor(Position{Row: tt.row})
			b.DeleteLines(1)
			if got := b.Text(); got != tt.want {
				t.Fatalf("DeleteLines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeleteLinesSelectionEndingAtColumnZero(t *testing.T) {
	b := NewTextBuffer("aaa\nbbb\nccc")
	b.SetSelection(0, 4)
	b.DeleteLines(1)
	if got := b.Text(); got != "bbb\nccc" {
		t.Fatalf("DeleteLines = %q, want %q", got, "bbb\nccc")
	}
}

func TestMoveLines(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		row   int
		delta int
		want  string
		row2  int
	}{
		{"down", "aaa\nbbb\nccc", 0, 1, "bbb\naaa\nccc", 1},
		{"up", "aaa\nbbb\nccc", 2, -1, "aaa\nccc\nbbb", 1},
		{"first up", "aaa\nbbb", 0, -1, "aaa\nbbb", 0},
		{"last down", "aaa\nbbb", 1, 1, "aaa\nbbb", 1},
		{"middle down", "aaa\nbbb\nccc", 1, 1, "aaa\nccc\nbbb", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTextBuffer(tt.text)
			b.SetCursor(Position{Row: tt.row, Col: 1})
			b.MoveLines(tt.delta, 1)
			if got := b.Text(); got != tt.want {
				t.Fatalf("MoveLines = %q, want %q", got, tt.want)
			}
			if got := b.Cursor(); got != (Position{Row: tt.row2, Col: 1}) {
				t.Fatalf("cursor = %+v, want row %d col 1", got, tt.row2)
			}
		})
	}
}

func TestMoveLinesIsOneUndoStep(t *testing.T) {
	b := NewTextBuffer("aaa\nbbb\nccc")
	b.MoveLines(1, 1)
	b.Undo()
	if got := b.Text(); got != "aaa\nbbb\nccc" {
		t.Fatalf("after undo = %q", got)
	}
}

func TestDuplicateLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		row  int
		want string
	}{
		{"first", "aaa\nbbb\nccc", 0, "aaa\naaa\nbbb\nccc"},
		{"middle", "aaa\nbbb\nccc", 1, "aaa\nbbb\nbbb\nccc"},
		{"last", "aaa\nbbb\nccc", 2, "aaa\nbbb\nccc\nccc"},
		{"single", "only", 0, "only\nonly"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewTextBuffer(tt.text)
			b.SetCursor(Position{Row: tt.row, Col: 2})
			b.DuplicateLines(1)
			if got := b.Text(); got != tt.want {
				t.Fatalf("DuplicateLines = %q, want %q", got, tt.want)
			}
			if got := b.Cursor(); got != (Position{Row: tt.row + 1, Col: 2}) {
				t.Fatalf("cursor = %+v, want on the copy", got)
			}
		})
	}
}

func TestIndentAndOutdentLines(t *testing.T) {
	b := NewTextBuffer("a\nb\nc")
	b.SetSelection(0, 3)
	b.IndentLines("\t", 1)
	if got := b.Text(); got != "\ta\n\tb\nc" {
		t.Fatalf("IndentLines = %q", got)
	}
	b.OutdentLines(4, 2)
	if got := b.Text(); got != "a\nb\nc" {
		t.Fatalf("OutdentLines = %q", got)
	}
}

func TestOutdentSpaces(t *testing.T) {
	b := NewTextBuffer("      x")
	b.OutdentLines(4, 1)
	if got := b.Text(); got != "  x" {
		t.Fatalf("OutdentLines = %q, want %q", got, "  x")
	}
}
