package editor

import "testing"

func TestFieldInsertAndMove(t *testing.T) {
	var f Field
	f.Insert("ab")
	f.Left()
	f.Insert("\U0001F468\u200D\U0001F469")
	if f.Text != "a\U0001F468\u200D\U0001F469b" {
		t.Fatalf("Text = %q", f.Text)
	}
	if f.Cursor != 2 {
		t.Fatalf("Cursor = %d, want 2", f.Cursor)
	}
	f.Backspace()
	if f.Text != "ab" || f.Cursor != 1 {
		t.Fatalf("after Backspace = %q cursor %d", f.Text, f.Cursor)
	}
	f.Home()
	f.Delete()
	if f.Text != "b" || f.Cursor != 0 {
		t.Fatalf("after Delete = %q cursor %d", f.Text, f.Cursor)
	}
	f.End()
	if f.Cursor != 1 {
		t.Fatalf("End cursor = %d", f.Cursor)
	}
}

func TestFieldCombiningMarkDoesNotAdvanceTwice(t *testing.T) {
	f := NewField("e")
	f.Insert("\u0301")
	if f.Cursor != 1 {
		t.Fatalf("Cursor = %d, want 1", f.Cursor)
	}
}

func TestFieldStripsNewlines(t *testing.T) {
	f := NewField("a\nb\r\n")
	if f.Text != "ab" {
		t.Fatalf("Text = %q", f.Text)
	}
}

func TestFieldDeleteWordBackward(t *testing.T) {
	f := NewField("foo bar_baz")
	f.DeleteWordBackward()
	if f.Text != "foo " || f.Cursor != 4 {
		t.Fatalf("after DeleteWordBackward = %q cursor %d", f.Text, f.Cursor)
	}
}

func TestFieldCursorWidth(t *testing.T) {
	f := NewField("世界x")
	f.Left()
	if got := f.CursorWidth(); got != 4 {
		t.Fatalf("CursorWidth = %d, want 4", got)
	}
}
