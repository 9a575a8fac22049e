package editor

import (
	"strings"
	"testing"
)

func TestRopeBasics(t *testing.T) {
	r := NewRope("hello\nworld")
	if got := r.Len(); got != 11 {
		t.Fatalf("Len() = %d, want 11", got)
	}
	if got := r.LineCount(); got != 2 {
		t.Fatalf("LineCount() = %d, want 2", got)
	}
	if got := r.Line(1); got != "world" {
		t.Fatalf("Line(1) = %q, want %q", got, "world")
	}
	if got := r.LineStart(1); got != 6 {
		t.Fatalf("LineStart(1) = %d, want 6", got)
	}
	if got := r.LineEnd(0); got != 5 {
		t.Fatalf("LineEnd(0) = %d, want 5", got)
	}
}

func TestRopeIsPersistent(t *testing.T) {
	a := NewRope("abc")
	b := a.Insert(1, "X")
	if a.String() != "abc" {
		t.Fatalf("original changed to %q", a.String())
	}
	if b.String() != "aXbc" {
		t.Fatalf("Insert = %q, want %q", b.String(), "aXbc")
	}
}

func TestRopeAppendBytesReusesBuffer(t *testing.T) {
	text := strings.Repeat("héllo wörld\n", 500)
	r := NewRope(text)
	buf := make([]byte, 0, 8)
	buf = r.AppendBytes(buf[:0])
	if string(buf) != text {
		t.Fatalf("AppendBytes produced %d bytes, want %d", len(buf), len(text))
	}
	r = r.Replace(0, 5, "bye")
	buf = r.AppendBytes(buf[:0])
	if string(buf) != r.String() {
		t.Fatalf("AppendBytes after edit = %q..., want %q...", buf[:12], r.String()[:12])
	}
}

func TestRopeLargeEditsAcrossLeaves(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		sb.WriteString("line éè ")
		sb.WriteString(strings.Repeat("x", i%7))
		sb.WriteByte('\n')
	}
	text := sb.String()
	r := NewRope(text)
	if r.String() != text {
		t.Fatal("String() does not round trip")
	}
	runes := []rune(text)
	r = r.Replace(1000, 5000, "Z\nZ")
	want := string(runes[:1000]) + "Z\nZ" + string(runes[5000:])
	if r.String() != want {
		t.Fatal("Replace across leaves produced wrong text")
	}
	if got, w := r.LineCount(), strings.Count(want, "\n")+1; got != w {
		t.Fatalf("LineCount() = %d, want %d", got, w)
	}
	if got := r.Slice(995, 1006); got != string([]rune(want)[995:1006]) {
		t.Fatalf("Slice = %q", got)
	}
}

func TestRopeByteCharConversions(t *testing.T) {
	r := NewRope("aé€z")
	tests := []struct{ char, byteOff int }{
		{0, 0}, {1, 1}, {2, 3}, {3, 6}, {4, 7},
	}
	for _, tt := range tests {
		if got := r.CharToByte(tt.char); got != tt.byteOff {
			t.Errorf("CharToByte(%d) = %d, want %d", tt.char, got, tt.byteOff)
		}
		if got := r.ByteToChar(tt.byteOff); got != tt.char {
			t.Errorf("ByteToChar(%d) = %d, want %d", tt.byteOff, got, tt.char)
		}
	}
}

func TestRopeClampsOutOfRange(t *testing.T) {
	r := NewRope("abc")
	if got := r.Insert(99, "d").String(); got != "abcd" {
		t.Fatalf("Insert past end = %q", got)
	}
	if got := r.Delete(-5, 1).String(); got != "bc" {
		t.Fatalf("Delete before start = %q", got)
	}
	if got := r.CharToLine(42); got != 0 {
		t.Fatalf("CharToLine past end = %d", got)
	}
}

func TestRopeEqual(t *testing.T) {
	a := NewRope(strings.Repeat("ab", 600))
	b := NewRope(strings.Repeat("a", 1)).Insert(1, strings.Repeat("ba", 599)+"b")
	if !a.Equal(b) {
		t.Fatal("ropes with the same text should be equal")
	}
	if a.Equal(b.Insert(0, "x")) {
		t.Fatal("different ropes reported equal")
	}
}
