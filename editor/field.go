package editor

import "unicode/utf8"

// Field is a single-line text input whose cursor moves by grapheme
// cluster. Newlines are not accepted.
type Field struct {
	Text   string
	Cursor int // grapheme index
}

// NewField returns a field holding text with the cursor at the end.
func NewField(text string) Field {
	f := Field{}
	f.SetText(text)
	return f
}

func (f *Field) byteAt(col int) int {
	char := graphemeColToChar(f.Text, col)
	b := 0
	for i := 0; i < char && b < len(f.Text); i++ {
		_, size := utf8.DecodeRuneInString(f.Text[b:])
		b += size
	}
	return b
}

func (f *Field) clamp() {
	if n := GraphemeLen(f.Text); f.Cursor > n {
		f.Cursor = n
	}
	if f.Cursor < 0 {
		f.Cursor = 0
	}
}

// SetText replaces the text and moves the cursor to the end.
func (f *Field) SetText(text string) {
	f.Text = stripNewlines(text)
	f.Cursor = GraphemeLen(f.Text)
}

// Clear empties the field.
func (f *Field) Clear() { f.Text, f.Cursor = "", 0 }

// Insert types s at the cursor. The cursor lands after s; combining marks
// that merge with the previous cluster do not advance it twice.
func (f *Field) Insert(s string) {
	s = stripNewlines(s)
	if s == "" {
		return
	}
	f.clamp()
	at := f.byteAt(f.Cursor)
	f.Text = f.Text[:at] + s + f.Text[at:]
	f.Cursor = GraphemeLen(f.Text[:at+len(s)])
}

// Backspace deletes the grapheme before the cursor.
func (f *Field) Backspace() bool {
	f.clamp()
	if f.Cursor == 0 {
		return false
	}
	start, end := f.byteAt(f.Cursor-1), f.byteAt(f.Cursor)
	f.Text = f.Text[:start] + f.Text[end:]
	f.Cursor--
	return true
}

// Delete removes the grapheme under the cursor.
func (f *Field) Delete() bool {
	f.clamp()
	if f.Cursor >= GraphemeLen(f.Text) {
		return false
	}
	start, end := f.byteAt(f.Cursor), f.byteAt(f.Cursor+1)
	f.Text = f.Text[:start] + f.Text[end:]
	return true
}

// DeleteWordBackward removes the word before the cursor.
func (f *Field) DeleteWordBackward() bool {
	f.clamp()
	if f.Cursor == 0 {
		return false
	}
	r := NewRope(f.Text)
	end := graphemeColToChar(f.Text, f.Cursor)
	start := prevWordBoundary(r, end)
	f.Text = r.Delete(start, end).String()
	f.Cursor = charToGraphemeCol(f.Text, start)
	return true
}

func (f *Field) Left() {
	if f.Cursor > 0 {
		f.Cursor--
	}
}

func (f *Field) Right() {
	if f.Cursor < GraphemeLen(f.Text) {
		f.Cursor++
	}
}

func (f *Field) Home() { f.Cursor = 0 }

func (f *Field) End() { f.Cursor = GraphemeLen(f.Text) }

// CursorWidth returns the display column of the cursor.
func (f *Field) CursorWidth() int {
	f.clamp()
	return DisplayWidth(f.Text[:f.byteAt(f.Cursor)])
}

func stripNewlines(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' || s[i] == '\r' {
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
