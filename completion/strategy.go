// Package completion decides when to ask a language server for
// completions and how to present and insert what it returns.
package completion

import (
	"strings"
	"unicode"
)

// Context is the cursor's line and rune column, after any typed character
// has been inserted.
type Context struct {
	Line string
	Col  int
}

func (c Context) runes() []rune { return []rune(c.Line) }

// before returns the n runes ending at the cursor.
func (c Context) before(n int) string {
	r := c.runes()
	col := min(max(c.Col, 0), len(r))
	return string(r[max(col-n, 0):col])
}

// SignatureAction is what a typed character does to signature help.
type SignatureAction int

const (
	SignatureNone SignatureAction = iota
	SignatureOpen
	SignatureKeep
	SignatureClose
)

// SignatureTriggers are the server's signature help characters.
type SignatureTriggers struct {
	Trigger   []string
	Retrigger []string
}

// Strategy is the per-language completion behaviour. Implementations are
// stateless.
type Strategy interface {
	// DebounceOn reports whether typing ch schedules a debounced request.
	DebounceOn(ch rune) bool
	// Allowed reports whether completion makes sense at the cursor.
	Allowed(c Context) bool
	// KeepsOpen reports whether typing ch leaves a visible popup open.
	KeepsOpen(ch rune) bool
	// PrefixBounds returns the rune columns of the text the popup filters
	// on. end is the cursor column.
	PrefixBounds(c Context) (start, end int)
	// TriggersRequest reports whether ch, just typed, asks the server
	// immediately. triggers are the server's trigger characters.
	TriggersRequest(c Context, ch rune, triggers []string) bool
	// Signature maps a typed character to a signature help action.
	Signature(ch rune, t SignatureTriggers) SignatureAction
}

// For returns the strategy for a language id.
func For(lang string) Strategy {
	switch lang {
	case "c", "cpp", "objective-c", "objective-cpp":
		return cStrategy{}
	}
	return defaultStrategy{}
}

func isIdent(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

type defaultStrategy struct{}

func (defaultStrategy) DebounceOn(ch rune) bool { return isIdent(ch) || ch == '.' || ch == ':' }

func (defaultStrategy) Allowed(c Context) bool { return !inStringOrComment(c) }

func (defaultStrategy) KeepsOpen(ch rune) bool { return isIdent(ch) }

func (defaultStrategy) PrefixBounds(c Context) (int, int) { return identBounds(c) }

func (defaultStrategy) TriggersRequest(c Context, ch rune, triggers []string) bool {
	if inStringOrComment(c) {
		return false
	}
	if len(triggers) > 0 {
		return typedTrigger(c, triggers)
	}
	return ch == '.' || (ch == ':' && c.before(2) == "::")
}

func (defaultStrategy) Signature(ch rune, t SignatureTriggers) SignatureAction {
	return signatureAction(ch, t)
}

// cStrategy adds #include paths and the -> member operator.
type cStrategy struct{}

func (cStrategy) DebounceOn(ch rune) bool {
	return defaultStrategy{}.DebounceOn(ch) || ch == '>' || ch == '/' || ch == '<' || ch == '"'
}

func (cStrategy) Allowed(c Context) bool {
	if _, ok := includePath(c); ok {
		return true
	}
	return !inStringOrComment(c)
}

func (cStrategy) KeepsOpen(ch rune) bool { return isIdent(ch) || ch == '.' || ch == '-' }

func (cStrategy) PrefixBounds(c Context) (int, int) {
	if start, ok := includePath(c); ok {
		r := c.runes()
		col := min(c.Col, len(r))
		for i := col - 1; i >= start; i-- {
			if r[i] == '/' {
				return i + 1, col
			}
		}
		return start, col
	}
	return identBounds(c)
}

func (cStrategy) TriggersRequest(c Context, ch rune, triggers []string) bool {
	if _, ok := includePath(c); ok {
		return ch == '<' || ch == '"' || ch == '/'
	}
	if inStringOrComment(c) {
		return false
	}
	switch {
	case ch == '>' && c.before(2) == "->":
		return true
	case ch == '.':
		return !isNumberDot(c)
	case ch == ':' && c.before(2) == "::":
		return true
	}
	switch ch {
	case '>', ':', '<', '"', '/':
		// Only meaningful in the contexts handled above.
		return false
	}
	return typedTrigger(c, triggers)
}

func (cStrategy) Signature(ch rune, t SignatureTriggers) SignatureAction {
	return signatureAction(ch, t)
}

// includePath reports whether the cursor is inside the path of an #include
// directive and returns the rune column where the path starts.
func includePath(c Context) (int, bool) {
	r := c.runes()
	col := min(max(c.Col, 0), len(r))
	i := 0
	for i < len(r) && (r[i] == ' ' || r[i] == '\t') {
		i++
	}
	if i >= len(r) || r[i] != '#' {
		return 0, false
	}
	i++
	for i < len(r) && (r[i] == ' ' || r[i] == '\t') {
		i++
	}
	const kw = "include"
	if !strings.HasPrefix(string(r[i:]), kw) {
		return 0, false
	}
	i += len(kw)
	for i < len(r) && (r[i] == ' ' || r[i] == '\t') {
		i++
	}
	if i >= len(r) || (r[i] != '<' && r[i] != '"') || col <= i {
		return 0, false
	}
	close := '>'
	if r[i] == '"' {
		close = '"'
	}
	for j := i + 1; j < col; j++ {
		if r[j] == close {
			return 0, false
		}
	}
	return i + 1, true
}

// isNumberDot reports whether the '.' before the cursor is a decimal point.
func isNumberDot(c Context) bool {
	r := c.runes()
	col := min(c.Col, len(r))
	if col < 2 {
		return false
	}
	i := col - 2
	for i >= 0 && isIdent(r[i]) {
		i--
	}
	return i+1 < col-1 && unicode.IsDigit(r[i+1])
}

func identBounds(c Context) (int, int) {
	r := c.runes()
	col := min(max(c.Col, 0), len(r))
	start := col
	for start > 0 && isIdent(r[start-1]) {
		start--
	}
	return start, col
}

func typedTrigger(c Context, triggers []string) bool {
	for _, t := range triggers {
		if t != "" && strings.HasSuffix(c.before(len([]rune(t))), t) {
			return true
		}
	}
	return false
}

// inStringOrComment is a line-local heuristic: an unterminated quote before
// the cursor, or a // comment marker outside quotes.
func inStringOrComment(c Context) bool {
	r := c.runes()
	col := min(max(c.Col, 0), len(r))
	var quote rune
	for i := 0; i < col; i++ {
		ch := r[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'' || ch == '`':
			quote = ch
		case ch == '/' && i+1 < col && r[i+1] == '/':
			return true
		}
	}
	return quote != 0
}

func signatureAction(ch rune, t SignatureTriggers) SignatureAction {
	s := string(ch)
	trigger := t.Trigger
	if len(trigger) == 0 {
		trigger = []string{"("}
	}
	retrigger := t.Retrigger
	if len(retrigger) == 0 {
		retrigger = []string{","}
	}
	switch {
	case contains(trigger, s):
		return SignatureOpen
	case contains(retrigger, s):
		return SignatureKeep
	case ch == ')':
		return SignatureClose
	}
	return SignatureNone
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
