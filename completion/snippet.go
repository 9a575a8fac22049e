package completion

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TabStop is a snippet placeholder in rune offsets of the expanded text.
type TabStop struct {
	Index      int
	Start, End int
}

// Expansion is an expanded snippet.
type Expansion struct {
	Text  string
	Stops []TabStop
	runes int
}

// Cursor returns where the cursor lands after insertion, and the end of
// the placeholder to select: the first numbered stop, else $0, else the
// end of the text.
func (e Expansion) Cursor() (start, end int) {
	first, final := -1, -1
	for i, s := range e.Stops {
		switch {
		case s.Index == 0:
			if final < 0 {
				final = i
			}
		case first < 0 || s.Index < e.Stops[first].Index:
			first = i
		}
	}
	switch {
	case first >= 0:
		return e.Stops[first].Start, e.Stops[first].End
	case final >= 0:
		return e.Stops[final].Start, e.Stops[final].Start
	}
	return e.runes, e.runes
}

// parsePlaceholder splits the body of ${...} into its index and default
// text. Choices (${1|a,b|}) take their first option.
func parsePlaceholder(token string) (index int, text string, ok bool) {
	head, rest, hasRest := strings.Cut(token, ":")
	if bar := strings.IndexByte(token, '|'); bar > 0 && (!hasRest || bar < len(head)) {
		head = token[:bar]
		choices := strings.TrimSuffix(token[bar+1:], "|")
		rest, _, _ = strings.Cut(choices, ",")
		hasRest = true
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, "", false
	}
	if hasRest {
		return n, rest, true
	}
	return n, "", true
}

// variableDefault returns the default of a ${NAME:default} variable.
func variableDefault(token string) (string, bool) {
	name, def, _ := strings.Cut(token, ":")
	if name == "" {
		return "", false
	}
	for i, r := range name {
		if !(r == '_' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || i > 0 && r >= '0' && r <= '9') {
			return "", false
		}
	}
	return def, true
}

// closingBrace finds the } matching the ${ at i, skipping nested
// placeholders and escapes.
func closingBrace(s string, i int) int {
	depth := 0
	for j := i + 2; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '{':
			if s[j-1] == '$' {
				depth++
			}
		case '}':
			if depth == 0 {
				return j
			}
			depth--
		}
	}
	return -1
}

// ExpandSnippet turns LSP snippet syntax into plain text and tab stops.
// Nested placeholders contribute their text; unknown variables expand to
// their default.
func ExpandSnippet(snippet string) Expansion {
	var e Expansion
	var out strings.Builder
	expandInto(snippet, &out, &e)
	e.Text = out.String()
	sort.SliceStable(e.Stops, func(i, j int) bool { return e.Stops[i].Start < e.Stops[j].Start })
	return e
}

func expandInto(snippet string, out *strings.Builder, e *Expansion) {
	appendText := func(s string) {
		out.WriteString(s)
		e.runes += utf8.RuneCountInString(s)
	}
	for i := 0; i < len(snippet); {
		if snippet[i] == '\\' && i+1 < len(snippet) {
			switch next := snippet[i+1]; next {
			case '$', '{', '}', '\\':
				appendText(snippet[i+1 : i+2])
				i += 2
				continue
			}
		}
		if snippet[i] != '$' {
			_, size := utf8.DecodeRuneInString(snippet[i:])
			appendText(snippet[i : i+size])
			i += size
			continue
		}

		// ${1:name}, ${2}, ${0}, ${1|a,b|}, ${VAR:default}
		if i+1 < len(snippet) && snippet[i+1] == '{' {
			end := closingBrace(snippet, i)
			if end < 0 {
				appendText("$")
				i++
				continue
			}
			body := snippet[i+2 : end]
			if idx, text, ok := parsePlaceholder(body); ok {
				start := e.runes
				expandInto(text, out, e)
				e.Stops = append(e.Stops, TabStop{Index: idx, Start: start, End: e.runes})
			} else if def, ok := variableDefault(body); ok {
				expandInto(def, out, e)
			} else {
				appendText(snippet[i : end+1])
			}
			i = end + 1
			continue
		}

		// $1, $0
		if i+1 < len(snippet) && snippet[i+1] >= '0' && snippet[i+1] <= '9' {
			j := i + 1
			for j < len(snippet) && snippet[j] >= '0' && snippet[j] <= '9' {
				j++
			}
			idx, _ := strconv.Atoi(snippet[i+1 : j])
			e.Stops = append(e.Stops, TabStop{Index: idx, Start: e.runes, End: e.runes})
			i = j
			continue
		}

		// $VAR
		j := i + 1
		for j < len(snippet) && (snippet[j] == '_' || snippet[j] >= 'A' && snippet[j] <= 'Z') {
			j++
		}
		if j > i+1 {
			i = j
			continue
		}
		appendText("$")
		i++
	}
}
