package syntax

import "sort"

// TokenKind is the fixed set of highlight classes the painter knows how to
// colour. Tree-sitter captures, chroma tokens and LSP semantic tokens all
// map onto it.
type TokenKind uint8

const (
	KindNone TokenKind = iota
	KindKeyword
	KindString
	KindComment
	KindNumber
	KindFunction
	KindMethod
	KindType
	KindVariable
	KindParameter
	KindProperty
	KindConstant
	KindNamespace
	KindOperator
	KindMacro
	KindAttribute
	KindTag
	KindPunctuation
	KindEnumMember
	KindLabel
)

var kindNames = [...]string{
	KindNone:        "none",
	KindKeyword:     "keyword",
	KindString:      "string",
	KindComment:     "comment",
	KindNumber:      "number",
	KindFunction:    "function",
	KindMethod:      "method",
	KindType:        "type",
	KindVariable:    "variable",
	KindParameter:   "parameter",
	KindProperty:    "property",
	KindConstant:    "constant",
	KindNamespace:   "namespace",
	KindOperator:    "operator",
	KindMacro:       "macro",
	KindAttribute:   "attribute",
	KindTag:         "tag",
	KindPunctuation: "punctuation",
	KindEnumMember:  "enumMember",
	KindLabel:       "label",
}

func (k TokenKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "none"
}

// KindFromName maps a theme or capture name such as "keyword" or
// "function.method" to a kind. Dotted names fall back to their first
// segment.
func KindFromName(name string) TokenKind {
	for i, n := range kindNames {
		if n == name {
			return TokenKind(i)
		}
	}
	if k, ok := captureAliases[name]; ok {
		return k
	}
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			if k, ok := captureAliases[name[:i]]; ok {
				return k
			}
			return KindFromName(name[:i])
		}
	}
	return KindNone
}

var captureAliases = map[string]TokenKind{
	"boolean":       KindConstant,
	"null":          KindConstant,
	"escape":        KindString,
	"character":     KindString,
	"float":         KindNumber,
	"module":        KindNamespace,
	"constructor":   KindType,
	"field":         KindProperty,
	"include":       KindKeyword,
	"conditional":   KindKeyword,
	"repeat":        KindKeyword,
	"exception":     KindKeyword,
	"preproc":       KindMacro,
	"delimiter":     KindPunctuation,
	"enum":          KindType,
	"interface":     KindType,
	"struct":        KindType,
	"class":         KindType,
	"typeParameter": KindType,
	"event":         KindProperty,
	"modifier":      KindKeyword,
	"regexp":        KindString,
	"decorator":     KindAttribute,
	"text":          KindNone,
}

// Span colours byte columns [StartCol, EndCol) of one line.
type Span struct {
	StartCol int
	EndCol   int
	Kind     TokenKind
}

// NormalizeSpans sorts spans by start column, clips overlaps in favour of the
// earlier span and merges touching spans of the same kind. Empty spans and
// KindNone spans are dropped.
func NormalizeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.EndCol > s.StartCol && s.Kind != KindNone {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartCol < sorted[j].StartCol })
	out := sorted[:0]
	for _, s := range sorted {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if s.StartCol < prev.EndCol {
				s.StartCol = prev.EndCol
				if s.StartCol >= s.EndCol {
					continue
				}
			}
			if s.Kind == prev.Kind && s.StartCol == prev.EndCol {
				prev.EndCol = s.EndCol
				continue
			}
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// KindAt returns the kind covering byte column col, or KindNone.
func KindAt(spans []Span, col int) TokenKind {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].EndCol > col })
	if i < len(spans) && spans[i].StartCol <= col {
		return spans[i].Kind
	}
	return KindNone
}
