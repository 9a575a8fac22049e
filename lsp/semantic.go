package lsp

import (
	"github.com/odvcencio/zcode/editor"
	"github.com/odvcencio/zcode/syntax"
)

// Legend is the server's semantic token legend.
type Legend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

var semanticKinds = map[string]syntax.TokenKind{
	"namespace":     syntax.KindNamespace,
	"type":          syntax.KindType,
	"class":         syntax.KindType,
	"enum":          syntax.KindType,
	"interface":     syntax.KindType,
	"struct":        syntax.KindType,
	"typeParameter": syntax.KindType,
	"parameter":     syntax.KindParameter,
	"variable":      syntax.KindVariable,
	"property":      syntax.KindProperty,
	"enumMember":    syntax.KindEnumMember,
	"event":         syntax.KindProperty,
	"function":      syntax.KindFunction,
	"method":        syntax.KindMethod,
	"macro":         syntax.KindMacro,
	"keyword":       syntax.KindKeyword,
	"modifier":      syntax.KindKeyword,
	"comment":       syntax.KindComment,
	"string":        syntax.KindString,
	"number":        syntax.KindNumber,
	"regexp":        syntax.KindString,
	"operator":      syntax.KindOperator,
	"decorator":     syntax.KindAttribute,
	"label":         syntax.KindLabel,
}

// readonlyKinds become constants when the token carries the readonly
// modifier.
var readonlyKinds = map[string]bool{
	"variable":  true,
	"parameter": true,
	"property":  true,
	"event":     true,
}

// tokenKind resolves a legend type index and modifier bitset.
func (l Legend) tokenKind(typ, mods uint32) syntax.TokenKind {
	if int(typ) >= len(l.TokenTypes) {
		return syntax.KindNone
	}
	name := l.TokenTypes[typ]
	if readonlyKinds[name] {
		for i, m := range l.TokenModifiers {
			if m == "readonly" && i < 32 && mods&(1<<uint(i)) != 0 {
				return syntax.KindConstant
			}
		}
	}
	if k, ok := semanticKinds[name]; ok {
		return k
	}
	return syntax.KindFromName(name)
}

// DecodeSemanticTokens turns the relative token stream into per-line spans
// in byte columns of text. Lines without tokens are nil.
func DecodeSemanticTokens(data []uint32, legend Legend, text editor.Rope, enc Encoding) [][]syntax.Span {
	lines := make([][]syntax.Span, text.LineCount())
	row, col := 0, 0
	var lineText string
	lineRow := -1
	for i := 0; i+4 < len(data); i += 5 {
		deltaLine, deltaStart, length := int(data[i]), int(data[i+1]), int(data[i+2])
		if deltaLine > 0 {
			row += deltaLine
			col = deltaStart
		} else {
			col += deltaStart
		}
		if row >= len(lines) {
			break
		}
		kind := legend.tokenKind(data[i+3], data[i+4])
		if kind == syntax.KindNone || length <= 0 {
			continue
		}
		if lineRow != row {
			lineText, lineRow = text.Line(row), row
		}
		start := enc.ByteCol(lineText, col)
		end := enc.ByteCol(lineText, col+length)
		if end > start {
			lines[row] = append(lines[row], syntax.Span{StartCol: start, EndCol: end, Kind: kind})
		}
	}
	for i, spans := range lines {
		if spans != nil {
			lines[i] = syntax.NormalizeSpans(spans)
		}
	}
	return lines
}
