package syntax

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// chromaLexer resolves the fallback lexer for a language or path. It
// returns nil when chroma knows neither.
func chromaLexer(lang *Language, path string) chroma.Lexer {
	var lex chroma.Lexer
	if lang != nil && lang.ChromaLexer != "" {
		lex = lexers.Get(lang.ChromaLexer)
	}
	if lex == nil && path != "" {
		lex = lexers.Match(path)
	}
	if lex == nil {
		return nil
	}
	return chroma.Coalesce(lex)
}

// chromaKind maps a chroma token type onto the highlight kinds. Subtypes
// are checked before their categories.
func chromaKind(t chroma.TokenType) TokenKind {
	switch {
	case t == chroma.KeywordType:
		return KindType
	case t == chroma.KeywordConstant:
		return KindConstant
	case t == chroma.KeywordNamespace:
		return KindKeyword
	case t.InCategory(chroma.Keyword):
		return KindKeyword
	case t == chroma.NameFunction || t == chroma.NameFunctionMagic:
		return KindFunction
	case t == chroma.NameClass || t == chroma.NameBuiltin:
		return KindType
	case t == chroma.NameNamespace:
		return KindNamespace
	case t == chroma.NameConstant || t == chroma.NameBuiltinPseudo:
		return KindConstant
	case t == chroma.NameAttribute || t == chroma.NameDecorator:
		return KindAttribute
	case t == chroma.NameTag:
		return KindTag
	case t == chroma.NameProperty:
		return KindProperty
	case t == chroma.NameLabel:
		return KindLabel
	case t.InSubCategory(chroma.NameVariable):
		return KindVariable
	case t.InSubCategory(chroma.LiteralString):
		return KindString
	case t.InSubCategory(chroma.LiteralNumber):
		return KindNumber
	case t.InSubCategory(chroma.CommentPreproc):
		return KindMacro
	case t.InCategory(chroma.Comment):
		return KindComment
	case t.InCategory(chroma.Operator):
		return KindOperator
	case t == chroma.Punctuation:
		return KindPunctuation
	}
	return KindNone
}

// chromaHighlights tokenises src and splits the tokens into per-line spans.
// It returns nil when the lexer fails.
func chromaHighlights(lex chroma.Lexer, src string) [][]Span {
	if lex == nil {
		return nil
	}
	it, err := lex.Tokenise(nil, src)
	if err != nil {
		return nil
	}
	lines := make([][]Span, strings.Count(src, "\n")+1)
	row, col := 0, 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		kind := chromaKind(tok.Type)
		text := tok.Value
		for {
			nl := strings.IndexByte(text, '\n')
			seg := text
			if nl >= 0 {
				seg = text[:nl]
			}
			if kind != KindNone && len(seg) > 0 && row < len(lines) {
				lines[row] = append(lines[row], Span{StartCol: col, EndCol: col + len(seg), Kind: kind})
			}
			if nl < 0 {
				col += len(seg)
				break
			}
			row++
			col = 0
			text = text[nl+1:]
		}
	}
	for i := range lines {
		lines[i] = NormalizeSpans(lines[i])
	}
	return lines
}
