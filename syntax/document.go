package syntax

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	sitter "github.com/mitjafelicijan/go-tree-sitter"

	"github.com/odvcencio/zcode/editor"
)

// Document keeps a parse tree and highlight cache in step with one buffer.
// Edits are fed to the tree as InputEdits so reparsing is incremental.
// Languages without a grammar or query are highlighted by chroma.
type Document struct {
	lang   *Language
	path   string
	parser *sitter.Parser
	tree   *sitter.Tree
	query  *sitter.Query
	lexer  chroma.Lexer
	rope   editor.Rope
	src    []byte
	lines  [][]Span
	folds  []editor.FoldRegion
	err    error
}

// NewDocument parses src for lang. A nil lang resolves only a chroma lexer
// from path.
func NewDocument(lang *Language, path, src string) *Document {
	d := &Document{lang: lang, path: path}
	if lang != nil && lang.Grammar != nil {
		if g := lang.Grammar(); g != nil {
			d.parser = sitter.NewParser()
			d.parser.SetLanguage(g)
			if lang.HighlightQuery != "" {
				q, err := sitter.NewQuery([]byte(lang.HighlightQuery), g)
				if err != nil {
					d.err = fmt.Errorf("compile %s highlight query: %w", lang.ID, err)
				} else {
					d.query = q
				}
			}
		}
	}
	if d.query == nil {
		d.lexer = chromaLexer(lang, path)
	}
	d.Reset(editor.NewRope(src))
	return d
}

// Language returns the document language, or nil.
func (d *Document) Language() *Language { return d.lang }

// HasTree reports whether a tree-sitter parse tree backs the document.
func (d *Document) HasTree() bool { return d.tree != nil }

// Err returns the last query or parse error.
func (d *Document) Err() error { return d.err }

// Reset reparses text from scratch.
func (d *Document) Reset(text editor.Rope) {
	d.load(text)
	d.tree = nil
	d.reparse()
}

// Apply feeds the deltas of one buffer operation to the tree and reparses
// incrementally. text is the buffer after all deltas.
func (d *Document) Apply(deltas []editor.EditDelta, text editor.Rope) {
	if d.tree != nil {
		for _, dl := range deltas {
			d.tree.Edit(inputEdit(dl))
		}
	}
	d.load(text)
	d.reparse()
}

// load copies text into the reused source buffer.
func (d *Document) load(text editor.Rope) {
	d.rope = text
	d.src = text.AppendBytes(d.src[:0])
}

func inputEdit(dl editor.EditDelta) sitter.EditInput {
	return sitter.EditInput{
		StartIndex:  uint32(dl.StartByte),
		OldEndIndex: uint32(dl.OldEndByte),
		NewEndIndex: uint32(dl.NewEndByte),
		StartPoint:  sitter.Point{Row: uint32(dl.Start.Line), Column: uint32(dl.Start.Byte)},
		OldEndPoint: sitter.Point{Row: uint32(dl.OldEnd.Line), Column: uint32(dl.OldEnd.Byte)},
		NewEndPoint: sitter.Point{Row: uint32(dl.NewEnd.Line), Column: uint32(dl.NewEnd.Byte)},
	}
}

func (d *Document) reparse() {
	lineCount := d.rope.LineCount()
	if d.parser != nil {
		tree, err := d.parser.ParseCtx(context.Background(), d.tree, d.src)
		if err != nil {
			d.err = fmt.Errorf("parse %s: %w", d.lang.ID, err)
			d.tree = nil
		} else {
			d.tree = tree
		}
	}
	switch {
	case d.tree != nil && d.query != nil:
		d.lines = d.queryHighlights(lineCount)
	case d.lexer != nil:
		d.lines = chromaHighlights(d.lexer, string(d.src))
	default:
		d.lines = nil
	}
	if d.tree != nil {
		d.folds = treeFoldRegions(d.tree.RootNode())
	} else {
		d.folds = editor.DetectFoldRegions(d.rope)
	}
}

type capture struct {
	row, start, end int
	kind            TokenKind
	prio            int
}

// queryHighlights runs the highlight query over the whole tree. Where
// captures overlap, the one from the later pattern wins, so the queries list
// generic patterns before specific ones.
func (d *Document) queryHighlights(lineCount int) [][]Span {
	qc := sitter.NewQueryCursor()
	qc.Exec(d.query, d.tree.RootNode())
	var caps []capture
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			kind := KindFromName(d.query.CaptureNameForId(c.Index))
			if kind == KindNone {
				continue
			}
			sp, ep := c.Node.StartPoint(), c.Node.EndPoint()
			for row := int(sp.Row); row <= int(ep.Row) && row < lineCount; row++ {
				start, end := 0, -1
				if row == int(sp.Row) {
					start = int(sp.Column)
				}
				if row == int(ep.Row) {
					end = int(ep.Column)
				}
				caps = append(caps, capture{row: row, start: start, end: end, kind: kind, prio: int(m.PatternIndex)})
			}
		}
	}
	sort.SliceStable(caps, func(i, j int) bool { return caps[i].prio < caps[j].prio })

	lines := make([][]Span, lineCount)
	lineLens := d.lineLengths(lineCount)
	paint := make(map[int][]TokenKind)
	for _, c := range caps {
		width := lineLens[c.row]
		end := c.end
		if end < 0 || end > width {
			end = width
		}
		if c.start >= end {
			continue
		}
		cells, ok := paint[c.row]
		if !ok {
			cells = make([]TokenKind, width)
			paint[c.row] = cells
		}
		for col := c.start; col < end; col++ {
			cells[col] = c.kind
		}
	}
	for row, cells := range paint {
		lines[row] = cellsToSpans(cells)
	}
	return lines
}

func (d *Document) lineLengths(lineCount int) []int {
	lens := make([]int, lineCount)
	row, start := 0, 0
	for i, b := range d.src {
		if b == '\n' {
			lens[row] = i - start
			row++
			start = i + 1
		}
	}
	if row < lineCount {
		lens[row] = len(d.src) - start
	}
	return lens
}

func cellsToSpans(cells []TokenKind) []Span {
	var spans []Span
	for col := 0; col < len(cells); {
		k := cells[col]
		end := col + 1
		for end < len(cells) && cells[end] == k {
			end++
		}
		if k != KindNone {
			spans = append(spans, Span{StartCol: col, EndCol: end, Kind: k})
		}
		col = end
	}
	return spans
}

// Highlights returns the spans of row in byte columns. The slice is shared;
// callers must not modify it.
func (d *Document) Highlights(row int) []Span {
	if row < 0 || row >= len(d.lines) {
		return nil
	}
	return d.lines[row]
}

// FoldRegions returns the foldable line ranges found by the last parse.
func (d *Document) FoldRegions() []editor.FoldRegion {
	out := make([]editor.FoldRegion, len(d.folds))
	copy(out, d.folds)
	return out
}

// NodeKindAt returns the type of the smallest named node at row and byte
// column, or "" without a tree.
func (d *Document) NodeKindAt(row, col int) string {
	if d.tree == nil {
		return ""
	}
	p := sitter.Point{Row: uint32(row), Column: uint32(col)}
	n := d.tree.RootNode().NamedDescendantForPointRange(p, p)
	if n == nil {
		return ""
	}
	return n.Type()
}

// foldableSuffixes name node types that usually delimit a block.
var foldableSuffixes = []string{
	"block", "body", "_list", "statement", "literal_value", "object", "array",
	"element", "section", "definition", "declaration", "_item",
}

func foldable(kind string) bool {
	if kind == "comment" {
		return true
	}
	for _, s := range foldableSuffixes {
		if strings.HasSuffix(kind, s) {
			return true
		}
	}
	return false
}

// treeFoldRegions collects multi-line foldable nodes. Regions that start on
// the same line keep the largest; the walk uses an explicit stack.
func treeFoldRegions(root *sitter.Node) []editor.FoldRegion {
	if root == nil {
		return nil
	}
	byStart := make(map[int]int)
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		start, end := int(n.StartPoint().Row), int(n.EndPoint().Row)
		if n.EndPoint().Column == 0 && end > start {
			end--
		}
		if end > start && n != root && foldable(n.Type()) {
			if cur, ok := byStart[start]; !ok || end > cur {
				byStart[start] = end
			}
		}
		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			if c := n.NamedChild(i); c != nil {
				stack = append(stack, c)
			}
		}
	}
	regions := make([]editor.FoldRegion, 0, len(byStart))
	for s, e := range byStart {
		regions = append(regions, editor.FoldRegion{StartLine: s, EndLine: e})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].StartLine < regions[j].StartLine })
	return regions
}
