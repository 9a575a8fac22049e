package editor

import (
	"strings"
	"unicode/utf8"
)

const (
	// leafMax bounds the UTF-8 size of a rope leaf.
	leafMax = 512
	// maxDepth triggers a rebuild of an unbalanced rope.
	maxDepth = 48
)

// Rope is a persistent sequence of runes with a newline index. Every edit
// returns a new Rope; the receiver is never modified, so a Rope value can be
// kept as a snapshot at no cost.
type Rope struct {
	root *ropeNode
}

type ropeNode struct {
	left, right *ropeNode
	leaf        string
	runes       int
	bytes       int
	lines       int // newline count
	depth       int
}

// NewRope builds a balanced rope holding text.
func NewRope(text string) Rope {
	if text == "" {
		return Rope{}
	}
	return Rope{root: buildBalanced(chunkLeaves(text))}
}

func newLeaf(s string) *ropeNode {
	if s == "" {
		return nil
	}
	return &ropeNode{
		leaf:  s,
		runes: utf8.RuneCountInString(s),
		bytes: len(s),
		lines: strings.Count(s, "\n"),
	}
}

func (n *ropeNode) isLeaf() bool {
	return n.left == nil && n.right == nil
}

func chunkLeaves(text string) []*ropeNode {
	leaves := make([]*ropeNode, 0, len(text)/leafMax+1)
	for len(text) > 0 {
		cut := len(text)
		if cut > leafMax {
			cut = leafMax
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = leafMax
			}
		}
		leaves = append(leaves, newLeaf(text[:cut]))
		text = text[cut:]
	}
	return leaves
}

func buildBalanced(leaves []*ropeNode) *ropeNode {
	switch len(leaves) {
	case 0:
		return nil
	case 1:
		return leaves[0]
	}
	mid := len(leaves) / 2
	return concatNodes(buildBalanced(leaves[:mid]), buildBalanced(leaves[mid:]))
}

func concatNodes(l, r *ropeNode) *ropeNode {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	depth := l.depth
	if r.depth > depth {
		depth = r.depth
	}
	return &ropeNode{
		left:  l,
		right: r,
		runes: l.runes + r.runes,
		bytes: l.bytes + r.bytes,
		lines: l.lines + r.lines,
		depth: depth + 1,
	}
}

func join(l, r *ropeNode) *ropeNode {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	if l.isLeaf() && r.isLeaf() && l.bytes+r.bytes <= leafMax {
		return newLeaf(l.leaf + r.leaf)
	}
	n := concatNodes(l, r)
	if n.depth > maxDepth {
		return rebalance(n)
	}
	return n
}

func rebalance(n *ropeNode) *ropeNode {
	var leaves []*ropeNode
	collectLeaves(n, &leaves)
	return buildBalanced(leaves)
}

func collectLeaves(n *ropeNode, out *[]*ropeNode) {
	stack := []*ropeNode{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil {
			continue
		}
		if cur.isLeaf() {
			*out = append(*out, cur)
			continue
		}
		stack = append(stack, cur.right, cur.left)
	}
}

// runeIndexToByte returns the byte index of the at-th rune of s.
func runeIndexToByte(s string, at int) int {
	if at <= 0 {
		return 0
	}
	i := 0
	for b := range s {
		if i == at {
			return b
		}
		i++
	}
	return len(s)
}

func split(n *ropeNode, at int) (*ropeNode, *ropeNode) {
	if n == nil {
		return nil, nil
	}
	if at <= 0 {
		return nil, n
	}
	if at >= n.runes {
		return n, nil
	}
	if n.isLeaf() {
		b := runeIndexToByte(n.leaf, at)
		return newLeaf(n.leaf[:b]), newLeaf(n.leaf[b:])
	}
	switch {
	case at < n.left.runes:
		l, r := split(n.left, at)
		return l, join(r, n.right)
	case at == n.left.runes:
		return n.left, n.right
	default:
		l, r := split(n.right, at-n.left.runes)
		return join(n.left, l), r
	}
}

// Len returns the number of runes.
func (r Rope) Len() int {
	if r.root == nil {
		return 0
	}
	return r.root.runes
}

// ByteLen returns the UTF-8 length.
func (r Rope) ByteLen() int {
	if r.root == nil {
		return 0
	}
	return r.root.bytes
}

// LineCount returns the number of lines; an empty rope has one line.
func (r Rope) LineCount() int {
	if r.root == nil {
		return 1
	}
	return r.root.lines + 1
}

// String materializes the rope.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(r.root.bytes)
	r.eachLeaf(func(s string) bool {
		sb.WriteString(s)
		return true
	})
	return sb.String()
}

// AppendBytes appends the UTF-8 text of the rope to dst.
func (r Rope) AppendBytes(dst []byte) []byte {
	r.eachLeaf(func(s string) bool {
		dst = append(dst, s...)
		return true
	})
	return dst
}

func (r Rope) eachLeaf(fn func(string) bool) {
	var leaves []*ropeNode
	if r.root == nil {
		return
	}
	collectLeaves(r.root, &leaves)
	for _, l := range leaves {
		if !fn(l.leaf) {
			return
		}
	}
}

func (r Rope) clamp(off int) int {
	if off < 0 {
		return 0
	}
	if n := r.Len(); off > n {
		return n
	}
	return off
}

// Insert returns a rope with text inserted at the rune offset at.
func (r Rope) Insert(at int, text string) Rope {
	if text == "" {
		return r
	}
	at = r.clamp(at)
	l, rt := split(r.root, at)
	mid := buildBalanced(chunkLeaves(text))
	return Rope{root: join(join(l, mid), rt)}
}

// Delete returns a rope without the runes in [start, end).
func (r Rope) Delete(start, end int) Rope {
	return r.Replace(start, end, "")
}

// Replace substitutes the runes in [start, end) with text.
func (r Rope) Replace(start, end int, text string) Rope {
	start, end = r.clamp(start), r.clamp(end)
	if start > end {
		start, end = end, start
	}
	if start == end && text == "" {
		return r
	}
	l, rest := split(r.root, start)
	_, rt := split(rest, end-start)
	if text != "" {
		l = join(l, buildBalanced(chunkLeaves(text)))
	}
	return Rope{root: join(l, rt)}
}

// Slice returns the text of runes [start, end).
func (r Rope) Slice(start, end int) string {
	start, end = r.clamp(start), r.clamp(end)
	if start >= end {
		return ""
	}
	var sb strings.Builder
	sliceInto(r.root, start, end, &sb)
	return sb.String()
}

func sliceInto(n *ropeNode, start, end int, sb *strings.Builder) {
	if n == nil || start >= end {
		return
	}
	if n.isLeaf() {
		b0 := runeIndexToByte(n.leaf, start)
		b1 := runeIndexToByte(n.leaf, end)
		sb.WriteString(n.leaf[b0:b1])
		return
	}
	if start < n.left.runes {
		e := end
		if e > n.left.runes {
			e = n.left.runes
		}
		sliceInto(n.left, start, e, sb)
	}
	if end > n.left.runes {
		s := start - n.left.runes
		if s < 0 {
			s = 0
		}
		sliceInto(n.right, s, end-n.left.runes, sb)
	}
}

// RuneAt returns the rune at off, or 0 when off is out of range.
func (r Rope) RuneAt(off int) rune {
	if off < 0 || off >= r.Len() {
		return 0
	}
	n := r.root
	for !n.isLeaf() {
		if off < n.left.runes {
			n = n.left
		} else {
			off -= n.left.runes
			n = n.right
		}
	}
	i := 0
	for _, ch := range n.leaf {
		if i == off {
			return ch
		}
		i++
	}
	return 0
}

// CharToByte converts a rune offset to a byte offset.
func (r Rope) CharToByte(off int) int {
	off = r.clamp(off)
	n := r.root
	acc := 0
	for n != nil && !n.isLeaf() {
		if off < n.left.runes {
			n = n.left
		} else {
			off -= n.left.runes
			acc += n.left.bytes
			n = n.right
		}
	}
	if n == nil {
		return acc
	}
	return acc + runeIndexToByte(n.leaf, off)
}

// ByteToChar converts a byte offset to a rune offset. Offsets inside a
// multi-byte sequence resolve to the rune containing them.
func (r Rope) ByteToChar(b int) int {
	if b <= 0 {
		return 0
	}
	if b >= r.ByteLen() {
		return r.Len()
	}
	n := r.root
	acc := 0
	for !n.isLeaf() {
		if b < n.left.bytes {
			n = n.left
		} else {
			b -= n.left.bytes
			acc += n.left.runes
			n = n.right
		}
	}
	i := 0
	for idx := range n.leaf {
		if idx >= b {
			if idx > b {
				i--
			}
			return acc + i
		}
		i++
	}
	return acc + i - 1
}

// CharToLine returns the line containing the rune offset.
func (r Rope) CharToLine(off int) int {
	off = r.clamp(off)
	n := r.root
	line := 0
	for n != nil && !n.isLeaf() {
		if off <= n.left.runes {
			n = n.left
		} else {
			off -= n.left.runes
			line += n.left.lines
			n = n.right
		}
	}
	if n == nil {
		return line
	}
	i := 0
	for _, ch := range n.leaf {
		if i >= off {
			break
		}
		if ch == '\n' {
			line++
		}
		i++
	}
	return line
}

// LineStart returns the rune offset of the first rune of line.
func (r Rope) LineStart(line int) int {
	if line <= 0 {
		return 0
	}
	if line >= r.LineCount() {
		return r.Len()
	}
	n := r.root
	acc := 0
	for !n.isLeaf() {
		if line <= n.left.lines {
			n = n.left
		} else {
			line -= n.left.lines
			acc += n.left.runes
			n = n.right
		}
	}
	i := 0
	for _, ch := range n.leaf {
		i++
		if ch == '\n' {
			line--
			if line == 0 {
				return acc + i
			}
		}
	}
	return acc + i
}

// LineEnd returns the rune offset just before the newline ending line (or
// the end of text for the last line).
func (r Rope) LineEnd(line int) int {
	if line+1 >= r.LineCount() {
		return r.Len()
	}
	return r.LineStart(line+1) - 1
}

// Line returns the text of line without its trailing newline.
func (r Rope) Line(line int) string {
	if line < 0 || line >= r.LineCount() {
		return ""
	}
	return r.Slice(r.LineStart(line), r.LineEnd(line))
}

// LineLen returns the rune length of line without its newline.
func (r Rope) LineLen(line int) int {
	if line < 0 || line >= r.LineCount() {
		return 0
	}
	return r.LineEnd(line) - r.LineStart(line)
}

// Equal reports whether both ropes hold the same text.
func (r Rope) Equal(o Rope) bool {
	if r.root == o.root {
		return true
	}
	if r.Len() != o.Len() || r.ByteLen() != o.ByteLen() {
		return false
	}
	return r.String() == o.String()
}
