package editor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// CheckpointEvery is the number of operations between rope snapshots kept
// by the history DAG.
const CheckpointEvery = 32

// OpID identifies an edit operation. IDs are totally ordered by wall clock
// milliseconds, then by a per-history counter.
type OpID struct {
	Millis int64
	Seq    uint64
}

// IsZero reports whether id is the root id.
func (id OpID) IsZero() bool {
	return id.Millis == 0 && id.Seq == 0
}

// Less orders ids.
func (id OpID) Less(o OpID) bool {
	if id.Millis != o.Millis {
		return id.Millis < o.Millis
	}
	return id.Seq < o.Seq
}

func (id OpID) String() string {
	return strconv.FormatInt(id.Millis, 10) + "-" + strconv.FormatUint(id.Seq, 10)
}

// ParseOpID parses the form produced by OpID.String.
func ParseOpID(s string) (OpID, error) {
	ms, seq, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return OpID{}, fmt.Errorf("invalid op id %q", s)
	}
	m, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return OpID{}, fmt.Errorf("invalid op id %q: %w", s, err)
	}
	n, err := strconv.ParseUint(seq, 10, 64)
	if err != nil {
		return OpID{}, fmt.Errorf("invalid op id %q: %w", s, err)
	}
	return OpID{Millis: m, Seq: n}, nil
}

// OpKind classifies an operation.
type OpKind int

const (
	OpInsert OpKind = iota
	OpDelete
	OpReplace
	OpBatch
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpReplace:
		return "replace"
	default:
		return "batch"
	}
}

// Edit replaces the runes [Start, End) of the text the operation was applied
// to. Deleted holds the removed text so operations are self-describing.
type Edit struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Deleted  string `json:"deleted,omitempty"`
	Inserted string `json:"inserted,omitempty"`
}

// Op is one node payload of the history DAG. Batch edits are sorted by
// Start, do not overlap and are all relative to the pre-operation text.
type Op struct {
	ID            OpID
	Parent        OpID
	Kind          OpKind
	Edits         []Edit
	CursorsBefore []Cursor
	CursorsAfter  []Cursor
}

func kindFor(edits []Edit) OpKind {
	if len(edits) != 1 {
		return OpBatch
	}
	e := edits[0]
	switch {
	case e.Start == e.End:
		return OpInsert
	case e.Inserted == "":
		return OpDelete
	default:
		return OpReplace
	}
}

// apply replays the operation on r.
func (op Op) apply(r Rope) Rope {
	for i := len(op.Edits) - 1; i >= 0; i-- {
		e := op.Edits[i]
		r = r.Replace(e.Start, e.End, e.Inserted)
	}
	return r
}

type historyNode struct {
	op       Op
	children []OpID
	depth    int
}

// History is a Git-like DAG of edit operations. Undo moves HEAD to its
// parent, Redo follows the most recently added child, and branches created
// by editing after an undo are kept.
type History struct {
	nodes       map[OpID]*historyNode
	root        OpID
	head        OpID
	seq         uint64
	base        Rope
	checkpoints map[OpID]Rope
	pending     []string
}

// NewHistory creates a history whose root holds base.
func NewHistory(base Rope) *History {
	root := OpID{}
	return &History{
		nodes:       map[OpID]*historyNode{root: {}},
		root:        root,
		head:        root,
		base:        base,
		checkpoints: map[OpID]Rope{root: base},
	}
}

// Head returns the current node id.
func (h *History) Head() OpID { return h.head }

// Root returns the id of the node holding the base text.
func (h *History) Root() OpID { return h.root }

// Len returns the number of recorded operations.
func (h *History) Len() int { return len(h.nodes) - 1 }

// Children returns the children of id in insertion order.
func (h *History) Children(id OpID) []OpID {
	n := h.nodes[id]
	if n == nil {
		return nil
	}
	out := make([]OpID, len(n.children))
	copy(out, n.children)
	return out
}

// Op returns the operation stored at id.
func (h *History) Op(id OpID) (Op, bool) {
	n := h.nodes[id]
	if n == nil || id == h.root {
		return Op{}, false
	}
	return n.op, true
}

// CanUndo reports whether HEAD has a parent.
func (h *History) CanUndo() bool { return h.head != h.root }

// CanRedo reports whether HEAD has a child to follow.
func (h *History) CanRedo() bool {
	n := h.nodes[h.head]
	return n != nil && len(n.children) > 0
}

// Record appends a new operation below HEAD and moves HEAD to it. after is
// the rope produced by the operation and is kept as a checkpoint every
// CheckpointEvery levels.
func (h *History) Record(nowMillis int64, edits []Edit, before, after []Cursor, result Rope) OpID {
	h.seq++
	id := OpID{Millis: nowMillis, Seq: h.seq}
	op := Op{
		ID:            id,
		Parent:        h.head,
		Kind:          kindFor(edits),
		Edits:         edits,
		CursorsBefore: cloneCursors(before),
		CursorsAfter:  cloneCursors(after),
	}
	h.attach(op)
	if h.nodes[id].depth%CheckpointEvery == 0 {
		h.checkpoints[id] = result
	}
	h.pending = append(h.pending, encodeOpRecord(op), headRecord(id))
	return id
}

func (h *History) attach(op Op) {
	parent := h.nodes[op.Parent]
	parent.children = append(parent.children, op.ID)
	h.nodes[op.ID] = &historyNode{op: op, depth: parent.depth + 1}
	h.head = op.ID
	if op.ID.Seq > h.seq {
		h.seq = op.ID.Seq
	}
}

// RopeAt rebuilds the text at id from the nearest checkpoint on its path to
// the root followed by a forward replay.
func (h *History) RopeAt(id OpID) Rope {
	var path []Op
	cur := id
	for {
		if cp, ok := h.checkpoints[cur]; ok {
			r := cp
			for i := len(path) - 1; i >= 0; i-- {
				r = path[i].apply(r)
			}
			return r
		}
		n := h.nodes[cur]
		if n == nil || cur == h.root {
			return h.base
		}
		path = append(path, n.op)
		cur = n.op.Parent
	}
}

// Undo moves HEAD to its parent and returns the rebuilt rope with the
// cursors that preceded the undone operation.
func (h *History) Undo() (Rope, []Cursor, bool) {
	if !h.CanUndo() {
		return Rope{}, nil, false
	}
	op := h.nodes[h.head].op
	h.head = op.Parent
	h.pending = append(h.pending, headRecord(h.head))
	return h.RopeAt(h.head), cloneCursors(op.CursorsBefore), true
}

// Redo follows the newest child of HEAD, applying it to current.
func (h *History) Redo(current Rope) (Rope, []Cursor, bool) {
	n := h.nodes[h.head]
	if n == nil || len(n.children) == 0 {
		return Rope{}, nil, false
	}
	child := h.nodes[n.children[len(n.children)-1]]
	h.head = child.op.ID
	h.pending = append(h.pending, headRecord(h.head))
	return child.op.apply(current), cloneCursors(child.op.CursorsAfter), true
}

// Branches returns every node id with more than one child, sorted.
func (h *History) Branches() []OpID {
	var out []OpID
	for id, n := range h.nodes {
		if len(n.children) > 1 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// TakePending returns log records produced since the last call.
func (h *History) TakePending() []string {
	out := h.pending
	h.pending = nil
	return out
}

// Rebase declares the current HEAD text as the new on-disk base and returns
// the records that start a fresh log. The in-memory DAG is unchanged.
func (h *History) Rebase(saved string) []string {
	h.pending = nil
	return []string{baseRecord(saved), rootRecord(h.head)}
}

func cloneCursors(cs []Cursor) []Cursor {
	if cs == nil {
		return nil
	}
	out := make([]Cursor, len(cs))
	copy(out, cs)
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
