package editor

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// The on-disk history log is line oriented:
//
//	BASE=<sha256 of the text the log starts from>
//	ROOT=<op id standing for that text>     (optional)
//	OP {...json...}
//	HEAD=<op id>
//
// Records are only ever appended; the last HEAD record wins on recovery.

const (
	recBase = "BASE="
	recRoot = "ROOT="
	recHead = "HEAD="
	recOp   = "OP "
)

// ErrHistoryMismatch is returned when a log does not belong to the text it
// is replayed against.
var ErrHistoryMismatch = errors.New("history log does not match file content")

type opRecord struct {
	ID     string   `json:"id"`
	Parent string   `json:"parent"`
	Kind   string   `json:"kind"`
	Edits  []Edit   `json:"edits"`
	Before []Cursor `json:"before,omitempty"`
	After  []Cursor `json:"after,omitempty"`
}

// ContentHash is the hash recorded in BASE records.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func baseRecord(text string) string { return recBase + ContentHash(text) }
func rootRecord(id OpID) string     { return recRoot + id.String() }
func headRecord(id OpID) string     { return recHead + id.String() }

func encodeOpRecord(op Op) string {
	data, err := json.Marshal(opRecord{
		ID:     op.ID.String(),
		Parent: op.Parent.String(),
		Kind:   op.Kind.String(),
		Edits:  op.Edits,
		Before: op.CursorsBefore,
		After:  op.CursorsAfter,
	})
	if err != nil {
		// Edits hold only strings and ints.
		panic(fmt.Sprintf("encode history op: %v", err))
	}
	return recOp + string(data)
}

// NewHistoryLog returns the records that start a log for text.
func NewHistoryLog(text string) []string {
	return []string{baseRecord(text)}
}

// RecoverHistory replays a log against the text it was started from. It
// returns the rebuilt history and the rope at the recovered HEAD.
func RecoverHistory(text string, lines []string) (*History, Rope, error) {
	if len(lines) == 0 || !strings.HasPrefix(lines[0], recBase) {
		return nil, Rope{}, fmt.Errorf("recover history: missing BASE record")
	}
	if strings.TrimPrefix(lines[0], recBase) != ContentHash(text) {
		return nil, Rope{}, ErrHistoryMismatch
	}
	base := NewRope(text)
	h := NewHistory(base)
	for i, line := range lines[1:] {
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, recRoot):
			id, err := ParseOpID(strings.TrimPrefix(line, recRoot))
			if err != nil {
				return nil, Rope{}, fmt.Errorf("recover history line %d: %w", i+2, err)
			}
			if h.Len() > 0 {
				return nil, Rope{}, fmt.Errorf("recover history line %d: ROOT after ops", i+2)
			}
			h.nodes = map[OpID]*historyNode{id: {}}
			h.checkpoints = map[OpID]Rope{id: base}
			h.root, h.head = id, id
			h.seq = id.Seq
		case strings.HasPrefix(line, recHead):
			id, err := ParseOpID(strings.TrimPrefix(line, recHead))
			if err != nil {
				return nil, Rope{}, fmt.Errorf("recover history line %d: %w", i+2, err)
			}
			if _, ok := h.nodes[id]; !ok {
				return nil, Rope{}, fmt.Errorf("recover history line %d: unknown HEAD %s", i+2, id)
			}
			h.head = id
		case strings.HasPrefix(line, recOp):
			var rec opRecord
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, recOp)), &rec); err != nil {
				return nil, Rope{}, fmt.Errorf("recover history line %d: %w", i+2, err)
			}
			id, err := ParseOpID(rec.ID)
			if err != nil {
				return nil, Rope{}, err
			}
			parent, err := ParseOpID(rec.Parent)
			if err != nil {
				return nil, Rope{}, err
			}
			if _, ok := h.nodes[parent]; !ok {
				return nil, Rope{}, fmt.Errorf("recover history line %d: unknown parent %s", i+2, parent)
			}
			if _, dup := h.nodes[id]; dup {
				continue
			}
			h.attach(Op{
				ID:            id,
				Parent:        parent,
				Kind:          kindFor(rec.Edits),
				Edits:         rec.Edits,
				CursorsBefore: rec.Before,
				CursorsAfter:  rec.After,
			})
			if h.nodes[id].depth%CheckpointEvery == 0 {
				h.checkpoints[id] = h.RopeAt(id)
			}
		default:
			return nil, Rope{}, fmt.Errorf("recover history line %d: unknown record", i+2)
		}
	}
	return h, h.RopeAt(h.head), nil
}
