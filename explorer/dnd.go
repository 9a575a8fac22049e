package explorer

import (
	"path/filepath"
	"strings"
)

type PayloadKind uint8

const (
	// PayloadPath is a file or directory dragged from the tree.
	PayloadPath PayloadKind = iota
	// PayloadTab is an editor tab dragged from a tab bar.
	PayloadTab
)

// Payload is what is being dragged.
type Payload struct {
	Kind  PayloadKind
	Path  string
	IsDir bool
	Pane  int
	Tab   int
}

type TargetKind uint8

const (
	TargetDir TargetKind = iota
	TargetPane
)

// Rect is a screen rectangle in cells.
type Rect struct{ X, Y, W, H int }

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Target is a drop zone. Higher Z is drawn on top.
type Target struct {
	Kind TargetKind
	Path string
	Pane int
	Area Rect
	Z    int
}

// CanDrop reports whether target accepts payload. Directories accept paths
// that are not the directory itself, one of its ancestors, or already
// directly inside it. Panes accept files and tabs from another pane.
func CanDrop(p Payload, t Target) bool {
	switch t.Kind {
	case TargetDir:
		if p.Kind != PayloadPath || p.Path == "" {
			return false
		}
		src, dst := filepath.Clean(p.Path), filepath.Clean(t.Path)
		if src == dst || filepath.Dir(src) == dst {
			return false
		}
		if p.IsDir && strings.HasPrefix(dst, src+string(filepath.Separator)) {
			return false
		}
		return true
	case TargetPane:
		switch p.Kind {
		case PayloadPath:
			return !p.IsDir && p.Path != ""
		case PayloadTab:
			return p.Pane != t.Pane
		}
	}
	return false
}

// ResolveDrop returns the topmost target under (x, y) that accepts p.
// Incompatible targets on top do not block compatible ones below them.
func ResolveDrop(p Payload, targets []Target, x, y int) (Target, bool) {
	best := -1
	for i, t := range targets {
		if !t.Area.Contains(x, y) || !CanDrop(p, t) {
			continue
		}
		if best < 0 || t.Z > targets[best].Z {
			best = i
		}
	}
	if best < 0 {
		return Target{}, false
	}
	return targets[best], true
}

// DropPath returns the destination for moving p into the directory t.
func DropPath(p Payload, t Target) string {
	return filepath.Join(t.Path, filepath.Base(p.Path))
}
