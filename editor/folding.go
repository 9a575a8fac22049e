package editor

import "sort"

// FoldRegion is a foldable block of lines. The start line stays visible
// when folded.
type FoldRegion struct {
	StartLine int
	EndLine   int
	Folded    bool
}

// FoldState tracks which regions of one document are folded.
type FoldState struct {
	regions []FoldRegion
}

// NewFoldState creates an empty fold state.
func NewFoldState() *FoldState {
	return &FoldState{}
}

// SetRegions replaces the regions, typically after a reparse. A region that
// starts on the same line as a folded one stays folded.
func (fs *FoldState) SetRegions(regions []FoldRegion) {
	folded := make(map[int]bool)
	for _, r := range fs.regions {
		if r.Folded {
			folded[r.StartLine] = true
		}
	}
	next := make([]FoldRegion, 0, len(regions))
	for _, r := range regions {
		if r.EndLine <= r.StartLine {
			continue
		}
		r.Folded = r.Folded || folded[r.StartLine]
		next = append(next, r)
	}
	sort.SliceStable(next, func(i, j int) bool { return next[i].StartLine < next[j].StartLine })
	fs.regions = next
}

// ApplyDelta shifts regions below an edit by the number of lines it added or
// removed. Regions whose start line was deleted are dropped.
func (fs *FoldState) ApplyDelta(d EditDelta) {
	lines := d.NewEnd.Line - d.OldEnd.Line
	if lines == 0 {
		return
	}
	out := fs.regions[:0]
	for _, r := range fs.regions {
		switch {
		case r.EndLine < d.Start.Line:
		case r.StartLine > d.OldEnd.Line:
			r.StartLine += lines
			r.EndLine += lines
		case r.StartLine > d.Start.Line:
			continue
		default:
			r.EndLine += lines
			if r.EndLine <= r.StartLine {
				continue
			}
		}
		out = append(out, r)
	}
	fs.regions = out
}

// Toggle folds or unfolds the region starting at line.
func (fs *FoldState) Toggle(line int) bool {
	for i, r := range fs.regions {
		if r.StartLine == line {
			fs.regions[i].Folded = !r.Folded
			return true
		}
	}
	return false
}

// FoldAll folds every region.
func (fs *FoldState) FoldAll() { fs.setAll(true) }

// UnfoldAll unfolds every region.
func (fs *FoldState) UnfoldAll() { fs.setAll(false) }

func (fs *FoldState) setAll(folded bool) {
	for i := range fs.regions {
		fs.regions[i].Folded = folded
	}
}

// IsLineHidden reports whether line is inside a folded region.
func (fs *FoldState) IsLineHidden(line int) bool {
	for _, r := range fs.regions {
		if r.Folded && line > r.StartLine && line <= r.EndLine {
			return true
		}
	}
	return false
}

// Regions returns a copy of the regions sorted by start line.
func (fs *FoldState) Regions() []FoldRegion {
	out := make([]FoldRegion, len(fs.regions))
	copy(out, fs.regions)
	return out
}

// FoldAtLine folds the region starting at line, or else the innermost
// unfolded region containing it.
func (fs *FoldState) FoldAtLine(line int) bool {
	best := -1
	for i, r := range fs.regions {
		if r.Folded || line < r.StartLine || line > r.EndLine {
			continue
		}
		if r.StartLine == line {
			best = i
			break
		}
		if best < 0 || r.EndLine-r.StartLine < fs.regions[best].EndLine-fs.regions[best].StartLine {
			best = i
		}
	}
	if best < 0 {
		return false
	}
	fs.regions[best].Folded = true
	return true
}

// UnfoldAtLine unfolds the outermost folded region containing line.
func (fs *FoldState) UnfoldAtLine(line int) bool {
	for i, r := range fs.regions {
		if r.Folded && line >= r.StartLine && line <= r.EndLine {
			fs.regions[i].Folded = false
			return true
		}
	}
	return false
}

// VisibleLines returns the rows that remain visible out of totalLines.
func (fs *FoldState) VisibleLines(totalLines int) []int {
	visible := make([]int, 0, totalLines)
	for i := 0; i < totalLines; i++ {
		if !fs.IsLineHidden(i) {
			visible = append(visible, i)
		}
	}
	return visible
}

// DetectFoldRegions finds brace-delimited blocks spanning at least three
// lines. It is used when no syntax tree is available.
func DetectFoldRegions(r Rope) []FoldRegion {
	var regions []FoldRegion
	var stack []int
	for row := 0; row < r.LineCount(); row++ {
		for _, ch := range r.Line(row) {
			switch ch {
			case '{':
				stack = append(stack, row)
			case '}':
				if len(stack) == 0 {
					continue
				}
				start := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if row-start >= 2 {
					regions = append(regions, FoldRegion{StartLine: start, EndLine: row})
				}
			}
		}
	}
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].StartLine < regions[j].StartLine })
	return regions
}
