package store

// MaxLogLines bounds the Logs tab.
const MaxLogLines = 2000

// MaxTerminalLines bounds the terminal scrollback.
const MaxTerminalLines = 5000

// Ring is a FIFO of lines that drops the oldest past its limit.
type Ring struct {
	limit int
	lines []string
	start int
	// Dropped counts lines pushed out of the ring.
	Dropped int
}

// NewRing returns an empty ring holding at most limit lines.
func NewRing(limit int) Ring {
	return Ring{limit: max(limit, 1)}
}

// Push appends a line.
func (r *Ring) Push(line string) {
	if r.limit == 0 {
		r.limit = MaxLogLines
	}
	if len(r.lines) < r.limit {
		r.lines = append(r.lines, line)
		return
	}
	r.lines[r.start] = line
	r.start = (r.start + 1) % r.limit
	r.Dropped++
}

// Len returns the number of held lines.
func (r *Ring) Len() int { return len(r.lines) }

// At returns the i-th oldest line.
func (r *Ring) At(i int) string {
	if i < 0 || i >= len(r.lines) {
		return ""
	}
	return r.lines[(r.start+i)%len(r.lines)]
}

// Lines returns the held lines, oldest first.
func (r *Ring) Lines() []string {
	out := make([]string, 0, len(r.lines))
	for i := range r.lines {
		out = append(out, r.At(i))
	}
	return out
}

// Tail returns the newest n lines.
func (r *Ring) Tail(n int) []string {
	all := r.Lines()
	if n < len(all) {
		all = all[len(all)-n:]
	}
	return all
}

// Clear drops every line.
func (r *Ring) Clear() {
	r.lines = r.lines[:0]
	r.start = 0
}
