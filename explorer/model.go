package explorer

import (
	"path/filepath"
	"sort"
	"strings"
)

// NodeID indexes the node arena. IDs are never reused.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

type Kind uint8

const (
	File Kind = iota
	Dir
)

type LoadState uint8

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
)

// Node is one file or directory. Children hold IDs sorted directories
// first, then case-insensitively by name.
type Node struct {
	ID       NodeID
	Kind     Kind
	Name     string
	Parent   NodeID
	Children []NodeID
	Load     LoadState
}

// Entry is one directory listing result.
type Entry struct {
	Name  string
	IsDir bool
}

// Row is one visible line of the flattened tree. Placeholder rows stand in
// for the contents of an expanded directory that is not loaded yet.
type Row struct {
	Node        NodeID
	Depth       int
	Name        string
	Kind        Kind
	Expanded    bool
	Load        LoadState
	Git         GitStatus
	Placeholder bool
}

type click struct {
	row   int
	at    int64
	valid bool
}

// Model is the explorer tree. Mutating methods re-flatten the rows and keep
// the selected row inside the viewport.
type Model struct {
	Root          string
	DoubleClickMs int64

	nodes    map[NodeID]*Node
	byPath   map[string]NodeID
	expanded map[NodeID]bool
	nextID   NodeID
	rootID   NodeID

	rows       []Row
	selected   int
	scroll     int
	viewHeight int

	git       map[string]GitStatus
	gitDirs   map[string]GitStatus
	clipboard *ClipboardEntry
	lastClick click
}

// New creates a model for root. The root is expanded and Loading; the
// caller issues the first directory load.
func New(root string, doubleClickMs int64) *Model {
	root = filepath.Clean(root)
	m := &Model{
		Root:          root,
		DoubleClickMs: doubleClickMs,
		nodes:         make(map[NodeID]*Node),
		byPath:        make(map[string]NodeID),
		expanded:      make(map[NodeID]bool),
		viewHeight:    1,
	}
	m.rootID = m.add(Dir, filepath.Base(root), NoNode)
	m.nodes[m.rootID].Load = Loading
	m.expanded[m.rootID] = true
	m.byPath[root] = m.rootID
	m.flatten()
	return m
}

func (m *Model) add(kind Kind, name string, parent NodeID) NodeID {
	id := m.nextID
	m.nextID++
	m.nodes[id] = &Node{ID: id, Kind: kind, Name: name, Parent: parent}
	return id
}

// RootID returns the root node.
func (m *Model) RootID() NodeID { return m.rootID }

// Node returns a copy of the node.
func (m *Model) Node(id NodeID) (Node, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return Node{}, false
	}
	cp := *n
	cp.Children = append([]NodeID(nil), n.Children...)
	return cp, true
}

// Lookup finds the node for an absolute path.
func (m *Model) Lookup(path string) (NodeID, bool) {
	id, ok := m.byPath[filepath.Clean(path)]
	return id, ok
}

// Path returns the absolute path of id.
func (m *Model) Path(id NodeID) string {
	var parts []string
	for cur := id; cur != m.rootID; {
		n, ok := m.nodes[cur]
		if !ok {
			return ""
		}
		parts = append(parts, n.Name)
		cur = n.Parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return filepath.Join(append([]string{m.Root}, parts...)...)
}

// IsExpanded reports whether id is expanded.
func (m *Model) IsExpanded(id NodeID) bool { return m.expanded[id] }

func (m *Model) less(a, b NodeID) bool {
	na, nb := m.nodes[a], m.nodes[b]
	if na.Kind != nb.Kind {
		return na.Kind == Dir
	}
	la, lb := strings.ToLower(na.Name), strings.ToLower(nb.Name)
	if la != lb {
		return la < lb
	}
	return na.Name < nb.Name
}

func (m *Model) sortChildren(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool { return m.less(n.Children[i], n.Children[j]) })
}

// Expand opens a directory. It returns the path to load when the directory
// was NotLoaded; the directory moves to Loading.
func (m *Model) Expand(id NodeID) (string, bool) {
	n, ok := m.nodes[id]
	if !ok || n.Kind != Dir {
		return "", false
	}
	m.expanded[id] = true
	needLoad := n.Load == NotLoaded
	if needLoad {
		n.Load = Loading
	}
	m.flatten()
	if needLoad {
		return m.Path(id), true
	}
	return "", false
}

// Collapse closes a directory. The root never collapses.
func (m *Model) Collapse(id NodeID) {
	if id == m.rootID {
		return
	}
	if _, ok := m.expanded[id]; !ok {
		return
	}
	delete(m.expanded, id)
	m.flatten()
}

// Toggle flips a directory and returns a path to load like Expand.
func (m *Model) Toggle(id NodeID) (string, bool) {
	if m.expanded[id] {
		m.Collapse(id)
		return "", false
	}
	return m.Expand(id)
}

// DirLoaded replaces the children of the directory at path. Existing
// children that survive keep their IDs, subtrees and expansion.
func (m *Model) DirLoaded(path string, entries []Entry) bool {
	id, ok := m.Lookup(path)
	if !ok {
		return false
	}
	n := m.nodes[id]
	if n.Kind != Dir {
		return false
	}
	existing := make(map[string]NodeID, len(n.Children))
	for _, c := range n.Children {
		existing[m.nodes[c].Name] = c
	}
	dir := m.Path(id)
	children := make([]NodeID, 0, len(entries))
	for _, e := range entries {
		kind := File
		if e.IsDir {
			kind = Dir
		}
		if c, ok := existing[e.Name]; ok && m.nodes[c].Kind == kind {
			delete(existing, e.Name)
			children = append(children, c)
			continue
		}
		c := m.add(kind, e.Name, id)
		m.byPath[filepath.Join(dir, e.Name)] = c
		children = append(children, c)
	}
	for _, gone := range existing {
		m.removeSubtree(gone)
	}
	n.Children = children
	m.sortChildren(n)
	n.Load = Loaded
	m.flatten()
	return true
}

// DirLoadError returns the directory to NotLoaded.
func (m *Model) DirLoadError(path string) bool {
	id, ok := m.Lookup(path)
	if !ok {
		return false
	}
	m.nodes[id].Load = NotLoaded
	m.flatten()
	return true
}

// removeSubtree deletes id and its descendants iteratively.
func (m *Model) removeSubtree(id NodeID) {
	sub := m.subtree(id)
	for _, cur := range sub {
		delete(m.byPath, m.Path(cur))
	}
	for _, cur := range sub {
		delete(m.expanded, cur)
		delete(m.nodes, cur)
	}
}

// subtree lists id and its descendants, parents before children.
func (m *Model) subtree(id NodeID) []NodeID {
	var out []NodeID
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := m.nodes[cur]
		if !ok {
			continue
		}
		out = append(out, cur)
		stack = append(stack, n.Children...)
	}
	return out
}

func (m *Model) detach(id NodeID) {
	n := m.nodes[id]
	p, ok := m.nodes[n.Parent]
	if !ok {
		return
	}
	for i, c := range p.Children {
		if c == id {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
}

// PathCreated inserts a node when its parent is loaded.
func (m *Model) PathCreated(path string, isDir bool) bool {
	path = filepath.Clean(path)
	if _, ok := m.byPath[path]; ok {
		return false
	}
	pid, ok := m.Lookup(filepath.Dir(path))
	if !ok || m.nodes[pid].Load != Loaded {
		return false
	}
	kind := File
	if isDir {
		kind = Dir
	}
	id := m.add(kind, filepath.Base(path), pid)
	m.byPath[path] = id
	p := m.nodes[pid]
	p.Children = append(p.Children, id)
	m.sortChildren(p)
	m.flatten()
	return true
}

// PathDeleted removes the node at path and its subtree.
func (m *Model) PathDeleted(path string) bool {
	id, ok := m.Lookup(path)
	if !ok || id == m.rootID {
		return false
	}
	m.detach(id)
	m.removeSubtree(id)
	m.flatten()
	return true
}

// PathRenamed moves the node at from to to. If the destination directory
// is not loaded the node is dropped; the next load brings it back.
func (m *Model) PathRenamed(from, to string, isDir bool) bool {
	from, to = filepath.Clean(from), filepath.Clean(to)
	id, ok := m.Lookup(from)
	if !ok || id == m.rootID {
		return m.PathCreated(to, isDir)
	}
	if old, exists := m.byPath[to]; exists && old != id {
		m.detach(old)
		m.removeSubtree(old)
	}
	pid, ok := m.Lookup(filepath.Dir(to))
	if !ok || m.nodes[pid].Load != Loaded {
		m.detach(id)
		m.removeSubtree(id)
		m.flatten()
		return true
	}
	sub := m.subtree(id)
	for _, s := range sub {
		delete(m.byPath, m.Path(s))
	}
	m.detach(id)
	n := m.nodes[id]
	n.Name = filepath.Base(to)
	n.Parent = pid
	p := m.nodes[pid]
	p.Children = append(p.Children, id)
	m.sortChildren(p)
	for _, s := range sub {
		m.byPath[m.Path(s)] = s
	}
	m.flatten()
	return true
}

// Reveal expands every ancestor of path and returns the directories that
// still need loading, outermost first.
func (m *Model) Reveal(path string) []string {
	rel, err := filepath.Rel(m.Root, filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	var loads []string
	cur := m.Root
	parts := strings.Split(rel, string(filepath.Separator))
	for _, part := range parts[:len(parts)-1] {
		cur = filepath.Join(cur, part)
		id, ok := m.byPath[cur]
		if !ok {
			break
		}
		if p, need := m.Expand(id); need {
			loads = append(loads, p)
		}
	}
	if id, ok := m.byPath[filepath.Clean(path)]; ok {
		m.SelectNode(id)
	}
	return loads
}

// flatten rebuilds rows by an iterative depth-first walk over expanded
// directories and keeps the selected node selected when it is still
// visible.
func (m *Model) flatten() {
	var selNode NodeID = NoNode
	if m.selected >= 0 && m.selected < len(m.rows) && !m.rows[m.selected].Placeholder {
		selNode = m.rows[m.selected].Node
	}
	type item struct {
		id    NodeID
		depth int
		ph    bool
	}
	rows := m.rows[:0:0]
	stack := []item{{id: m.rootID}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := m.nodes[it.id]
		if it.ph {
			rows = append(rows, Row{Node: it.id, Depth: it.depth, Placeholder: true, Load: n.Load})
			continue
		}
		rows = append(rows, Row{
			Node: it.id, Depth: it.depth, Name: n.Name, Kind: n.Kind,
			Expanded: m.expanded[it.id], Load: n.Load, Git: m.statusOf(it.id),
		})
		if n.Kind != Dir || !m.expanded[it.id] {
			continue
		}
		if n.Load != Loaded {
			stack = append(stack, item{id: it.id, depth: it.depth + 1, ph: true})
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{id: n.Children[i], depth: it.depth + 1})
		}
	}
	m.rows = rows
	if selNode != NoNode {
		for i, r := range rows {
			if r.Node == selNode && !r.Placeholder {
				m.selected = i
				break
			}
		}
	}
	m.clampSelection()
}

func (m *Model) clampSelection() {
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	if m.viewHeight < 1 {
		m.viewHeight = 1
	}
	if m.selected < m.scroll {
		m.scroll = m.selected
	}
	if m.selected >= m.scroll+m.viewHeight {
		m.scroll = m.selected - m.viewHeight + 1
	}
	if max := len(m.rows) - m.viewHeight; m.scroll > max {
		m.scroll = max
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// Rows returns the flattened tree. The slice is shared.
func (m *Model) Rows() []Row { return m.rows }

// Selected returns the selected row index.
func (m *Model) Selected() int { return m.selected }

// SelectedNode returns the node of the selected row.
func (m *Model) SelectedNode() (NodeID, bool) {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return NoNode, false
	}
	return m.rows[m.selected].Node, true
}

// Scroll returns the first visible row.
func (m *Model) Scroll() int { return m.scroll }

// SetViewHeight resizes the viewport.
func (m *Model) SetViewHeight(h int) {
	m.viewHeight = h
	m.ensureVisible()
}

// MoveSelection moves the selection by delta rows.
func (m *Model) MoveSelection(delta int) {
	m.selected += delta
	m.clampSelection()
}

// SelectRow selects row i.
func (m *Model) SelectRow(i int) {
	m.selected = i
	m.clampSelection()
}

// SelectNode selects the row showing id.
func (m *Model) SelectNode(id NodeID) bool {
	for i, r := range m.rows {
		if r.Node == id && !r.Placeholder {
			m.SelectRow(i)
			return true
		}
	}
	return false
}

// ScrollBy moves the viewport without moving the selection beyond it.
func (m *Model) ScrollBy(delta int) {
	m.scroll += delta
	if max := len(m.rows) - m.viewHeight; m.scroll > max {
		m.scroll = max
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// Click selects row at time now (milliseconds) and reports whether it
// completes a double click: a previous click on the same row within
// DoubleClickMs. A double click consumes the pair.
func (m *Model) Click(row int, now int64) bool {
	if row < 0 || row >= len(m.rows) {
		m.lastClick = click{}
		return false
	}
	m.SelectRow(row)
	prev := m.lastClick
	if prev.valid && prev.row == row && now >= prev.at && now-prev.at <= m.DoubleClickMs {
		m.lastClick = click{}
		return true
	}
	m.lastClick = click{row: row, at: now, valid: true}
	return false
}
