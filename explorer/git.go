package explorer

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitStatus is the decoration shown next to a row.
type GitStatus uint8

const (
	GitClean GitStatus = iota
	GitModified
	GitAdded
	GitDeleted
	GitRenamed
	GitUntracked
	GitIgnored
	GitConflicted
)

func (s GitStatus) String() string {
	switch s {
	case GitModified:
		return "M"
	case GitAdded:
		return "A"
	case GitDeleted:
		return "D"
	case GitRenamed:
		return "R"
	case GitUntracked:
		return "U"
	case GitIgnored:
		return "!"
	case GitConflicted:
		return "C"
	}
	return ""
}

// RepoRoot resolves the git repository root containing path.
func RepoRoot(path string) (string, error) {
	cmd := exec.Command("git", "-C", path, "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("rev-parse: %w", err)
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return "", errors.New("empty git root")
	}
	return root, nil
}

// Status runs git status in repoRoot and returns the statuses keyed by
// absolute path.
func Status(repoRoot string) (map[string]GitStatus, error) {
	cmd := exec.Command("git", "-C", repoRoot, "status", "--porcelain", "--untracked-files=all")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	return ParsePorcelain(repoRoot, string(out)), nil
}

// ParsePorcelain decodes `git status --porcelain` output. Renames are
// reported at their new path.
func ParsePorcelain(repoRoot, out string) map[string]GitStatus {
	res := make(map[string]GitStatus)
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		x, y := line[0], line[1]
		path := line[3:]
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}
		path = strings.Trim(path, "\"")
		res[filepath.Join(repoRoot, filepath.FromSlash(path))] = statusFromXY(x, y)
	}
	return res
}

func statusFromXY(x, y byte) GitStatus {
	switch {
	case x == '?' && y == '?':
		return GitUntracked
	case x == '!' && y == '!':
		return GitIgnored
	case x == 'U' || y == 'U' || (x == 'A' && y == 'A') || (x == 'D' && y == 'D'):
		return GitConflicted
	case x == 'R' || y == 'R':
		return GitRenamed
	case x == 'A':
		return GitAdded
	case x == 'D' || y == 'D':
		return GitDeleted
	}
	return GitModified
}

// SetGitStatus replaces the overlay. Directories containing a changed,
// added or untracked file show as modified.
func (m *Model) SetGitStatus(statuses map[string]GitStatus) {
	m.git = make(map[string]GitStatus, len(statuses))
	m.gitDirs = make(map[string]GitStatus)
	for p, s := range statuses {
		p = filepath.Clean(p)
		m.git[p] = s
		if s == GitIgnored {
			continue
		}
		for dir := filepath.Dir(p); ; dir = filepath.Dir(dir) {
			if rel, err := filepath.Rel(m.Root, dir); err != nil || strings.HasPrefix(rel, "..") {
				break
			}
			m.gitDirs[dir] = GitModified
			if dir == m.Root || dir == filepath.Dir(dir) {
				break
			}
		}
	}
	m.flatten()
}

// GitStatusOf returns the status shown for path.
func (m *Model) GitStatusOf(path string) GitStatus {
	path = filepath.Clean(path)
	if s, ok := m.git[path]; ok {
		return s
	}
	return m.gitDirs[path]
}

func (m *Model) statusOf(id NodeID) GitStatus {
	if len(m.git) == 0 {
		return GitClean
	}
	return m.GitStatusOf(m.Path(id))
}
