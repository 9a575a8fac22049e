package search

import (
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// ignoreSet holds the matchers that apply to one walk: the global excludes
// file, .git/info/exclude and every .gitignore met on the way down, each
// anchored at its own directory.
type ignoreSet struct {
	root  string
	base  []*ignore.GitIgnore
	byDir map[string]*ignore.GitIgnore
}

func newIgnoreSet(root string) *ignoreSet {
	s := &ignoreSet{root: root, byDir: make(map[string]*ignore.GitIgnore)}
	for _, p := range []string{globalExcludesFile(), filepath.Join(root, ".git", "info", "exclude")} {
		if p == "" {
			continue
		}
		if gi, err := ignore.CompileIgnoreFile(p); err == nil {
			s.base = append(s.base, gi)
		}
	}
	return s
}

// enter loads dir/.gitignore if present.
func (s *ignoreSet) enter(dir string) {
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore")); err == nil {
		s.byDir[dir] = gi
	}
}

// ignored reports whether path is excluded by any matcher. Directory
// paths get a trailing slash so "dir/" patterns apply.
func (s *ignoreSet) ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	for _, gi := range s.base {
		if gi.MatchesPath(rel) {
			return true
		}
	}
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if gi, ok := s.byDir[dir]; ok {
			r, err := filepath.Rel(dir, path)
			if err == nil {
				r = filepath.ToSlash(r)
				if isDir {
					r += "/"
				}
				if gi.MatchesPath(r) {
					return true
				}
			}
		}
		if dir == s.root || dir == filepath.Dir(dir) || !strings.HasPrefix(dir, s.root) {
			break
		}
	}
	return false
}

// globalExcludesFile resolves core.excludesFile, falling back to the XDG
// default location.
func globalExcludesFile() string {
	if out, err := exec.Command("git", "config", "--global", "--get", "core.excludesFile").Output(); err == nil {
		p := strings.TrimSpace(string(out))
		if strings.HasPrefix(p, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				p = filepath.Join(home, p[2:])
			}
		}
		if p != "" {
			return p
		}
	}
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "git", "ignore")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "git", "ignore")
	}
	return ""
}

// walkFiles lists the searchable files under root in lexical walk order.
// skip prunes directories by name on top of .git and ignore rules.
func walkFiles(root string, cancelled func() bool, skip func(name string) bool) ([]string, error) {
	ig := newIgnoreSet(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cancelled() {
			return filepath.SkipAll
		}
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && (d.Name() == ".git" || skip != nil && skip(d.Name()) || ig.ignored(path, true)) {
				return filepath.SkipDir
			}
			ig.enter(path)
			return nil
		}
		if !d.Type().IsRegular() || ig.ignored(path, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}
