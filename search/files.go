package search

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
)

// File is one entry of the quick open list.
type File struct {
	// Rel is slash separated and relative to the workspace root.
	Rel string
	Abs string
}

// skipFinderDir names dependency directories quick open never descends
// into, even when they are not ignored.
func skipFinderDir(name string) bool {
	switch name {
	case "node_modules", "vendor":
		return true
	default:
		return false
	}
}

// ListFiles lists the files under root for quick open, honouring ignore
// files, sorted case-insensitively by relative path. At most limit files
// are returned when limit is positive; truncated reports whether more
// existed.
func ListFiles(ctx context.Context, root string, limit int) (files []File, truncated bool, err error) {
	clean := filepath.Clean(root)
	paths, err := walkFiles(clean, func() bool { return ctx.Err() != nil }, skipFinderDir)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	files = make([]File, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(clean, p)
		if err != nil {
			rel = p
		}
		files = append(files, File{Rel: filepath.ToSlash(rel), Abs: p})
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].Rel) < strings.ToLower(files[j].Rel)
	})
	if limit > 0 && len(files) > limit {
		return files[:limit], true, nil
	}
	return files, false, nil
}
