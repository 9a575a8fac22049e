package explorer

import (
	"fmt"
	"os"
)

// hiddenNames are never listed.
var hiddenNames = map[string]bool{".git": true}

// ReadDir lists path for DirLoaded. Symlinks to directories are listed as
// directories.
func ReadDir(path string) ([]Entry, error) {
	des, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}
	out := make([]Entry, 0, len(des))
	for _, de := range des {
		if hiddenNames[de.Name()] {
			continue
		}
		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(path + string(os.PathSeparator) + de.Name()); err == nil {
				isDir = info.IsDir()
			}
		}
		out = append(out, Entry{Name: de.Name(), IsDir: isDir})
	}
	return out, nil
}
