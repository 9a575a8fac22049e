package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSkipFinderDir(t *testing.T) {
	cases := []struct {
		name string
		skip bool
	}{
		{name: "node_modules", skip: true},
		{name: "vendor", skip: true},
		{name: "src", skip: false},
	}
	for _, tc := range cases {
		if got := skipFinderDir(tc.name); got != tc.skip {
			t.Errorf("skipFinderDir(%q) = %v, want %v", tc.name, got, tc.skip)
		}
	}
}

func TestListFiles(t *testing.T) {
	tmp := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		p := filepath.Join(tmp, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	write("a.txt", "a")
	write("Nested/b.txt", "b")
	write("node_modules/skip.txt", "skip")
	write("vendor/skip2.txt", "skip")
	write(".git/skip3.txt", "skip")
	write("build/out.bin", "skip")
	write(".gitignore", "build/\n")

	files, truncated, err := ListFiles(context.Background(), tmp, 0)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if truncated {
		t.Errorf("truncated = true, want false")
	}
	want := []string{".gitignore", "a.txt", "Nested/b.txt"}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %v", len(files), len(want), files)
	}
	for i, w := range want {
		if files[i].Rel != w {
			t.Errorf("files[%d].Rel = %q, want %q", i, files[i].Rel, w)
		}
		if files[i].Abs != filepath.Join(tmp, filepath.FromSlash(w)) {
			t.Errorf("files[%d].Abs = %q", i, files[i].Abs)
		}
	}

	files, truncated, err = ListFiles(context.Background(), tmp, 2)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 2 || !truncated {
		t.Errorf("limit 2: got %d files, truncated %v", len(files), truncated)
	}
}

func TestListFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := ListFiles(ctx, t.TempDir(), 0); err == nil {
		t.Error("ListFiles with cancelled context returned no error")
	}
}
