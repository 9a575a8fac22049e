package syntax

import "testing"

func TestDetectLanguageGo(t *testing.T) {
	lang := DetectLanguage("/tmp/main.go")
	if lang == nil {
		t.Fatal("expected to detect Go language for main.go, got nil")
	}
	if lang.ID != "go" {
		t.Fatalf("ID = %q, want %q", lang.ID, "go")
	}
	if lang.Grammar == nil {
		t.Fatal("expected Go to carry a tree-sitter grammar")
	}
}

func TestDetectLanguageUnknown(t *testing.T) {
	if lang := DetectLanguage("readme.xyz"); lang != nil {
		t.Fatalf("expected nil for unknown extension, got %q", lang.ID)
	}
	if got := LanguageID("readme.xyz"); got != PlainText {
		t.Fatalf("LanguageID = %q, want %q", got, PlainText)
	}
}

func TestDetectLanguageByFilename(t *testing.T) {
	tests := map[string]string{
		"Dockerfile":       "dockerfile",
		"src/Makefile":     "makefile",
		"a/b/App.tsx":      "typescriptreact",
		"x.TS":             "typescript",
		"lib/util.hpp":     "cpp",
		"conf/config.yaml": "yaml",
	}
	for path, want := range tests {
		if got := LanguageID(path); got != want {
			t.Errorf("LanguageID(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestDetectLanguageByShebang(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"#!/usr/bin/env python3", "python"},
		{"#!/bin/bash", "shellscript"},
		{"#!/usr/bin/env -S node --harmony", "javascript"},
		{"#!/usr/bin/perl", ""},
		{"package main", ""},
	}
	for _, tt := range tests {
		lang := DetectLanguageByShebang(tt.line)
		got := ""
		if lang != nil {
			got = lang.ID
		}
		if got != tt.want {
			t.Errorf("DetectLanguageByShebang(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestDetectPrefersPath(t *testing.T) {
	if lang := Detect("run", "#!/bin/sh\necho hi\n"); lang == nil || lang.ID != "shellscript" {
		t.Fatalf("Detect by shebang failed: %+v", lang)
	}
	if lang := Detect("x.py", "#!/bin/sh\n"); lang == nil || lang.ID != "python" {
		t.Fatalf("Detect should prefer the extension: %+v", lang)
	}
}

func TestRegisterReplacesByID(t *testing.T) {
	saved := append([]Language(nil), registry...)
	defer func() { registry = saved }()

	n := len(AllLanguages())
	Register(Language{ID: "go", Name: "Go2", Extensions: []string{".go"}})
	if len(AllLanguages()) != n {
		t.Fatalf("len = %d, want %d", len(AllLanguages()), n)
	}
	lang, ok := Lookup("go")
	if !ok || lang.Name != "Go2" {
		t.Fatalf("Lookup(go) = %+v, %v", lang, ok)
	}
}
