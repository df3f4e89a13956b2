package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codescope/internal/astcore"
	"codescope/internal/config"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWalkSkipsVCSAndVendorDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "vendor/dep/dep.go", "package dep\n")
	writeFile(t, dir, ".git/objects/whatever", "not source")

	cfg := config.Default()
	w := NewWalker(cfg)

	entries, err := w.Walk(context.Background(), dir)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %+v", len(entries), entries)
	}
	if filepath.Base(entries[0].File.Path) != "main.go" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestWalkExcludesTestsByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "main_test.go", "package main\n")

	cfg := config.Default()
	w := NewWalker(cfg)

	entries, err := w.Walk(context.Background(), dir)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected test files excluded by default, got %d entries", len(entries))
	}

	cfg.IncludeTests = true
	w2 := NewWalker(cfg)
	entries2, err := w2.Walk(context.Background(), dir)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(entries2) != 2 {
		t.Fatalf("expected both files with IncludeTests=true, got %d", len(entries2))
	}
}

func TestWalkHonorsIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.go", "package main\n")
	writeFile(t, dir, "generated/model.pb.go", "package generated\n")

	cfg := config.Default()
	cfg.IgnorePatterns = []string{"generated/**"}
	w := NewWalker(cfg)

	entries, err := w.Walk(context.Background(), dir)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(entries) != 1 || filepath.Base(entries[0].File.Path) != "keep.go" {
		t.Fatalf("expected ignore pattern to exclude generated/, got %+v", entries)
	}
}

func TestWalkDetectsGeneratedMarker(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gen.go", "// Code generated by protoc-gen-go. DO NOT EDIT.\npackage gen\n")
	writeFile(t, dir, "hand.go", "package hand\n")

	cfg := config.Default()
	w := NewWalker(cfg)

	entries, err := w.Walk(context.Background(), dir)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	byName := map[string]FileEntry{}
	for _, e := range entries {
		byName[filepath.Base(e.File.Path)] = e
	}
	if !byName["gen.go"].IsGenerated {
		t.Error("expected gen.go to be flagged generated")
	}
	if byName["hand.go"].IsGenerated {
		t.Error("did not expect hand.go to be flagged generated")
	}
}

func TestDetectLanguageUnsupportedExtensionSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "README.md", "# hi\n")
	writeFile(t, dir, "main.go", "package main\n")

	w := NewWalker(config.Default())
	entries, err := w.Walk(context.Background(), dir)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected markdown to be skipped, got %d entries", len(entries))
	}
	if entries[0].Lang != astcore.LangGo {
		t.Fatalf("expected go language, got %v", entries[0].Lang)
	}
}
