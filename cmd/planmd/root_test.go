package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveWorkDirHonorsFlag(t *testing.T) {
	dir := t.TempDir()
	workDir = dir
	defer func() { workDir = "" }()

	got, err := resolveWorkDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("resolveWorkDir() = %q, want %q", got, dir)
	}
}

func TestJoinWorkDir(t *testing.T) {
	if got := joinWorkDir("/work", "plan.md"); got != filepath.Join("/work", "plan.md") {
		t.Errorf("relative join = %q", got)
	}
	if got := joinWorkDir("/work", "/abs/plan.md"); got != "/abs/plan.md" {
		t.Errorf("absolute path rewritten to %q", got)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "STATE.md")

	if err := writeFileAtomic(path, []byte("first\n")); err != nil {
		t.Fatal(err)
	}
	if err := writeFileAtomic(path, []byte("second\n")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second\n" {
		t.Errorf("content = %q, want %q", data, "second\n")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestPassedRaw(t *testing.T) {
	if passedRaw(true) != "true" || passedRaw(false) != "false" {
		t.Error("passedRaw does not render bool scalars")
	}
}
