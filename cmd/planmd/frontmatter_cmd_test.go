package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/planmd/planmd/internal/frontmatter"
)

func TestLookupPath(t *testing.T) {
	tree := frontmatter.Extract("---\nwave: 2\nmust_haves:\n  artifacts:\n    - a.go\n---\n")

	if v, ok := lookupPath(tree, "wave"); !ok || v.Scalar != "2" {
		t.Errorf("lookupPath(wave) = %v, %v", v, ok)
	}
	v, ok := lookupPath(tree, "must_haves.artifacts")
	if !ok || v.Kind != frontmatter.KindList {
		t.Fatalf("lookupPath(must_haves.artifacts) = %v, %v", v, ok)
	}
	if len(v.List) != 1 || v.List[0] != "a.go" {
		t.Errorf("nested list = %v", v.List)
	}
	if _, ok := lookupPath(tree, "must_haves.missing"); ok {
		t.Error("expected miss for absent nested key")
	}
	if _, ok := lookupPath(tree, "wave.nested"); ok {
		t.Error("expected miss for dotted path into a scalar")
	}
}

func TestParseCLIValue(t *testing.T) {
	tests := []struct {
		raw  string
		kind frontmatter.Kind
		want string
	}{
		{"hello world", frontmatter.KindScalar, "hello world"},
		{"2", frontmatter.KindScalar, "2"},
		{"true", frontmatter.KindScalar, "true"},
		{`"quoted"`, frontmatter.KindScalar, `"quoted"`},
		{`["a","b"]`, frontmatter.KindList, ""},
		{`{"k":"v"}`, frontmatter.KindMap, ""},
	}
	for _, tt := range tests {
		v := parseCLIValue(tt.raw)
		if v.Kind != tt.kind {
			t.Errorf("parseCLIValue(%q).Kind = %v, want %v", tt.raw, v.Kind, tt.kind)
			continue
		}
		if tt.kind == frontmatter.KindScalar && v.Scalar != tt.want {
			t.Errorf("parseCLIValue(%q).Scalar = %q, want %q", tt.raw, v.Scalar, tt.want)
		}
	}
}

func TestRawValue(t *testing.T) {
	if got := rawValue(frontmatter.String("x")); got != "x" {
		t.Errorf("scalar raw = %q", got)
	}
	if got := rawValue(frontmatter.Strings([]string{"a", "b"})); got != "a\nb" {
		t.Errorf("list raw = %q", got)
	}
	m := frontmatter.NewMap()
	m.SetScalar("k", "v")
	if got := rawValue(frontmatter.Nested(m)); got != "k: v" {
		t.Errorf("map raw = %q", got)
	}
}

func TestReadWriteDocument(t *testing.T) {
	dir := t.TempDir()
	workDir = dir
	defer func() { workDir = "" }()

	if _, found, err := readDocument("missing.md"); err != nil || found {
		t.Fatalf("readDocument(missing) = found=%v err=%v", found, err)
	}
	if err := writeDocument("doc.md", "body\n"); err != nil {
		t.Fatal(err)
	}
	content, found, err := readDocument("doc.md")
	if err != nil || !found || content != "body\n" {
		t.Fatalf("round trip = %q, found=%v, err=%v", content, found, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.md")); err != nil {
		t.Errorf("document not anchored at working dir: %v", err)
	}
}
