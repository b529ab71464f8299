package tracking

import (
	"errors"
	"strings"
	"testing"
)

const sampleDoc = `# Project State

**Current Phase:** 02-auth
**Status:** executing
**Last Updated:** 2026-08-01

## Decisions

- Chose cookie sessions over JWT

## Blockers/Concerns

None yet

## Metrics

| Date | Plans Done | Notes |
|------|------------|-------|
| 2026-07-30 | 2 | warmup |

## Notes

**Status:** this lookalike lives in prose and is not the tracked field
`

func TestFieldLookup(t *testing.T) {
	d := Parse(sampleDoc)

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"Current Phase", "02-auth", true},
		{"Status", "executing", true},
		{"Missing Field", "", false},
	}
	for _, tt := range tests {
		got, ok := d.Field(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Field(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGetFallsBackToSection(t *testing.T) {
	d := Parse(sampleDoc)

	body, ok := d.Get("Decisions")
	if !ok {
		t.Fatal("Get(Decisions) not found")
	}
	if !strings.Contains(body, "cookie sessions") {
		t.Errorf("section body = %q", body)
	}
}

func TestSectionTolerantMatch(t *testing.T) {
	d := Parse(sampleDoc)

	if _, ok := d.Section("Blockers"); !ok {
		t.Error("Section(Blockers) did not match Blockers/Concerns heading")
	}
	if _, ok := d.Section("Blockers/Concerns"); !ok {
		t.Error("exact spelling did not match")
	}
}

func TestReplaceField(t *testing.T) {
	d := Parse(sampleDoc)

	if err := d.ReplaceField("Status", "verifying"); err != nil {
		t.Fatal(err)
	}
	out := d.String()
	if !strings.Contains(out, "**Status:** verifying\n") {
		t.Errorf("field not replaced:\n%s", out)
	}
	// The lookalike field line in prose is the second occurrence and must
	// survive untouched... it shares the name, so first-match semantics
	// protect it only by position.
	if !strings.Contains(out, "not the tracked field") {
		t.Error("prose line was modified")
	}
}

func TestReplaceFieldNotFoundLeavesDocUnchanged(t *testing.T) {
	d := Parse(sampleDoc)
	before := d.String()

	err := d.ReplaceField("Missing", "x")
	if !errors.Is(err, ErrFieldNotFound) {
		t.Fatalf("err = %v, want ErrFieldNotFound", err)
	}
	if d.String() != before {
		t.Error("document changed on failed replace")
	}
}

func TestPatch(t *testing.T) {
	d := Parse(sampleDoc)

	updated, failed := d.Patch(
		[]string{"Status", "Nope", "Last Updated"},
		map[string]string{"Status": "done", "Nope": "x", "Last Updated": "2026-08-29"},
	)
	if len(updated) != 2 || updated[0] != "Status" || updated[1] != "Last Updated" {
		t.Errorf("updated = %v", updated)
	}
	if len(failed) != 1 || failed[0] != "Nope" {
		t.Errorf("failed = %v", failed)
	}
	if !strings.Contains(d.String(), "**Last Updated:** 2026-08-29") {
		t.Error("second field not patched")
	}
}

func TestAppendBulletStripsPlaceholder(t *testing.T) {
	d := Parse(sampleDoc)

	if err := d.AppendBullet("Blockers", "CI is red on main"); err != nil {
		t.Fatal(err)
	}
	body, _ := d.Section("Blockers")
	if strings.Contains(strings.ToLower(body), "none yet") {
		t.Errorf("placeholder not stripped: %q", body)
	}
	if !strings.Contains(body, "- CI is red on main") {
		t.Errorf("bullet not appended: %q", body)
	}
}

func TestAppendBulletAccumulates(t *testing.T) {
	d := Parse(sampleDoc)

	if err := d.AppendBullet("Decisions", "Switched to argon2"); err != nil {
		t.Fatal(err)
	}
	body, _ := d.Section("Decisions")
	if !strings.Contains(body, "- Chose cookie sessions over JWT\n- Switched to argon2") {
		t.Errorf("existing bullet lost: %q", body)
	}
	if !strings.HasSuffix(body, "\n") || strings.HasSuffix(body, "\n\n") {
		t.Errorf("body does not end with exactly one trailing newline: %q", body)
	}
}

func TestAppendBulletUnknownSection(t *testing.T) {
	d := Parse(sampleDoc)
	if err := d.AppendBullet("Retrospective", "x"); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("err = %v, want ErrSectionNotFound", err)
	}
}

func TestAppendTableRow(t *testing.T) {
	d := Parse(sampleDoc)

	if err := d.AppendTableRow("Metrics", "| 2026-08-29 | 3 | steady |"); err != nil {
		t.Fatal(err)
	}
	body, _ := d.Section("Metrics")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 4 {
		t.Fatalf("table has %d lines, want 4:\n%s", len(lines), body)
	}
	if lines[3] != "| 2026-08-29 | 3 | steady |" {
		t.Errorf("last row = %q", lines[3])
	}
}

func TestAppendTableRowEmptyBody(t *testing.T) {
	d := Parse("# Doc\n\n## Metrics\n\n## Tail\n\nx\n")

	if err := d.AppendTableRow("Metrics", "| a | b |"); err != nil {
		t.Fatal(err)
	}
	body, _ := d.Section("Metrics")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	if len(lines) != 3 {
		t.Fatalf("table has %d lines, want header+separator+row:\n%s", len(lines), body)
	}
	if lines[2] != "| a | b |" {
		t.Errorf("row = %q", lines[2])
	}
	if tail, _ := d.Section("Tail"); !strings.Contains(tail, "x") {
		t.Error("following section lost")
	}
}

func TestFieldsSnapshot(t *testing.T) {
	d := Parse(sampleDoc)
	fields := d.Fields()
	if fields["Current Phase"] != "02-auth" {
		t.Errorf("Fields() = %v", fields)
	}
	// First occurrence wins for duplicated names.
	if fields["Status"] != "executing" {
		t.Errorf("Status = %q, want first occurrence", fields["Status"])
	}
}
