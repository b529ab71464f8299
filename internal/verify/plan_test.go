package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const planHeader = `---
phase: 02
plan: 01
type: execute
wave: 1
depends_on: []
files_modified: [src/auth.go]
autonomous: true
must_haves:
  truths: [Auth works]
---
`

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPlanStructureValid(t *testing.T) {
	body := `# Plan

<task name="wire auth" type="auto">
  <action>Add session middleware</action>
  <verify>go test ./internal/server</verify>
  <done>login round-trips</done>
  <files>src/auth.go</files>
</task>
`
	path := writeDoc(t, t.TempDir(), "02-01-PLAN.md", planHeader+body)

	res, err := PlanStructure(path)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed {
		t.Errorf("Passed = false; errors = %v", res.Errors)
	}
	if res.TaskCount != 1 {
		t.Errorf("TaskCount = %d", res.TaskCount)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestPlanStructureMissingKeys(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "p.md", "---\nphase: 02\n---\nbody\n")

	res, err := PlanStructure(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Passed {
		t.Error("Passed = true with missing keys")
	}
	// phase is present; the other seven required keys are not.
	if len(res.Errors) != 7 {
		t.Errorf("got %d errors, want 7: %v", len(res.Errors), res.Errors)
	}
}

func TestPlanStructureTaskFindings(t *testing.T) {
	body := `<task type="auto">
  <action>do the thing</action>
</task>

<task name="second" type="auto">
  <verify>check it</verify>
</task>
`
	path := writeDoc(t, t.TempDir(), "p.md", planHeader+body)

	res, err := PlanStructure(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Passed {
		t.Error("Passed = true with nameless and actionless tasks")
	}
	wantErrs := map[string]bool{}
	for _, e := range res.Errors {
		wantErrs[e] = true
	}
	if !wantErrs["task #1 has no name"] {
		t.Errorf("missing nameless-task error: %v", res.Errors)
	}
	if !wantErrs["task second has no action"] {
		t.Errorf("missing actionless-task error: %v", res.Errors)
	}
	// verify/done/files absences are warnings, not errors.
	if len(res.Warnings) == 0 {
		t.Error("expected warnings for missing verify/done/files")
	}
}

func TestPlanStructureCheckpointAutonomyError(t *testing.T) {
	body := `<task name="human review" type="checkpoint:decision">
  <action>Pause for sign-off</action>
</task>
`
	path := writeDoc(t, t.TempDir(), "p.md", planHeader+body)

	res, err := PlanStructure(path)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "checkpoint") {
			found = true
		}
	}
	if !found {
		t.Errorf("no checkpoint/autonomy error in %v", res.Errors)
	}
}

func TestPlanStructureCheckpointWithAutonomousFalse(t *testing.T) {
	header := strings.Replace(planHeader, "autonomous: true", "autonomous: false", 1)
	body := `<task name="human review" type="checkpoint">
  <action>Pause for sign-off</action>
</task>
`
	path := writeDoc(t, t.TempDir(), "p.md", header+body)

	res, err := PlanStructure(path)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed {
		t.Errorf("Passed = false; errors = %v", res.Errors)
	}
}

func TestPlanStructureWaveWarning(t *testing.T) {
	header := strings.Replace(planHeader, "wave: 1", "wave: 2", 1)
	path := writeDoc(t, t.TempDir(), "p.md", header+"body\n")

	res, err := PlanStructure(path)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed {
		t.Errorf("wave warning escalated to error: %v", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "empty depends_on") {
			found = true
		}
	}
	if !found {
		t.Errorf("no wave warning in %v", res.Warnings)
	}
}
