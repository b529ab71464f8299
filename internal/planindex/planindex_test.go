package planindex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePlan(t *testing.T, dir, id string, fields map[string]string, body string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("---\n")
	for _, key := range []string{"phase", "plan", "type", "wave", "domain", "autonomous", "depends_on", "files_modified"} {
		if v, ok := fields[key]; ok {
			b.WriteString(key + ": " + v + "\n")
		}
	}
	b.WriteString("---\n")
	b.WriteString(body)
	if err := os.WriteFile(filepath.Join(dir, id+"-PLAN.md"), []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeSummary(t *testing.T, dir, id string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, id+"-SUMMARY.md"), []byte("# Done\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestListIDs(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "02-01", map[string]string{"phase": "02", "plan": "01"}, "")
	writePlan(t, dir, "02-02", map[string]string{"phase": "02", "plan": "02"}, "")
	writeSummary(t, dir, "02-01")
	if err := os.WriteFile(filepath.Join(dir, "02-VERIFICATION.md"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}

	plans, summaries, err := ListIDs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 2 || plans[0] != "02-01" || plans[1] != "02-02" {
		t.Errorf("plans = %v", plans)
	}
	if len(summaries) != 1 || summaries[0] != "02-01" {
		t.Errorf("summaries = %v", summaries)
	}
}

func TestBuildCompletion(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{"02-01", "02-02", "02-03"} {
		writePlan(t, dir, id, map[string]string{"phase": "02", "wave": "1"}, "")
	}
	writeSummary(t, dir, "02-01")

	idx, err := Build(dir)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Complete {
		t.Error("phase reported complete with incomplete plans")
	}
	want := []string{"02-02", "02-03"}
	if len(idx.Incomplete) != 2 || idx.Incomplete[0] != want[0] || idx.Incomplete[1] != want[1] {
		t.Errorf("Incomplete = %v, want %v", idx.Incomplete, want)
	}
}

func TestBuildDomainRecommendation(t *testing.T) {
	tests := []struct {
		name          string
		domains       []string
		multiDomain   bool
		recommendTeam bool
	}{
		{"three distinct domains", []string{"backend", "frontend", "testing"}, true, true},
		{"single domain", []string{"backend", "backend", "backend"}, false, false},
		{"general only", []string{"", "", ""}, false, false},
		{"two domains one general", []string{"backend", "frontend", ""}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for i, d := range tt.domains {
				fields := map[string]string{"phase": "02", "wave": "1"}
				if d != "" {
					fields["domain"] = d
				}
				writePlan(t, dir, "02-0"+string(rune('1'+i)), fields, "")
			}
			idx, err := Build(dir)
			if err != nil {
				t.Fatal(err)
			}
			if idx.MultiDomain != tt.multiDomain {
				t.Errorf("MultiDomain = %v, want %v", idx.MultiDomain, tt.multiDomain)
			}
			if idx.RecommendTeam != tt.recommendTeam {
				t.Errorf("RecommendTeam = %v, want %v", idx.RecommendTeam, tt.recommendTeam)
			}
		})
	}
}

func TestBuildTwoPlansNoTeam(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "02-01", map[string]string{"domain": "backend"}, "")
	writePlan(t, dir, "02-02", map[string]string{"domain": "frontend"}, "")

	idx, err := Build(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !idx.MultiDomain {
		t.Error("MultiDomain = false with two non-general domains")
	}
	if idx.RecommendTeam {
		t.Error("RecommendTeam = true with only two plans")
	}
}

func TestReadPlan(t *testing.T) {
	dir := t.TempDir()
	body := "# Plan\n\n<task name=\"one\">\n</task>\n\n<task name=\"two\">\n</task>\n"
	writePlan(t, dir, "02-01", map[string]string{
		"phase":          "02",
		"plan":           "01",
		"type":           "execute",
		"wave":           "2",
		"autonomous":     "false",
		"depends_on":     "[02-00]",
		"files_modified": "[src/a.go, src/b.go]",
	}, body)

	plan, err := ReadPlan(filepath.Join(dir, "02-01-PLAN.md"))
	if err != nil {
		t.Fatal(err)
	}
	if plan.Wave != 2 {
		t.Errorf("Wave = %d, want 2", plan.Wave)
	}
	if plan.Autonomous {
		t.Error("Autonomous = true, want declared false")
	}
	if plan.Domain != DefaultDomain {
		t.Errorf("Domain = %q, want default", plan.Domain)
	}
	if len(plan.DependsOn) != 1 || plan.DependsOn[0] != "02-00" {
		t.Errorf("DependsOn = %v", plan.DependsOn)
	}
	if len(plan.FilesModified) != 2 {
		t.Errorf("FilesModified = %v", plan.FilesModified)
	}
	if plan.TaskCount != 2 {
		t.Errorf("TaskCount = %d, want 2", plan.TaskCount)
	}
}

func TestReadPlanDefaults(t *testing.T) {
	dir := t.TempDir()
	writePlan(t, dir, "03-01", map[string]string{"phase": "03"}, "no tasks here\n")

	plan, err := ReadPlan(filepath.Join(dir, "03-01-PLAN.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !plan.Autonomous {
		t.Error("Autonomous default should be true")
	}
	if plan.Wave != 0 {
		t.Errorf("Wave = %d, want 0 when undeclared", plan.Wave)
	}
	if plan.TaskCount != 0 {
		t.Errorf("TaskCount = %d, want 0", plan.TaskCount)
	}
}
