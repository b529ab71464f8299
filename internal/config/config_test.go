package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Load(t.TempDir())

	if cfg.PhasesDir != ".planmd/phases" {
		t.Errorf("PhasesDir = %q", cfg.PhasesDir)
	}
	if !cfg.CommitDocs {
		t.Error("CommitDocs default should be true")
	}
	if cfg.GitCommand != "git" {
		t.Errorf("GitCommand = %q", cfg.GitCommand)
	}
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	cfgDir := filepath.Join(dir, ".planmd")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestProjectYAMLLayer(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "phases_dir: plans/phases\ncommit_docs: false\n")

	cfg := Load(dir)
	if cfg.PhasesDir != "plans/phases" {
		t.Errorf("PhasesDir = %q", cfg.PhasesDir)
	}
	if cfg.CommitDocs {
		t.Error("commit_docs: false not applied")
	}
	// Undeclared keys keep their defaults.
	if cfg.Roadmap != ".planmd/ROADMAP.md" {
		t.Errorf("Roadmap = %q", cfg.Roadmap)
	}
}

func TestJSONOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "roadmap: YAML.md\n")
	writeConfig(t, dir, "config.json", `{"roadmap": "JSON.md"}`)

	cfg := Load(dir)
	if cfg.Roadmap != "JSON.md" {
		t.Errorf("Roadmap = %q, want JSON layer to win", cfg.Roadmap)
	}
}

func TestMalformedLayerFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.json", "{not json at all")
	writeConfig(t, dir, "config.yaml", ": also broken\n\t")

	cfg := Load(dir)
	if cfg.PhasesDir != ".planmd/phases" {
		t.Errorf("malformed config changed PhasesDir to %q", cfg.PhasesDir)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PLANMD_PHASES_DIR", "custom/phases")
	t.Setenv("PLANMD_COMMIT_DOCS", "false")

	cfg := Load(t.TempDir())
	if cfg.PhasesDir != "custom/phases" {
		t.Errorf("PhasesDir = %q", cfg.PhasesDir)
	}
	if cfg.CommitDocs {
		t.Error("PLANMD_COMMIT_DOCS=false not applied")
	}
}

func TestPathHelpers(t *testing.T) {
	cfg := Default()
	if got := cfg.PhasesRoot("/work"); got != "/work/.planmd/phases" {
		t.Errorf("PhasesRoot = %q", got)
	}
	cfg.Roadmap = "/abs/ROADMAP.md"
	if got := cfg.RoadmapPath("/work"); got != "/abs/ROADMAP.md" {
		t.Errorf("RoadmapPath = %q", got)
	}
}
