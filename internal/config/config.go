// Package config loads planmd preferences.
// Configuration is resolved from (highest to lowest priority):
// 1. Environment variables (PLANMD_*)
// 2. Project JSON preferences (.planmd/config.json in the working dir)
// 3. Project config (.planmd/config.yaml in the working dir)
// 4. Home config (~/.planmd/config.yaml)
// 5. Defaults
//
// A missing or malformed layer is skipped silently: a broken preferences
// file must never halt an automation pipeline, so the engine degrades to
// defaults instead of failing the caller.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all planmd settings.
type Config struct {
	// PhasesDir is the phases root, relative to the working directory.
	PhasesDir string `yaml:"phases_dir" json:"phases_dir"`

	// Roadmap is the central roadmap document path.
	Roadmap string `yaml:"roadmap" json:"roadmap"`

	// StateFile is the tracking document path.
	StateFile string `yaml:"state_file" json:"state_file"`

	// CommitDocs controls whether phase completion commits documents.
	CommitDocs bool `yaml:"commit_docs" json:"commit_docs"`

	// GitCommand is the version-control executable name.
	GitCommand string `yaml:"git_command" json:"git_command"`
}

// fileConfig mirrors Config with optional fields so a layer only
// overrides what it actually declares.
type fileConfig struct {
	PhasesDir  *string `yaml:"phases_dir" json:"phases_dir"`
	Roadmap    *string `yaml:"roadmap" json:"roadmap"`
	StateFile  *string `yaml:"state_file" json:"state_file"`
	CommitDocs *bool   `yaml:"commit_docs" json:"commit_docs"`
	GitCommand *string `yaml:"git_command" json:"git_command"`
}

// Default config values.
const (
	defaultPhasesDir  = ".planmd/phases"
	defaultRoadmap    = ".planmd/ROADMAP.md"
	defaultStateFile  = ".planmd/STATE.md"
	defaultGitCommand = "git"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		PhasesDir:  defaultPhasesDir,
		Roadmap:    defaultRoadmap,
		StateFile:  defaultStateFile,
		CommitDocs: true,
		GitCommand: defaultGitCommand,
	}
}

// Load resolves configuration for the given working directory. The
// directory is threaded in explicitly; nothing here consults os.Getwd.
func Load(dir string) *Config {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		applyLayer(cfg, loadYAML(filepath.Join(home, ".planmd", "config.yaml")))
	}
	applyLayer(cfg, loadYAML(filepath.Join(dir, ".planmd", "config.yaml")))
	applyLayer(cfg, loadJSON(filepath.Join(dir, ".planmd", "config.json")))
	applyEnv(cfg)

	return cfg
}

// loadYAML reads one YAML layer; nil on any failure.
func loadYAML(path string) *fileConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil
	}
	return &fc
}

// loadJSON reads one JSON layer; nil on any failure.
func loadJSON(path string) *fileConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil
	}
	return &fc
}

// applyLayer overlays the declared fields of a layer onto cfg.
func applyLayer(cfg *Config, fc *fileConfig) {
	if fc == nil {
		return
	}
	if fc.PhasesDir != nil {
		cfg.PhasesDir = *fc.PhasesDir
	}
	if fc.Roadmap != nil {
		cfg.Roadmap = *fc.Roadmap
	}
	if fc.StateFile != nil {
		cfg.StateFile = *fc.StateFile
	}
	if fc.CommitDocs != nil {
		cfg.CommitDocs = *fc.CommitDocs
	}
	if fc.GitCommand != nil {
		cfg.GitCommand = *fc.GitCommand
	}
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PLANMD_PHASES_DIR"); v != "" {
		cfg.PhasesDir = v
	}
	if v := os.Getenv("PLANMD_ROADMAP"); v != "" {
		cfg.Roadmap = v
	}
	if v := os.Getenv("PLANMD_STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("PLANMD_COMMIT_DOCS"); v == "false" || v == "0" {
		cfg.CommitDocs = false
	}
	if v := os.Getenv("PLANMD_GIT_COMMAND"); v != "" {
		cfg.GitCommand = v
	}
}

// PhasesRoot returns the absolute phases root for dir.
func (c *Config) PhasesRoot(dir string) string {
	return joinIfRelative(dir, c.PhasesDir)
}

// RoadmapPath returns the absolute roadmap path for dir.
func (c *Config) RoadmapPath(dir string) string {
	return joinIfRelative(dir, c.Roadmap)
}

// StatePath returns the absolute tracking document path for dir.
func (c *Config) StatePath(dir string) string {
	return joinIfRelative(dir, c.StateFile)
}

func joinIfRelative(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
