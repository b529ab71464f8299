package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/planmd/planmd/internal/frontmatter"
)

// ArtifactCheck is the outcome for one declared artifact.
type ArtifactCheck struct {
	Path   string   `json:"path"`
	Exists bool     `json:"exists"`
	Issues []string `json:"issues,omitempty"`
	Passed bool     `json:"passed"`
}

// ArtifactsResult reports every declared artifact of a plan.
type ArtifactsResult struct {
	Result
	File      string          `json:"file"`
	Artifacts []ArtifactCheck `json:"artifacts"`
}

// artifactEntry is one parsed must_haves.artifacts declaration. A bare
// string is a path; a JSON object string carries the optional shape
// constraints.
type artifactEntry struct {
	Path     string   `json:"path"`
	MinLines int      `json:"min_lines"`
	Contains string   `json:"contains"`
	Exports  []string `json:"exports"`
}

// UnmarshalJSON accepts exports declared as either a list or a single
// scalar.
func (e *artifactEntry) UnmarshalJSON(data []byte) error {
	type alias struct {
		Path     string `json:"path"`
		MinLines int    `json:"min_lines"`
		Contains string `json:"contains"`
		Exports  any    `json:"exports"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	e.Path = a.Path
	e.MinLines = a.MinLines
	e.Contains = a.Contains
	switch t := a.Exports.(type) {
	case string:
		e.Exports = []string{t}
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok {
				e.Exports = append(e.Exports, s)
			}
		}
	}
	return nil
}

// parseArtifactEntry decodes one artifacts list element.
func parseArtifactEntry(raw string) artifactEntry {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var e artifactEntry
		if err := json.Unmarshal([]byte(raw), &e); err == nil {
			return e
		}
	}
	return artifactEntry{Path: raw}
}

// Artifacts reads must_haves.artifacts from the plan at planPath and
// checks each declared artifact against the working directory: existence
// first, then line count, substring, and export tokens. A missing file
// short-circuits its remaining constraints.
func Artifacts(dir, planPath string) (*ArtifactsResult, error) {
	data, err := os.ReadFile(planPath)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	tree := frontmatter.Extract(string(data))

	res := &ArtifactsResult{File: planPath}
	mh := tree.GetMap("must_haves")
	if mh == nil {
		res.finalize()
		return res, nil
	}

	for _, raw := range mh.GetList("artifacts") {
		entry := parseArtifactEntry(raw)
		if entry.Path == "" {
			continue
		}
		check := checkArtifact(dir, entry)
		if !check.Passed {
			for _, issue := range check.Issues {
				res.fail(fmt.Sprintf("%s: %s", check.Path, issue))
			}
		}
		res.Artifacts = append(res.Artifacts, check)
	}

	res.finalize()
	return res, nil
}

// checkArtifact verifies one artifact declaration.
func checkArtifact(dir string, entry artifactEntry) ArtifactCheck {
	check := ArtifactCheck{Path: entry.Path}

	data, err := os.ReadFile(filepath.Join(dir, entry.Path))
	if err != nil {
		check.Issues = append(check.Issues, "File not found")
		return check
	}
	check.Exists = true
	content := string(data)

	if entry.MinLines > 0 {
		if lines := strings.Count(content, "\n") + 1; lines < entry.MinLines {
			check.Issues = append(check.Issues,
				fmt.Sprintf("has %d lines, expected at least %d", lines, entry.MinLines))
		}
	}
	if entry.Contains != "" && !strings.Contains(content, entry.Contains) {
		check.Issues = append(check.Issues,
			fmt.Sprintf("does not contain %q", entry.Contains))
	}
	for _, export := range entry.Exports {
		if !strings.Contains(content, export) {
			check.Issues = append(check.Issues,
				fmt.Sprintf("missing export %q", export))
		}
	}

	check.Passed = len(check.Issues) == 0
	return check
}
