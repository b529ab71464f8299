// Package planindex discovers plan and summary documents inside a phase
// directory and derives completion state and execution hints from their
// declared metadata.
package planindex

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/planmd/planmd/internal/frontmatter"
)

const (
	planSuffix    = "-PLAN.md"
	summarySuffix = "-SUMMARY.md"

	// DefaultDomain is assumed when a plan declares no domain.
	DefaultDomain = "general"

	// teamPlanThreshold is the minimum plan count before a specialized
	// team is recommended.
	teamPlanThreshold = 3
)

// taskOpenRe matches a task block opening at the start of a line.
var taskOpenRe = regexp.MustCompile(`(?m)^\s*<task\b`)

// Plan is the metadata surfaced for one plan document.
type Plan struct {
	ID            string   `json:"id"`
	Path          string   `json:"path"`
	Phase         string   `json:"phase"`
	Number        string   `json:"number"`
	Type          string   `json:"type"`
	Wave          int      `json:"wave"`
	Domain        string   `json:"domain"`
	Autonomous    bool     `json:"autonomous"`
	DependsOn     []string `json:"depends_on"`
	FilesModified []string `json:"files_modified"`
	TaskCount     int      `json:"task_count"`
	Complete      bool     `json:"complete"`
}

// Index is the derived view of one phase directory.
type Index struct {
	Dir           string   `json:"dir"`
	Plans         []Plan   `json:"plans"`
	Summaries     []string `json:"summaries"`
	Incomplete    []string `json:"incomplete"`
	Complete      bool     `json:"complete"`
	Domains       []string `json:"domains"`
	MultiDomain   bool     `json:"multi_domain"`
	RecommendTeam bool     `json:"recommend_team"`
}

// ListIDs returns the plan and summary identities (filenames with the
// suffix stripped) found in dir, each sorted.
func ListIDs(dir string) (plans, summaries []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read phase dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, planSuffix):
			plans = append(plans, strings.TrimSuffix(name, planSuffix))
		case strings.HasSuffix(name, summarySuffix):
			summaries = append(summaries, strings.TrimSuffix(name, summarySuffix))
		}
	}
	sort.Strings(plans)
	sort.Strings(summaries)
	return plans, summaries, nil
}

// Build reads every plan in dir and assembles the phase index.
func Build(dir string) (*Index, error) {
	planIDs, summaryIDs, err := ListIDs(dir)
	if err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(summaryIDs))
	for _, id := range summaryIDs {
		done[id] = true
	}

	idx := &Index{Dir: dir, Summaries: summaryIDs}
	for _, id := range planIDs {
		path := filepath.Join(dir, id+planSuffix)
		plan, err := ReadPlan(path)
		if err != nil {
			return nil, err
		}
		plan.ID = id
		plan.Complete = done[id]
		if !plan.Complete {
			idx.Incomplete = append(idx.Incomplete, id)
		}
		idx.Plans = append(idx.Plans, *plan)
	}
	idx.Complete = len(idx.Plans) > 0 && len(idx.Incomplete) == 0

	idx.Domains = distinctDomains(idx.Plans)
	nonGeneral := 0
	for _, d := range idx.Domains {
		if d != DefaultDomain {
			nonGeneral++
		}
	}
	idx.MultiDomain = nonGeneral >= 2
	idx.RecommendTeam = len(idx.Plans) >= teamPlanThreshold && nonGeneral >= 2

	return idx, nil
}

// ReadPlan parses one plan document's frontmatter and body into a Plan.
// Wave declarations are trusted as written; they are never derived from
// depends_on.
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	content := string(data)
	tree := frontmatter.Extract(content)

	plan := &Plan{
		Path:          path,
		Phase:         tree.GetScalar("phase"),
		Number:        tree.GetScalar("plan"),
		Type:          tree.GetScalar("type"),
		Domain:        tree.GetScalar("domain"),
		DependsOn:     tree.GetList("depends_on"),
		FilesModified: tree.GetList("files_modified"),
		Autonomous:    parseBoolDefault(tree.GetScalar("autonomous"), true),
		TaskCount:     len(taskOpenRe.FindAllString(frontmatter.Body(content), -1)),
	}
	if plan.Domain == "" {
		plan.Domain = DefaultDomain
	}
	if w, err := strconv.Atoi(tree.GetScalar("wave")); err == nil {
		plan.Wave = w
	}
	return plan, nil
}

// parseBoolDefault reads a declared boolean, falling back when the field
// is absent or unrecognized.
func parseBoolDefault(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}
	return fallback
}

// distinctDomains returns the sorted set of domains declared across plans.
func distinctDomains(plans []Plan) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range plans {
		if !seen[p.Domain] {
			seen[p.Domain] = true
			out = append(out, p.Domain)
		}
	}
	sort.Strings(out)
	return out
}
