package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/planmd/planmd/internal/frontmatter"
	"github.com/planmd/planmd/internal/phase"
	"github.com/planmd/planmd/internal/planindex"
)

var (
	roadmapPhaseRe = regexp.MustCompile(`(?i)\bphase\s+(\d+(?:\.\d+)?)\b`)
	planNumberRe   = regexp.MustCompile(`-(\d{2})$`)
)

// ConsistencyResult is the repository-wide reconciliation of the roadmap
// against the phase directories on disk. Drift is common and
// recoverable, so nearly everything here is a warning; the only hard
// error is a missing roadmap document.
type ConsistencyResult struct {
	Result
	Roadmap       string   `json:"roadmap"`
	RoadmapPhases []string `json:"roadmap_phases"`
	DiskPhases    []string `json:"disk_phases"`
}

// Consistency cross-references the roadmap at roadmapPath against the
// phase directories under root in both directions, and checks numbering
// inside each phase directory.
func Consistency(root, roadmapPath string) (*ConsistencyResult, error) {
	res := &ConsistencyResult{Roadmap: roadmapPath}

	data, err := os.ReadFile(roadmapPath)
	if err != nil {
		res.fail(fmt.Sprintf("roadmap document not found: %s", roadmapPath))
		res.finalize()
		return res, nil
	}

	res.RoadmapPhases = declaredPhases(string(data))

	dirs, err := phase.List(root)
	if err != nil {
		return nil, err
	}
	diskByNumber := make(map[string]string)
	for _, dir := range dirs {
		if num, ok := phase.Number(dir); ok {
			diskByNumber[num] = dir
			res.DiskPhases = append(res.DiskPhases, num)
		}
	}
	sort.Strings(res.DiskPhases)

	declared := make(map[string]bool, len(res.RoadmapPhases))
	for _, num := range res.RoadmapPhases {
		declared[num] = true
		if _, ok := diskByNumber[num]; !ok {
			res.warn(fmt.Sprintf("phase %s declared in roadmap but has no directory", num))
		}
	}
	for _, num := range res.DiskPhases {
		if !declared[num] {
			res.warn(fmt.Sprintf("phase directory %s not declared in roadmap", diskByNumber[num]))
		}
	}

	checkPhaseGaps(res, res.RoadmapPhases, res.DiskPhases)

	for _, num := range res.DiskPhases {
		checkPhaseDir(res, filepath.Join(root, diskByNumber[num]))
	}

	res.finalize()
	return res, nil
}

// declaredPhases extracts the distinct normalized phase numbers the
// roadmap mentions, in first-mention order.
func declaredPhases(content string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range roadmapPhaseRe.FindAllStringSubmatch(content, -1) {
		num := phase.Normalize(m[1])
		if !seen[num] {
			seen[num] = true
			out = append(out, num)
		}
	}
	return out
}

// checkPhaseGaps warns on holes in the contiguous integer numbering
// across roadmap and disk together.
func checkPhaseGaps(res *ConsistencyResult, declared, disk []string) {
	present := make(map[int]bool)
	max := 0
	for _, num := range append(append([]string(nil), declared...), disk...) {
		if strings.Contains(num, ".") {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		present[n] = true
		if n > max {
			max = n
		}
	}
	for n := 1; n < max; n++ {
		if !present[n] {
			res.warn(fmt.Sprintf("gap in phase numbering: no phase %02d", n))
		}
	}
}

// checkPhaseDir checks plan numbering, orphaned summaries, and wave
// declarations within one phase directory.
func checkPhaseDir(res *ConsistencyResult, dir string) {
	plans, summaries, err := planindex.ListIDs(dir)
	if err != nil {
		res.warn(fmt.Sprintf("unreadable phase directory %s: %v", dir, err))
		return
	}

	planned := make(map[string]bool, len(plans))
	numbers := make(map[int]bool)
	max := 0
	for _, p := range plans {
		planned[p] = true
		if m := planNumberRe.FindStringSubmatch(p); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				numbers[n] = true
				if n > max {
					max = n
				}
			}
		}
	}
	for n := 1; n < max; n++ {
		if !numbers[n] {
			res.warn(fmt.Sprintf("%s: gap in plan numbering: no plan %02d", filepath.Base(dir), n))
		}
	}

	for _, s := range summaries {
		if !planned[s] {
			res.warn(fmt.Sprintf("%s: summary %s has no matching plan", filepath.Base(dir), s))
		}
	}

	for _, p := range plans {
		data, err := os.ReadFile(filepath.Join(dir, p+"-PLAN.md"))
		if err != nil {
			continue
		}
		tree := frontmatter.Extract(string(data))
		if tree.GetScalar("wave") == "" {
			res.warn(fmt.Sprintf("%s: plan %s missing wave declaration", filepath.Base(dir), p))
		}
	}
}
