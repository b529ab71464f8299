package verify

import (
	"fmt"

	"github.com/planmd/planmd/internal/phase"
	"github.com/planmd/planmd/internal/planindex"
)

// PhaseCompletenessResult diffs plan identities against summary
// identities for one phase.
type PhaseCompletenessResult struct {
	Result
	Phase      string   `json:"phase"`
	Dir        string   `json:"dir"`
	Plans      []string `json:"plans"`
	Summaries  []string `json:"summaries"`
	Incomplete []string `json:"incomplete"`
	Orphaned   []string `json:"orphaned"`
}

// PhaseCompleteness resolves the phase directory under root and checks
// that every plan has a summary. Plans without a summary are errors
// (work not finished); summaries without a plan are warnings (stale or
// orphaned record).
func PhaseCompleteness(root, id string) (*PhaseCompletenessResult, error) {
	dir, err := phase.ResolveDir(root, id)
	if err != nil {
		return nil, err
	}
	res := &PhaseCompletenessResult{Phase: phase.Normalize(id), Dir: dir}
	if dir == "" {
		res.fail(fmt.Sprintf("phase %s not found under %s", res.Phase, root))
		res.finalize()
		return res, nil
	}

	plans, summaries, err := planindex.ListIDs(dir)
	if err != nil {
		return nil, err
	}
	res.Plans = plans
	res.Summaries = summaries

	done := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		done[s] = true
	}
	planned := make(map[string]bool, len(plans))
	for _, p := range plans {
		planned[p] = true
	}

	for _, p := range plans {
		if !done[p] {
			res.Incomplete = append(res.Incomplete, p)
			res.fail(fmt.Sprintf("plan %s has no summary", p))
		}
	}
	for _, s := range summaries {
		if !planned[s] {
			res.Orphaned = append(res.Orphaned, s)
			res.warn(fmt.Sprintf("summary %s has no matching plan", s))
		}
	}

	res.finalize()
	return res, nil
}
