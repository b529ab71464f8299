package verify

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/planmd/planmd/internal/gitx"
)

// DefaultSpotChecks is the default number of file mentions spot-checked
// in a summary.
const DefaultSpotChecks = 3

var (
	hashTokenRe      = regexp.MustCompile(`\b[0-9a-f]{7,40}\b`)
	selfCheckHeadRe  = regexp.MustCompile(`(?im)^#{1,6}\s+.*(self[- ]check|verification|quality check)`)
	anyHeadingLineRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
)

// Keyword sets for classifying a self-check section body.
var (
	failureWords = []string{"fail", "missing", "error", "not found", "✗"}
	successWords = []string{"pass", "ok", "verified", "complete", "✓"}
)

// SummaryResult is the self-consistency report for one summary document.
type SummaryResult struct {
	Result
	File         string   `json:"file"`
	SpotChecked  []string `json:"spot_checked"`
	MissingFiles []string `json:"missing_files"`
	Hashes       []string `json:"hashes"`
	CommitFound  bool     `json:"commit_found"`
	SelfCheck    string   `json:"self_check"` // "passed", "failed", "not_found"
}

// Summary spot-checks up to n file mentions in the summary at path
// against dir, confirms at least one mentioned hash is a real commit,
// and classifies the document's self-check section. Overall pass means
// no spot-checked file is missing and the self-check did not fail.
func Summary(ctx context.Context, dir, path string, git *gitx.Client, n int) (*SummaryResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	content := string(data)
	if n <= 0 {
		n = DefaultSpotChecks
	}

	res := &SummaryResult{File: path}

	spotCheckFiles(res, dir, content, n)
	checkHashes(ctx, res, git, content)
	res.SelfCheck = classifySelfCheck(content)
	if res.SelfCheck == "failed" {
		res.fail("self-check section reports failure")
	}

	res.finalize()
	return res, nil
}

// spotCheckFiles verifies up to n distinct mentioned paths exist.
func spotCheckFiles(res *SummaryResult, dir, content string, n int) {
	seen := make(map[string]bool)
	for _, m := range backtickRefRe.FindAllStringSubmatch(content, -1) {
		token := m[1]
		if seen[token] || skipToken(token) {
			continue
		}
		seen[token] = true
		res.SpotChecked = append(res.SpotChecked, token)
		if _, err := os.Stat(resolveRef(dir, token)); err != nil {
			res.MissingFiles = append(res.MissingFiles, token)
			res.fail(fmt.Sprintf("mentioned file not found: %s", token))
		}
		if len(res.SpotChecked) >= n {
			break
		}
	}
}

// checkHashes confirms at least one mentioned hash-like token resolves
// to a commit. No hashes at all is fine; hashes that all fail to resolve
// are reported as a warning.
func checkHashes(ctx context.Context, res *SummaryResult, git *gitx.Client, content string) {
	seen := make(map[string]bool)
	for _, token := range hashTokenRe.FindAllString(strings.ToLower(content), -1) {
		// A run of digits is more likely a number than an abbreviated hash.
		if !strings.ContainsAny(token, "abcdef") || seen[token] {
			continue
		}
		seen[token] = true
		res.Hashes = append(res.Hashes, token)
	}
	if len(res.Hashes) == 0 {
		return
	}
	for _, h := range res.Hashes {
		if git.IsCommit(ctx, h) {
			res.CommitFound = true
			return
		}
	}
	res.warn("no mentioned hash resolves to a commit")
}

// classifySelfCheck locates the self-check section and classifies its
// body by keyword.
func classifySelfCheck(content string) string {
	loc := selfCheckHeadRe.FindStringIndex(content)
	if loc == nil {
		return "not_found"
	}
	body := content[loc[1]:]
	if next := anyHeadingLineRe.FindStringIndex(body); next != nil {
		body = body[:next[0]]
	}
	lower := strings.ToLower(body)
	for _, w := range failureWords {
		if strings.Contains(lower, w) {
			return "failed"
		}
	}
	for _, w := range successWords {
		if strings.Contains(lower, w) {
			return "passed"
		}
	}
	return "not_found"
}
