// Package verify implements the structural linter for planning documents:
// plan structure, phase completeness, reference resolution, commit
// existence, declared artifacts, key-link wiring, and repository-wide
// numbering consistency.
//
// Verification findings are data, not errors. Every check returns a
// result struct with pass/fail state and finding lists; a Go error comes
// back only for usage problems (unreadable arguments, not broken
// documents). A failed check with Passed=false is still a successful
// engine operation.
package verify

// Result is the common pass/fail envelope shared by all checks.
type Result struct {
	Passed   bool     `json:"passed"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// fail appends a finding to the error list.
func (r *Result) fail(msg string) {
	r.Errors = append(r.Errors, msg)
}

// warn appends a finding to the warning list.
func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// finalize sets Passed from the collected findings.
func (r *Result) finalize() {
	r.Passed = len(r.Errors) == 0
}
