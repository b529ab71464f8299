package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	atRefRe       = regexp.MustCompile(`@([~A-Za-z0-9_.${}/-]+)`)
	backtickRefRe = regexp.MustCompile("`([^`\\s]+/[^`\\s]+\\.[A-Za-z0-9]{1,5})`")
)

// ReferencesResult classifies the file references mentioned in a
// document.
type ReferencesResult struct {
	Result
	File    string   `json:"file"`
	Found   []string `json:"found"`
	Missing []string `json:"missing"`
}

// References scans the document at path for @-prefixed path tokens and
// backtick-quoted paths, resolving each against dir. URL-shaped tokens
// and template placeholders are skipped.
func References(dir, path string) (*ReferencesResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	content := string(data)

	res := &ReferencesResult{File: path}
	seen := make(map[string]bool)

	collect := func(token string) {
		if token == "" || seen[token] || skipToken(token) {
			return
		}
		seen[token] = true
		if _, err := os.Stat(resolveRef(dir, token)); err == nil {
			res.Found = append(res.Found, token)
		} else {
			res.Missing = append(res.Missing, token)
			res.warn(fmt.Sprintf("reference not found: %s", token))
		}
	}

	for _, m := range atRefRe.FindAllStringSubmatch(content, -1) {
		collect(m[1])
	}
	for _, m := range backtickRefRe.FindAllStringSubmatch(content, -1) {
		collect(m[1])
	}

	sort.Strings(res.Found)
	sort.Strings(res.Missing)
	res.finalize()
	return res, nil
}

// skipToken filters out tokens that are not file references: URLs and
// template placeholders.
func skipToken(token string) bool {
	return strings.Contains(token, "://") ||
		strings.Contains(token, "${") ||
		strings.Contains(token, "{{")
}

// resolveRef expands the home-folder shorthand and resolves relative
// tokens against dir.
func resolveRef(dir, token string) string {
	if strings.HasPrefix(token, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, token[2:])
		}
	}
	if filepath.IsAbs(token) {
		return token
	}
	return filepath.Join(dir, token)
}
