package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/planmd/planmd/internal/frontmatter"
)

// KeyLinkCheck is the outcome for one declared key link.
type KeyLinkCheck struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Via      string `json:"via,omitempty"`
	Verified bool   `json:"verified"`
	Reason   string `json:"reason"`
}

// KeyLinksResult reports every declared key link of a plan.
type KeyLinksResult struct {
	Result
	File  string         `json:"file"`
	Links []KeyLinkCheck `json:"links"`
}

// keyLinkEntry is one parsed must_haves.key_links declaration: a JSON
// object string, or the shorthand "from -> to".
type keyLinkEntry struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Via     string `json:"via"`
	Pattern string `json:"pattern"`
}

// parseKeyLinkEntry decodes one key_links list element.
func parseKeyLinkEntry(raw string) (keyLinkEntry, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var e keyLinkEntry
		if err := json.Unmarshal([]byte(raw), &e); err == nil && e.From != "" {
			return e, true
		}
		return keyLinkEntry{}, false
	}
	if from, to, ok := strings.Cut(raw, "->"); ok {
		return keyLinkEntry{From: strings.TrimSpace(from), To: strings.TrimSpace(to)}, true
	}
	return keyLinkEntry{}, false
}

// KeyLinks reads must_haves.key_links from the plan at planPath and
// verifies each claimed wiring relationship. A declared pattern is
// tested as a regex against the source text, falling back to the target
// file's text; without a pattern, the check is literal containment of
// the target reference inside the source.
func KeyLinks(dir, planPath string) (*KeyLinksResult, error) {
	data, err := os.ReadFile(planPath)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	tree := frontmatter.Extract(string(data))

	res := &KeyLinksResult{File: planPath}
	mh := tree.GetMap("must_haves")
	if mh == nil {
		res.finalize()
		return res, nil
	}

	for _, raw := range mh.GetList("key_links") {
		entry, ok := parseKeyLinkEntry(raw)
		if !ok {
			res.warn(fmt.Sprintf("unparseable key_links entry: %s", raw))
			continue
		}
		check := checkKeyLink(dir, entry)
		if !check.Verified {
			res.fail(fmt.Sprintf("%s -> %s: %s", check.From, check.To, check.Reason))
		}
		res.Links = append(res.Links, check)
	}

	res.finalize()
	return res, nil
}

// checkKeyLink verifies one wiring claim.
func checkKeyLink(dir string, entry keyLinkEntry) KeyLinkCheck {
	check := KeyLinkCheck{From: entry.From, To: entry.To, Via: entry.Via}

	source, err := os.ReadFile(filepath.Join(dir, entry.From))
	if err != nil {
		check.Reason = fmt.Sprintf("source file not readable: %v", err)
		return check
	}

	if entry.Pattern != "" {
		re, err := regexp.Compile(entry.Pattern)
		if err != nil {
			check.Reason = fmt.Sprintf("bad pattern: %v", err)
			return check
		}
		if re.Match(source) {
			check.Verified = true
			check.Reason = "pattern matched in source"
			return check
		}
		if target, terr := os.ReadFile(filepath.Join(dir, entry.To)); terr == nil && re.Match(target) {
			check.Verified = true
			check.Reason = "pattern matched in target"
			return check
		}
		check.Reason = fmt.Sprintf("pattern %q matched neither source nor target", entry.Pattern)
		return check
	}

	if strings.Contains(string(source), entry.To) {
		check.Verified = true
		check.Reason = "target referenced in source"
		return check
	}
	// Referencing by basename is common when imports drop directories.
	base := strings.TrimSuffix(filepath.Base(entry.To), filepath.Ext(entry.To))
	if base != "" && strings.Contains(string(source), base) {
		check.Verified = true
		check.Reason = "target referenced in source by basename"
		return check
	}
	check.Reason = fmt.Sprintf("no reference to %s found in %s", entry.To, entry.From)
	return check
}
