// Package phase implements the phase addressing convention: numbered,
// optionally decimal phase identifiers mapped onto directories named
// `{NN}[.{d}]-{slug}` under a fixed phases root.
package phase

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	idRe      = regexp.MustCompile(`^(\d+)(?:\.(\d+))?$`)
	nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)
	dirRe     = regexp.MustCompile(`^(\d{2,})(?:\.(\d+))?-`)
)

// Normalize zero-pads the integer part of a phase identifier to two digits,
// preserving any decimal suffix. Input that does not look like a phase
// number is returned unchanged.
func Normalize(id string) string {
	m := idRe.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return id
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return id
	}
	out := fmt.Sprintf("%02d", n)
	if m[2] != "" {
		out += "." + m[2]
	}
	return out
}

// Slugify lowercases text and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(text string) string {
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(slug, "-")
}

// DirName builds a phase directory name from a normalized id and a name.
func DirName(id, name string) string {
	return Normalize(id) + "-" + Slugify(name)
}

// Matches returns every phase directory name under root that starts with
// the normalized id, sorted, so callers can detect and report ambiguity.
func Matches(root, id string) ([]string, error) {
	names, err := List(root)
	if err != nil {
		return nil, err
	}
	normalized := Normalize(id)
	var matched []string
	for _, name := range names {
		if strings.HasPrefix(name, normalized) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// ResolveDir returns the directory under root whose name starts with the
// normalized id. An ambiguous prefix resolves deterministically to the
// lexicographically first match. An empty string means no directory
// matched.
func ResolveDir(root, id string) (string, error) {
	matched, err := Matches(root, id)
	if err != nil {
		return "", err
	}
	if len(matched) == 0 {
		return "", nil
	}
	return filepath.Join(root, matched[0]), nil
}

// List returns the phase directory names under root, sorted.
func List(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read phases root: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Number extracts the phase number (e.g. "02" or "02.1") from a directory
// name. The second return is false for directories outside the convention.
func Number(dirName string) (string, bool) {
	m := dirRe.FindStringSubmatch(dirName)
	if m == nil {
		return "", false
	}
	if m[2] != "" {
		return m[1] + "." + m[2], true
	}
	return m[1], true
}

// NextDecimal returns the next free decimal id under base: "02" becomes
// "02.1" when no decimal phases exist, "02.2" when "02.1" does.
func NextDecimal(root, base string) (string, error) {
	names, err := List(root)
	if err != nil {
		return "", err
	}
	normalized := Normalize(base)
	max := 0
	prefix := normalized + "."
	for _, name := range names {
		num, ok := Number(name)
		if !ok || !strings.HasPrefix(num, prefix) {
			continue
		}
		if d, err := strconv.Atoi(strings.TrimPrefix(num, prefix)); err == nil && d > max {
			max = d
		}
	}
	return fmt.Sprintf("%s.%d", normalized, max+1), nil
}

// NextInteger returns the next free integer phase id under root.
func NextInteger(root string) (string, error) {
	names, err := List(root)
	if err != nil {
		return "", err
	}
	max := 0
	for _, name := range names {
		num, ok := Number(name)
		if !ok || strings.Contains(num, ".") {
			continue
		}
		if n, err := strconv.Atoi(num); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%02d", max+1), nil
}

// Add creates the directory for a new integer phase named name and returns
// its id and path.
func Add(root, name string) (id, dir string, err error) {
	id, err = NextInteger(root)
	if err != nil {
		return "", "", err
	}
	dir = filepath.Join(root, DirName(id, name))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("create phase dir: %w", err)
	}
	return id, dir, nil
}

// Insert creates the directory for a new decimal phase under base and
// returns its id and path.
func Insert(root, base, name string) (id, dir string, err error) {
	id, err = NextDecimal(root, base)
	if err != nil {
		return "", "", err
	}
	dir = filepath.Join(root, DirName(id, name))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("create phase dir: %w", err)
	}
	return id, dir, nil
}

// Remove deletes the resolved phase directory. Unless force is set it
// refuses when the phase holds any summary, since summaries record
// completed work.
func Remove(root, id string, force bool) (string, error) {
	dir, err := ResolveDir(root, id)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", fmt.Errorf("phase %s not found", Normalize(id))
	}
	if !force {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("read phase dir: %w", err)
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), "-SUMMARY.md") {
				return "", fmt.Errorf("phase %s has summaries; use force to remove", Normalize(id))
			}
		}
	}
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("remove phase dir: %w", err)
	}
	return dir, nil
}
