package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planmd/planmd/internal/frontmatter"
)

var fmRequiredKeys []string

var frontmatterCmd = &cobra.Command{
	Use:   "frontmatter",
	Short: "Read and write document frontmatter",
	Long: `Frontmatter operates on the structured header block of a document.

The supported shape is scalars, flat lists, and one-level nested maps;
documents are spliced back together without disturbing the body.`,
}

var fmGetCmd = &cobra.Command{
	Use:   "get <file> [key]",
	Short: "Read the frontmatter tree or a single key",
	Long: `Get prints the whole frontmatter tree, or one key when given.

Nested keys use a dotted path (e.g. must_haves.artifacts). A missing
file or key reports found:false and exits zero; callers probe for
optional documents routinely.

Examples:
  planmd frontmatter get phases/02-auth/02-01-PLAN.md
  planmd frontmatter get plan.md wave --raw`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFrontmatterGet,
}

var fmSetCmd = &cobra.Command{
	Use:   "set <file> <key> <value>",
	Short: "Set one frontmatter key and rewrite the document",
	Long: `Set parses the document, updates one key, and splices the header back.

The value is decoded as JSON when possible (lists, objects, numbers),
and stored as a plain scalar otherwise. Dotted paths address one-level
nested keys.

Examples:
  planmd frontmatter set plan.md wave 2
  planmd frontmatter set plan.md files_modified '["a.go","b.go"]'`,
	Args: cobra.ExactArgs(3),
	RunE: runFrontmatterSet,
}

var fmMergeCmd = &cobra.Command{
	Use:   "merge <file> <json>",
	Short: "Shallow-merge a JSON object into the frontmatter",
	Args:  cobra.ExactArgs(2),
	RunE:  runFrontmatterMerge,
}

var fmValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check required frontmatter keys",
	Long: `Validate reports which of the required keys are missing.

Examples:
  planmd frontmatter validate plan.md --require phase,plan,wave`,
	Args: cobra.ExactArgs(1),
	RunE: runFrontmatterValidate,
}

func init() {
	rootCmd.AddCommand(frontmatterCmd)
	frontmatterCmd.AddCommand(fmGetCmd)
	frontmatterCmd.AddCommand(fmSetCmd)
	frontmatterCmd.AddCommand(fmMergeCmd)
	frontmatterCmd.AddCommand(fmValidateCmd)

	fmValidateCmd.Flags().StringSliceVar(&fmRequiredKeys, "require", nil, "Comma-separated required keys")
}

// readDocument loads a document relative to the working directory.
func readDocument(path string) (string, bool, error) {
	dir, err := resolveWorkDir()
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(joinWorkDir(dir, path))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read document: %w", err)
	}
	return string(data), true, nil
}

// writeDocument writes a document back relative to the working directory.
func writeDocument(path, content string) error {
	dir, err := resolveWorkDir()
	if err != nil {
		return err
	}
	return writeFileAtomic(joinWorkDir(dir, path), []byte(content))
}

// lookupPath resolves a dotted key path one level deep.
func lookupPath(tree *frontmatter.Map, key string) (*frontmatter.Value, bool) {
	if parent, child, ok := strings.Cut(key, "."); ok {
		nested := tree.GetMap(parent)
		if nested == nil {
			return nil, false
		}
		return nested.Get(child)
	}
	return tree.Get(key)
}

func runFrontmatterGet(cmd *cobra.Command, args []string) error {
	content, found, err := readDocument(args[0])
	if err != nil {
		return err
	}
	if !found {
		return emit(map[string]any{"found": false}, "")
	}
	tree := frontmatter.Extract(content)

	if len(args) == 1 {
		return emit(map[string]any{"found": true, "frontmatter": tree}, strings.TrimRight(frontmatter.Reconstruct(tree), "\n"))
	}

	value, ok := lookupPath(tree, args[1])
	if !ok {
		return emit(map[string]any{"found": false, "key": args[1]}, "")
	}
	return emit(map[string]any{"found": true, "key": args[1], "value": value}, rawValue(value))
}

// rawValue renders a frontmatter value for raw (shell) consumption.
func rawValue(v *frontmatter.Value) string {
	switch v.Kind {
	case frontmatter.KindScalar:
		return v.Scalar
	case frontmatter.KindList:
		return strings.Join(v.List, "\n")
	case frontmatter.KindMap:
		return strings.TrimRight(frontmatter.Reconstruct(v.Map), "\n")
	}
	return ""
}

// parseCLIValue decodes a command-line value: JSON when it parses,
// plain scalar otherwise.
func parseCLIValue(raw string) *frontmatter.Value {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		switch decoded.(type) {
		case []any, map[string]any, float64, bool:
			return frontmatter.ValueFromJSON(decoded)
		}
	}
	return frontmatter.String(raw)
}

func runFrontmatterSet(cmd *cobra.Command, args []string) error {
	file, key, raw := args[0], args[1], args[2]
	content, found, err := readDocument(file)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("document not found: %s", file)
	}

	tree := frontmatter.Extract(content)
	value := parseCLIValue(raw)

	if parent, child, ok := strings.Cut(key, "."); ok {
		nested := tree.GetMap(parent)
		if nested == nil {
			nested = frontmatter.NewMap()
			tree.Set(parent, frontmatter.Nested(nested))
		}
		nested.Set(child, value)
	} else {
		tree.Set(key, value)
	}

	if err := writeDocument(file, frontmatter.Splice(content, tree)); err != nil {
		return err
	}
	return emit(map[string]any{"updated": key, "file": file}, key)
}

func runFrontmatterMerge(cmd *cobra.Command, args []string) error {
	file := args[0]
	var patch map[string]any
	if err := json.Unmarshal([]byte(args[1]), &patch); err != nil {
		return fmt.Errorf("parse merge object: %w", err)
	}

	content, found, err := readDocument(file)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("document not found: %s", file)
	}

	tree := frontmatter.Extract(content)
	merged := frontmatter.FromJSON(patch)
	tree.Merge(merged)

	if err := writeDocument(file, frontmatter.Splice(content, tree)); err != nil {
		return err
	}
	return emit(map[string]any{"merged": merged.Keys(), "file": file}, strings.Join(merged.Keys(), "\n"))
}

func runFrontmatterValidate(cmd *cobra.Command, args []string) error {
	content, found, err := readDocument(args[0])
	if err != nil {
		return err
	}
	if !found {
		return emit(map[string]any{"found": false}, "missing")
	}

	tree := frontmatter.Extract(content)
	var missing []string
	for _, key := range fmRequiredKeys {
		if _, ok := lookupPath(tree, strings.TrimSpace(key)); !ok {
			missing = append(missing, strings.TrimSpace(key))
		}
	}

	valid := len(missing) == 0
	raw := "valid"
	if !valid {
		raw = "invalid"
	}
	return emit(map[string]any{"found": true, "valid": valid, "missing": missing}, raw)
}
