package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planmd/planmd/internal/tracking"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Tracking document fields and sections",
	Long: `State commands read and patch the tracking document: its **Field:**
lines, bullet sections, and metric tables.`,
}

var stateLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Parse the tracking document into fields and sections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, found, err := loadStateDoc()
		if err != nil {
			return err
		}
		if !found {
			return emit(map[string]any{"found": false}, "")
		}
		fields := doc.Fields()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return emit(map[string]any{
			"found":    true,
			"fields":   fields,
			"sections": doc.SectionTitles(),
		}, strings.Join(keys, "\n"))
	},
}

var stateGetCmd = &cobra.Command{
	Use:   "get <field>",
	Short: "Read one tracking field or section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, found, err := loadStateDoc()
		if err != nil {
			return err
		}
		if !found {
			return emit(map[string]any{"found": false}, "")
		}
		value, ok := doc.Get(args[0])
		if !ok {
			return emit(map[string]any{"found": false, "field": args[0]}, "")
		}
		return emit(map[string]any{"found": true, "field": args[0], "value": value}, value)
	},
}

var stateUpdateCmd = &cobra.Command{
	Use:   "update <field> <value>",
	Short: "Replace one tracking field value",
	Long: `Update rewrites a single **Field:** line in place. A field that does
not exist is reported as not updated; the document is left untouched.

Examples:
  planmd state update Status "In progress"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, found, err := loadStateDoc()
		if err != nil {
			return err
		}
		if !found {
			return emit(map[string]any{"found": false}, "")
		}
		if err := doc.ReplaceField(args[0], args[1]); err != nil {
			if errors.Is(err, tracking.ErrFieldNotFound) {
				return emit(map[string]any{"updated": false, "field": args[0]}, "not-found")
			}
			return err
		}
		if err := saveStateDoc(doc); err != nil {
			return err
		}
		return emit(map[string]any{"updated": true, "field": args[0]}, args[0])
	},
}

var statePatchCmd = &cobra.Command{
	Use:   "patch <json>",
	Short: "Replace several tracking fields at once",
	Long: `Patch takes a JSON object of field names to values and applies every
replacement it can. Fields that do not exist land in the failed list;
the rest are written.

Examples:
  planmd state patch '{"Status": "Done", "Current Phase": "03"}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var values map[string]string
		if err := json.Unmarshal([]byte(args[0]), &values); err != nil {
			return fmt.Errorf("parse patch object: %w", err)
		}
		doc, found, err := loadStateDoc()
		if err != nil {
			return err
		}
		if !found {
			return emit(map[string]any{"found": false}, "")
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		updated, failed := doc.Patch(keys, values)
		if len(updated) > 0 {
			if err := saveStateDoc(doc); err != nil {
				return err
			}
		}
		return emit(map[string]any{"updated": updated, "failed": failed}, strings.Join(updated, "\n"))
	},
}

var stateAddDecisionCmd = &cobra.Command{
	Use:   "add-decision <text>",
	Short: "Append a bullet to the decisions section",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return appendStateBullet("Decisions", strings.Join(args, " "))
	},
}

var stateAddBlockerCmd = &cobra.Command{
	Use:   "add-blocker <text>",
	Short: "Append a bullet to the blockers section",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return appendStateBullet("Blockers", strings.Join(args, " "))
	},
}

var stateRecordMetricCmd = &cobra.Command{
	Use:   "record-metric <cell>...",
	Short: "Append a row to the metrics table",
	Long: `Record-metric joins its arguments into a table row and appends it to
the metrics section, synthesizing the table header when the section is
still empty.

Examples:
  planmd state record-metric "02-01" "4m12s" "passed"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, found, err := loadStateDoc()
		if err != nil {
			return err
		}
		if !found {
			return emit(map[string]any{"found": false}, "")
		}
		row := "| " + strings.Join(args, " | ") + " |"
		if err := doc.AppendTableRow("Metrics", row); err != nil {
			if errors.Is(err, tracking.ErrSectionNotFound) {
				return emit(map[string]any{"recorded": false, "section": "Metrics"}, "not-found")
			}
			return err
		}
		if err := saveStateDoc(doc); err != nil {
			return err
		}
		return emit(map[string]any{"recorded": true, "row": row}, row)
	},
}

// loadStateDoc reads and parses the configured tracking document.
func loadStateDoc() (*tracking.Document, bool, error) {
	dir, cfg, err := loadConfig()
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(cfg.StatePath(dir))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read tracking document: %w", err)
	}
	return tracking.Parse(string(data)), true, nil
}

// saveStateDoc writes the tracking document back in place.
func saveStateDoc(doc *tracking.Document) error {
	dir, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return writeFileAtomic(cfg.StatePath(dir), []byte(doc.String()))
}

// appendStateBullet appends one bullet to a named section, stripping any
// placeholder body first.
func appendStateBullet(section, text string) error {
	doc, found, err := loadStateDoc()
	if err != nil {
		return err
	}
	if !found {
		return emit(map[string]any{"found": false}, "")
	}
	if err := doc.AppendBullet(section, text); err != nil {
		if errors.Is(err, tracking.ErrSectionNotFound) {
			return emit(map[string]any{"added": false, "section": section}, "not-found")
		}
		return err
	}
	if err := saveStateDoc(doc); err != nil {
		return err
	}
	return emit(map[string]any{"added": true, "section": section}, section)
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateLoadCmd)
	stateCmd.AddCommand(stateGetCmd)
	stateCmd.AddCommand(stateUpdateCmd)
	stateCmd.AddCommand(statePatchCmd)
	stateCmd.AddCommand(stateAddDecisionCmd)
	stateCmd.AddCommand(stateAddBlockerCmd)
	stateCmd.AddCommand(stateRecordMetricCmd)
}
