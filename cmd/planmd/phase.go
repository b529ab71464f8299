package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planmd/planmd/internal/gitx"
	"github.com/planmd/planmd/internal/phase"
	"github.com/planmd/planmd/internal/planindex"
	"github.com/planmd/planmd/internal/verify"
)

var phaseRemoveForce bool

var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "Phase directory addressing and lifecycle",
	Long: `Phase commands map phase identifiers onto directories named
{NN}[.{d}]-{slug} under the configured phases root, and manage their
lifecycle.`,
}

var phaseFindCmd = &cobra.Command{
	Use:   "find <id>",
	Short: "Resolve a phase directory and index its plans",
	Long: `Find resolves the phase id to its directory and reports the plans,
summaries, and completion state inside it. An unresolvable id reports
found:false and exits zero.

Examples:
  planmd phase find 2
  planmd phase find 02.1 --raw`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root := cfg.PhasesRoot(dir)
		matches, err := phase.Matches(root, args[0])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return emit(map[string]any{"found": false, "phase": phase.Normalize(args[0])}, "")
		}
		if len(matches) > 1 {
			VerbosePrintf("phase %s is ambiguous (%s); using %s\n",
				phase.Normalize(args[0]), strings.Join(matches, ", "), matches[0])
		}
		phaseDir := filepath.Join(root, matches[0])
		idx, err := planindex.Build(phaseDir)
		if err != nil {
			return err
		}
		out := map[string]any{
			"found": true,
			"phase": phase.Normalize(args[0]),
			"index": idx,
		}
		if len(matches) > 1 {
			out["ambiguous"] = matches
		}
		return emit(out, phaseDir)
	},
}

var phaseNextDecimalCmd = &cobra.Command{
	Use:   "next-decimal <base>",
	Short: "Next free decimal phase id under a base phase",
	Long: `Next-decimal scans existing decimal phases under the base and returns
the next free id: "02" yields "02.1" when no decimals exist, "02.2"
when "02.1" does.

Examples:
  planmd phase next-decimal 2 --raw`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		next, err := phase.NextDecimal(cfg.PhasesRoot(dir), args[0])
		if err != nil {
			return err
		}
		return emit(map[string]any{"base": phase.Normalize(args[0]), "next": next}, next)
	},
}

var phaseAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Append a new integer phase",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		id, phaseDir, err := phase.Add(cfg.PhasesRoot(dir), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return emit(map[string]any{"phase": id, "dir": phaseDir}, id)
	},
}

var phaseInsertCmd = &cobra.Command{
	Use:   "insert <base> <name>",
	Short: "Insert a decimal phase after a base phase",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		id, phaseDir, err := phase.Insert(cfg.PhasesRoot(dir), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		return emit(map[string]any{"phase": id, "dir": phaseDir}, id)
	},
}

var phaseRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a phase directory",
	Long: `Remove deletes the resolved phase directory. It refuses when the phase
holds any summary unless --force is given, since summaries record
completed work.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		removed, err := phase.Remove(cfg.PhasesRoot(dir), args[0], phaseRemoveForce)
		if err != nil {
			return err
		}
		return emit(map[string]any{"removed": removed}, removed)
	},
}

var phaseCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Verify phase completeness and commit its documents",
	Long: `Complete checks that every plan in the phase has a summary. When the
phase is complete the phase directory is staged and committed, unless
commit_docs is disabled or the path is ignored by version control.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := verify.PhaseCompleteness(cfg.PhasesRoot(dir), args[0])
		if err != nil {
			return err
		}
		out := map[string]any{
			"phase":     res.Phase,
			"complete":  res.Passed,
			"result":    res,
			"committed": false,
		}
		if !res.Passed {
			return emit(out, "incomplete")
		}

		committed, reason := commitPhaseDocs(cmd, dir, cfg.GitCommand, cfg.CommitDocs, res.Dir, res.Phase)
		out["committed"] = committed
		if reason != "" {
			out["skipped"] = reason
		}
		raw := "complete"
		if committed {
			raw = "committed"
		}
		return emit(out, raw)
	},
}

// commitPhaseDocs stages and commits a completed phase directory, and
// reports why it was skipped when it was.
func commitPhaseDocs(cmd *cobra.Command, dir, gitCommand string, commitDocs bool, phaseDir, id string) (bool, string) {
	if !commitDocs {
		return false, "commit_docs disabled"
	}
	rel, err := filepath.Rel(dir, phaseDir)
	if err != nil {
		rel = phaseDir
	}
	git := gitx.New(dir)
	git.Command = gitCommand
	ctx := cmd.Context()
	if git.IsIgnored(ctx, rel) {
		return false, "path ignored"
	}
	if err := git.Stage(ctx, rel); err != nil {
		return false, fmt.Sprintf("stage failed: %v", err)
	}
	if err := git.Commit(ctx, fmt.Sprintf("docs: complete phase %s", id)); err != nil {
		return false, fmt.Sprintf("commit failed: %v", err)
	}
	return true, ""
}

func init() {
	rootCmd.AddCommand(phaseCmd)
	phaseCmd.AddCommand(phaseFindCmd)
	phaseCmd.AddCommand(phaseNextDecimalCmd)
	phaseCmd.AddCommand(phaseAddCmd)
	phaseCmd.AddCommand(phaseInsertCmd)
	phaseCmd.AddCommand(phaseRemoveCmd)
	phaseCmd.AddCommand(phaseCompleteCmd)

	phaseRemoveCmd.Flags().BoolVar(&phaseRemoveForce, "force", false, "Remove even when summaries exist")
}
