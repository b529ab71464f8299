package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/planmd/planmd/internal/gitx"
	"github.com/planmd/planmd/internal/verify"
)

var verifySpotChecks int

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Structural checks on plans, phases, and summaries",
	Long: `Verify runs structural checks and reports findings as data.

A check that completes always exits zero; the passed/errors/warnings
fields carry the outcome. Only usage errors (bad arguments, unreadable
required input) fail the command itself.`,
}

var verifyPlanStructureCmd = &cobra.Command{
	Use:   "plan-structure <plan-file>",
	Short: "Check a plan's frontmatter keys and task blocks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveWorkDir()
		if err != nil {
			return err
		}
		res, err := verify.PlanStructure(joinWorkDir(dir, args[0]))
		if err != nil {
			return err
		}
		return emit(res, passedRaw(res.Passed))
	},
}

var verifyPhaseCompletenessCmd = &cobra.Command{
	Use:   "phase-completeness <phase>",
	Short: "Check every plan in a phase has a summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := verify.PhaseCompleteness(cfg.PhasesRoot(dir), args[0])
		if err != nil {
			return err
		}
		return emit(res, passedRaw(res.Passed))
	},
}

var verifyReferencesCmd = &cobra.Command{
	Use:   "references <file>",
	Short: "Check path references in a document resolve on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveWorkDir()
		if err != nil {
			return err
		}
		res, err := verify.References(dir, joinWorkDir(dir, args[0]))
		if err != nil {
			return err
		}
		return emit(res, passedRaw(res.Passed))
	},
}

var verifyCommitsCmd = &cobra.Command{
	Use:   "commits <hash>...",
	Short: "Check hashes resolve to commit objects",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		git := gitx.New(dir)
		git.Command = cfg.GitCommand
		res, err := verify.Commits(cmd.Context(), git, args)
		if err != nil {
			return err
		}
		return emit(res, passedRaw(res.Passed))
	},
}

var verifyArtifactsCmd = &cobra.Command{
	Use:   "artifacts <plan-file>",
	Short: "Check a plan's declared artifacts exist and match constraints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveWorkDir()
		if err != nil {
			return err
		}
		res, err := verify.Artifacts(dir, joinWorkDir(dir, args[0]))
		if err != nil {
			return err
		}
		return emit(res, passedRaw(res.Passed))
	},
}

var verifyKeyLinksCmd = &cobra.Command{
	Use:   "key-links <plan-file>",
	Short: "Check a plan's declared source links hold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveWorkDir()
		if err != nil {
			return err
		}
		res, err := verify.KeyLinks(dir, joinWorkDir(dir, args[0]))
		if err != nil {
			return err
		}
		return emit(res, passedRaw(res.Passed))
	},
}

var verifySummaryCmd = &cobra.Command{
	Use:   "summary <summary-file>",
	Short: "Spot-check a summary's claims against the repository",
	Long: `Summary spot-checks files the summary mentions, confirms at least one
commit hash resolves, and classifies the self-check section.

Examples:
  planmd verify summary phases/02-auth/02-01-SUMMARY.md
  planmd verify summary 02-01-SUMMARY.md --spot-check 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if verifySpotChecks < 0 {
			return fmt.Errorf("--spot-check must be non-negative")
		}
		git := gitx.New(dir)
		git.Command = cfg.GitCommand
		res, err := verify.Summary(cmd.Context(), dir, joinWorkDir(dir, args[0]), git, verifySpotChecks)
		if err != nil {
			return err
		}
		return emit(res, passedRaw(res.Passed))
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.AddCommand(verifyPlanStructureCmd)
	verifyCmd.AddCommand(verifyPhaseCompletenessCmd)
	verifyCmd.AddCommand(verifyReferencesCmd)
	verifyCmd.AddCommand(verifyCommitsCmd)
	verifyCmd.AddCommand(verifyArtifactsCmd)
	verifyCmd.AddCommand(verifyKeyLinksCmd)
	verifyCmd.AddCommand(verifySummaryCmd)

	verifySummaryCmd.Flags().IntVar(&verifySpotChecks, "spot-check", verify.DefaultSpotChecks, "Number of mentioned files to spot-check")
}

// passedRaw renders a check outcome as a bare scalar.
func passedRaw(passed bool) string {
	return strconv.FormatBool(passed)
}
