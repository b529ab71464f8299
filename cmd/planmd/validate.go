package main

import (
	"github.com/spf13/cobra"

	"github.com/planmd/planmd/internal/verify"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Repository-wide consistency checks",
}

var validateConsistencyCmd = &cobra.Command{
	Use:   "consistency",
	Short: "Cross-reference the roadmap against phase directories",
	Long: `Consistency compares the phases the roadmap declares against the phase
directories on disk, in both directions, and checks numbering inside
each phase. Drift is reported as warnings; only a missing roadmap is an
error finding.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := verify.Consistency(cfg.PhasesRoot(dir), cfg.RoadmapPath(dir))
		if err != nil {
			return err
		}
		return emit(res, passedRaw(res.Passed))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.AddCommand(validateConsistencyCmd)
}
