package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/planmd/planmd/internal/config"
)

var (
	// Global flags
	rawOutput bool
	workDir   string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "planmd",
	Short: "Metadata engine for planning documents",
	Long: `planmd reads, patches, and verifies the planning documents that drive
multi-phase delivery automation: frontmatter headers, phase/plan
directories, tracking documents, and the claims plans make about the
repository.

Command Groups:
  frontmatter  Read and write document frontmatter
  verify       Structural checks on plans, phases, and summaries
  validate     Repository-wide consistency checks
  phase        Phase directory addressing and lifecycle
  state        Tracking document fields and sections

Every invocation is stateless: the file system and version control are
the only sources of truth.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rawOutput, "raw", false, "Print a bare scalar instead of JSON")
	rootCmd.PersistentFlags().StringVar(&workDir, "cwd", "", "Working directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// resolveWorkDir returns the effective working directory for this
// invocation.
func resolveWorkDir() (string, error) {
	if workDir != "" {
		abs, err := filepath.Abs(workDir)
		if err != nil {
			return "", fmt.Errorf("resolve --cwd: %w", err)
		}
		return abs, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}

// joinWorkDir anchors a relative path at the working directory.
func joinWorkDir(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// writeFileAtomic writes data through a temp file and rename so a reader
// never observes a partially written document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".planmd-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// loadConfig resolves the working directory and its configuration.
func loadConfig() (string, *config.Config, error) {
	dir, err := resolveWorkDir()
	if err != nil {
		return "", nil, err
	}
	return dir, config.Load(dir), nil
}

// emitJSON prints v as a single indented JSON object on stdout.
func emitJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// emit prints raw when raw mode is active, the JSON shape otherwise.
func emit(v any, raw string) error {
	if rawOutput {
		fmt.Println(raw)
		return nil
	}
	return emitJSON(v)
}

// VerbosePrintf prints only when verbose mode is enabled.
func VerbosePrintf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
