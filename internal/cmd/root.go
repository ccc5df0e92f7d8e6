// Package cmd provides the CLI commands for the wfmend tool.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deeklead/wfmend/internal/config"
	"github.com/deeklead/wfmend/internal/ui"
	"github.com/deeklead/wfmend/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "wfmend",
	Short:   "Workflow definition validation and auto-repair",
	Version: version.Version,
	Long: `wfmend validates CI/CD workflow definition documents, applies
deterministic repairs for common syntax and structural defects, and
rewrites the repaired documents safely with a backup per file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode is set by commands that finish but want a non-zero process exit,
// e.g. fix-all when any document ended in a failure outcome.
var exitCode int

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Fail.Render("error:"), err)
		return 1
	}
	return exitCode
}

// loadConfig resolves the engine configuration: an explicit --config path
// must exist; otherwise wfmend.toml in the working directory is used when
// present, and built-in defaults apply when it is not.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load(config.DefaultFile)
	if errors.Is(err, config.ErrNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}
