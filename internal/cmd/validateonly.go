package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deeklead/wfmend/internal/document"
	"github.com/deeklead/wfmend/internal/engine"
	"github.com/deeklead/wfmend/internal/ui"
)

var validateOnlyConfig string

var validateOnlyCmd = &cobra.Command{
	Use:   "validate-only <path>",
	Short: "Report issues for one document without writing anything",
	Long: `Parse and validate a single workflow definition and print every
detected issue. The document is never modified. When the document does
not parse, the syntax repair pass is tried in memory to report whether
a fix-all run would be able to repair it.

The exit status is non-zero when the document does not parse or any
error-severity issue is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidateOnly,
}

func init() {
	validateOnlyCmd.Flags().StringVar(&validateOnlyConfig, "config", "", "Path to wfmend.toml")
	rootCmd.AddCommand(validateOnlyCmd)
}

func runValidateOnly(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(validateOnlyConfig)
	if err != nil {
		return err
	}

	path := args[0]
	v, err := engine.New(cfg).ValidateOnly(path)
	if err != nil {
		return err
	}

	if v.ParseErr != nil {
		if v.Repairable {
			fmt.Printf("%s %s: syntax defect, repairable (%v)\n",
				ui.Warn.Render(ui.GlyphWarn), path, v.ParseErr)
		} else {
			fmt.Printf("%s %s: does not parse (%v)\n",
				ui.Fail.Render(ui.GlyphFail), path, v.ParseErr)
			exitCode = 1
			return nil
		}
	}

	if len(v.Issues) == 0 {
		fmt.Printf("%s %s: no issues\n", ui.Pass.Render(ui.GlyphPass), path)
		return nil
	}

	hasError := false
	for _, iss := range v.Issues {
		glyph := ui.Warn.Render(ui.GlyphWarn)
		if iss.Severity == document.SeverityError {
			glyph = ui.Fail.Render(ui.GlyphFail)
			hasError = true
		}
		loc := iss.Path.String()
		if loc == "" {
			loc = "(root)"
		}
		fmt.Printf("%s %s [%s] %s\n", glyph, loc, iss.Code, iss.Message)
	}
	fmt.Printf("%s %d issue(s) found\n", ui.Dim.Render("total:"), len(v.Issues))
	if hasError {
		exitCode = 1
	}
	return nil
}
