package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deeklead/wfmend/internal/template"
	"github.com/deeklead/wfmend/internal/ui"
)

var templateOutputDir string

var createTemplateCmd = &cobra.Command{
	Use:   "create-template <name>",
	Short: "Emit a minimal valid document skeleton",
	Long: `Create <name>.cfg containing a minimal workflow definition that
passes validation unchanged: a name, a push trigger on the primary
branches, and one job with a runtime target and a single step.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreateTemplate,
}

func init() {
	createTemplateCmd.Flags().StringVarP(&templateOutputDir, "output", "o", ".", "Directory to create the document in")
	rootCmd.AddCommand(createTemplateCmd)
}

func runCreateTemplate(cmd *cobra.Command, args []string) error {
	name := args[0]
	path := filepath.Join(templateOutputDir, slugify(name)+".cfg")

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.WriteFile(path, []byte(template.Render(name)), 0644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	fmt.Printf("%s created %s\n", ui.Pass.Render(ui.GlyphPass), path)
	return nil
}

// slugify turns a display name into a file base name: "Nightly Build"
// becomes "nightly-build".
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(slug), "-")
}
