package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/deeklead/wfmend/internal/document"
	"github.com/deeklead/wfmend/internal/engine"
	"github.com/deeklead/wfmend/internal/report"
	"github.com/deeklead/wfmend/internal/scan"
	"github.com/deeklead/wfmend/internal/tui/progress"
	"github.com/deeklead/wfmend/internal/ui"
)

var (
	fixAllConfig      string
	fixAllConcurrency int
	fixAllExtensions  []string
	fixAllReport      string
	fixAllPolicy      string
	fixAllPlain       bool
)

var fixAllCmd = &cobra.Command{
	Use:   "fix-all <root-dir>",
	Short: "Validate, repair, and rewrite every discovered document",
	Long: `Discover every workflow definition under the root directory, repair
syntax and structural defects, and rewrite the repaired documents.

Each rewritten document gets a timestamped backup next to it and is
replaced atomically. A document that cannot be parsed even after the
bounded syntax repair pass is left untouched on disk. The aggregated
run report is written to the report artifact path.

The exit status is non-zero when any document ended UNREPAIRABLE,
WRITE_FAILED, or IO_ERROR.`,
	Args: cobra.ExactArgs(1),
	RunE: runFixAll,
}

func init() {
	fixAllCmd.Flags().StringVar(&fixAllConfig, "config", "", "Path to wfmend.toml")
	fixAllCmd.Flags().IntVar(&fixAllConcurrency, "concurrency", 0, "Worker pool size (overrides config)")
	fixAllCmd.Flags().StringSliceVar(&fixAllExtensions, "extensions", nil, "File extension allowlist (overrides config)")
	fixAllCmd.Flags().StringVar(&fixAllReport, "report", "", "Report artifact path (overrides config)")
	fixAllCmd.Flags().StringVar(&fixAllPolicy, "write-policy", "", "write-partial or withhold (overrides config)")
	fixAllCmd.Flags().BoolVar(&fixAllPlain, "plain", false, "Disable the progress view even on a terminal")
	rootCmd.AddCommand(fixAllCmd)
}

func runFixAll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(fixAllConfig)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = fixAllConcurrency
	}
	if cmd.Flags().Changed("extensions") {
		cfg.Extensions = fixAllExtensions
	}
	if cmd.Flags().Changed("report") {
		cfg.ReportPath = fixAllReport
	}
	if cmd.Flags().Changed("write-policy") {
		cfg.WritePolicy = fixAllPolicy
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	root := args[0]
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	eng := engine.New(cfg)

	var rep *report.RunReport
	if useProgressView() {
		rep, err = runWithProgress(ctx, cancel, eng, cfg.Extensions, root)
	} else {
		eng.OnResult = printResult
		rep, err = eng.FixAll(ctx, root)
	}
	if err != nil {
		return err
	}

	// Failing to produce the report artifact is the only fatal condition.
	if err := report.WriteArtifact(cfg.ReportPath, rep); err != nil {
		return err
	}

	printSummary(rep, cfg.ReportPath)
	if rep.Failed() {
		exitCode = 1
	}
	return nil
}

func useProgressView() bool {
	return !fixAllPlain && term.IsTerminal(int(os.Stdout.Fd()))
}

// runWithProgress drives the engine under the bubbletea progress view. The
// engine runs in a goroutine and feeds completed results to the program.
func runWithProgress(ctx context.Context, cancel context.CancelFunc, eng *engine.Engine, extensions []string, root string) (*report.RunReport, error) {
	paths, err := scan.Find(root, extensions)
	if err != nil {
		return nil, fmt.Errorf("discovering documents: %w", err)
	}

	p := tea.NewProgram(progress.New(len(paths), cancel))

	var rep *report.RunReport
	var runErr error
	eng.OnResult = func(res document.Result) {
		p.Send(progress.ResultMsg{Result: res})
	}
	go func() {
		rep, runErr = eng.FixAll(ctx, root)
		p.Send(progress.DoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		return nil, fmt.Errorf("progress view: %w", err)
	}
	if runErr != nil {
		return nil, runErr
	}
	return rep, nil
}

func printResult(res document.Result) {
	switch res.Outcome {
	case document.OutcomeWritten:
		fmt.Printf("%s %s (%d repairs)\n", ui.Pass.Render(ui.GlyphPass), res.Path, len(res.Repairs))
	case document.OutcomeClean:
		fmt.Printf("%s %s\n", ui.Pass.Render(ui.GlyphPass), ui.Dim.Render(res.Path))
	case document.OutcomeWithheld:
		fmt.Printf("%s %s (%d unresolved, withheld)\n", ui.Warn.Render(ui.GlyphWarn), res.Path, len(res.Unresolved))
	default:
		fmt.Printf("%s %s: %s %s\n", ui.Fail.Render(ui.GlyphFail), res.Path, res.Outcome, ui.Dim.Render(res.Error))
	}
}

func printSummary(rep *report.RunReport, artifactPath string) {
	s := rep.Summary
	fmt.Printf("\n%s %d written, %d clean, %d unrepairable, %d write-failed, %d unreadable, %d withheld\n",
		ui.Header.Render("Summary:"), s.Written, s.Clean, s.Unrepairable, s.WriteFailed, s.IOErrors, s.Withheld)
	fmt.Printf("%s %d repairs applied, %d unresolved issues\n",
		ui.Dim.Render("        "), s.RepairsApplied, s.UnresolvedIssues)
	fmt.Printf("%s %s\n", ui.Dim.Render("Report:"), artifactPath)
}
