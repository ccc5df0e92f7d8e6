// Package progress provides the bubbletea view shown while fix-all runs on
// a terminal: a spinner, a progress bar, and one line per finished document.
package progress

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/deeklead/wfmend/internal/document"
	"github.com/deeklead/wfmend/internal/ui"
)

// ResultMsg is sent once per completed document.
type ResultMsg struct {
	Result document.Result
}

// DoneMsg ends the program once the whole run has finished.
type DoneMsg struct{}

// Model is the bubbletea model for a fix-all run.
type Model struct {
	total  int
	done   int
	lines  []string
	cancel func()

	spinner  spinner.Model
	progress progress.Model

	finished bool
	width    int
}

// New creates a progress model for a run over total documents. cancel is
// invoked when the user interrupts the run; the engine then stops
// dispatching new documents while in-flight ones finish.
func New(total int, cancel func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		total:    total,
		cancel:   cancel,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles result, completion, key, and tick messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 8
		return m, nil

	case ResultMsg:
		m.done++
		m.lines = append(m.lines, renderResult(msg.Result))
		return m, nil

	case DoneMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the run status.
func (m Model) View() string {
	s := ""
	for _, l := range m.lines {
		s += l + "\n"
	}
	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.done) / float64(m.total)
	}
	if m.finished {
		return s + m.progress.ViewAs(ratio) + "\n"
	}
	return s + fmt.Sprintf("%s %d/%d %s\n",
		m.spinner.View(), m.done, m.total, m.progress.ViewAs(ratio))
}

func renderResult(res document.Result) string {
	switch res.Outcome {
	case document.OutcomeWritten:
		return fmt.Sprintf("%s %s (%d repairs)",
			ui.Pass.Render(ui.GlyphPass), res.Path, len(res.Repairs))
	case document.OutcomeClean:
		return fmt.Sprintf("%s %s", ui.Pass.Render(ui.GlyphPass), ui.Dim.Render(res.Path))
	case document.OutcomeWithheld:
		return fmt.Sprintf("%s %s (%d unresolved, withheld)",
			ui.Warn.Render(ui.GlyphWarn), res.Path, len(res.Unresolved))
	default:
		return fmt.Sprintf("%s %s: %s %s",
			ui.Fail.Render(ui.GlyphFail), res.Path, string(res.Outcome), ui.Dim.Render(res.Error))
	}
}
