package controller

import (
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	options []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer, options ...tea.ProgramOption) *TUI {
	return &TUI{output: output, options: options}
}

// Start launches the progress view in the background.
func (t *TUI) Start(options ...StartOption) error {
	cfg := buildStartConfig(options)

	opts := append([]tea.ProgramOption{tea.WithOutput(t.output), tea.WithInput(nil)}, t.options...)
	program := tea.NewProgram(newRunModel(cfg.total), opts...)
	done := make(chan struct{})

	t.mu.Lock()
	t.program, t.done = program, done
	t.mu.Unlock()

	go func() {
		defer close(done)

		_, _ = program.Run()
	}()

	return nil
}

// FileProcessed forwards a file result to the progress view.
func (t *TUI) FileProcessed(result m.FileResult) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(fileDoneFor(result))
}

// Close tells the progress view the run is over.
func (t *TUI) Close() {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(runFinishedMsg{})
	}
}

// Wait blocks until the progress view has exited.
func (t *TUI) Wait() {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done != nil {
		<-done
	}
}

// DisplayReport renders per-codemod totals below a styled title.
func (t *TUI) DisplayReport(report *m.CodeTF) error {
	rows := summarize(report)

	_, _ = fmt.Fprintf(t.output, "\n%s\n", titleStyle.Render("Changes"))

	if len(rows) == 0 {
		_, _ = fmt.Fprintln(t.output, mutedStyle.Render("No changes"))
	} else {
		_, _ = fmt.Fprint(t.output, renderSummaryTable(rows))
	}

	if len(report.Run.FailedFiles) > 0 {
		_, _ = fmt.Fprintf(t.output, "\n%s\n", statusStyles[statusFailed].Render("Failed files"))

		for _, f := range report.Run.FailedFiles {
			_, _ = fmt.Fprintf(t.output, "  %s %s\n", f.Path, mutedStyle.Render(f.Reason))
		}
	}

	return nil
}

// DisplayCodemods renders the registry table under a styled title.
func (t *TUI) DisplayCodemods(codemods []transform.Codemod) error {
	_, _ = fmt.Fprintf(t.output, "%s\n%s", titleStyle.Render("Codemods"), renderCodemodTable(codemods))

	return nil
}

func fileDoneFor(result m.FileResult) fileDoneMsg {
	msg := fileDoneMsg{path: string(result.Source.Rel), status: statusUnchanged}

	switch {
	case result.Err != nil:
		msg.status = statusFailed
	case result.Changed():
		msg.status = statusChanged
	}

	for _, outcome := range result.Codemods {
		msg.changes += len(outcome.Changes)
	}

	return msg
}
