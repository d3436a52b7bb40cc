// Package controller provides the front-ends that display codemod progress
// and reports.
package controller

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	total int
}

// WithTotal sets the number of files the run will process.
func WithTotal(total int) StartOption {
	return func(c *StartConfig) {
		c.total = total
	}
}

// UI defines how the workflow reports progress and results.
// FileProcessed may be called from several goroutines at once.
type UI interface {
	Start(options ...StartOption) error
	FileProcessed(result m.FileResult)
	Close()
	Wait() // Wait for UI to finish rendering the run
	DisplayReport(report *m.CodeTF) error
	DisplayCodemods(codemods []transform.Codemod) error
}

// NewUI creates a UI based on whether TTY mode is enabled.
// When useTTY is true, it returns a TUI (Bubble Tea).
// When useTTY is false, it returns a SimpleUI (plain text).
func NewUI(cmd *cobra.Command, useTTY bool) UI {
	if useTTY {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func buildStartConfig(options []StartOption) StartConfig {
	var cfg StartConfig

	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}
