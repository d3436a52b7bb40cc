package controller

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// SimpleUI implements UI using plain text on the command's output.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start prints the number of files about to be processed.
func (s *SimpleUI) Start(options ...StartOption) error {
	cfg := buildStartConfig(options)
	s.printf("Running codemods on %d file(s)\n", cfg.total)

	return nil
}

// FileProcessed prints one line per changed or failed file.
func (s *SimpleUI) FileProcessed(result m.FileResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case result.Err != nil:
		s.printf("failed   %s: %v\n", result.Source.Rel, result.Err)
	case result.Changed():
		ids := make([]string, 0, len(result.Codemods))
		for _, outcome := range result.Codemods {
			ids = append(ids, outcome.ID)
		}

		s.printf("changed  %s (%s)\n", result.Source.Rel, strings.Join(ids, ", "))
	}
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {}

// Wait returns immediately; plain output needs no teardown.
func (s *SimpleUI) Wait() {}

// DisplayReport prints per-codemod totals and the failed files of a report.
func (s *SimpleUI) DisplayReport(report *m.CodeTF) error {
	rows := summarize(report)
	if len(rows) == 0 {
		s.printf("\nNo changes\n")
	} else {
		s.printf("\n%s", renderSummaryTable(rows))
	}

	if n := len(report.Run.FailedFiles); n > 0 {
		s.printf("\n%d file(s) failed:\n", n)

		for _, f := range report.Run.FailedFiles {
			s.printf("  %s: %s\n", f.Path, f.Reason)
		}
	}

	return nil
}

// DisplayCodemods prints the registry as a table.
func (s *SimpleUI) DisplayCodemods(codemods []transform.Codemod) error {
	s.printf("%s", renderCodemodTable(codemods))

	return nil
}

func renderSummaryTable(rows []codemodSummary) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Codemod", "Files", "Changes", "Lines"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT,
	})

	for _, r := range rows {
		table.Append([]string{r.id, fmt.Sprintf("%d", r.files), fmt.Sprintf("%d", r.changes), lineStat(r)})
	}

	t := totals(rows)
	table.SetFooter([]string{
		fmt.Sprintf("Total Codemods %d", len(rows)),
		fmt.Sprintf("%d", t.files),
		fmt.Sprintf("%d", t.changes),
		lineStat(t),
	})

	table.Render()

	return buf.String()
}

func renderCodemodTable(codemods []transform.Codemod) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Codemod", "Review", "Summary"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, c := range codemods {
		meta := c.Metadata()
		table.Append([]string{transform.ID(c), string(meta.ReviewGuidance), meta.Summary})
	}

	table.Render()

	return buf.String()
}

func lineStat(r codemodSummary) string {
	return fmt.Sprintf("+%d -%d", r.added, r.deleted)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
