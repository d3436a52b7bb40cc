package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// Report identity.
const (
	Vendor = "pixee"
	Tool   = "codemodder"
)

// ReportArgs describes the invocation recorded in a report.
type ReportArgs struct {
	Version     string
	Elapsed     time.Duration
	CommandLine []string
	Directory   m.Path
}

// BuildCodeTF aggregates per-file results into a report. Every selected
// codemod gets an entry, even with an empty changeset. Files that failed are
// listed under run.failedFiles.
func BuildCodeTF(args ReportArgs, codemods []transform.Codemod, results []m.FileResult) *m.CodeTF {
	report := &m.CodeTF{
		Run: m.Run{
			Vendor:      Vendor,
			Tool:        Tool,
			Version:     args.Version,
			Sarifs:      []string{},
			Elapsed:     strconv.FormatInt(args.Elapsed.Milliseconds(), 10),
			CommandLine: strings.TrimSpace(Tool + " " + strings.Join(args.CommandLine, " ")),
			Directory:   string(args.Directory),
		},
		Results: make(map[string]m.Result, len(codemods)),
	}

	for _, c := range codemods {
		meta := c.Metadata()
		report.Results[transform.ID(c)] = m.Result{
			Summary:     meta.Summary,
			Description: meta.Description,
			References:  meta.References,
			Changeset:   []m.FileChange{},
		}
	}

	for _, r := range results {
		if r.Err != nil {
			report.Run.FailedFiles = append(report.Run.FailedFiles, m.FailedFile{
				Path:   r.Source.Rel,
				Reason: r.Err.Error(),
			})

			continue
		}

		for _, outcome := range r.Codemods {
			entry, ok := report.Results[outcome.ID]
			if !ok {
				continue
			}

			entry.Changeset = append(entry.Changeset, m.FileChange{
				Path:    r.Source.Rel,
				Diff:    outcome.Diff,
				Changes: outcome.Changes,
			})
			report.Results[outcome.ID] = entry
		}
	}

	return report
}
