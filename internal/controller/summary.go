package controller

import (
	"sort"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	m "github.com/mouse-blink/codemodder/internal/model"
)

// codemodSummary is one row of a report summary.
type codemodSummary struct {
	id      string
	files   int
	changes int
	added   int
	deleted int
}

// summarize returns one row per codemod that changed at least one file,
// sorted by id.
func summarize(report *m.CodeTF) []codemodSummary {
	rows := make([]codemodSummary, 0, len(report.Results))

	for id, result := range report.Results {
		if len(result.Changeset) == 0 {
			continue
		}

		row := codemodSummary{id: id, files: len(result.Changeset)}

		for _, fc := range result.Changeset {
			row.changes += len(fc.Changes)

			added, deleted := diffStat(fc.Diff)
			row.added += added
			row.deleted += deleted
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })

	return rows
}

// diffStat counts added and deleted lines of a unified diff. A changed line
// counts as one of each.
func diffStat(unified string) (added, deleted int) {
	i := strings.Index(unified, "@@")
	if i < 0 {
		return 0, 0
	}

	hunks, err := diff.ParseHunks([]byte(unified[i:]))
	if err != nil {
		return 0, 0
	}

	for _, h := range hunks {
		st := h.Stat()
		added += int(st.Added + st.Changed)
		deleted += int(st.Deleted + st.Changed)
	}

	return added, deleted
}

func totals(rows []codemodSummary) codemodSummary {
	var t codemodSummary

	for _, r := range rows {
		t.files += r.files
		t.changes += r.changes
		t.added += r.added
		t.deleted += r.deleted
	}

	return t
}
