package domain

import (
	"github.com/pmezard/go-difflib/difflib"

	m "github.com/mouse-blink/codemodder/internal/model"
)

// lineMap translates 1-based line numbers of one version of a file to the
// next version. Lines a pass rewrote have no counterpart.
type lineMap struct {
	opcodes     []difflib.OpCode
	beforeLines int
	afterLines  int
}

func newLineMap(before, after string) lineMap {
	a, b := splitLines(before), splitLines(after)

	return lineMap{
		opcodes:     difflib.NewMatcher(a, b).GetOpCodes(),
		beforeLines: len(a),
		afterLines:  len(b),
	}
}

// line returns the new number of line, or false when the line was changed or
// removed.
func (lm lineMap) line(line int) (int, bool) {
	idx := line - 1
	if idx == lm.beforeLines {
		return lm.afterLines + 1, true
	}

	for _, op := range lm.opcodes {
		if idx < op.I1 || idx >= op.I2 {
			continue
		}

		if op.Tag != 'e' {
			return 0, false
		}

		return idx - op.I1 + op.J1 + 1, true
	}

	return 0, false
}

// findings moves every finding to the lines it occupies in the new version.
// Findings on rewritten lines are dropped.
func (lm lineMap) findings(in map[string][]m.Finding) map[string][]m.Finding {
	if len(in) == 0 {
		return in
	}

	out := make(map[string][]m.Finding, len(in))

	for rule, findings := range in {
		kept := make([]m.Finding, 0, len(findings))

		for _, f := range findings {
			start, ok := lm.line(f.Position.Start.Line)
			if !ok {
				continue
			}

			end, ok := lm.line(f.Position.End.Line)
			if !ok {
				continue
			}

			f.Position.Start.Line, f.Position.End.Line = start, end
			kept = append(kept, f)
		}

		out[rule] = kept
	}

	return out
}
