// Package transform defines the unit of work every codemod runs in: a Pass
// over one version of one file's tree.
package transform

import (
	"sort"

	"github.com/mouse-blink/codemodder/internal/cst"
	m "github.com/mouse-blink/codemodder/internal/model"
	"github.com/mouse-blink/codemodder/internal/names"
)

// FileContext is the per-file state shared by all passes over a file. It is
// created before the first pass runs and never shared across files.
type FileContext struct {
	// Path is the file path relative to the project directory.
	Path m.Path
	// ProjectDir is the absolute project directory.
	ProjectDir string
	// Filter scopes the lines codemods may rewrite.
	Filter m.LineFilter
	// Findings holds scanner results for this file keyed by rule id.
	Findings map[string][]m.Finding
	// ScannerEnabled gates codemods with rule ids on Findings.
	ScannerEnabled bool
}

// Pass is one codemod applied to one version of a file's tree. Positions and
// Names answer for nodes of Tree only.
type Pass struct {
	Tree      *cst.Tree
	Positions *cst.Positions
	Names     *names.Resolver
	File      *FileContext

	ruleIDs []string
	changes []m.Change
}

// NewPass prepares a pass of a codemod with the given scanner rule ids.
func NewPass(tree *cst.Tree, file *FileContext, ruleIDs []string) *Pass {
	pos := cst.ComputePositions(tree)

	return &Pass{
		Tree:      tree,
		Positions: pos,
		Names:     names.NewResolver(tree, pos),
		File:      file,
		ruleIDs:   ruleIDs,
	}
}

// Line returns the anchor line of n: the line its first token starts on.
func (p *Pass) Line(n *cst.Node) int {
	return p.Positions.Line(n)
}

// InScope applies the file's line filter to the anchor line of n.
func (p *Pass) InScope(n *cst.Node) bool {
	return p.File.Filter.InScope(p.Line(n))
}

// Flagged reports whether the scanner produced a finding covering exactly the
// span of n. Codemods without rule ids, and runs without the scanner, are not
// gated.
func (p *Pass) Flagged(n *cst.Node) bool {
	if !p.File.ScannerEnabled || len(p.ruleIDs) == 0 {
		return true
	}

	span, ok := p.Positions.Of(n)
	if !ok {
		return false
	}

	for _, id := range p.ruleIDs {
		for _, f := range p.File.Findings[id] {
			if f.Position == span {
				return true
			}
		}
	}

	return false
}

// Eligible combines InScope and Flagged.
func (p *Pass) Eligible(n *cst.Node) bool {
	return p.InScope(n) && p.Flagged(n)
}

// Report records one applied edit anchored on n.
func (p *Pass) Report(n *cst.Node, description string) {
	p.ReportLine(p.Line(n), description)
}

// ReportLine records one applied edit on an explicit line.
func (p *Pass) ReportLine(line int, description string) {
	p.changes = append(p.changes, m.Change{LineNumber: line, Description: description})
}

// Changes returns the recorded edits ordered by line.
func (p *Pass) Changes() []m.Change {
	out := make([]m.Change, len(p.changes))
	copy(out, p.changes)

	sort.SliceStable(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })

	return out
}

// Rewrite runs a bottom-up rewrite over the pass's tree.
func (p *Pass) Rewrite(leave cst.LeaveFunc) *cst.Tree {
	return cst.RewriteTree(p.Tree, leave)
}
