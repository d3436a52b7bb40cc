package codemods

import (
	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	"github.com/mouse-blink/codemodder/internal/match"
	m "github.com/mouse-blink/codemodder/internal/model"
)

type emptySequenceComparison struct{}

// NewEmptySequenceComparison rewrites `if x == []` to `if not x` and
// `if x != []` to `if x`.
func NewEmptySequenceComparison() transform.Codemod {
	return emptySequenceComparison{}
}

func (emptySequenceComparison) Metadata() m.Metadata {
	return m.Metadata{
		Name:              "fix-empty-sequence-comparison",
		Summary:           "Replace comparisons to empty sequence with implicit boolean comparison",
		Description:       "Empty sequences are falsy, so comparing a value against [], {} or () in a condition is better written as a truth test.",
		ChangeDescription: "Replaced comparison to an empty sequence with an implicit boolean check",
		ReviewGuidance:    m.MergeWithoutReview,
		References: []m.Reference{
			{URL: "https://docs.python.org/3/library/stdtypes.html#truth-value-testing", Description: "Truth Value Testing"},
		},
	}
}

var emptyComparison = match.Comparison("==", "!=")

func (c emptySequenceComparison) Transform(p *transform.Pass) (*cst.Tree, error) {
	desc := c.Metadata().ChangeDescription

	out := p.Rewrite(func(original, updated *cst.Node) *cst.Node {
		if original.Kind() != "if_statement" && original.Kind() != "elif_clause" {
			return nil
		}

		if !p.Eligible(original) {
			return nil
		}

		cond := original.ChildByField("condition")

		caps, ok := match.Match(unparenthesize(cond), emptyComparison)
		if !ok {
			return nil
		}

		left, right := caps["left"], caps["right"]

		var operand *cst.Node

		switch {
		case match.Matches(right, match.EmptySequence()) && !match.Matches(left, match.EmptySequence()):
			operand = left
		case match.Matches(left, match.EmptySequence()) && !match.Matches(right, match.EmptySequence()):
			operand = right
		default:
			return nil
		}

		code := operand.Code()
		if caps["op"].Text() == "==" {
			code = "not " + code
		}

		repl, err := cst.ReplaceExpression(cond, code)
		if err != nil {
			return nil
		}

		i := original.ChildIndex(cond)
		if i < 0 || updated.Child(i) == nil || updated.Child(i).Field() != "condition" {
			return nil
		}

		p.Report(original, desc)

		return updated.WithChild(i, repl)
	})

	return out, nil
}

// unparenthesize returns the expression wrapped by any number of parentheses
// around n.
func unparenthesize(n *cst.Node) *cst.Node {
	for n != nil && n.Kind() == "parenthesized_expression" {
		named := n.NamedChildren()
		if len(named) != 1 {
			return n
		}

		n = named[0]
	}

	return n
}
