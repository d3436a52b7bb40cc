package codemods

import (
	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	"github.com/mouse-blink/codemodder/internal/match"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// ReadlineLimit is the byte limit passed to readline.
const ReadlineLimit = "5_000_000"

var fileOpeners = []string{"open", "io.open", "io.StringIO", "io.BytesIO"}

type limitReadline struct{}

// NewLimitReadline bounds readline calls on file-like objects.
func NewLimitReadline() transform.Codemod {
	return limitReadline{}
}

func (limitReadline) Metadata() m.Metadata {
	return m.Metadata{
		Name:              "limit-readline",
		Summary:           "Limit readline()",
		Description:       "Adds a size limit to readline() calls on file-like objects so a missing newline cannot exhaust memory.",
		ChangeDescription: "Adds a size limit argument to readline() calls.",
		ReviewGuidance:    m.MergeAfterCursoryReview,
		References: []m.Reference{
			{URL: "https://cwe.mitre.org/data/definitions/400.html", Description: "CWE-400: Uncontrolled Resource Consumption"},
		},
		RuleIDs: mustRuleIDs("limit_readline.yaml"),
	}
}

// fileObjects returns the names bound to the result of a file opener, by
// assignment or by a with statement.
func fileObjects(p *transform.Pass) map[string]bool {
	files := make(map[string]bool)

	isOpener := func(n *cst.Node) bool {
		return n != nil && n.Kind() == "call" && p.Names.ResolvesTo(n.ChildByField("function"), fileOpeners...)
	}

	assignments(p.Tree.Root, func(_, left, right *cst.Node) {
		if left.Kind() == "identifier" && isOpener(right) {
			files[left.Text()] = true
		}
	})

	p.Tree.Root.Walk(func(n *cst.Node) bool {
		if n.Kind() != "as_pattern" {
			return true
		}

		named := n.NamedChildren()
		alias := n.ChildByField("alias")

		if len(named) > 0 && alias != nil && isOpener(named[0]) {
			if target := alias.Find(func(c *cst.Node) bool { return c.Kind() == "identifier" }); target != nil {
				files[target.Text()] = true
			}
		}

		return true
	})

	return files
}

func (c limitReadline) Transform(p *transform.Pass) (*cst.Tree, error) {
	desc := c.Metadata().ChangeDescription
	files := fileObjects(p)

	readline := match.Call(
		match.Kind("attribute",
			match.Field("object", match.Capture("object", match.Any())),
			match.Field("attribute", match.Name("readline")),
		),
		match.NoArgs(),
	)

	out := p.Rewrite(func(original, updated *cst.Node) *cst.Node {
		caps, ok := match.Match(original, readline)
		if !ok {
			return nil
		}

		object := caps["object"]

		switch {
		case object.Kind() == "identifier" && files[object.Text()]:
		case object.Kind() == "call" && p.Names.ResolvesTo(object.ChildByField("function"), fileOpeners...):
		default:
			return nil
		}

		if !p.Eligible(original) {
			return nil
		}

		repl, err := cst.ReplaceExpression(original, updated.ChildByField("function").Code()+"("+ReadlineLimit+")")
		if err != nil {
			return nil
		}

		p.Report(original, desc)

		return repl
	})

	return out, nil
}
