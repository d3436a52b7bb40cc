package codemods

import (
	"strings"

	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
)

type unnecessaryFString struct{}

// NewUnnecessaryFString drops the f prefix of f-strings without placeholders.
func NewUnnecessaryFString() transform.Codemod {
	return unnecessaryFString{}
}

func (unnecessaryFString) Metadata() m.Metadata {
	return m.Metadata{
		Name:              "remove-unnecessary-f-str",
		Summary:           "Remove unnecessary f-strings",
		Description:       "Converts f-strings that contain no placeholders into plain strings.",
		ChangeDescription: "Remove unnecessary f-string",
		ReviewGuidance:    m.MergeWithoutReview,
		References: []m.Reference{
			{URL: "https://pylint.readthedocs.io/en/latest/user_guide/messages/warning/f-string-without-interpolation.html", Description: "f-string-without-interpolation"},
		},
	}
}

func (c unnecessaryFString) Transform(p *transform.Pass) (*cst.Tree, error) {
	desc := c.Metadata().ChangeDescription

	out := p.Rewrite(func(original, _ *cst.Node) *cst.Node {
		if original.Kind() != "string" || hasDescendant(original, "interpolation") {
			return nil
		}

		prefix, quote, body, ok := stringParts(original.Code())
		if !ok || !strings.ContainsAny(prefix, "fF") {
			return nil
		}

		if !p.Eligible(original) {
			return nil
		}

		prefix = strings.NewReplacer("f", "", "F", "").Replace(prefix)
		body = strings.NewReplacer("{{", "{", "}}", "}").Replace(body)

		repl, err := cst.ReplaceExpression(original, prefix+quote+body+quote)
		if err != nil {
			return nil
		}

		p.Report(original, desc)

		return repl
	})

	return out, nil
}
