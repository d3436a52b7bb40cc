package codemods

import (
	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
	"github.com/mouse-blink/codemodder/internal/names"
)

type urlSandbox struct{}

// NewURLSandbox routes requests.get through security.safe_requests.
func NewURLSandbox() transform.Codemod {
	return urlSandbox{}
}

func (urlSandbox) Metadata() m.Metadata {
	return m.Metadata{
		Name:              "url-sandbox",
		Summary:           "Sandbox URL creation",
		Description:       "Replaces requests.get with safe_requests.get, which refuses to fetch internal network addresses and non-http protocols.",
		ChangeDescription: "Switch use of requests for security.safe_requests",
		ReviewGuidance:    m.MergeAfterReview,
		References: []m.Reference{
			{URL: "https://github.com/pixee/python-security/blob/main/src/security/safe_requests/api.py", Description: "safe_requests API"},
			{URL: "https://owasp.org/www-community/attacks/Server_Side_Request_Forgery", Description: "Server Side Request Forgery"},
		},
	}
}

func (c urlSandbox) Transform(p *transform.Pass) (*cst.Tree, error) {
	desc := c.Metadata().ChangeDescription
	rewritten := false

	out := p.Rewrite(func(original, updated *cst.Node) *cst.Node {
		if original.Kind() != "call" || !p.Names.ResolvesTo(original.ChildByField("function"), "requests.get") {
			return nil
		}

		if !p.Eligible(original) {
			return nil
		}

		fn := updated.ChildByField("function")

		repl, err := cst.ReplaceExpression(fn, "safe_requests.get")
		if err != nil {
			return nil
		}

		rewritten = true

		p.Report(original, desc)

		return updated.WithChild(updated.ChildIndex(fn), repl)
	})

	if !rewritten {
		return p.Tree, nil
	}

	out, _, err := names.AddImport(out, "security", "safe_requests")
	if err != nil {
		return p.Tree, err
	}

	if p.Names.Bound("requests", "requests") && names.References(out.Root, "requests") == 0 {
		out, _ = names.RemoveModuleImport(out, "requests")
	}

	return out, nil
}
