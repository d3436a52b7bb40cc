package codemods

import (
	"fmt"
	"strings"

	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
	"github.com/mouse-blink/codemodder/internal/names"
)

// callSandbox replaces calls to a denylisted function with a call through a
// wrapper that receives the original callee as first argument.
type callSandbox struct {
	meta    m.Metadata
	targets []string
	module  string
	wrapper string
}

// NewProcessSandbox wraps subprocess calls with security.safe_command.
func NewProcessSandbox() transform.Codemod {
	return callSandbox{
		meta: m.Metadata{
			Name:              "sandbox-process-creation",
			Summary:           "Sandbox process creation",
			Description:       "Replaces subprocess.run and subprocess.call with the safe_command wrappers, which refuse commonly exploited commands and arguments.",
			ChangeDescription: "Switch use of subprocess for security.safe_command",
			ReviewGuidance:    m.MergeAfterReview,
			References: []m.Reference{
				{URL: "https://github.com/pixee/python-security/blob/main/src/security/safe_command/api.py", Description: "safe_command API"},
				{URL: "https://cwe.mitre.org/data/definitions/78.html", Description: "CWE-78: OS Command Injection"},
			},
			RuleIDs: mustRuleIDs("sandbox_process_creation.yaml"),
		},
		targets: []string{"subprocess.run", "subprocess.call"},
		module:  "security",
		wrapper: "safe_command",
	}
}

func (c callSandbox) Metadata() m.Metadata { return c.meta }

func (c callSandbox) Transform(p *transform.Pass) (*cst.Tree, error) {
	rewritten := false

	out := p.Rewrite(func(original, updated *cst.Node) *cst.Node {
		if original.Kind() != "call" || !p.Names.ResolvesTo(original.ChildByField("function"), c.targets...) {
			return nil
		}

		if !p.Eligible(original) {
			return nil
		}

		callee, _ := p.Names.Resolve(original.ChildByField("function"))
		fn := updated.ChildByField("function")
		args := callArgs(updated.ChildByField("arguments"))

		code := fmt.Sprintf("%s.%s(%s", c.wrapper, lastSegment(callee), fn.Code())
		if strings.TrimSpace(args) != "" {
			code += ", " + args
		}

		code += ")"

		repl, err := cst.ReplaceExpression(original, code)
		if err != nil {
			return nil
		}

		rewritten = true

		p.Report(original, c.meta.ChangeDescription)

		return repl
	})

	if !rewritten {
		return p.Tree, nil
	}

	out, _, err := names.AddImport(out, c.module, c.wrapper)

	return out, err
}
