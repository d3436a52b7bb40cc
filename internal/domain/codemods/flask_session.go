package codemods

import (
	"fmt"
	"strings"

	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	"github.com/mouse-blink/codemodder/internal/match"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// SecureConfig lists the acceptable values of one configuration key in order
// of preference. A nil first value means leaving the key unassigned is
// acceptable.
type SecureConfig struct {
	Key    string
	Values []any
}

// acceptable reports whether v is one of the concrete acceptable values.
func (s SecureConfig) acceptable(v any, ok bool) bool {
	if !ok {
		return false
	}

	for _, want := range s.Values {
		if want != nil && want == v {
			return true
		}
	}

	return false
}

// preferred returns the first concrete acceptable value.
func (s SecureConfig) preferred() any {
	for _, v := range s.Values {
		if v != nil {
			return v
		}
	}

	return nil
}

func (s SecureConfig) unassignedOK() bool {
	return len(s.Values) > 0 && s.Values[0] == nil
}

// FlaskSessionConfigs are the session cookie settings enforced on flask apps.
var FlaskSessionConfigs = []SecureConfig{
	{Key: "SESSION_COOKIE_HTTPONLY", Values: []any{nil, true}},
	{Key: "SESSION_COOKIE_SECURE", Values: []any{true}},
	{Key: "SESSION_COOKIE_SAMESITE", Values: []any{"Lax", "Strict"}},
}

type secureFlaskSession struct {
	configs []SecureConfig
}

// NewSecureFlaskSession hardens the session cookie configuration of a flask
// application.
func NewSecureFlaskSession() transform.Codemod {
	return secureFlaskSession{configs: FlaskSessionConfigs}
}

func (secureFlaskSession) Metadata() m.Metadata {
	return m.Metadata{
		Name:              "secure-flask-session-configuration",
		Summary:           "Flip insecure Flask session cookie configurations",
		Description:       "Sets the session cookie of Flask applications to be secure, HTTP only and same-site restricted unless the code already does so.",
		ChangeDescription: "Flip Flask session configuration if defined as insecure",
		ReviewGuidance:    m.MergeAfterReview,
		References: []m.Reference{
			{URL: "https://owasp.org/www-community/controls/SecureCookieAttribute", Description: "Secure Cookie Attribute"},
			{URL: "https://flask.palletsprojects.com/en/latest/security/#set-cookie-options", Description: "Flask set-cookie options"},
		},
	}
}

// flaskApp returns the name the flask application object is bound to.
func flaskApp(p *transform.Pass) string {
	app := ""

	assignments(p.Tree.Root, func(_, left, right *cst.Node) {
		if app != "" || left.Kind() != "identifier" || right.Kind() != "call" {
			return
		}

		if p.Names.ResolvesTo(right.ChildByField("function"), "flask.Flask") {
			app = left.Text()
		}
	})

	return app
}

func (c secureFlaskSession) Transform(p *transform.Pass) (*cst.Tree, error) {
	app := flaskApp(p)
	if app == "" {
		return p.Tree, nil
	}

	desc := c.Metadata().ChangeDescription
	specs := make(map[string]SecureConfig, len(c.configs))
	pending := make(map[string]bool, len(c.configs))

	for _, s := range c.configs {
		specs[s.Key] = s
		pending[s.Key] = true
	}

	updateCall := match.Call(match.AttrPath(app, "config", "update"))
	configTarget := match.Kind("subscript", match.Field("value", match.AttrPath(app, "config")))

	out := p.Rewrite(func(original, updated *cst.Node) *cst.Node {
		switch {
		case match.Matches(original, updateCall):
			return c.secureUpdateCall(p, original, updated, specs, pending, desc)
		case original.Kind() == "assignment" && match.Matches(original.ChildByField("left"), configTarget):
			return c.secureSubscript(p, original, updated, specs, pending, desc)
		}

		return nil
	})

	var missing []string

	for _, s := range c.configs {
		if !pending[s.Key] || s.unassignedOK() {
			continue
		}

		missing = append(missing, fmt.Sprintf("%s=%s", s.Key, pythonValue(s.preferred(), '\'')))
	}

	lastLine := p.Positions.LastLine()
	if len(missing) == 0 || !p.File.Filter.InScope(lastLine) {
		return out, nil
	}

	stmt, err := cst.ParseStatement(fmt.Sprintf("%s.config.update(%s)", app, strings.Join(missing, ", ")))
	if err != nil {
		return p.Tree, err
	}

	stmts := out.Statements()
	if len(stmts) > 0 {
		stmt = stmt.WithLeading(out.Newline())
	}

	p.ReportLine(lastLine, desc)

	return out.WithStatements(append(append([]*cst.Node(nil), stmts...), stmt)), nil
}

// secureUpdateCall handles `app.config.update(KEY=value, ...)`.
func (c secureFlaskSession) secureUpdateCall(p *transform.Pass, original, updated *cst.Node,
	specs map[string]SecureConfig, pending map[string]bool, desc string,
) *cst.Node {
	args := updated.ChildByField("arguments")
	argsIdx := updated.ChildIndex(args)
	eligible := p.Eligible(original)
	changed := false

	for i, arg := range args.Children() {
		if arg.Kind() != "keyword_argument" {
			continue
		}

		spec, ok := specs[arg.ChildByField("name").Text()]
		if !ok {
			continue
		}

		delete(pending, spec.Key)

		value := arg.ChildByField("value")
		if !eligible || spec.acceptable(literal(value)) {
			continue
		}

		repl, err := cst.ReplaceExpression(value, pythonValue(spec.preferred(), '"'))
		if err != nil {
			continue
		}

		args = args.WithChild(i, arg.WithChild(arg.ChildIndex(value), repl))
		changed = true
	}

	if !changed {
		return nil
	}

	p.Report(original, desc)

	return updated.WithChild(argsIdx, args)
}

// secureSubscript handles `app.config["KEY"] = value`.
func (c secureFlaskSession) secureSubscript(p *transform.Pass, original, updated *cst.Node,
	specs map[string]SecureConfig, pending map[string]bool, desc string,
) *cst.Node {
	key, ok := literal(original.ChildByField("left").ChildByField("subscript"))
	if !ok {
		return nil
	}

	name, _ := key.(string)

	spec, ok := specs[name]
	if !ok {
		return nil
	}

	delete(pending, spec.Key)

	right := updated.ChildByField("right")
	if !p.Eligible(original) || spec.acceptable(literal(right)) {
		return nil
	}

	repl, err := cst.ReplaceExpression(right, pythonValue(spec.preferred(), '"'))
	if err != nil {
		return nil
	}

	p.Report(original, desc)

	return updated.WithChild(updated.ChildIndex(right), repl)
}

// pythonValue renders a config value as python source.
func pythonValue(v any, quote rune) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "True"
		}

		return "False"
	case string:
		return string(quote) + val + string(quote)
	}

	return "None"
}
