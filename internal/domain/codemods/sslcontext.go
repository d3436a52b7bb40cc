package codemods

import (
	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
	"github.com/mouse-blink/codemodder/internal/names"
)

var insecureTLSVersions = []string{
	"ssl.TLSVersion.SSLv2",
	"ssl.TLSVersion.SSLv3",
	"ssl.TLSVersion.TLSv1",
	"ssl.TLSVersion.TLSv1_1",
	"ssl.TLSVersion.MINIMUM_SUPPORTED",
}

var sslContextFactories = []string{"ssl.SSLContext", "ssl.create_default_context"}

type upgradeSSLContext struct{}

// NewUpgradeSSLContext raises insecure SSLContext minimum versions to TLS 1.2.
func NewUpgradeSSLContext() transform.Codemod {
	return upgradeSSLContext{}
}

func (upgradeSSLContext) Metadata() m.Metadata {
	return m.Metadata{
		Name:              "upgrade-sslcontext-minimum-version",
		Summary:           "Upgrade SSLContext minimum version",
		Description:       "Replaces minimum_version values below TLS 1.2 on SSLContext objects with TLSv1_2.",
		ChangeDescription: "Replaces minimum SSL/TLS version for SSLContext",
		ReviewGuidance:    m.MergeWithoutReview,
		References: []m.Reference{
			{URL: "https://docs.python.org/3/library/ssl.html#ssl.SSLContext.minimum_version", Description: "SSLContext.minimum_version"},
			{URL: "https://datatracker.ietf.org/doc/rfc8996/", Description: "RFC 8996: Deprecating TLS 1.0 and TLS 1.1"},
		},
		RuleIDs: mustRuleIDs("upgrade_sslcontext_minimum_version.yaml"),
	}
}

func (c upgradeSSLContext) Transform(p *transform.Pass) (*cst.Tree, error) {
	desc := c.Metadata().ChangeDescription

	contexts := make(map[string]bool)

	assignments(p.Tree.Root, func(_, left, right *cst.Node) {
		if right.Kind() == "call" && p.Names.ResolvesTo(right.ChildByField("function"), sslContextFactories...) {
			contexts[left.Code()] = true
		}
	})

	if len(contexts) == 0 {
		return p.Tree, nil
	}

	fromSSL := fromImportedNames(p.Tree, "ssl")
	before := make(map[string]int, len(fromSSL))

	for _, name := range fromSSL {
		before[name] = names.References(p.Tree.Root, name)
	}

	rewritten := false

	out := p.Rewrite(func(original, updated *cst.Node) *cst.Node {
		if original.Kind() != "assignment" {
			return nil
		}

		left, right := original.ChildByField("left"), original.ChildByField("right")
		if left == nil || right == nil || left.Kind() != "attribute" {
			return nil
		}

		attr, obj := left.ChildByField("attribute"), left.ChildByField("object")
		if attr == nil || attr.Text() != "minimum_version" || obj == nil || !contexts[obj.Code()] {
			return nil
		}

		if !p.Names.ResolvesTo(right, insecureTLSVersions...) || !p.Eligible(original) {
			return nil
		}

		updatedRight := updated.ChildByField("right")

		repl, err := cst.ReplaceExpression(updatedRight, "ssl.TLSVersion.TLSv1_2")
		if err != nil {
			return nil
		}

		rewritten = true

		p.Report(original, desc)

		return updated.WithChild(updated.ChildIndex(updatedRight), repl)
	})

	if !rewritten {
		return p.Tree, nil
	}

	out, _, err := names.AddModuleImport(out, "ssl")
	if err != nil {
		return p.Tree, err
	}

	for _, name := range fromSSL {
		if before[name] > 0 && names.References(out.Root, name) == 0 {
			out, _ = names.RemoveImportedName(out, "ssl", name)
		}
	}

	return out, nil
}

// fromImportedNames lists the unaliased names of top level
// `from module import ...` statements.
func fromImportedNames(t *cst.Tree, module string) []string {
	var out []string

	for _, stmt := range t.Statements() {
		if stmt.Kind() != "import_from_statement" || names.ModuleName(stmt) != module {
			continue
		}

		for _, n := range stmt.ChildrenByField("name") {
			if n.Kind() == "dotted_name" {
				out = append(out, n.Code())
			}
		}
	}

	return out
}
