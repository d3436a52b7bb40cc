package codemods

import (
	"strings"

	"github.com/mouse-blink/codemodder/internal/cst"
)

// stringParts splits the code of a string literal into prefix, quote and body.
func stringParts(code string) (prefix, quote, body string, ok bool) {
	i := strings.IndexAny(code, `'"`)
	if i < 0 {
		return "", "", "", false
	}

	prefix, rest := code[:i], code[i:]

	quote = rest[:1]
	if strings.HasPrefix(rest, `"""`) || strings.HasPrefix(rest, `'''`) {
		quote = rest[:3]
	}

	if len(rest) < 2*len(quote) || !strings.HasSuffix(rest, quote) {
		return "", "", "", false
	}

	return prefix, quote, rest[len(quote) : len(rest)-len(quote)], true
}

func hasDescendant(n *cst.Node, kind string) bool {
	return n.Find(func(c *cst.Node) bool { return c != n && c.Kind() == kind }) != nil
}

// literal returns the value of a plain string or boolean literal. Strings
// with interpolations, byte strings and every other expression are not
// literals.
func literal(n *cst.Node) (any, bool) {
	if n == nil {
		return nil, false
	}

	switch n.Kind() {
	case "true":
		return true, true
	case "false":
		return false, true
	case "string":
		if hasDescendant(n, "interpolation") {
			return nil, false
		}

		prefix, _, body, ok := stringParts(n.Code())
		if !ok || strings.ContainsAny(prefix, "bB") {
			return nil, false
		}

		return body, true
	}

	return nil, false
}

// callArgs returns the code between the parentheses of an argument list.
func callArgs(args *cst.Node) string {
	code := args.Code()
	if len(code) < 2 {
		return ""
	}

	return code[1 : len(code)-1]
}

// lastSegment returns the text after the last dot.
func lastSegment(dotted string) string {
	if i := strings.LastIndex(dotted, "."); i >= 0 {
		return dotted[i+1:]
	}

	return dotted
}

// assignments yields every `left = right` assignment in the tree, including
// annotated ones.
func assignments(root *cst.Node, fn func(assign, left, right *cst.Node)) {
	root.Walk(func(n *cst.Node) bool {
		if n.Kind() != "assignment" {
			return true
		}

		left, right := n.ChildByField("left"), n.ChildByField("right")
		if left != nil && right != nil {
			fn(n, left, right)
		}

		return true
	})
}
