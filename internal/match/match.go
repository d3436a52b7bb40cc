// Package match provides composable structural predicates over cst nodes.
//
// Patterns only look at tree shape and token text. They never resolve names
// (see package names) and never evaluate values.
package match

import (
	"strings"

	"github.com/mouse-blink/codemodder/internal/cst"
)

// Captures holds the sub-nodes bound by Capture patterns during a match.
type Captures map[string]*cst.Node

// Pattern is a structural predicate. A pattern may add entries to caps; the
// entries are only meaningful when the overall match succeeds.
type Pattern func(n *cst.Node, caps Captures) bool

// Match applies p to n and returns the captures on success.
func Match(n *cst.Node, p Pattern) (Captures, bool) {
	if n == nil {
		return nil, false
	}

	caps := Captures{}
	if !p(n, caps) {
		return nil, false
	}

	return caps, true
}

// Matches reports whether n satisfies p.
func Matches(n *cst.Node, p Pattern) bool {
	_, ok := Match(n, p)

	return ok
}

// Any matches every non-nil node.
func Any() Pattern {
	return func(n *cst.Node, _ Captures) bool { return n != nil }
}

// Kind matches nodes of the given grammar type that also satisfy all subs.
func Kind(kind string, subs ...Pattern) Pattern {
	return func(n *cst.Node, caps Captures) bool {
		if n == nil || n.Kind() != kind {
			return false
		}

		for _, sub := range subs {
			if !sub(n, caps) {
				return false
			}
		}

		return true
	}
}

// Field matches when the child stored under name satisfies p.
func Field(name string, p Pattern) Pattern {
	return func(n *cst.Node, caps Captures) bool {
		if n == nil {
			return false
		}

		return p(n.ChildByField(name), caps)
	}
}

// Text matches nodes whose code equals text.
func Text(text string) Pattern {
	return func(n *cst.Node, _ Captures) bool {
		return n != nil && n.Code() == text
	}
}

// Name matches an identifier with the given text.
func Name(name string) Pattern {
	return Kind("identifier", Text(name))
}

// OneOf matches when any of ps matches. Captures of failed alternatives are
// discarded.
func OneOf(ps ...Pattern) Pattern {
	return func(n *cst.Node, caps Captures) bool {
		for _, p := range ps {
			trial := Captures{}
			if p(n, trial) {
				for k, v := range trial {
					caps[k] = v
				}

				return true
			}
		}

		return false
	}
}

// AllOf matches when every p matches.
func AllOf(ps ...Pattern) Pattern {
	return func(n *cst.Node, caps Captures) bool {
		for _, p := range ps {
			if !p(n, caps) {
				return false
			}
		}

		return true
	}
}

// Not inverts p. Captures made by p are dropped.
func Not(p Pattern) Pattern {
	return func(n *cst.Node, _ Captures) bool {
		return !p(n, Captures{})
	}
}

// Capture binds the node matched by p under name.
func Capture(name string, p Pattern) Pattern {
	return func(n *cst.Node, caps Captures) bool {
		if !p(n, caps) {
			return false
		}

		caps[name] = n

		return true
	}
}

// AttrPath matches a dotted access chain written literally in the source,
// e.g. AttrPath("app", "config", "update") matches `app.config.update`.
// An element "*" matches any single name.
func AttrPath(parts ...string) Pattern {
	if len(parts) == 0 {
		return func(*cst.Node, Captures) bool { return false }
	}

	last := parts[len(parts)-1]
	if len(parts) == 1 {
		if last == "*" {
			return Kind("identifier")
		}

		return Name(last)
	}

	attr := Name(last)
	if last == "*" {
		attr = Kind("identifier")
	}

	return Kind("attribute",
		Field("object", AttrPath(parts[:len(parts)-1]...)),
		Field("attribute", attr),
	)
}

// Dotted is AttrPath for a "a.b.c" string.
func Dotted(path string) Pattern {
	return AttrPath(strings.Split(path, ".")...)
}

// Call matches a call whose callee satisfies callee and whose argument list
// satisfies every args pattern.
func Call(callee Pattern, args ...Pattern) Pattern {
	return Kind("call",
		Field("function", callee),
		Field("arguments", AllOf(append([]Pattern{Kind("argument_list")}, args...)...)),
	)
}

// NoArgs matches an argument list without arguments.
func NoArgs() Pattern {
	return func(n *cst.Node, _ Captures) bool {
		return n != nil && len(n.NamedChildren()) == 0
	}
}

// HasKeyword matches an argument list containing keyword=value where the
// value satisfies p.
func HasKeyword(keyword string, p Pattern) Pattern {
	return func(n *cst.Node, caps Captures) bool {
		if n == nil {
			return false
		}

		for _, arg := range n.NamedChildren() {
			if arg.Kind() != "keyword_argument" {
				continue
			}

			if name := arg.ChildByField("name"); name != nil && name.Text() == keyword {
				return p(arg.ChildByField("value"), caps)
			}
		}

		return false
	}
}

// EmptySequence matches the literals [], {} and ().
func EmptySequence() Pattern {
	return func(n *cst.Node, _ Captures) bool {
		if n == nil {
			return false
		}

		switch n.Kind() {
		case "list", "dictionary", "tuple":
			return len(n.NamedChildren()) == 0
		}

		return false
	}
}

// Comparison matches a single binary comparison `left <op> right` whose
// operator is one of ops. left and right are captured under "left" and
// "right", the operator under "op".
func Comparison(ops ...string) Pattern {
	return func(n *cst.Node, caps Captures) bool {
		if n == nil || n.Kind() != "comparison_operator" {
			return false
		}

		operands := n.NamedChildren()
		operators := n.ChildrenByField("operators")

		if len(operands) != 2 || len(operators) != 1 {
			return false
		}

		op := operators[0].Text()
		for _, want := range ops {
			if op == want {
				caps["left"], caps["right"], caps["op"] = operands[0], operands[1], operators[0]

				return true
			}
		}

		return false
	}
}
