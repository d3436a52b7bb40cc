// Package cst provides a lossless, immutable concrete syntax tree for python
// source. Every token keeps the whitespace that precedes it, so serializing an
// untouched tree reproduces the input byte for byte.
package cst

import (
	"slices"
	"strings"
)

// Node is a typed tree element. A node is either a token (a leaf carrying text
// and its leading trivia) or an interior node with children. Nodes are never
// mutated after construction; the With* methods return modified copies.
type Node struct {
	kind     string
	field    string
	named    bool
	leaf     bool
	leading  string
	text     string
	children []*Node
}

// NewToken creates a detached token node.
func NewToken(kind, text string) *Node {
	return &Node{kind: kind, named: isNamedKind(kind), leaf: true, text: text}
}

// NewNode creates a detached interior node.
func NewNode(kind string, children ...*Node) *Node {
	return &Node{kind: kind, named: isNamedKind(kind), children: children}
}

func isNamedKind(kind string) bool {
	if kind == "" {
		return false
	}

	for _, r := range kind {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}

	return true
}

// Kind returns the grammar type of the node, e.g. "call" or "==".
func (n *Node) Kind() string { return n.kind }

// Field returns the field name the node occupies in its parent, if any.
func (n *Node) Field() string { return n.field }

// Named reports whether the node is a named grammar symbol rather than an
// anonymous token such as punctuation or a keyword.
func (n *Node) Named() bool { return n.named }

// IsLeaf reports whether the node is a token.
func (n *Node) IsLeaf() bool { return n.leaf }

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}

	return n.children[i]
}

// ChildByField returns the first child stored under field.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.children {
		if c.field == field {
			return c
		}
	}

	return nil
}

// ChildrenByField returns every child stored under field.
func (n *Node) ChildrenByField(field string) []*Node {
	var out []*Node

	for _, c := range n.children {
		if c.field == field {
			out = append(out, c)
		}
	}

	return out
}

// NamedChildren returns the named children, skipping punctuation, keywords and
// comments.
func (n *Node) NamedChildren() []*Node {
	var out []*Node

	for _, c := range n.children {
		if c.named && c.kind != "comment" {
			out = append(out, c)
		}
	}

	return out
}

// ChildIndex returns the position of c among the children, or -1.
func (n *Node) ChildIndex(c *Node) int {
	return slices.Index(n.children, c)
}

// Text returns the token text of a leaf. Interior nodes return Code().
func (n *Node) Text() string {
	if n.leaf {
		return n.text
	}

	return n.Code()
}

// Leading returns the trivia in front of the node's first token.
func (n *Node) Leading() string {
	if first := n.firstLeaf(); first != nil {
		return first.leading
	}

	return ""
}

// Code serializes the node without its leading trivia.
func (n *Node) Code() string {
	var b strings.Builder

	n.write(&b, true)

	return b.String()
}

// Source serializes the node including its leading trivia.
func (n *Node) Source() string {
	var b strings.Builder

	n.write(&b, false)

	return b.String()
}

func (n *Node) write(b *strings.Builder, skipLeading bool) bool {
	if n.leaf {
		if !skipLeading {
			b.WriteString(n.leading)
		}

		b.WriteString(n.text)

		return false
	}

	for _, c := range n.children {
		skipLeading = c.write(b, skipLeading)
	}

	return skipLeading
}

func (n *Node) firstLeaf() *Node {
	if n.leaf {
		return n
	}

	for _, c := range n.children {
		if l := c.firstLeaf(); l != nil {
			return l
		}
	}

	return nil
}

// Walk visits n and its descendants in source order. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}

	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Find returns the first node in source order for which pred holds.
func (n *Node) Find(pred func(*Node) bool) *Node {
	var found *Node

	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}

		if pred(c) {
			found = c

			return false
		}

		return true
	})

	return found
}

func (n *Node) clone() *Node {
	c := *n

	return &c
}

// WithChildren returns a copy of n with the given children.
func (n *Node) WithChildren(children []*Node) *Node {
	c := n.clone()
	c.children = children

	return c
}

// WithChild returns a copy of n where the i-th child is replaced by child.
// The replacement takes over the field name of the child it replaces.
func (n *Node) WithChild(i int, child *Node) *Node {
	if i < 0 || i >= len(n.children) {
		return n
	}

	children := slices.Clone(n.children)
	children[i] = child.WithField(n.children[i].field)

	return n.WithChildren(children)
}

// WithField returns n stored under another field name.
func (n *Node) WithField(field string) *Node {
	if n.field == field {
		return n
	}

	c := n.clone()
	c.field = field

	return c
}

// WithLeading returns a copy of n whose first token is preceded by trivia.
func (n *Node) WithLeading(trivia string) *Node {
	if n.leaf {
		if n.leading == trivia {
			return n
		}

		c := n.clone()
		c.leading = trivia

		return c
	}

	for i, child := range n.children {
		if child.firstLeaf() == nil {
			continue
		}

		return n.WithChild(i, child.WithLeading(trivia))
	}

	return n
}
