package cst

import "slices"

// LeaveFunc is called once per node after its children were rewritten.
// original is the node as it appears in the input tree; updated carries the
// already rewritten children. The returned node takes the place of original.
type LeaveFunc func(original, updated *Node) *Node

// Rewrite transforms the tree rooted at n bottom-up. Nodes whose subtree did
// not change are shared with the input. A nil result from leave keeps updated.
func Rewrite(n *Node, leave LeaveFunc) *Node {
	updated := n

	if !n.leaf {
		var children []*Node

		for i, c := range n.children {
			r := Rewrite(c, leave)
			if r == c {
				continue
			}

			if children == nil {
				children = slices.Clone(n.children)
			}

			children[i] = r.WithField(c.field)
		}

		if children != nil {
			updated = n.WithChildren(children)
		}
	}

	if out := leave(n, updated); out != nil {
		return out
	}

	return updated
}

// RewriteTree applies Rewrite to the root of t.
func RewriteTree(t *Tree, leave LeaveFunc) *Tree {
	return t.WithRoot(Rewrite(t.Root, leave))
}
