package cst

import (
	m "github.com/mouse-blink/codemodder/internal/model"
)

// Positions maps the nodes of one tree to their source spans. Spans are keyed
// by node identity, so a Positions value only answers for nodes of the tree
// it was computed from; nodes built later by a rewrite are unknown to it.
type Positions struct {
	spans map[*Node]m.Position
	end   m.Point
}

// ComputePositions walks t once and records the span of every node. A span
// starts at the node's first token, after its leading trivia.
func ComputePositions(t *Tree) *Positions {
	p := &Positions{spans: make(map[*Node]m.Position)}
	cur := m.Point{Line: 1}

	p.walk(t.Root, &cur)
	p.end = advance(cur, t.Trailer)

	return p
}

func (p *Positions) walk(n *Node, cur *m.Point) (m.Point, m.Point, bool) {
	if n.leaf {
		*cur = advance(*cur, n.leading)
		start := *cur
		*cur = advance(*cur, n.text)
		p.spans[n] = m.Position{Start: start, End: *cur}

		return start, *cur, true
	}

	var start, end m.Point

	seen := false

	for _, c := range n.children {
		cs, ce, ok := p.walk(c, cur)
		if !ok {
			continue
		}

		if !seen {
			start = cs
			seen = true
		}

		end = ce
	}

	if !seen {
		start, end = *cur, *cur
	}

	p.spans[n] = m.Position{Start: start, End: end}

	return start, end, seen
}

func advance(p m.Point, s string) m.Point {
	for _, r := range s {
		if r == '\n' {
			p.Line++
			p.Column = 0

			continue
		}

		p.Column++
	}

	return p
}

// Of returns the span of n.
func (p *Positions) Of(n *Node) (m.Position, bool) {
	pos, ok := p.spans[n]

	return pos, ok
}

// Line returns the start line of n, or 0 when n is not part of the tree.
func (p *Positions) Line(n *Node) int {
	return p.spans[n].Start.Line
}

// LastLine is the last line of the file the positions were computed for.
func (p *Positions) LastLine() int {
	if p.end.Column == 0 && p.end.Line > 1 {
		return p.end.Line - 1
	}

	return p.end.Line
}
