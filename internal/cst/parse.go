package cst

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrParse is returned, wrapped, for any source that is not valid python.
var ErrParse = errors.New("parse error")

// Tree is a parsed file. The trailer holds the trivia that follows the last
// token of the file.
type Tree struct {
	Root    *Node
	Trailer string
}

// Serialize renders the tree back to source text.
func (t *Tree) Serialize() string {
	var b strings.Builder

	t.Root.write(&b, false)
	b.WriteString(t.Trailer)

	return b.String()
}

// WithRoot returns a tree sharing the trailer of t with a different root.
func (t *Tree) WithRoot(root *Node) *Tree {
	if root == t.Root {
		return t
	}

	return &Tree{Root: root, Trailer: t.Trailer}
}

// Newline returns the line ending the file uses: "\r\n" when its first line
// break is CRLF, "\n" otherwise.
func (t *Tree) Newline() string {
	text := t.Serialize()

	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}

	return "\n"
}

// Statements returns the module level statements.
func (t *Tree) Statements() []*Node {
	return t.Root.children
}

// WithStatements returns a tree whose module holds the given statements.
func (t *Tree) WithStatements(stmts []*Node) *Tree {
	return t.WithRoot(t.Root.WithChildren(stmts))
}

// Parse builds a tree from python source.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrParse)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tsTree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: empty syntax tree", ErrParse)
	}

	if root.HasError() {
		return nil, fmt.Errorf("%w: %s", ErrParse, describeError(root))
	}

	b := &builder{src: src}

	node, err := b.build(root, "")
	if err != nil {
		return nil, err
	}

	return &Tree{Root: node, Trailer: string(src[b.offset:])}, nil
}

// ParseString is Parse for in-memory snippets.
func ParseString(code string) (*Tree, error) {
	return Parse(context.Background(), []byte(code))
}

func describeError(root *sitter.Node) string {
	var bad *sitter.Node

	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if bad != nil || n == nil {
			return
		}

		if n.Type() == "ERROR" || n.IsMissing() {
			bad = n

			return
		}

		if !n.HasError() {
			return
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)

	if bad == nil {
		return "syntax error"
	}

	p := bad.StartPoint()
	if bad.IsMissing() {
		return fmt.Sprintf("missing %q at line %d column %d", bad.Type(), p.Row+1, p.Column)
	}

	return fmt.Sprintf("syntax error at line %d column %d", p.Row+1, p.Column)
}

type builder struct {
	src    []byte
	offset int
}

func (b *builder) build(n *sitter.Node, field string) (*Node, error) {
	start, end := int(n.StartByte()), int(n.EndByte())

	count := int(n.ChildCount())
	if count == 0 || !b.covered(n) {
		return b.token(n.Type(), n.IsNamed(), field, start, end)
	}

	node := &Node{kind: n.Type(), field: field, named: n.IsNamed()}
	node.children = make([]*Node, 0, count)

	cursor := sitter.NewTreeCursor(n)
	defer cursor.Close()

	if cursor.GoToFirstChild() {
		for {
			child, err := b.build(cursor.CurrentNode(), cursor.CurrentFieldName())
			if err != nil {
				return nil, err
			}

			node.children = append(node.children, child)

			if !cursor.GoToNextSibling() {
				break
			}
		}
	}

	return node, nil
}

func (b *builder) token(kind string, named bool, field string, start, end int) (*Node, error) {
	if start < b.offset || end < start || end > len(b.src) {
		return nil, fmt.Errorf("%w: overlapping token %q at byte %d", ErrParse, kind, start)
	}

	tok := &Node{
		kind:    kind,
		field:   field,
		named:   named,
		leaf:    true,
		leading: string(b.src[b.offset:start]),
		text:    string(b.src[start:end]),
	}
	b.offset = end

	return tok, nil
}

// covered reports whether every non-trivia byte of n belongs to one of its
// children. Nodes that fail the check (string contents with escape sequences)
// are kept as a single token.
func (b *builder) covered(n *sitter.Node) bool {
	pos := int(n.StartByte())

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if int(c.StartByte()) < pos || !isTrivia(b.src[pos:c.StartByte()]) {
			return false
		}

		pos = int(c.EndByte())
	}

	if int(n.EndByte()) < pos {
		return false
	}

	return isTrivia(b.src[pos:n.EndByte()])
}

func isTrivia(s []byte) bool {
	for _, c := range s {
		switch c {
		case ' ', '\t', '\r', '\n', '\f', '\\':
		default:
			return false
		}
	}

	return true
}
