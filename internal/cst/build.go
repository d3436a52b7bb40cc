package cst

import (
	"fmt"
	"strings"
)

// ParseExpression parses code as a single python expression and returns the
// detached expression node.
func ParseExpression(code string) (*Node, error) {
	stmt, err := ParseStatement(code)
	if err != nil {
		return nil, err
	}

	if stmt.kind != "expression_statement" || len(stmt.children) != 1 {
		return nil, fmt.Errorf("%w: %q is not a single expression", ErrParse, code)
	}

	return stmt.children[0].WithField(""), nil
}

// ParseStatement parses code as exactly one python statement.
func ParseStatement(code string) (*Node, error) {
	stmts, err := ParseStatements(code)
	if err != nil {
		return nil, err
	}

	if len(stmts) != 1 {
		return nil, fmt.Errorf("%w: expected one statement, got %d", ErrParse, len(stmts))
	}

	return stmts[0], nil
}

// ParseStatements parses code as a sequence of module level statements. The
// first statement has no leading trivia; later ones keep the blank lines and
// newlines that separate them in code.
func ParseStatements(code string) ([]*Node, error) {
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}

	t, err := ParseString(code)
	if err != nil {
		return nil, err
	}

	stmts := t.Statements()
	if len(stmts) > 0 {
		stmts[0] = stmts[0].WithLeading("")
	}

	return stmts, nil
}

// ReplaceExpression builds the expression given by code so that it can take
// the place of orig: it inherits orig's field and leading trivia.
func ReplaceExpression(orig *Node, code string) (*Node, error) {
	n, err := ParseExpression(code)
	if err != nil {
		return nil, err
	}

	return n.WithLeading(orig.Leading()).WithField(orig.field), nil
}

// ReplaceStatement is ReplaceExpression for statements.
func ReplaceStatement(orig *Node, code string) (*Node, error) {
	n, err := ParseStatement(code)
	if err != nil {
		return nil, err
	}

	return n.WithLeading(orig.Leading()).WithField(orig.field), nil
}
