package adapter

import (
	"context"
	"fmt"

	"github.com/mouse-blink/codemodder/internal/cst"
)

// PythonFileAdapter encapsulates python parsing so the domain layer can focus
// on codemod rules while delegating grammar details to an infrastructure
// component.
type PythonFileAdapter interface {
	// Parse builds a lossless tree for src. Malformed input returns an error
	// wrapping cst.ErrParse.
	Parse(ctx context.Context, filename string, src []byte) (*cst.Tree, error)
}

// LocalPythonFileAdapter provides a concrete PythonFileAdapter backed by
// tree-sitter.
type LocalPythonFileAdapter struct{}

// NewLocalPythonFileAdapter constructs a LocalPythonFileAdapter.
func NewLocalPythonFileAdapter() *LocalPythonFileAdapter {
	return &LocalPythonFileAdapter{}
}

// Parse builds a tree for the provided filename/source pair.
func (a *LocalPythonFileAdapter) Parse(ctx context.Context, filename string, src []byte) (*cst.Tree, error) {
	tree, err := cst.Parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return tree, nil
}
