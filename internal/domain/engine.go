package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog/log"

	"github.com/mouse-blink/codemodder/internal/adapter"
	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	"github.com/mouse-blink/codemodder/internal/logging"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// diffHeader precedes every per-codemod diff. File names are left blank; the
// changeset entry carries the path.
const diffHeader = "--- \n+++ \n"

// Engine applies an ordered list of codemods to one file.
type Engine interface {
	Apply(ctx context.Context, file *transform.FileContext, src m.Source, content []byte) m.FileResult
}

type engine struct {
	parser   adapter.PythonFileAdapter
	codemods []transform.Codemod
}

// NewEngine creates an Engine running codemods in the given order.
func NewEngine(parser adapter.PythonFileAdapter, codemods []transform.Codemod) Engine {
	return &engine{parser: parser, codemods: codemods}
}

// Apply parses content and runs every codemod over it in sequence. Each pass
// sees the previous pass's output re-parsed, so positions are always fresh.
// Scanner findings on file are moved along with the lines they point at.
// A parse failure of the input fails the file; a pass that errors, panics or
// produces unparsable output is discarded on its own.
func (e *engine) Apply(ctx context.Context, file *transform.FileContext, src m.Source, content []byte) m.FileResult {
	result := m.FileResult{Source: src, Original: content, Rewritten: content}

	tree, err := e.parser.Parse(ctx, string(src.Rel), content)
	if err != nil {
		result.Err = logging.NewError(logging.ErrorTypeParse, "failed to parse file", err, map[string]interface{}{
			"file": string(src.Rel),
		})

		return result
	}

	current := string(content)

	for _, c := range e.codemods {
		if err := ctx.Err(); err != nil {
			result.Err = err

			return result
		}

		next, outcome, err := e.runPass(ctx, c, tree, file)
		if err != nil {
			logging.LogError(log.Logger, logging.NewError(logging.ErrorTypeRewrite, "discarded codemod pass", err, map[string]interface{}{
				"file":    string(src.Rel),
				"codemod": transform.ID(c),
			}))

			continue
		}

		if next == nil {
			continue
		}

		text := next.Serialize()
		outcome.Diff = UnifiedDiff(current, text)

		log.Debug().
			Str("file", string(src.Rel)).
			Str("codemod", outcome.ID).
			Int("changes", len(outcome.Changes)).
			Msg("codemod applied")

		result.Codemods = append(result.Codemods, outcome)

		if file.ScannerEnabled {
			file.Findings = newLineMap(current, text).findings(file.Findings)
		}

		tree, current = next, text
	}

	result.Rewritten = []byte(current)

	return result
}

// runPass runs one codemod. It returns a nil tree when the codemod left the
// text unchanged.
func (e *engine) runPass(ctx context.Context, c transform.Codemod, tree *cst.Tree, file *transform.FileContext) (next *cst.Tree, outcome m.CodemodOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = nil, fmt.Errorf("codemod panicked: %v", r)
		}
	}()

	pass := transform.NewPass(tree, file, c.Metadata().RuleIDs)

	out, err := c.Transform(pass)
	if err != nil {
		return nil, outcome, err
	}

	before, after := tree.Serialize(), out.Serialize()
	if before == after {
		return nil, outcome, nil
	}

	reparsed, err := e.parser.Parse(ctx, "", []byte(after))
	if err != nil {
		return nil, outcome, fmt.Errorf("rewritten source does not parse: %w", err)
	}

	return reparsed, m.CodemodOutcome{ID: transform.ID(c), Changes: pass.Changes()}, nil
}

// UnifiedDiff renders the line diff of before and after with three lines of
// context, or "" when they are equal.
func UnifiedDiff(before, after string) string {
	if before == after {
		return ""
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:       splitLines(before),
		B:       splitLines(after),
		Context: 3,
	})
	if err != nil || text == "" {
		return ""
	}

	return diffHeader + text
}

// splitLines splits s after every newline. Unlike difflib.SplitLines it does
// not add an empty last line to text that ends with a newline.
func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
