package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/codemodder/internal/adapter"
	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/codemods"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	"github.com/mouse-blink/codemodder/internal/logging"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// fakeCodemod runs fn as its transform.
type fakeCodemod struct {
	name string
	fn   func(p *transform.Pass) (*cst.Tree, error)
}

func (f fakeCodemod) Metadata() m.Metadata { return m.Metadata{Name: f.name, Summary: f.name} }

func (f fakeCodemod) Transform(p *transform.Pass) (*cst.Tree, error) { return f.fn(p) }

func panicking() transform.Codemod {
	return fakeCodemod{name: "panics", fn: func(*transform.Pass) (*cst.Tree, error) {
		panic("unexpected node")
	}}
}

func failing() transform.Codemod {
	return fakeCodemod{name: "fails", fn: func(*transform.Pass) (*cst.Tree, error) {
		return nil, errors.New("cannot rewrite")
	}}
}

func breaking() transform.Codemod {
	return fakeCodemod{name: "breaks", fn: func(p *transform.Pass) (*cst.Tree, error) {
		return p.Tree.WithRoot(cst.NewNode("module", cst.NewToken("identifier", "def (:\n"))), nil
	}}
}

func applyEngine(t *testing.T, cms []transform.Codemod, code string) m.FileResult {
	t.Helper()

	eng := NewEngine(adapter.NewLocalPythonFileAdapter(), cms)
	src := m.Source{Path: "/project/app.py", Rel: "app.py"}

	return eng.Apply(context.Background(), &transform.FileContext{Path: src.Rel}, src, []byte(code))
}

func TestEngine_Apply_SequentialPasses(t *testing.T) {
	// Arrange
	code := "import requests\n\nif x == []:\n    requests.get(f\"url\")\n"

	// Act
	result := applyEngine(t, []transform.Codemod{
		codemods.NewEmptySequenceComparison(),
		codemods.NewUnnecessaryFString(),
		codemods.NewURLSandbox(),
	}, code)

	// Assert
	require.NoError(t, result.Err)
	assert.True(t, result.Changed())
	assert.Equal(t, "from security import safe_requests\n\nif not x:\n    safe_requests.get(\"url\")\n", string(result.Rewritten))

	require.Len(t, result.Codemods, 3)
	assert.Equal(t, "pixee:python/fix-empty-sequence-comparison", result.Codemods[0].ID)
	assert.Equal(t, "pixee:python/url-sandbox", result.Codemods[2].ID)

	for _, outcome := range result.Codemods {
		assert.NotEmpty(t, outcome.Changes, outcome.ID)
		assert.Contains(t, outcome.Diff, "--- \n+++ \n@@", outcome.ID)
	}

	assert.Contains(t, result.Codemods[1].Diff, "-    requests.get(f\"url\")\n+    requests.get(\"url\")\n")
}

func TestEngine_Apply_NoChanges(t *testing.T) {
	code := "print('hello')\n"

	result := applyEngine(t, codemods.All(), code)

	require.NoError(t, result.Err)
	assert.False(t, result.Changed())
	assert.Empty(t, result.Codemods)
	assert.Equal(t, code, string(result.Rewritten))
}

func TestEngine_Apply_DiscardsBrokenPasses(t *testing.T) {
	tests := []struct {
		name    string
		codemod transform.Codemod
	}{
		{"panic", panicking()},
		{"error", failing()},
		{"unparsable output", breaking()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := applyEngine(t, []transform.Codemod{tt.codemod, codemods.NewUnnecessaryFString()}, "x = f'a'\n")

			require.NoError(t, result.Err)
			assert.Equal(t, "x = 'a'\n", string(result.Rewritten))
			require.Len(t, result.Codemods, 1)
			assert.Equal(t, "pixee:python/remove-unnecessary-f-str", result.Codemods[0].ID)
		})
	}
}

func TestEngine_Apply_ParseFailure(t *testing.T) {
	result := applyEngine(t, codemods.All(), "def broken(:\n")

	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, cst.ErrParse)

	errType, ok := logging.TypeOf(result.Err)
	require.True(t, ok)
	assert.Equal(t, logging.ErrorTypeParse, errType)
	assert.False(t, result.Changed())
}

func TestEngine_Apply_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := NewEngine(adapter.NewLocalPythonFileAdapter(), codemods.All())
	src := m.Source{Rel: "app.py"}

	result := eng.Apply(ctx, &transform.FileContext{}, src, []byte("x = f'a'\n"))

	assert.Error(t, result.Err)
	assert.Equal(t, "x = f'a'\n", string(result.Rewritten))
}

func TestUnifiedDiff(t *testing.T) {
	assert.Empty(t, UnifiedDiff("a\n", "a\n"))
	assert.Equal(t, "--- \n+++ \n@@ -1 +1 @@\n-a\n+b\n", UnifiedDiff("a\n", "b\n"))
	assert.Equal(t, "--- \n+++ \n@@ -1,2 +1,2 @@\n a\n-b\n+c\n", UnifiedDiff("a\nb\n", "a\nc\n"))
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"trailing newline", "a\nb\n", []string{"a\n", "b\n"}},
		{"no trailing newline", "a\nb", []string{"a\n", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a\r\n", "b\r\n"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitLines(tt.text))
		})
	}
}

func TestEngine_Apply_FindingsFollowEarlierPasses(t *testing.T) {
	// Arrange
	code := "import subprocess\nf = open('x')\nsubprocess.run(cmd)\nf.readline()\n"
	sandbox := m.Finding{
		RuleID:   "sandbox-process-creation",
		Position: m.Position{Start: m.Point{Line: 3}, End: m.Point{Line: 3, Column: 19}},
	}
	readline := m.Finding{
		RuleID:   "limit-readline",
		Position: m.Position{Start: m.Point{Line: 4}, End: m.Point{Line: 4, Column: 12}},
	}
	file := &transform.FileContext{
		Path:           "app.py",
		ScannerEnabled: true,
		Findings: map[string][]m.Finding{
			sandbox.RuleID:  {sandbox},
			readline.RuleID: {readline},
		},
	}
	eng := NewEngine(adapter.NewLocalPythonFileAdapter(), []transform.Codemod{
		codemods.NewProcessSandbox(),
		codemods.NewLimitReadline(),
	})

	// Act
	result := eng.Apply(context.Background(), file, m.Source{Rel: "app.py"}, []byte(code))

	// Assert
	require.NoError(t, result.Err)
	assert.Equal(t, "import subprocess\nfrom security import safe_command\nf = open('x')\n"+
		"safe_command.run(subprocess.run, cmd)\nf.readline(5_000_000)\n", string(result.Rewritten))

	require.Len(t, result.Codemods, 2)
	assert.Equal(t, "pixee:python/limit-readline", result.Codemods[1].ID)
	assert.Equal(t, 5, result.Codemods[1].Changes[0].LineNumber)
}
