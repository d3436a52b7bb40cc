package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/codemodder/internal/model"
)

const sarifFixture = `{
  "version": "2.1.0",
  "runs": [{
    "tool": {"driver": {"name": "Semgrep OSS"}},
    "results": [
      {
        "ruleId": "tmp.codemodder-semgrep-1.sandbox-process-creation",
        "locations": [{"physicalLocation": {
          "artifactLocation": {"uri": "app.py", "uriBaseId": "%SRCROOT%"},
          "region": {"startLine": 3, "startColumn": 1, "endLine": 3, "endColumn": 20}
        }}]
      },
      {
        "ruleId": "limit-readline",
        "locations": [{"physicalLocation": {
          "artifactLocation": {"uri": "file:///project/pkg/io.py"},
          "region": {"startLine": 7, "startColumn": 5, "endColumn": 20}
        }}]
      }
    ]
  }]
}`

func TestParseSARIF(t *testing.T) {
	findings, err := ParseSARIF([]byte(sarifFixture), "/project")
	require.NoError(t, err)

	assert.Equal(t, []m.Finding{{
		RuleID:   "sandbox-process-creation",
		Path:     "app.py",
		Position: m.Position{Start: m.Point{Line: 3, Column: 0}, End: m.Point{Line: 3, Column: 19}},
	}}, findings["app.py"]["sandbox-process-creation"])

	assert.Equal(t, []m.Finding{{
		RuleID:   "limit-readline",
		Path:     "pkg/io.py",
		Position: m.Position{Start: m.Point{Line: 7, Column: 4}, End: m.Point{Line: 7, Column: 19}},
	}}, findings["pkg/io.py"]["limit-readline"])
}

func TestParseSARIF_Invalid(t *testing.T) {
	_, err := ParseSARIF([]byte("not json"), "/project")
	assert.Error(t, err)
}

func TestSemgrepScanner_NoRules(t *testing.T) {
	findings, err := NewSemgrepScanner("semgrep-does-not-exist").Scan(context.Background(), m.Path(t.TempDir()), nil)

	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestSemgrepScanner_MissingBinary(t *testing.T) {
	scanner := NewSemgrepScanner(filepath.Join(t.TempDir(), "semgrep"))

	_, err := scanner.Scan(context.Background(), m.Path(t.TempDir()), map[string][]byte{"r.yaml": []byte("rules: []\n")})
	assert.Error(t, err)
}

func TestSemgrepScanner_Scan(t *testing.T) {
	// A stand-in binary that copies a canned SARIF file to the -o argument.
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.sarif")
	require.NoError(t, os.WriteFile(fixture, []byte(sarifFixture), 0o600))

	script := "#!/bin/sh\nwhile [ \"$1\" != \"-o\" ]; do shift; done\ncp " + fixture + " \"$2\"\n"
	binary := filepath.Join(dir, "semgrep")
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o700))

	findings, err := NewSemgrepScanner(binary).Scan(context.Background(), m.Path(t.TempDir()), map[string][]byte{
		"sandbox.yaml": []byte("rules: []\n"),
	})

	require.NoError(t, err)
	assert.Len(t, findings["app.py"]["sandbox-process-creation"], 1)
}
