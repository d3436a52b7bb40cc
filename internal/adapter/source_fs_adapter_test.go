package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/codemodder/internal/model"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func rels(sources []m.Source) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, string(s.Rel))
	}

	return out
}

func TestLocalSourceFSAdapter_Get(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"app.py",
		"pkg/models.py",
		"pkg/README.md",
		"tests/test_app.py",
		"venv/lib/site.py",
		".git/hooks/hook.py",
	} {
		writeTestFile(t, filepath.Join(root, rel), "x = 1\n")
	}

	adapter := NewLocalSourceFSAdapter()

	t.Run("include every python file except excluded dirs", func(t *testing.T) {
		sources, err := adapter.Get(m.Path(root), []string{"**/*.py"}, []string{"**/tests/**", "**/venv/**"})
		require.NoError(t, err)

		assert.Equal(t, []string{"app.py", "pkg/models.py"}, rels(sources))
		assert.Equal(t, m.Path(filepath.Join(root, "app.py")), sources[0].Path)
	})

	t.Run("narrow include", func(t *testing.T) {
		sources, err := adapter.Get(m.Path(root), []string{"pkg/**"}, nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"pkg/models.py"}, rels(sources))
	})

	t.Run("no include selects nothing", func(t *testing.T) {
		sources, err := adapter.Get(m.Path(root), nil, nil)
		require.NoError(t, err)

		assert.Empty(t, sources)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := adapter.Get(m.Path(filepath.Join(root, "missing")), []string{"**/*.py"}, nil)
		assert.Error(t, err)
	})

	t.Run("root is a file", func(t *testing.T) {
		_, err := adapter.Get(m.Path(filepath.Join(root, "app.py")), []string{"**/*.py"}, nil)
		assert.Error(t, err)
	})
}

func TestLocalSourceFSAdapter_ReadWriteFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "main.py")
	writeTestFile(t, path, "print(1)\n")
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, adapter.WriteFile(m.Path(path), []byte("print(2)\n")))

	got, err := adapter.ReadFile(m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, "print(2)\n", string(got))

	info, err := adapter.FileInfo(m.Path(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestLocalSourceFSAdapter_WriteFile_Missing(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	err := adapter.WriteFile(m.Path(filepath.Join(t.TempDir(), "nope.py")), []byte("x"))
	assert.Error(t, err)
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		rel     string
		want    bool
	}{
		{"**/*.py", "app.py", true},
		{"**/*.py", "a/b/c.py", true},
		{"**/*.py", "a/b/c.pyc", false},
		{"**/tests/**", "tests/test_x.py", true},
		{"**/tests/**", "src/tests/unit/test_x.py", true},
		{"**/tests/**", "src/testsuite.py", false},
		{"src/*.py", "src/app.py", true},
		{"src/*.py", "src/pkg/app.py", false},
		{"conftest.py", "pkg/conftest.py", true},
		{"app?.py", "app1.py", true},
		{"app.py", "appxpy", false},
		{"test_[0-9].py", "pkg/test_1.py", true},
		{"test_[0-9].py", "pkg/test_a.py", false},
		{"src/{api,web}/*.py", "src/web/views.py", true},
		{"src/{api,web}/*.py", "src/cli/main.py", false},
		{"src/[", "src/[", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchGlob(tt.pattern, tt.rel))
		})
	}
}
