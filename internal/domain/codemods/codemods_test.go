package codemods

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/codemodder/internal/cst"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	m "github.com/mouse-blink/codemodder/internal/model"
)

func runWith(t *testing.T, c transform.Codemod, file *transform.FileContext, code string) (string, []m.Change) {
	t.Helper()

	tree, err := cst.ParseString(code)
	require.NoError(t, err)

	p := transform.NewPass(tree, file, c.Metadata().RuleIDs)

	out, err := c.Transform(p)
	require.NoError(t, err)

	result := out.Serialize()
	_, err = cst.ParseString(result)
	require.NoError(t, err, "output must stay valid python:\n%s", result)

	return result, p.Changes()
}

func run(t *testing.T, c transform.Codemod, code string) (string, []m.Change) {
	t.Helper()

	return runWith(t, c, &transform.FileContext{}, code)
}

func lines(changes []m.Change) []int {
	out := make([]int, 0, len(changes))
	for _, ch := range changes {
		out = append(out, ch.LineNumber)
	}

	return out
}

func TestEmptySequenceComparison(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		want  string
		lines []int
	}{
		{"equals empty list", "if x == []:\n    pass\n", "if not x:\n    pass\n", []int{1}},
		{"empty on the left with not equals", "if [] != x:\n    pass\n", "if x:\n    pass\n", []int{1}},
		{"dict", "if x == {}:\n    pass\n", "if not x:\n    pass\n", []int{1}},
		{"tuple on the left", "if () == x.items:\n    pass\n", "if not x.items:\n    pass\n", []int{1}},
		{"parenthesized", "if (x == []):\n    pass\n", "if not x:\n    pass\n", []int{1}},
		{"double parentheses", "if ((x != {})):\n    pass\n", "if x:\n    pass\n", []int{1}},
		{"elif", "if a:\n    pass\nelif b != ():\n    pass\n", "if a:\n    pass\nelif b:\n    pass\n", []int{3}},
		{"non empty literal", "if x == [1]:\n    pass\n", "if x == [1]:\n    pass\n", []int{}},
		{"identity operator", "if x is []:\n    pass\n", "if x is []:\n    pass\n", []int{}},
		{"outside a condition", "y = x == []\n", "y = x == []\n", []int{}},
		{"both empty", "if [] == []:\n    pass\n", "if [] == []:\n    pass\n", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changes := run(t, NewEmptySequenceComparison(), tt.code)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.lines, lines(changes))
		})
	}
}

func TestEmptySequenceComparison_LineFilter(t *testing.T) {
	code := "if a == []:\n    pass\nif b == []:\n    pass\n"
	file := &transform.FileContext{Filter: m.NewLineFilter(nil, []int{1})}

	got, changes := runWith(t, NewEmptySequenceComparison(), file, code)

	assert.Equal(t, "if a == []:\n    pass\nif not b:\n    pass\n", got)
	assert.Equal(t, []int{3}, lines(changes))
}

func TestSecureFlaskSession(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		want  string
		lines []int
	}{
		{
			name:  "append missing keys",
			code:  "from flask import Flask\napp = Flask(__name__)\n",
			want:  "from flask import Flask\napp = Flask(__name__)\napp.config.update(SESSION_COOKIE_SECURE=True, SESSION_COOKIE_SAMESITE='Lax')\n",
			lines: []int{2},
		},
		{
			name:  "no app object",
			code:  "import flask\nconfig = {}\napp.config['SESSION_COOKIE_SECURE'] = False\n",
			want:  "import flask\nconfig = {}\napp.config['SESSION_COOKIE_SECURE'] = False\n",
			lines: []int{},
		},
		{
			name: "insecure subscript",
			code: "import flask\napp = flask.Flask(__name__)\napp.config['SESSION_COOKIE_SECURE'] = False\n",
			want: "import flask\napp = flask.Flask(__name__)\napp.config['SESSION_COOKIE_SECURE'] = True\n" +
				"app.config.update(SESSION_COOKIE_SAMESITE='Lax')\n",
			lines: []int{3, 3},
		},
		{
			name: "insecure update call",
			code: "from flask import Flask\napp = Flask(__name__)\n" +
				"app.config.update(SESSION_COOKIE_SECURE=True, SESSION_COOKIE_SAMESITE='None', SESSION_COOKIE_HTTPONLY=False)\n",
			want: "from flask import Flask\napp = Flask(__name__)\n" +
				"app.config.update(SESSION_COOKIE_SECURE=True, SESSION_COOKIE_SAMESITE=\"Lax\", SESSION_COOKIE_HTTPONLY=True)\n",
			lines: []int{3},
		},
		{
			name: "already secure",
			code: "from flask import Flask\napp = Flask(__name__)\n" +
				"app.config.update(SESSION_COOKIE_SECURE=True, SESSION_COOKIE_SAMESITE='Strict')\n",
			want: "from flask import Flask\napp = Flask(__name__)\n" +
				"app.config.update(SESSION_COOKIE_SECURE=True, SESSION_COOKIE_SAMESITE='Strict')\n",
			lines: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changes := run(t, NewSecureFlaskSession(), tt.code)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.lines, lines(changes))
		})
	}
}

func TestProcessSandbox(t *testing.T) {
	code := "import subprocess\n\nsubprocess.run(cmd)\nsubprocess.call([\"ls\"], shell=False)\n"
	want := "import subprocess\nfrom security import safe_command\n\n" +
		"safe_command.run(subprocess.run, cmd)\n" +
		"safe_command.call(subprocess.call, [\"ls\"], shell=False)\n"

	got, changes := run(t, NewProcessSandbox(), code)

	assert.Equal(t, want, got)
	assert.Equal(t, []int{3, 4}, lines(changes))
	assert.Equal(t, 1, strings.Count(got, "from security import safe_command"))
}

func TestProcessSandbox_Variants(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"no arguments", "import subprocess\nsubprocess.run()\n", "import subprocess\nfrom security import safe_command\nsafe_command.run(subprocess.run)\n"},
		{"from import", "from subprocess import run\nrun(cmd)\n", "from subprocess import run\nfrom security import safe_command\nsafe_command.run(run, cmd)\n"},
		{"other function", "import subprocess\nsubprocess.Popen(cmd)\n", "import subprocess\nsubprocess.Popen(cmd)\n"},
		{"already sandboxed", "import subprocess\nfrom security import safe_command\nsafe_command.run(subprocess.run, cmd)\n", "import subprocess\nfrom security import safe_command\nsafe_command.run(subprocess.run, cmd)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := run(t, NewProcessSandbox(), tt.code)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessSandbox_Findings(t *testing.T) {
	code := "import subprocess\nsubprocess.run(a)\nsubprocess.run(b)\n"
	finding := m.Finding{
		RuleID:   "sandbox-process-creation",
		Position: m.Position{Start: m.Point{Line: 3}, End: m.Point{Line: 3, Column: 17}},
	}
	file := &transform.FileContext{
		ScannerEnabled: true,
		Findings:       map[string][]m.Finding{finding.RuleID: {finding}},
	}

	got, changes := runWith(t, NewProcessSandbox(), file, code)

	assert.Contains(t, got, "\nsubprocess.run(a)\n")
	assert.Contains(t, got, "safe_command.run(subprocess.run, b)")
	assert.Equal(t, []int{3}, lines(changes))
}

func TestURLSandbox(t *testing.T) {
	code := "import requests\n\nrequests.get(\"www.google.com\")\nvar = \"hello\"\n"
	want := "from security import safe_requests\n\nsafe_requests.get(\"www.google.com\")\nvar = \"hello\"\n"

	got, changes := run(t, NewURLSandbox(), code)

	assert.Equal(t, want, got)
	assert.Equal(t, []int{3}, lines(changes))
}

func TestURLSandbox_KeepsUsedImport(t *testing.T) {
	code := "import requests\nrequests.get(url)\nrequests.post(url)\n"
	want := "import requests\nfrom security import safe_requests\nsafe_requests.get(url)\nrequests.post(url)\n"

	got, _ := run(t, NewURLSandbox(), code)

	assert.Equal(t, want, got)
}

func TestUnnecessaryFString(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"plain f-string", "x = f\"hello\"\n", "x = \"hello\"\n"},
		{"with placeholder", "x = f\"{y}\"\n", "x = f\"{y}\"\n"},
		{"raw with escaped braces", "x = rf'a{{b}}'\n", "x = r'a{b}'\n"},
		{"upper prefix", "x = F'abc'\n", "x = 'abc'\n"},
		{"not an f-string", "x = 'plain'\n", "x = 'plain'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := run(t, NewUnnecessaryFString(), tt.code)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLimitReadline(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"file readline", "file = open('some_file.txt')\nfile.readline()\n", "file = open('some_file.txt')\nfile.readline(5_000_000)\n"},
		{"StringIO", "import io\nio.StringIO('some_string').readline()\n", "import io\nio.StringIO('some_string').readline(5_000_000)\n"},
		{"BytesIO", "import io\nio.BytesIO(b'some_string').readline()\n", "import io\nio.BytesIO(b'some_string').readline(5_000_000)\n"},
		{"with statement", "with open('f') as fh:\n    fh.readline()\n", "with open('f') as fh:\n    fh.readline(5_000_000)\n"},
		{"already limited", "file = open('some_file.txt')\narg = file\narg.readline(5_000_000)\n", "file = open('some_file.txt')\narg = file\narg.readline(5_000_000)\n"},
		{"unknown object", "sock.readline()\n", "sock.readline()\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := run(t, NewLimitReadline(), tt.code)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLimitReadline_RuleIDs(t *testing.T) {
	assert.Equal(t, []string{"limit-readline"}, NewLimitReadline().Metadata().RuleIDs)
}

func TestUpgradeSSLContext(t *testing.T) {
	for _, version := range []string{"TLSv1", "TLSv1_1", "SSLv2", "SSLv3", "MINIMUM_SUPPORTED"} {
		t.Run(version, func(t *testing.T) {
			code := "import ssl\n\ncontext = ssl.SSLContext()\ncontext.minimum_version = ssl.TLSVersion." + version + "\n"
			want := "import ssl\n\ncontext = ssl.SSLContext()\ncontext.minimum_version = ssl.TLSVersion.TLSv1_2\n"

			got, changes := run(t, NewUpgradeSSLContext(), code)

			assert.Equal(t, want, got)
			assert.Equal(t, []int{4}, lines(changes))
		})
	}
}

func TestUpgradeSSLContext_Imports(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{
			name: "from import gets module import",
			code: "from ssl import SSLContext, TLSVersion\n\ncontext = SSLContext()\ncontext.minimum_version = TLSVersion.TLSv1\n",
			want: "from ssl import SSLContext\nimport ssl\n\ncontext = SSLContext()\ncontext.minimum_version = ssl.TLSVersion.TLSv1_2\n",
		},
		{
			name: "maximum version untouched",
			code: "from ssl import SSLContext, TLSVersion\n\ncontext = SSLContext()\ncontext.maximum_version = TLSVersion.TLSv1\n",
			want: "from ssl import SSLContext, TLSVersion\n\ncontext = SSLContext()\ncontext.maximum_version = TLSVersion.TLSv1\n",
		},
		{
			name: "module alias",
			code: "import ssl as whatever\n\ncontext = whatever.SSLContext()\ncontext.minimum_version = whatever.TLSVersion.SSLv3\n",
			want: "import ssl as whatever\nimport ssl\n\ncontext = whatever.SSLContext()\ncontext.minimum_version = ssl.TLSVersion.TLSv1_2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := run(t, NewUpgradeSSLContext(), tt.code)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDjangoReceiverOnTop(t *testing.T) {
	header := "from django.dispatch import receiver\n" +
		"from django.views.decorators.csrf import csrf_exempt\n" +
		"from django.core.signals import request_finished\n\n"

	tests := []struct {
		name  string
		code  string
		want  string
		lines []int
	}{
		{
			name:  "receiver moved up",
			code:  header + "@csrf_exempt\n@receiver(request_finished)\ndef foo():\n    pass\n",
			want:  header + "@receiver(request_finished)\n@csrf_exempt\ndef foo():\n    pass\n",
			lines: []int{7},
		},
		{
			name:  "already on top",
			code:  header + "@receiver(request_finished)\n@csrf_exempt\ndef foo():\n    pass\n",
			want:  header + "@receiver(request_finished)\n@csrf_exempt\ndef foo():\n    pass\n",
			lines: []int{},
		},
		{
			name:  "other receiver function",
			code:  "from signals import receiver\n\n@csrf_exempt\n@receiver(x)\ndef foo():\n    pass\n",
			want:  "from signals import receiver\n\n@csrf_exempt\n@receiver(x)\ndef foo():\n    pass\n",
			lines: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changes := run(t, NewDjangoReceiverOnTop(), tt.code)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.lines, lines(changes))
		})
	}
}

func TestOrderImports(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		want  string
		lines []int
	}{
		{
			name: "sections and names",
			code: "import requests\nimport os\nfrom . import local\nimport sys\n" +
				"from collections import defaultdict, OrderedDict\nfrom collections import abc\n\nprint(os)\n",
			want: "import os\nimport sys\nfrom collections import OrderedDict, abc, defaultdict\n\n" +
				"import requests\n\nfrom . import local\n\nprint(os)\n",
			lines: []int{1},
		},
		{
			name:  "already ordered",
			code:  "import os\nimport sys\n\nimport requests\n\nx = 1\n",
			want:  "import os\nimport sys\n\nimport requests\n\nx = 1\n",
			lines: []int{},
		},
		{
			name:  "comment moves with import",
			code:  "import sys\n# needed for paths\nimport os\n",
			want:  "# needed for paths\nimport os\nimport sys\n",
			lines: []int{1},
		},
		{
			name:  "crlf line endings",
			code:  "import sys\r\nimport os\r\n",
			want:  "import os\r\nimport sys\r\n",
			lines: []int{1},
		},
		{
			name:  "crlf with comment and sections",
			code:  "import requests\r\n# paths\r\nimport os\r\n\r\nx = 1\r\n",
			want:  "# paths\r\nimport os\r\n\r\nimport requests\r\n\r\nx = 1\r\n",
			lines: []int{1},
		},
		{
			name:  "split multi import",
			code:  "import sys, os  # std\n",
			want:  "import os  # std\nimport sys\n",
			lines: []int{1},
		},
		{
			name:  "no imports",
			code:  "x = 1\n",
			want:  "x = 1\n",
			lines: []int{},
		},
		{
			name:  "future first",
			code:  "import os\nfrom __future__ import annotations\n",
			want:  "from __future__ import annotations\n\nimport os\n",
			lines: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changes := run(t, NewOrderImports(), tt.code)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.lines, lines(changes))
		})
	}
}

func TestOrderImports_FirstParty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "mypkg"), 0o755))

	got, _ := runWith(t, NewOrderImports(), &transform.FileContext{ProjectDir: dir}, "import mypkg\nimport requests\n")

	assert.Equal(t, "import requests\n\nimport mypkg\n", got)
}

func TestOrderImports_BlockOutOfScope(t *testing.T) {
	code := "import sys\nimport os\n"
	file := &transform.FileContext{Filter: m.NewLineFilter([]int{2}, nil)}

	got, changes := runWith(t, NewOrderImports(), file, code)

	assert.Equal(t, code, got)
	assert.Empty(t, changes)
}

func TestRegistry(t *testing.T) {
	all := Registry().All()
	require.Len(t, all, 9)

	assert.Equal(t, "order-imports", all[len(all)-1].Metadata().Name, "import ordering runs last")

	for _, c := range all {
		meta := c.Metadata()
		assert.NotEmpty(t, meta.Summary, meta.Name)
		assert.NotEmpty(t, meta.ChangeDescription, meta.Name)
		assert.NotEmpty(t, meta.ReviewGuidance, meta.Name)
	}
}

func TestRuleFiles(t *testing.T) {
	files, err := RuleFiles()
	require.NoError(t, err)
	assert.Len(t, files, 3)

	ids, err := RuleIDsFromYAML(files["sandbox_process_creation.yaml"])
	require.NoError(t, err)
	assert.Equal(t, []string{"sandbox-process-creation"}, ids)

	_, err = RuleIDsFromYAML([]byte("rules: [unterminated"))
	assert.Error(t, err)
}

// runAll applies every codemod in order, reparsing between passes.
func runAll(t *testing.T, code string) (string, int) {
	t.Helper()

	total := 0

	for _, c := range All() {
		var changes []m.Change

		code, changes = run(t, c, code)
		total += len(changes)
	}

	return code, total
}

func TestAll_Idempotent(t *testing.T) {
	code := `import subprocess
import requests
from flask import Flask
import ssl

app = Flask(__name__)
context = ssl.create_default_context()
context.minimum_version = ssl.TLSVersion.TLSv1


def handler(x):
    if x == []:
        return f"empty"
    subprocess.run(x)
    return requests.get(x)
`

	once, firstChanges := runAll(t, code)
	twice, secondChanges := runAll(t, once)

	assert.Positive(t, firstChanges)
	assert.Equal(t, once, twice)
	assert.Zero(t, secondChanges)
}

func TestAll_RoundTripWithoutMatches(t *testing.T) {
	code := "# nothing to do here\n\n\ndef f(a,   b):\n    return a  +  b  # spaced\n"

	got, changes := runAll(t, code)

	assert.Equal(t, code, got)
	assert.Zero(t, changes)
}
