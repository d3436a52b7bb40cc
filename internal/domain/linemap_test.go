package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	m "github.com/mouse-blink/codemodder/internal/model"
)

func TestLineMap_Line(t *testing.T) {
	lm := newLineMap("a\nb\nc\nd\n", "a\nnew\nb\nC\nd\n")

	tests := []struct {
		line int
		want int
		ok   bool
	}{
		{1, 1, true},
		{2, 3, true},
		{3, 0, false},
		{4, 5, true},
		{5, 6, true},
	}

	for _, tt := range tests {
		got, ok := lm.line(tt.line)

		assert.Equal(t, tt.ok, ok, "line %d", tt.line)
		assert.Equal(t, tt.want, got, "line %d", tt.line)
	}
}

func TestLineMap_Findings(t *testing.T) {
	lm := newLineMap("import os\nx()\ny()\n", "import os\nimport sys\nx()\nY()\n")
	at := func(line, endCol int) m.Finding {
		return m.Finding{RuleID: "r", Position: m.Position{Start: m.Point{Line: line}, End: m.Point{Line: line, Column: endCol}}}
	}

	got := lm.findings(map[string][]m.Finding{"r": {at(2, 3), at(3, 3)}})

	assert.Equal(t, map[string][]m.Finding{"r": {at(3, 3)}}, got)
	assert.Nil(t, lm.findings(nil))
}
