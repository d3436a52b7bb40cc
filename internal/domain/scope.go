package domain

import (
	"strconv"
	"strings"

	"github.com/mouse-blink/codemodder/internal/adapter"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// PathPattern is a path glob with an optional line, written `glob` or
// `glob:line`.
type PathPattern struct {
	Glob string
	Line int
}

// ParsePathPattern splits a trailing `:line` suffix off raw. A suffix that is
// not a positive number stays part of the glob.
func ParsePathPattern(raw string) PathPattern {
	s := strings.TrimSpace(raw)

	i := strings.LastIndex(s, ":")
	if i < 0 {
		return PathPattern{Glob: s}
	}

	line, err := strconv.Atoi(s[i+1:])
	if err != nil || line <= 0 {
		return PathPattern{Glob: s}
	}

	return PathPattern{Glob: s[:i], Line: line}
}

// ParsePathPatterns parses every entry of raw, skipping blanks.
func ParsePathPatterns(raw []string) []PathPattern {
	out := make([]PathPattern, 0, len(raw))

	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}

		out = append(out, ParsePathPattern(r))
	}

	return out
}

// pathScope decides which files are processed and which of their lines
// codemods may touch.
type pathScope struct {
	include []PathPattern
	exclude []PathPattern
}

func newPathScope(include, exclude []string) pathScope {
	return pathScope{include: ParsePathPatterns(include), exclude: ParsePathPatterns(exclude)}
}

// fileGlobs returns the globs used for file selection. An include with a line
// still selects its file; an exclude with a line only excludes that line.
func (s pathScope) fileGlobs() (include, exclude []string) {
	for _, p := range s.include {
		include = append(include, p.Glob)
	}

	for _, p := range s.exclude {
		if p.Line == 0 {
			exclude = append(exclude, p.Glob)
		}
	}

	return include, exclude
}

// lineFilter builds the LineFilter of the file at rel from the line-bearing
// patterns that match it.
func (s pathScope) lineFilter(rel m.Path) m.LineFilter {
	var include, exclude []int

	for _, p := range s.include {
		if p.Line > 0 && adapter.MatchGlob(p.Glob, string(rel)) {
			include = append(include, p.Line)
		}
	}

	for _, p := range s.exclude {
		if p.Line > 0 && adapter.MatchGlob(p.Glob, string(rel)) {
			exclude = append(exclude, p.Line)
		}
	}

	return m.NewLineFilter(include, exclude)
}
