package model

import "fmt"

// Point is a location in a source file. Lines are 1-based, columns are
// 0-based character offsets within the line.
type Point struct {
	Line   int
	Column int
}

// Position is the span of a node in the source text.
type Position struct {
	Start Point
	End   Point
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", p.Start.Line, p.Start.Column, p.End.Line, p.End.Column)
}

// Change is one applied edit.
type Change struct {
	LineNumber  int    `json:"lineNumber"`
	Description string `json:"description"`
}

// LineFilter scopes rewrites to a set of lines. An empty Include means every
// line is in scope. Exclude always wins over Include.
type LineFilter struct {
	Include map[int]struct{}
	Exclude map[int]struct{}
}

// NewLineFilter builds a filter from include and exclude line lists.
func NewLineFilter(include, exclude []int) LineFilter {
	f := LineFilter{}

	for _, line := range include {
		if f.Include == nil {
			f.Include = make(map[int]struct{})
		}

		f.Include[line] = struct{}{}
	}

	for _, line := range exclude {
		if f.Exclude == nil {
			f.Exclude = make(map[int]struct{})
		}

		f.Exclude[line] = struct{}{}
	}

	return f
}

// InScope reports whether a node anchored at line may be rewritten.
func (f LineFilter) InScope(line int) bool {
	if _, excluded := f.Exclude[line]; excluded {
		return false
	}

	if len(f.Include) == 0 {
		return true
	}

	_, included := f.Include[line]

	return included
}

// Empty reports whether the filter places no restriction at all.
func (f LineFilter) Empty() bool {
	return len(f.Include) == 0 && len(f.Exclude) == 0
}
