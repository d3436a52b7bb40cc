// Package model defines the data structures shared by the codemod engine.
package model

// Path represents a file system path.
type Path string

// Source is a candidate python file selected for transformation.
type Source struct {
	// Path is the absolute location of the file on disk.
	Path Path
	// Rel is the path relative to the project directory, used in reports.
	Rel Path
	// Filter scopes which lines of the file codemods may rewrite.
	Filter LineFilter
}

// FailedFile records a file that could not be processed.
type FailedFile struct {
	Path   Path   `json:"path"`
	Reason string `json:"reason"`
}
