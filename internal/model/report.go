package model

// CodeTF is the machine-readable change report.
type CodeTF struct {
	Run     Run               `json:"run"`
	Results map[string]Result `json:"results"`
}

// Run describes the invocation that produced a report.
type Run struct {
	Vendor      string       `json:"vendor"`
	Tool        string       `json:"tool"`
	Version     string       `json:"version"`
	Sarifs      []string     `json:"sarifs"`
	Elapsed     string       `json:"elapsed"`
	CommandLine string       `json:"commandLine"`
	Directory   string       `json:"directory"`
	FailedFiles []FailedFile `json:"failedFiles,omitempty"`
}

// Result groups the file changes produced by one codemod.
type Result struct {
	Summary     string       `json:"summary,omitempty"`
	Description string       `json:"description,omitempty"`
	References  []Reference  `json:"references,omitempty"`
	Changeset   []FileChange `json:"changeset"`
}

// FileChange is the per-file outcome of one codemod.
type FileChange struct {
	Path    Path     `json:"path"`
	Diff    string   `json:"diff"`
	Changes []Change `json:"changes"`
}

// FileResult is the engine output for a single file.
type FileResult struct {
	Source Source
	// Original and Rewritten hold the file text before and after all passes.
	Original  []byte
	Rewritten []byte
	// Codemods holds the per-codemod outcome in execution order.
	Codemods []CodemodOutcome
	Err      error
}

// Changed reports whether any codemod rewrote the file.
func (r FileResult) Changed() bool {
	return r.Err == nil && string(r.Original) != string(r.Rewritten)
}

// CodemodOutcome is what a single codemod did to a single file.
type CodemodOutcome struct {
	ID      string
	Changes []Change
	Diff    string
}
