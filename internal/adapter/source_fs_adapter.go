// Package adapter contains the infrastructure the codemod workflow talks to:
// the filesystem, the python parser, the report store, the external scanner
// and run metrics.
package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	m "github.com/mouse-blink/codemodder/internal/model"
)

const pythonFileExt = ".py"

// SourceFSAdapter abstracts filesystem-specific operations that the domain layer
// relies on when scanning user projects. It hides direct `os` access so the
// workflow logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// Get collects the python files under root whose relative path matches an
	// include glob and no exclude glob. Results are sorted by relative path.
	Get(root m.Path, include, exclude []string) ([]m.Source, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile replaces the content of an existing file, keeping its mode.
	WriteFile(path m.Path, content []byte) error

	// FileInfo returns metadata for a path so the domain can check existence or
	// distinguish between files and directories when necessary.
	FileInfo(path m.Path) (os.FileInfo, error)
}

// LocalSourceFSAdapter is the os backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// skippedDirs are never descended into.
var skippedDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	"node_modules": {},
	"__pycache__":  {},
}

// Get walks root and selects python sources.
func (a *LocalSourceFSAdapter) Get(root m.Path, include, exclude []string) ([]m.Source, error) {
	rootStr, err := filepath.Abs(string(root))
	if err != nil {
		return nil, err
	}

	info, err := a.FileInfo(m.Path(rootStr))
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", rootStr)
	}

	var sources []m.Source

	err = filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if _, skip := skippedDirs[info.Name()]; skip && path != rootStr {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != pythonFileExt || !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(rootStr, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)
		if !selected(rel, include, exclude) {
			return nil
		}

		sources = append(sources, m.Source{Path: m.Path(path), Rel: m.Path(rel)})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Rel < sources[j].Rel })

	return sources, nil
}

func selected(rel string, include, exclude []string) bool {
	for _, pattern := range exclude {
		if MatchGlob(pattern, rel) {
			return false
		}
	}

	for _, pattern := range include {
		if MatchGlob(pattern, rel) {
			return true
		}
	}

	return false
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile overwrites path in place.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte) error {
	info, err := os.Stat(string(path))
	if err != nil {
		return err
	}

	return os.WriteFile(string(path), content, info.Mode().Perm())
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}
