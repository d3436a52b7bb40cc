package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	m "github.com/mouse-blink/codemodder/internal/model"
)

// ReportStore persists and retrieves CodeTF reports.
type ReportStore interface {
	SaveReport(path m.Path, report *m.CodeTF) error
	LoadReport(path m.Path) (*m.CodeTF, error)
}

// LocalReportStore writes reports as indented JSON files.
type LocalReportStore struct{}

// NewReportStore constructs a ReportStore implementation.
func NewReportStore() ReportStore {
	return &LocalReportStore{}
}

// SaveReport writes report to path, creating parent directories. The file is
// written next to its destination first and renamed into place.
func (rs *LocalReportStore) SaveReport(path m.Path, report *m.CodeTF) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	target := string(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".codetf-*")
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write report: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// LoadReport reads a report written by SaveReport.
func (rs *LocalReportStore) LoadReport(path m.Path) (*m.CodeTF, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, err
	}

	var report m.CodeTF
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}

	return &report, nil
}
