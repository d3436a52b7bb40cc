package adapter

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	m "github.com/mouse-blink/codemodder/internal/model"
)

// Findings groups scanner results by relative file path, then rule id.
type Findings map[m.Path]map[string][]m.Finding

// Scanner runs an external static analysis tool over a project.
type Scanner interface {
	// Scan runs the given rule files over root. rules maps file names to
	// their YAML content.
	Scan(ctx context.Context, root m.Path, rules map[string][]byte) (Findings, error)
}

// SemgrepScanner runs the semgrep binary and reads its SARIF output.
type SemgrepScanner struct {
	binary string
}

// NewSemgrepScanner returns a scanner invoking binary.
func NewSemgrepScanner(binary string) *SemgrepScanner {
	return &SemgrepScanner{binary: binary}
}

// Scan writes the rules to a temporary directory and runs
// `semgrep scan --sarif` with one --config per rule file.
func (s *SemgrepScanner) Scan(ctx context.Context, root m.Path, rules map[string][]byte) (Findings, error) {
	if len(rules) == 0 {
		return Findings{}, nil
	}

	tmpDir, err := os.MkdirTemp("", "codemodder-semgrep-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	defer func() { _ = os.RemoveAll(tmpDir) }()

	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}

	sort.Strings(names)

	sarifPath := filepath.Join(tmpDir, "results.sarif")
	args := []string{"scan", "--no-error", "--dataflow-traces", "--sarif", "-o", sarifPath}

	for _, name := range names {
		path := filepath.Join(tmpDir, filepath.Base(name))
		if err := os.WriteFile(path, rules[name], 0o600); err != nil {
			return nil, fmt.Errorf("write rule file: %w", err)
		}

		args = append(args, "--config", path)
	}

	args = append(args, ".")

	// #nosec G204 - binary comes from configuration, arguments are generated
	cmd := exec.CommandContext(ctx, s.binary, args...)
	cmd.Dir = string(root)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	log.Debug().Str("binary", s.binary).Strs("args", args).Msg("running scanner")

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", s.binary, err, strings.TrimSpace(stderr.String()))
	}

	data, err := os.ReadFile(sarifPath)
	if err != nil {
		return nil, fmt.Errorf("read sarif: %w", err)
	}

	return ParseSARIF(data, string(root))
}

type sarifLog struct {
	Runs []struct {
		Results []struct {
			RuleID    string `json:"ruleId"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
					Region struct {
						StartLine   int `json:"startLine"`
						StartColumn int `json:"startColumn"`
						EndLine     int `json:"endLine"`
						EndColumn   int `json:"endColumn"`
					} `json:"region"`
				} `json:"physicalLocation"`
			} `json:"locations"`
		} `json:"results"`
	} `json:"runs"`
}

// ParseSARIF extracts findings from a SARIF log. SARIF columns are 1-based
// and are converted to the 0-based columns used by node positions. Rule ids
// are stripped of the config path prefix semgrep adds.
func ParseSARIF(data []byte, root string) (Findings, error) {
	var doc sarifLog
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode sarif: %w", err)
	}

	out := Findings{}

	for _, run := range doc.Runs {
		for _, result := range run.Results {
			ruleID := result.RuleID
			if i := strings.LastIndex(ruleID, "."); i >= 0 {
				ruleID = ruleID[i+1:]
			}

			for _, loc := range result.Locations {
				phys := loc.PhysicalLocation
				rel := relativeURI(phys.ArtifactLocation.URI, root)

				region := phys.Region
				if region.EndLine == 0 {
					region.EndLine = region.StartLine
				}

				finding := m.Finding{
					RuleID: ruleID,
					Path:   rel,
					Position: m.Position{
						Start: m.Point{Line: region.StartLine, Column: region.StartColumn - 1},
						End:   m.Point{Line: region.EndLine, Column: region.EndColumn - 1},
					},
				}

				if out[rel] == nil {
					out[rel] = make(map[string][]m.Finding)
				}

				out[rel][ruleID] = append(out[rel][ruleID], finding)
			}
		}
	}

	return out, nil
}

func relativeURI(uri, root string) m.Path {
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		uri = u.Path
	}

	p := filepath.FromSlash(uri)
	if filepath.IsAbs(p) && root != "" {
		if rel, err := filepath.Rel(root, p); err == nil {
			p = rel
		}
	}

	return m.Path(filepath.ToSlash(filepath.Clean(p)))
}
