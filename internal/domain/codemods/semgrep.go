package codemods

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed semgrep/*.yaml
var ruleFS embed.FS

type ruleFile struct {
	Rules []struct {
		ID string `yaml:"id"`
	} `yaml:"rules"`
}

// RuleIDsFromYAML returns the ids of the rules declared in a semgrep rule file.
func RuleIDsFromYAML(content []byte) ([]string, error) {
	var rf ruleFile
	if err := yaml.Unmarshal(content, &rf); err != nil {
		return nil, fmt.Errorf("decoding semgrep rules: %w", err)
	}

	ids := make([]string, 0, len(rf.Rules))

	for _, r := range rf.Rules {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}

	return ids, nil
}

// RuleFiles returns the embedded semgrep rule files by file name.
func RuleFiles() (map[string][]byte, error) {
	entries, err := fs.ReadDir(ruleFS, "semgrep")
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(entries))

	for _, e := range entries {
		content, err := ruleFS.ReadFile(path.Join("semgrep", e.Name()))
		if err != nil {
			return nil, err
		}

		out[e.Name()] = content
	}

	return out, nil
}

func mustRuleIDs(name string) []string {
	content, err := ruleFS.ReadFile(path.Join("semgrep", name))
	if err != nil {
		panic(fmt.Sprintf("missing embedded rule file %s: %v", name, err))
	}

	ids, err := RuleIDsFromYAML(content)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded rule file %s: %v", name, err))
	}

	return ids
}
