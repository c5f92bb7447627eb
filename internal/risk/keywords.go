package risk

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultKeywords is the built-in sensitive-term list, used when no keyword
// configuration is supplied.
var DefaultKeywords = []string{
	"hate", "kill", "attack", "stupid", "idiot", "destroy", "leaked", "confidential",
}

// ParseKeywords splits a comma-separated keyword list, trimming whitespace
// and dropping empty entries.
func ParseKeywords(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

type keywordFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywordFile reads a YAML keyword rule file of the form:
//
//	keywords:
//	  - hate
//	  - leaked
func LoadKeywordFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read keyword file: %w", err)
	}
	var f keywordFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse keyword file %s: %w", path, err)
	}
	if len(f.Keywords) == 0 {
		return nil, fmt.Errorf("keyword file %s has no keywords", path)
	}
	return f.Keywords, nil
}

// NormalizeKeywords lowercases and trims terms, dropping empties and
// duplicates while preserving first-seen order. Evaluation order is flag
// order, so order matters.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}
