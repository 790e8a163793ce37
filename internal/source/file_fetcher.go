package source

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/policy"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/validation"
)

type ruleDocument struct {
	Rules []policy.Rule `yaml:"rules"`
}

// FileFetcher reads rules from a standalone YAML file. Rules are validated
// and compiled before they replace the active set, so a broken file never
// takes down a running server.
type FileFetcher struct {
	path string
}

func NewFileFetcher(path string) (*FileFetcher, error) {
	if path == "" {
		return nil, fmt.Errorf("rule file path is empty")
	}
	return &FileFetcher{path: path}, nil
}

func (f *FileFetcher) Fetch(_ context.Context) ([]policy.Rule, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}

	var doc ruleDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rule file: %w", err)
	}

	rules, err := validation.ValidateRules(doc.Rules)
	if err != nil {
		return nil, fmt.Errorf("validating rule file: %w", err)
	}
	return rules, nil
}
