package validation

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/policy"
)

// ValidateRules checks the policy rules and pre-compiles their expressions.
// The returned slice carries the compiled programs.
func ValidateRules(rules []policy.Rule) ([]policy.Rule, error) {
	seen := make(map[string]struct{}, len(rules))

	for i := range rules {
		rule := &rules[i]
		if rule.Name == "" {
			return nil, fmt.Errorf("rule at index %d has empty name", i)
		}
		if _, ok := seen[rule.Name]; ok {
			return nil, fmt.Errorf("duplicate rule name %q", rule.Name)
		}
		seen[rule.Name] = struct{}{}

		if rule.Grant.ResourcePrefix == "" {
			return nil, fmt.Errorf("rule %q grants no resource prefix", rule.Name)
		}
		if len(rule.Grant.Scopes) == 0 {
			return nil, fmt.Errorf("rule %q grants no scopes", rule.Name)
		}
		if len(rule.Match.WebIDs) == 0 && rule.Match.Expr == "" && !rule.Match.AllowAny {
			return nil, fmt.Errorf("rule %q matches nothing; set webids, expr or allow_any", rule.Name)
		}

		if rule.Match.Expr != "" {
			program, err := expr.Compile(rule.Match.Expr, expr.Env(map[string]any{
				"principal": &core.Principal{},
				"resource":  "",
				"scope":     "",
			}))
			if err != nil {
				return nil, fmt.Errorf("compiling expression of rule %q: %w", rule.Name, err)
			}
			rule.Match.CompiledExpr = program
		}
	}
	return rules, nil
}
