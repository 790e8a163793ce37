package policy

import (
	"context"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/rs/zerolog/log"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// Engine evaluates the loaded rules as a PolicyDecider. The decision is
// computed per (resource, scope) pair; the result is always a subset of the
// request. The rule set can be swapped at runtime.
type Engine struct {
	mu    sync.RWMutex
	rules []Rule
}

var _ core.PolicyDecider = (*Engine)(nil)

func New(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// SetRules replaces the active rule set. Callers must pass validated,
// compiled rules.
func (e *Engine) SetRules(rules []Rule) {
	e.mu.Lock()
	e.rules = rules
	e.mu.Unlock()
}

// Decide computes the granted subset. With a nil principal it answers the
// creation-time solvability question instead: could any principal ever be
// granted this? Scopes no rule covers at all are unsolvable.
func (e *Engine) Decide(_ context.Context, principal *core.Principal, requested []core.Permission) ([]core.Permission, error) {
	var granted []core.Permission
	for _, perm := range requested {
		var scopes []string
		for _, scope := range perm.ResourceScopes {
			if e.allows(principal, perm.ResourceID, scope) {
				scopes = append(scopes, scope)
			}
		}
		if len(scopes) > 0 {
			granted = append(granted, core.Permission{
				ResourceID:     perm.ResourceID,
				ResourceScopes: scopes,
			})
		}
	}
	return granted, nil
}

func (e *Engine) allows(principal *core.Principal, resource, scope string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, rule := range e.rules {
		if !strings.HasPrefix(resource, rule.Grant.ResourcePrefix) {
			continue
		}
		if !rule.Grant.allowsScope(scope) {
			continue
		}
		if principal == nil {
			// solvability probe: some rule covers the pair
			return true
		}
		if matches(rule, principal, resource, scope) {
			return true
		}
	}
	return false
}

func matches(rule Rule, principal *core.Principal, resource, scope string) bool {
	matched := rule.Match.AllowAny
	for _, webid := range rule.Match.WebIDs {
		if webid == principal.WebID {
			matched = true
			break
		}
	}
	if !matched && rule.Match.CompiledExpr == nil {
		return false
	}

	if rule.Match.CompiledExpr != nil {
		out, err := expr.Run(rule.Match.CompiledExpr, map[string]any{
			"principal": principal,
			"resource":  resource,
			"scope":     scope,
		})
		if err != nil {
			log.Warn().Err(err).Msgf("error evaluating rule expression for rule '%s'", rule.Name)
			return false
		}
		ok, isBool := out.(bool)
		if !isBool || !ok {
			return false
		}
		matched = true
	}
	return matched
}
