// Package policy is the in-process policy decision backend. It is one
// possible implementation of the PolicyDecider capability; a full ODRL
// reasoner can replace it without touching the negotiation engine.
package policy

import (
	"github.com/expr-lang/expr/vm"
)

// Match defines which principals a rule applies to.
type Match struct {
	// WebIDs lists the principals this rule matches. Empty plus no Expr
	// matches nothing unless AllowAny is set.
	WebIDs []string `yaml:"webids" json:"webids"`

	// Expr is an optional expression for more complex matching. It is
	// evaluated with `principal`, `resource` and `scope` in scope.
	Expr string `yaml:"expr" json:"expr"`

	// AllowAny makes the rule match every authenticated principal. This is
	// an explicit opt-in so an empty match cannot accidentally grant access.
	AllowAny bool `yaml:"allow_any" json:"allow_any"`

	// CompiledExpr holds the pre-compiled form of Expr.
	CompiledExpr *vm.Program `yaml:"-" json:"-"`
}

// Grant defines what a matching rule allows.
type Grant struct {
	// ResourcePrefix scopes the rule to resources under this IRI prefix.
	ResourcePrefix string `yaml:"resource_prefix" json:"resource_prefix"`

	// Scopes lists the granted scopes. "*" grants any requested scope.
	Scopes []string `yaml:"scopes" json:"scopes"`
}

// Rule binds a Match condition to a Grant action.
type Rule struct {
	// Name is a human-readable identifier for logs/debugging.
	Name string `yaml:"name" json:"name"`

	// Description explains the intent of the rule.
	Description string `yaml:"description" json:"description"`

	Match Match `yaml:"match" json:"match"`
	Grant Grant `yaml:"grant" json:"grant"`
}

func (g Grant) allowsScope(scope string) bool {
	for _, s := range g.Scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}
