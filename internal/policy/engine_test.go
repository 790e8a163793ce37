package policy

import (
	"context"
	"testing"

	"github.com/expr-lang/expr"
	"github.com/google/go-cmp/cmp"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

const (
	aliceWebID = "http://example.com/alice#me"
	bobWebID   = "http://example.com/bob#me"
)

func compiledRule(t *testing.T, rule Rule) Rule {
	t.Helper()
	if rule.Match.Expr == "" {
		return rule
	}
	program, err := expr.Compile(rule.Match.Expr, expr.Env(map[string]any{
		"principal": &core.Principal{},
		"resource":  "",
		"scope":     "",
	}))
	if err != nil {
		t.Fatalf("compiling %q: %v", rule.Match.Expr, err)
	}
	rule.Match.CompiledExpr = program
	return rule
}

func decide(t *testing.T, e *Engine, principal *core.Principal, requested ...core.Permission) []core.Permission {
	t.Helper()
	granted, err := e.Decide(context.Background(), principal, requested)
	if err != nil {
		t.Fatalf("Decide() unexpected error: %v", err)
	}
	return granted
}

func TestEngine_WebIDMatch(t *testing.T) {
	e := New([]Rule{{
		Name:  "alice-private",
		Match: Match{WebIDs: []string{aliceWebID}},
		Grant: Grant{ResourcePrefix: "http://localhost:3000/alice/", Scopes: []string{"read", "write"}},
	}})

	requested := []core.Permission{
		{ResourceID: "http://localhost:3000/alice/private/doc", ResourceScopes: []string{"read", "write"}},
	}

	t.Run("Matching Principal", func(t *testing.T) {
		granted := decide(t, e, &core.Principal{WebID: aliceWebID}, requested...)
		if diff := cmp.Diff(requested, granted); diff != "" {
			t.Errorf("Decide() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Other Principal", func(t *testing.T) {
		if granted := decide(t, e, &core.Principal{WebID: bobWebID}, requested...); len(granted) != 0 {
			t.Errorf("Decide() = %v, want nothing", granted)
		}
	})

	t.Run("Resource Outside Prefix", func(t *testing.T) {
		granted := decide(t, e, &core.Principal{WebID: aliceWebID}, core.Permission{
			ResourceID: "http://localhost:3000/bob/private/doc", ResourceScopes: []string{"read"},
		})
		if len(granted) != 0 {
			t.Errorf("Decide() = %v, want nothing", granted)
		}
	})
}

func TestEngine_ScopeSubset(t *testing.T) {
	e := New([]Rule{{
		Name:  "read-only",
		Match: Match{AllowAny: true},
		Grant: Grant{ResourcePrefix: "http://localhost:3000/", Scopes: []string{"read"}},
	}})

	granted := decide(t, e, &core.Principal{WebID: aliceWebID}, core.Permission{
		ResourceID: "http://localhost:3000/alice/private/doc", ResourceScopes: []string{"read", "write"},
	})
	want := []core.Permission{
		{ResourceID: "http://localhost:3000/alice/private/doc", ResourceScopes: []string{"read"}},
	}
	if diff := cmp.Diff(want, granted); diff != "" {
		t.Errorf("Decide() mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_ScopeWildcard(t *testing.T) {
	e := New([]Rule{{
		Name:  "owner",
		Match: Match{WebIDs: []string{aliceWebID}},
		Grant: Grant{ResourcePrefix: "http://localhost:3000/alice/", Scopes: []string{"*"}},
	}})

	granted := decide(t, e, &core.Principal{WebID: aliceWebID}, core.Permission{
		ResourceID: "http://localhost:3000/alice/x", ResourceScopes: []string{"read", "write", "append"},
	})
	if len(granted) != 1 || len(granted[0].ResourceScopes) != 3 {
		t.Errorf("Decide() = %v, want all three scopes", granted)
	}
}

func TestEngine_Expr(t *testing.T) {
	e := New([]Rule{compiledRule(t, Rule{
		Name:  "trusted-client",
		Match: Match{Expr: `principal.ClientID == "http://app.example.com" && scope == "read"`},
		Grant: Grant{ResourcePrefix: "http://localhost:3000/", Scopes: []string{"*"}},
	})})

	t.Run("Expression Matches", func(t *testing.T) {
		granted := decide(t, e, &core.Principal{WebID: aliceWebID, ClientID: "http://app.example.com"}, core.Permission{
			ResourceID: "http://localhost:3000/r", ResourceScopes: []string{"read", "write"},
		})
		want := []core.Permission{{ResourceID: "http://localhost:3000/r", ResourceScopes: []string{"read"}}}
		if diff := cmp.Diff(want, granted); diff != "" {
			t.Errorf("Decide() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Expression Rejects", func(t *testing.T) {
		granted := decide(t, e, &core.Principal{WebID: aliceWebID, ClientID: "http://evil.example.com"}, core.Permission{
			ResourceID: "http://localhost:3000/r", ResourceScopes: []string{"read"},
		})
		if len(granted) != 0 {
			t.Errorf("Decide() = %v, want nothing", granted)
		}
	})
}

func TestEngine_SolvabilityProbe(t *testing.T) {
	e := New([]Rule{{
		Name:  "alice-only",
		Match: Match{WebIDs: []string{aliceWebID}},
		Grant: Grant{ResourcePrefix: "http://localhost:3000/alice/", Scopes: []string{"read"}},
	}})

	t.Run("Covered Pair Is Solvable", func(t *testing.T) {
		granted := decide(t, e, nil, core.Permission{
			ResourceID: "http://localhost:3000/alice/doc", ResourceScopes: []string{"read"},
		})
		if len(granted) != 1 {
			t.Errorf("Decide(nil principal) = %v, want the pair back", granted)
		}
	})

	t.Run("Uncovered Scope Is Not", func(t *testing.T) {
		granted := decide(t, e, nil, core.Permission{
			ResourceID: "http://localhost:3000/alice/doc", ResourceScopes: []string{"write"},
		})
		if len(granted) != 0 {
			t.Errorf("Decide(nil principal) = %v, want nothing", granted)
		}
	})
}

func TestEngine_SetRules(t *testing.T) {
	e := New(nil)
	principal := &core.Principal{WebID: aliceWebID}
	perm := core.Permission{ResourceID: "http://localhost:3000/alice/doc", ResourceScopes: []string{"read"}}

	if granted := decide(t, e, principal, perm); len(granted) != 0 {
		t.Fatalf("empty engine granted %v", granted)
	}

	e.SetRules([]Rule{{
		Name:  "alice",
		Match: Match{WebIDs: []string{aliceWebID}},
		Grant: Grant{ResourcePrefix: "http://localhost:3000/alice/", Scopes: []string{"read"}},
	}})

	if granted := decide(t, e, principal, perm); len(granted) != 1 {
		t.Errorf("swapped rules granted %v, want the permission", granted)
	}
}
