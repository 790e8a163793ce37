package authz

import (
	"testing"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/config"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/policy"
)

func TestBuildChain(t *testing.T) {
	engine := policy.New(nil)

	tests := []struct {
		name    string
		cfg     config.AuthorizerConfig
		wantErr bool
	}{
		{"Default Is Policy", config.AuthorizerConfig{}, false},
		{"Policy", config.AuthorizerConfig{Type: "policy"}, false},
		{"All", config.AuthorizerConfig{Type: "all"}, false},
		{"None", config.AuthorizerConfig{Type: "none"}, false},
		{"Unknown", config.AuthorizerConfig{Type: "chaos"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := BuildChain(tt.cfg, engine)
			if tt.wantErr {
				if err == nil {
					t.Error("BuildChain() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildChain() failed: %v", err)
			}
			if _, ok := chain.(*NamespaceAuthorizer); !ok {
				t.Errorf("BuildChain() = %T, want the namespace wrapper", chain)
			}
		})
	}
}

func TestBuildChain_PolicyWithoutDecider(t *testing.T) {
	if _, err := BuildChain(config.AuthorizerConfig{Type: "policy"}, nil); err == nil {
		t.Error("BuildChain() should fail without a policy decider")
	}
}
