package authz

import (
	"fmt"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/config"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// BuildChain assembles the authorizer chain from configuration. The
// namespace shortcut always wraps the configured base authorizer.
func BuildChain(cfg config.AuthorizerConfig, decider core.PolicyDecider) (core.Authorizer, error) {
	var base core.Authorizer
	switch cfg.Type {
	case "all":
		base = NewAllAuthorizer()
	case "none":
		base = NewNoneAuthorizer()
	case "policy", "":
		if decider == nil {
			return nil, fmt.Errorf("policy authorizer configured but no policy decider available")
		}
		base = NewPolicyAuthorizer(decider)
	default:
		return nil, fmt.Errorf("unknown authorizer type %q", cfg.Type)
	}

	return NewNamespaceAuthorizer(base, cfg.PublicNamespaces), nil
}
