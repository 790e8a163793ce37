package authz

import (
	"context"
	"fmt"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// PolicyAuthorizer delegates the decision to a policy decider capability.
// The decider's answer must be a subset of the request; an expanded answer
// is a contract violation and surfaces as an error.
type PolicyAuthorizer struct {
	decider core.PolicyDecider
}

var _ core.Authorizer = (*PolicyAuthorizer)(nil)

func NewPolicyAuthorizer(decider core.PolicyDecider) *PolicyAuthorizer {
	return &PolicyAuthorizer{decider: decider}
}

func (a *PolicyAuthorizer) Authorize(ctx context.Context, ticket *core.Ticket, principal *core.Principal) (*core.Ticket, error) {
	if len(ticket.RequestedPermissions) == 0 {
		return resolved(ticket, nil, nil), nil
	}

	granted, err := a.decider.Decide(ctx, principal, ticket.RequestedPermissions)
	if err != nil {
		return nil, fmt.Errorf("policy decision failed: %w", err)
	}
	if !core.SubsetOf(granted, ticket.RequestedPermissions) {
		return nil, fmt.Errorf("policy decider granted permissions that were never requested")
	}

	if len(granted) == 0 {
		return resolved(ticket, nil, []core.GrantMarker{core.GrantUnsolvable}), nil
	}
	return resolved(ticket, granted, ticket.NecessaryGrants), nil
}
