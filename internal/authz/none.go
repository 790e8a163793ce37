package authz

import (
	"context"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// NoneAuthorizer grants nothing and marks the request unsolvable.
type NoneAuthorizer struct{}

var _ core.Authorizer = (*NoneAuthorizer)(nil)

func NewNoneAuthorizer() *NoneAuthorizer {
	return &NoneAuthorizer{}
}

func (a *NoneAuthorizer) Authorize(_ context.Context, ticket *core.Ticket, _ *core.Principal) (*core.Ticket, error) {
	if len(ticket.RequestedPermissions) == 0 {
		// nothing requested authorizes trivially
		return resolved(ticket, nil, nil), nil
	}
	return resolved(ticket, nil, []core.GrantMarker{core.GrantUnsolvable}), nil
}
