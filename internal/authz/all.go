package authz

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// AllAuthorizer grants everything unconditionally. Test and demo use only.
type AllAuthorizer struct{}

var _ core.Authorizer = (*AllAuthorizer)(nil)

func NewAllAuthorizer() *AllAuthorizer {
	log.Warn().Msg("ALL authorizer enabled: every requested permission is granted to anyone. Never run this in production.")
	return &AllAuthorizer{}
}

func (a *AllAuthorizer) Authorize(_ context.Context, ticket *core.Ticket, _ *core.Principal) (*core.Ticket, error) {
	return resolved(ticket, ticket.RequestedPermissions, nil), nil
}
