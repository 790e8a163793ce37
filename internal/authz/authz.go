// Package authz implements the authorizer chain deciding which of a
// ticket's requested permissions are actually granted. Authorizers compose
// as decorators; each link may short-circuit or delegate.
package authz

import (
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// resolved copies the ticket with its decision filled in. When everything
// requested was granted the necessary-grant hints are cleared.
func resolved(ticket *core.Ticket, granted []core.Permission, markers []core.GrantMarker) *core.Ticket {
	out := *ticket
	out.Granted = granted
	out.NecessaryGrants = markers
	if core.SubsetOf(ticket.RequestedPermissions, granted) {
		out.NecessaryGrants = nil
	}
	return &out
}
