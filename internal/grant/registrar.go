package grant

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api/middleware"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// Registrar creates tickets on behalf of resource servers. The authorizer
// chain runs once at creation, with no principal, to seed the ticket's
// necessary-grant hints (an unsolvable marker when no policy could ever
// grant the request).
type Registrar struct {
	store      core.TicketStore
	tickets    core.TicketFactory
	authorizer core.Authorizer
	auditor    core.Auditor
}

func NewRegistrar(
	store core.TicketStore,
	tickets core.TicketFactory,
	authorizer core.Authorizer,
	auditor core.Auditor,
) *Registrar {
	return &Registrar{
		store:      store,
		tickets:    tickets,
		authorizer: authorizer,
		auditor:    auditor,
	}
}

// Register mints and stores a ticket for the requested permissions and
// returns its id.
func (r *Registrar) Register(ctx context.Context, requested []core.Permission) (string, error) {
	logger := log.Ctx(ctx)
	reqID := middleware.CorrelationCtx(ctx)

	auditEntry := core.AuditEntry{
		ID:        reqID,
		Time:      time.Now(),
		Action:    "ticket.create",
		Requested: len(requested),
	}
	defer func() {
		if err := r.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for ticket creation")
		}
	}()

	if len(requested) == 0 {
		auditEntry.Error = "empty permission request"
		return "", fmt.Errorf("%w: no permissions requested", core.ErrBadRequest)
	}
	for _, perm := range requested {
		if perm.ResourceID == "" || len(perm.ResourceScopes) == 0 {
			auditEntry.Error = "malformed permission"
			return "", fmt.Errorf("%w: permission needs resource_id and resource_scopes", core.ErrBadRequest)
		}
	}

	ticket := &core.Ticket{
		ID:                   xid.New().String(),
		RequestedPermissions: requested,
		CreatedAt:            time.Now(),
	}

	// seed the necessary-grant hints; no principal is known yet
	resolved, err := r.authorizer.Authorize(ctx, ticket, nil)
	if err != nil {
		auditEntry.Error = "authorizer error"
		auditEntry.Stacktrace = err.Error()
		return "", fmt.Errorf("seeding ticket grants: %w", err)
	}
	ticket.NecessaryGrants = resolved.NecessaryGrants

	serialized, err := r.tickets.Serialize(ticket)
	if err != nil {
		auditEntry.Error = "ticket serialization failed"
		auditEntry.Stacktrace = err.Error()
		return "", fmt.Errorf("serializing ticket: %w", err)
	}
	if err := r.store.Set(ctx, ticket.ID, serialized); err != nil {
		auditEntry.Error = "ticket store failed"
		auditEntry.Stacktrace = err.Error()
		return "", fmt.Errorf("storing ticket: %w", err)
	}

	auditEntry.TicketID = ticket.ID
	auditEntry.Success = true
	return ticket.ID, nil
}
