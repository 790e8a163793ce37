// Package grant orchestrates the ticket/claims/token negotiation: resolve
// the ticket, verify submitted claims, run the authorizer chain, then issue
// a token or answer with a re-negotiation ticket.
package grant

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api/middleware"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/audit"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// Processor is the grant-type state machine. Each call walks
// TicketResolved -> ClaimsPending -> ClaimsVerified -> Authorizing ->
// {Issued | NeedInfo | Denied} strictly in sequence for one ticket id.
type Processor struct {
	store      core.TicketStore
	tickets    core.TicketFactory
	access     core.AccessTokenFactory
	pipeline   core.ClaimPipeline
	authorizer core.Authorizer
	auditor    core.Auditor
}

func NewProcessor(
	store core.TicketStore,
	tickets core.TicketFactory,
	access core.AccessTokenFactory,
	pipeline core.ClaimPipeline,
	authorizer core.Authorizer,
	auditor core.Auditor,
) *Processor {
	return &Processor{
		store:      store,
		tickets:    tickets,
		access:     access,
		pipeline:   pipeline,
		authorizer: authorizer,
		auditor:    auditor,
	}
}

// Process handles one token endpoint request. Errors are fatal for the
// request; recoverable conditions come back as OutcomeNeedInfo instead.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	logger := log.Ctx(ctx)
	reqID := middleware.CorrelationCtx(ctx)

	auditEntry := core.AuditEntry{
		ID:       reqID,
		Time:     time.Now(),
		Action:   "token.request",
		TicketID: req.Ticket,
	}
	defer func() {
		if err := p.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for token request")
		}
	}()

	if req.GrantType != UMATicketGrantType {
		auditEntry.Error = "unsupported grant type"
		return nil, fmt.Errorf("%w: unsupported grant_type %q", core.ErrBadRequest, req.GrantType)
	}
	if req.Ticket == "" {
		auditEntry.Error = "missing ticket"
		return nil, fmt.Errorf("%w: missing ticket parameter", core.ErrBadRequest)
	}

	// resolve the ticket
	serialized, err := p.store.Get(ctx, req.Ticket)
	if err != nil {
		auditEntry.Error = "ticket not found"
		return nil, fmt.Errorf("%w: unknown ticket %q", core.ErrBadRequest, req.Ticket)
	}
	ticket, err := p.tickets.Deserialize(serialized)
	if err != nil {
		// the store only holds what we signed; a parse failure here is fatal
		auditEntry.Error = "ticket parse failure"
		auditEntry.Stacktrace = err.Error()
		return nil, err
	}
	if ticket.SupersededBy != "" {
		auditEntry.Error = "ticket superseded"
		return nil, fmt.Errorf("%w: ticket %q was superseded", core.ErrBadRequest, ticket.ID)
	}
	auditEntry.Requested = len(ticket.RequestedPermissions)

	// authenticate
	principal, err := p.authenticate(ctx, req, &auditEntry)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return p.renegotiate(ctx, ticket, &auditEntry)
	}
	auditEntry.Principal = principal

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("webid", principal.WebID)
	})

	// authorize
	resolved, err := p.authorizer.Authorize(ctx, ticket, principal)
	if err != nil {
		auditEntry.Error = "authorizer error"
		auditEntry.Stacktrace = err.Error()
		return nil, fmt.Errorf("authorizing ticket %q: %w", ticket.ID, err)
	}
	if len(resolved.Granted) == 0 {
		auditEntry.Error = "denied"
		return &Result{Outcome: OutcomeDenied}, nil
	}
	auditEntry.Granted = len(resolved.Granted)

	// issue
	serializedToken, err := p.access.Serialize(&core.AccessToken{
		Principal:   *principal,
		Permissions: resolved.Granted,
	})
	if err != nil {
		auditEntry.Error = "token serialization failed"
		auditEntry.Stacktrace = err.Error()
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	auditEntry.Action = "token.issue"
	auditEntry.Success = true
	if auditEntry.Metadata == nil {
		auditEntry.Metadata = make(map[string]any)
	}
	auditEntry.Metadata["token_fingerprint"] = audit.Fingerprint(serializedToken)
	return &Result{
		Outcome:     OutcomeIssued,
		AccessToken: serializedToken,
		TokenType:   "Bearer",
	}, nil
}

// authenticate resolves a principal from the submitted claim token or rpt.
// A nil principal without error means re-negotiation should take over. Only
// an invalid rpt is fatal: a bad claim token merely restarts negotiation.
func (p *Processor) authenticate(ctx context.Context, req Request, auditEntry *core.AuditEntry) (*core.Principal, error) {
	logger := log.Ctx(ctx)

	if req.ClaimToken != "" && req.ClaimTokenFormat != "" {
		set, err := p.pipeline.Verify(ctx, core.Credential{
			Token:  req.ClaimToken,
			Format: req.ClaimTokenFormat,
		})
		if err != nil {
			logger.Warn().Err(err).Str("format", req.ClaimTokenFormat).
				Msg("claim token verification failed, restarting negotiation")
			auditEntry.Metadata = map[string]any{"claim_failure": err.Error()}
			return nil, nil
		}
		principal, err := set.Principal()
		if err != nil {
			logger.Warn().Err(err).Msg("verified claims carry no principal, restarting negotiation")
			return nil, nil
		}
		return principal, nil
	}

	if req.RPT != "" {
		token, err := p.access.Deserialize(req.RPT)
		if err != nil {
			auditEntry.Error = "invalid rpt"
			auditEntry.Stacktrace = err.Error()
			return nil, err
		}
		return &token.Principal, nil
	}

	return nil, nil
}

// renegotiate retires the old ticket and mints a fresh replacement carrying
// the same request. The replacement write happens before the response is
// returned, so a caller that drops the request at worst loses track of a
// ticket that will passively expire.
func (p *Processor) renegotiate(ctx context.Context, old *core.Ticket, auditEntry *core.AuditEntry) (*Result, error) {
	replacement := &core.Ticket{
		ID:                   xid.New().String(),
		RequestedPermissions: old.RequestedPermissions,
		NecessaryGrants:      old.NecessaryGrants,
		Precursor:            old.ID,
		CreatedAt:            time.Now(),
	}

	serialized, err := p.tickets.Serialize(replacement)
	if err != nil {
		auditEntry.Error = "replacement ticket serialization failed"
		auditEntry.Stacktrace = err.Error()
		return nil, fmt.Errorf("minting replacement ticket: %w", err)
	}
	if err := p.store.Set(ctx, replacement.ID, serialized); err != nil {
		auditEntry.Error = "replacement ticket store failed"
		auditEntry.Stacktrace = err.Error()
		return nil, fmt.Errorf("storing replacement ticket: %w", err)
	}

	// retire the old ticket; racing requests may each mint their own
	// replacement, which is fine, tickets are single-use hints
	retired := *old
	retired.SupersededBy = replacement.ID
	serializedOld, err := p.tickets.Serialize(&retired)
	if err == nil {
		err = p.store.Set(ctx, retired.ID, serializedOld)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("ticket", old.ID).
			Msg("failed to retire superseded ticket")
	}

	auditEntry.Action = "ticket.renegotiate"
	auditEntry.ReplacementID = replacement.ID
	auditEntry.Success = true

	return &Result{
		Outcome:         OutcomeNeedInfo,
		TicketID:        replacement.ID,
		RequiredFormats: p.pipeline.Formats(),
	}, nil
}
