package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "ticket.create", "token.issue")
	Action string `json:"action"`

	// Principal identifies who made the request, once authenticated.
	Principal *Principal `json:"principal,omitempty"`

	// TicketID is the ticket the request was negotiating over.
	TicketID string `json:"ticket_id,omitempty"`

	// ReplacementID is the fresh ticket minted during re-negotiation.
	ReplacementID string `json:"replacement_id,omitempty"`

	// Requested/Granted count the permissions in play for quick scanning.
	Requested int `json:"requested,omitempty"`
	Granted   int `json:"granted,omitempty"`

	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Stacktrace string `json:"stacktrace,omitempty"`

	// Metadata contains extra details (claim format, key id, ...)
	Metadata map[string]any `json:"metadata,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}
