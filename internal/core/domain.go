package core

import "time"

// Permission is a single requestable action set on a single resource.
type Permission struct {
	// ResourceID is the IRI of the protected resource.
	ResourceID string `yaml:"resource_id" json:"resource_id"`

	// ResourceScopes are opaque action identifiers (read, write, append, ...).
	// Duplicates are meaningless; comparison is by (resource, scope) pair.
	ResourceScopes []string `yaml:"resource_scopes" json:"resource_scopes"`
}

// HasScope reports whether the permission names the given scope.
func (p Permission) HasScope(scope string) bool {
	for _, s := range p.ResourceScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// CoveredBy reports whether every (resource, scope) pair of p appears in perms.
func (p Permission) CoveredBy(perms []Permission) bool {
	for _, scope := range p.ResourceScopes {
		covered := false
		for _, other := range perms {
			if other.ResourceID == p.ResourceID && other.HasScope(scope) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every pair of sub is contained in super.
func SubsetOf(sub, super []Permission) bool {
	for _, p := range sub {
		if !p.CoveredBy(super) {
			return false
		}
	}
	return true
}

// GrantMarker is an opaque hint recorded on a ticket describing what still
// has to be proven before the requested permissions can be granted.
type GrantMarker string

// GrantUnsolvable means no policy can ever satisfy the request.
const GrantUnsolvable GrantMarker = "urn:uma:grant:unsolvable"

// Ticket names the permissions a client is trying to obtain. It is created
// once per unauthorized resource server request and is immutable afterwards,
// except for being superseded by a replacement ticket during re-negotiation.
type Ticket struct {
	// ID is the opaque ticket identifier handed to the client.
	ID string `json:"id"`

	// RequestedPermissions is what the resource server asked for.
	RequestedPermissions []Permission `json:"requested_permissions"`

	// NecessaryGrants is populated by the authorizer chain at creation time.
	// It is a hint, it does not grant anything by itself.
	NecessaryGrants []GrantMarker `json:"necessary_grants,omitempty"`

	// Granted holds the resolved subset after authorization. Never persisted
	// with the ticket; filled in by an Authorizer on its returned copy.
	Granted []Permission `json:"granted,omitempty"`

	// Precursor is the ID of the ticket this one replaced during
	// re-negotiation. Kept for debugging the negotiation chain.
	Precursor string `json:"precursor,omitempty"`

	// SupersededBy is set on the old ticket once a replacement was minted.
	// A superseded ticket must never authorize a request again.
	SupersededBy string `json:"superseded_by,omitempty"`

	// CreatedAt is the ticket creation time.
	CreatedAt time.Time `json:"created_at"`
}

// Credential is a raw, format-tagged proof of a claim submitted by a client.
type Credential struct {
	// Token is the opaque proof. Interpretation depends on Format.
	Token string `json:"token"`

	// Format is the IRI identifying how to interpret Token.
	Format string `json:"format"`
}

// Principal is the minimum authenticated identity needed to authorize.
type Principal struct {
	// WebID identifies the requesting party.
	WebID string `json:"webid"`

	// ClientID identifies the client application, if any.
	ClientID string `json:"client_id,omitempty"`
}

// AccessToken is the final artifact a resource server accepts as proof of
// granted permissions. It is self-contained and never stored server-side.
type AccessToken struct {
	Principal

	// Permissions is the granted subset of some ticket's request.
	Permissions []Permission `json:"permissions"`
}
