package core

import (
	"context"
	"crypto"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// Verifier turns one credential into a claim set, trusted per format.
// Implementations: bearer JWT, OIDC ID token, unsecured debug, key-value.
type Verifier interface {
	// Verify validates the credential and extracts its claims.
	Verify(ctx context.Context, cred Credential) (*ClaimSet, error)
}

// ClaimPipeline is a verifier that dispatches on credential formats and can
// enumerate the formats it accepts (advertised in NeedInfo responses).
type ClaimPipeline interface {
	Verifier

	// Formats lists the registered claim token formats.
	Formats() []string
}

// Authorizer decides over a ticket's requested permissions. The returned
// ticket is a copy whose Granted field holds the subset actually granted and
// whose NecessaryGrants is cleared when everything requested was granted, or
// populated with unsolvable markers when nothing can ever be.
// An authorizer must never expand the requested permission set.
type Authorizer interface {
	Authorize(ctx context.Context, ticket *Ticket, principal *Principal) (*Ticket, error)
}

// PolicyDecider is the external policy decision capability the production
// authorizer delegates to. The returned set must be a subset of requested.
type PolicyDecider interface {
	Decide(ctx context.Context, principal *Principal, requested []Permission) ([]Permission, error)
}

// TicketStore persists serialized tickets keyed by their opaque id.
// Stores may expire entries by TTL; the engine never deletes explicitly.
type TicketStore interface {
	// Get returns the serialized ticket or ErrTicketNotFound.
	Get(ctx context.Context, id string) (string, error)

	// Set creates or replaces the serialized ticket under id.
	Set(ctx context.Context, id, serialized string) error
}

// KeyHolder owns the active signing key and the historical public keys used
// for verification. Keys are rotated, never mutated; old kids stay valid
// until explicitly revoked.
type KeyHolder interface {
	// DefaultKeyID returns the kid tokens are currently signed with.
	DefaultKeyID() string

	// Signer returns the private key for kid.
	Signer(kid string) (crypto.Signer, error)

	// PublicKey returns the published public key for kid, or an error once
	// the kid was revoked.
	PublicKey(kid string) (crypto.PublicKey, error)

	// JWKS returns the currently published public keys as a JWK set.
	JWKS() (jwk.Set, error)
}

// TicketFactory serializes tickets as signed, expiring, audience-scoped
// artifacts and verifies them statelessly on the way back in.
type TicketFactory interface {
	Serialize(ticket *Ticket) (string, error)
	Deserialize(serialized string) (*Ticket, error)
}

// AccessTokenFactory is the same pattern over access token payloads.
type AccessTokenFactory interface {
	Serialize(token *AccessToken) (string, error)
	Deserialize(serialized string) (*AccessToken, error)
}
