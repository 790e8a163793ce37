package core

import "fmt"

// Reserved claim token formats and claim values.
const (
	// FormatBearerJWT identifies a plain signed JWT claim token.
	FormatBearerJWT = "urn:ietf:params:oauth:token-type:jwt"

	// FormatOIDCIDToken identifies an OIDC ID token (Solid-flavored or standard).
	FormatOIDCIDToken = "http://openid.net/specs/openid-connect-core-1_0.html#IDToken"

	// FormatUnsecured identifies the unsecured debug claim token
	// ("<webid>[:<client id>]", percent-encoded parts, no signature).
	FormatUnsecured = "urn:uma:claims:formats:webid"

	// FormatMeta wraps a JSON map of format -> token so several proofs can be
	// submitted in a single token request.
	FormatMeta = "urn:uma:claims:formats:meta"
)

const (
	// SolidAudience is the reserved audience value marking Solid-flavored
	// tokens and platform-issued tickets.
	SolidAudience = "solid"

	// ScopeDerivationRead marks a derived-access permission scope.
	ScopeDerivationRead = "urn:uma:scopes:derivation:read"

	// PublicClient is the azp sentinel used when no client id was given.
	PublicClient = "origin"
)

// DerivedPermission is a permission carried inside a derived-access token,
// bound to the issuer that derived it.
type DerivedPermission struct {
	Permission

	// Issuer that derived this permission. Must match the derivation issuer
	// tracked for the resource, otherwise verification fails.
	Issuer string `json:"issuer"`
}

// ClaimSet is the typed result of verifying one or more credentials.
// Claims from multiple credentials merge in submission order, later values
// overwrite earlier ones on key collision.
type ClaimSet struct {
	// WebID of the requesting party, if proven.
	WebID string

	// ClientID of the requesting client, if proven.
	ClientID string

	// Permissions proven by a derived-access token.
	Permissions []Permission

	// Extra holds unrecognized string-valued claims keyed by claim name.
	// Non-string claim values are rejected by verifiers, never coerced.
	Extra map[string]string
}

// Merge folds other into c, later values winning on collision.
func (c *ClaimSet) Merge(other *ClaimSet) {
	if other == nil {
		return
	}
	if other.WebID != "" {
		c.WebID = other.WebID
	}
	if other.ClientID != "" {
		c.ClientID = other.ClientID
	}
	if len(other.Permissions) > 0 {
		c.Permissions = other.Permissions
	}
	for k, v := range other.Extra {
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra[k] = v
	}
}

// Principal extracts the authenticated identity from the claim set.
// A claim set without a WebID cannot act as a principal.
func (c *ClaimSet) Principal() (*Principal, error) {
	if c.WebID == "" {
		return nil, fmt.Errorf("%w: claim set holds no webid", ErrBadCredential)
	}
	return &Principal{WebID: c.WebID, ClientID: c.ClientID}, nil
}
