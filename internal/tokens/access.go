package tokens

import (
	"time"

	"github.com/rs/xid"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// DefaultAccessTokenTTL bounds how long an issued access token is accepted.
const DefaultAccessTokenTTL = 10 * time.Minute

// JWTAccessTokenFactory signs access tokens carrying the authenticated
// principal and the granted permission subset.
type JWTAccessTokenFactory struct {
	holder core.KeyHolder
	issuer string
	ttl    time.Duration
}

var _ core.AccessTokenFactory = (*JWTAccessTokenFactory)(nil)

func NewJWTAccessTokenFactory(holder core.KeyHolder, issuer string, ttl time.Duration) *JWTAccessTokenFactory {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &JWTAccessTokenFactory{holder: holder, issuer: issuer, ttl: ttl}
}

func (f *JWTAccessTokenFactory) Serialize(token *core.AccessToken) (string, error) {
	claims := baseClaims(f.issuer, core.SolidAudience, xid.New().String(), f.ttl)
	claims["webid"] = token.WebID
	azp := token.ClientID
	if azp == "" {
		azp = core.PublicClient
	}
	claims["azp"] = azp
	claims["permissions"] = permissionClaims(token.Permissions)
	return sign(f.holder, claims)
}

func (f *JWTAccessTokenFactory) Deserialize(serialized string) (*core.AccessToken, error) {
	claims, err := parse(f.holder, f.issuer, core.SolidAudience, serialized)
	if err != nil {
		return nil, err
	}

	webid, err := requireString(claims, "webid")
	if err != nil {
		return nil, err
	}
	azp, err := requireString(claims, "azp")
	if err != nil {
		return nil, err
	}
	perms, err := requirePermissions(claims, "permissions")
	if err != nil {
		return nil, err
	}

	token := &core.AccessToken{
		Principal:   core.Principal{WebID: webid},
		Permissions: perms,
	}
	if azp != core.PublicClient {
		token.ClientID = azp
	}
	return token, nil
}
