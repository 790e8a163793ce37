// Package tokens serializes tickets and access tokens as signed, expiring,
// audience-scoped JWTs over a rotating key holder. Verification is stateless:
// any kid still published by the holder is accepted, revoked kids are not.
package tokens

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

func sign(holder core.KeyHolder, claims jwt.MapClaims) (string, error) {
	kid := holder.DefaultKeyID()
	signer, err := holder.Signer(kid)
	if err != nil {
		return "", fmt.Errorf("resolving default key: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = kid

	serialized, err := token.SignedString(signer)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return serialized, nil
}

// parse verifies signature, issuer and audience and hands back the raw
// claims. Every failure mode collapses into core.ErrInvalidToken so callers
// cannot tell a forged token from a malformed one.
func parse(holder core.KeyHolder, issuer, audience, serialized string) (jwt.MapClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.Parse(serialized, func(t *jwt.Token) (any, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("token header missing kid")
		}
		return holder.PublicKey(kid)
	})
	if err != nil {
		return nil, core.NewInvalidTokenError("%v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, core.NewInvalidTokenError("unexpected claims type")
	}
	return claims, nil
}

// requireString reports a missing claim by name and a wrong type by name and
// expected type, as normalized invalid-token errors.
func requireString(claims jwt.MapClaims, name string) (string, error) {
	raw, ok := claims[name]
	if !ok {
		return "", core.NewInvalidTokenError("missing claim %q", name)
	}
	s, ok := raw.(string)
	if !ok {
		return "", core.NewInvalidTokenError("claim %q must be a string", name)
	}
	return s, nil
}

func optionalString(claims jwt.MapClaims, name string) (string, error) {
	raw, ok := claims[name]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", core.NewInvalidTokenError("claim %q must be a string", name)
	}
	return s, nil
}

// requirePermissions decodes a permissions claim strictly. The claim must be
// present and must be a list of permission objects.
func requirePermissions(claims jwt.MapClaims, name string) ([]core.Permission, error) {
	raw, ok := claims[name]
	if !ok {
		return nil, core.NewInvalidTokenError("missing claim %q", name)
	}
	if _, ok := raw.([]any); !ok {
		return nil, core.NewInvalidTokenError("claim %q must be a list of permissions", name)
	}

	// round-trip through JSON, the claim arrived as decoded JSON anyway
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, core.NewInvalidTokenError("claim %q is not serializable", name)
	}
	var perms []core.Permission
	if err := json.Unmarshal(buf, &perms); err != nil {
		return nil, core.NewInvalidTokenError("claim %q must be a list of permissions", name)
	}
	for _, p := range perms {
		if p.ResourceID == "" {
			return nil, core.NewInvalidTokenError("claim %q holds a permission without resource_id", name)
		}
	}
	return perms, nil
}

func baseClaims(issuer, audience, jti string, ttl time.Duration) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss": issuer,
		"aud": audience,
		"jti": jti,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(ttl)),
	}
}
