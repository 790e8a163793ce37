package claims

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// registered JWT claims that never end up in a ClaimSet
var registeredClaims = map[string]struct{}{
	"exp": {}, "iat": {}, "nbf": {}, "aud": {}, "jti": {}, "sub": {},
}

// BearerJWTConfig configures a BearerJWTVerifier.
type BearerJWTConfig struct {
	// Issuer the token must carry. When JWKSURL is empty the key set is
	// derived from it (<issuer>/.well-known/jwks.json).
	Issuer string `mapstructure:"issuer"`

	// JWKSURL overrides the derived key set location.
	JWKSURL string `mapstructure:"jwks_url"`

	// AllowedClaims is the allow-list of claim names surfaced to callers.
	// Empty means every claim passes.
	AllowedClaims []string `mapstructure:"allowed_claims"`

	// ErrorOnExtraClaims rejects tokens carrying claims outside the
	// allow-list instead of dropping them.
	ErrorOnExtraClaims bool `mapstructure:"error_on_extra_claims"`

	// SkipSignatureCheck decodes without verifying. Only for composition in
	// tests; the signature of real deployments always gets checked.
	SkipSignatureCheck bool `mapstructure:"skip_signature_check"`
}

// BearerJWTVerifier verifies plain signed JWTs against the issuer's JWKS and
// surfaces the remaining claims after allow-list filtering.
type BearerJWTVerifier struct {
	cfg     BearerJWTConfig
	jwksURL string
	cache   *jwk.Cache

	// lazy JWKS registration so construction never blocks on the network
	regMu      sync.Mutex
	registered bool
	regErr     error
}

var _ core.Verifier = (*BearerJWTVerifier)(nil)

func NewBearerJWTVerifier(ctx context.Context, cfg BearerJWTConfig) (*BearerJWTVerifier, error) {
	v := &BearerJWTVerifier{cfg: cfg}
	if cfg.SkipSignatureCheck {
		return v, nil
	}

	v.jwksURL = cfg.JWKSURL
	if v.jwksURL == "" {
		if cfg.Issuer == "" {
			return nil, fmt.Errorf("bearer jwt verifier needs an issuer or a jwks_url")
		}
		v.jwksURL = strings.TrimSuffix(cfg.Issuer, "/") + "/.well-known/jwks.json"
	}

	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("creating jwks cache: %w", err)
	}
	v.cache = cache
	return v, nil
}

func (v *BearerJWTVerifier) ensureRegistered(ctx context.Context) error {
	v.regMu.Lock()
	defer v.regMu.Unlock()

	if v.registered {
		return v.regErr
	}

	regCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := v.cache.Register(regCtx, v.jwksURL); err != nil {
		v.regErr = fmt.Errorf("registering jwks url: %w", err)
	}
	v.registered = true
	return v.regErr
}

func (v *BearerJWTVerifier) keyFor(ctx context.Context, token *jwt.Token) (any, error) {
	if err := v.ensureRegistered(ctx); err != nil {
		return nil, err
	}

	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, fmt.Errorf("token header missing kid")
	}

	set, err := v.cache.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("looking up jwks: %w", err)
	}
	key, found := set.LookupKeyID(kid)
	if !found {
		return nil, fmt.Errorf("key id %q not found in jwks", kid)
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, fmt.Errorf("exporting key %q: %w", kid, err)
	}
	return raw, nil
}

func (v *BearerJWTVerifier) Verify(ctx context.Context, cred core.Credential) (*core.ClaimSet, error) {
	var mapClaims jwt.MapClaims

	if v.cfg.SkipSignatureCheck {
		token, _, err := jwt.NewParser().ParseUnverified(cred.Token, jwt.MapClaims{})
		if err != nil {
			return nil, fmt.Errorf("decoding jwt: %w", err)
		}
		mapClaims = token.Claims.(jwt.MapClaims)
	} else {
		opts := []jwt.ParserOption{
			jwt.WithValidMethods([]string{"RS256", "ES256"}),
		}
		if v.cfg.Issuer != "" {
			opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
		}
		token, err := jwt.NewParser(opts...).Parse(cred.Token, func(t *jwt.Token) (any, error) {
			return v.keyFor(ctx, t)
		})
		if err != nil {
			return nil, fmt.Errorf("verifying jwt: %w", err)
		}
		mapClaims = token.Claims.(jwt.MapClaims)
	}

	filtered, err := filterClaims(mapClaims, v.cfg.AllowedClaims, v.cfg.ErrorOnExtraClaims)
	if err != nil {
		return nil, err
	}
	return claimSetFromMap(filtered)
}

// filterClaims enforces the allow-list. Extras are dropped, or rejected when
// errorOnExtra is set.
func filterClaims(claims jwt.MapClaims, allowed []string, errorOnExtra bool) (map[string]any, error) {
	if len(allowed) == 0 {
		return claims, nil
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = struct{}{}
	}

	out := make(map[string]any, len(claims))
	for name, value := range claims {
		if _, ok := allowedSet[name]; ok {
			out[name] = value
			continue
		}
		if errorOnExtra {
			return nil, fmt.Errorf("token carries claim %q outside the allow-list", name)
		}
	}
	return out, nil
}

// claimSetFromMap types a raw claim map. Known keys land in typed fields,
// other string values land in Extra, non-string values are rejected.
func claimSetFromMap(claims map[string]any) (*core.ClaimSet, error) {
	set := &core.ClaimSet{}
	for name, value := range claims {
		if _, ok := registeredClaims[name]; ok {
			continue
		}

		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("claim %q must be a string", name)
		}

		switch name {
		case "webid":
			set.WebID = s
		case "azp", "client_id":
			set.ClientID = s
		default:
			if set.Extra == nil {
				set.Extra = make(map[string]string)
			}
			set.Extra[name] = s
		}
	}
	return set, nil
}
