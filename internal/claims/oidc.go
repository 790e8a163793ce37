package claims

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// DerivationTracker resolves the issuer that derived access for a resource.
type DerivationTracker interface {
	IssuerFor(resourceID string) string
}

// OIDCConfig configures an OIDCVerifier.
type OIDCConfig struct {
	// BaseURL of this authorization server; tokens must be audienced to it.
	BaseURL string `mapstructure:"base_url"`

	// AllowedIssuers allow-lists token issuers. Empty accepts any issuer.
	AllowedIssuers []string `mapstructure:"allowed_issuers"`
}

// OIDCVerifier verifies OIDC identity tokens. A token whose audience
// contains the reserved "solid" value is treated as Solid-flavored and
// carries its WebID directly; any other token is a standard ID token whose
// signature is checked against the issuer's published key set, mapping
// sub -> WebID and azp -> ClientID. Access tokens bearing a permissions
// claim additionally prove derived access, checked against the tracked
// derivation issuer per resource.
type OIDCVerifier struct {
	cfg         OIDCConfig
	derivations DerivationTracker

	mu        sync.Mutex
	providers map[string]*oidc.Provider
}

var _ core.Verifier = (*OIDCVerifier)(nil)

func NewOIDCVerifier(cfg OIDCConfig, derivations DerivationTracker) *OIDCVerifier {
	return &OIDCVerifier{
		cfg:         cfg,
		derivations: derivations,
		providers:   make(map[string]*oidc.Provider),
	}
}

func (v *OIDCVerifier) issuerAllowed(issuer string) bool {
	if len(v.cfg.AllowedIssuers) == 0 {
		return true
	}
	for _, allowed := range v.cfg.AllowedIssuers {
		if allowed == issuer {
			return true
		}
	}
	return false
}

func (v *OIDCVerifier) providerFor(ctx context.Context, issuer string) (*oidc.Provider, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if p, ok := v.providers[issuer]; ok {
		return p, nil
	}
	p, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("creating oidc provider for %q: %w", issuer, err)
	}
	v.providers[issuer] = p
	return p, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, cred core.Credential) (*core.ClaimSet, error) {
	token, _, err := jwt.NewParser().ParseUnverified(cred.Token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("decoding id token: %w", err)
	}
	mapClaims := token.Claims.(jwt.MapClaims)

	issuer, err := mapClaims.GetIssuer()
	if err != nil || issuer == "" {
		return nil, fmt.Errorf("id token missing issuer")
	}
	if !v.issuerAllowed(issuer) {
		return nil, fmt.Errorf("issuer %q is not allow-listed", issuer)
	}

	audience, err := mapClaims.GetAudience()
	if err != nil {
		return nil, fmt.Errorf("id token missing audience")
	}

	var set *core.ClaimSet
	if containsAudience(audience, core.SolidAudience) {
		set, err = v.verifySolid(mapClaims, audience)
	} else {
		set, err = v.verifyStandard(ctx, cred.Token, issuer)
	}
	if err != nil {
		return nil, err
	}

	if raw, ok := mapClaims["permissions"]; ok {
		derived, err := v.verifyDerived(raw)
		if err != nil {
			return nil, err
		}
		set.Permissions = derived
	}
	return set, nil
}

// verifySolid handles Solid-flavored tokens: the reserved audience marks
// them, the real audience must still be this server.
func (v *OIDCVerifier) verifySolid(mapClaims jwt.MapClaims, audience jwt.ClaimStrings) (*core.ClaimSet, error) {
	if !containsAudience(audience, v.cfg.BaseURL) {
		return nil, fmt.Errorf("token not audienced to %q", v.cfg.BaseURL)
	}

	webid, ok := mapClaims["webid"].(string)
	if !ok || webid == "" {
		return nil, fmt.Errorf("solid token missing webid claim")
	}

	set := &core.ClaimSet{WebID: webid}
	if azp, ok := mapClaims["azp"].(string); ok && azp != core.SolidAudience {
		set.ClientID = azp
	}
	return set, nil
}

// verifyStandard validates a standard ID token against the issuer's JWKS.
func (v *OIDCVerifier) verifyStandard(ctx context.Context, rawToken, issuer string) (*core.ClaimSet, error) {
	provider, err := v.providerFor(ctx, issuer)
	if err != nil {
		return nil, err
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: v.cfg.BaseURL})
	idToken, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("oidc verification failed: %w", err)
	}

	var idClaims struct {
		Sub string `json:"sub"`
		Azp string `json:"azp"`
	}
	if err := idToken.Claims(&idClaims); err != nil {
		return nil, fmt.Errorf("extracting oidc claims: %w", err)
	}
	if idClaims.Sub == "" {
		return nil, fmt.Errorf("id token missing sub claim")
	}
	return &core.ClaimSet{WebID: idClaims.Sub, ClientID: idClaims.Azp}, nil
}

// verifyDerived filters a derived-access permissions claim down to the
// derivation-read scope and checks every surviving permission against the
// tracked derivation issuer. A mismatch is an error, not a silent drop.
func (v *OIDCVerifier) verifyDerived(raw any) ([]core.Permission, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("permissions claim is not serializable")
	}
	var derived []core.DerivedPermission
	if err := json.Unmarshal(buf, &derived); err != nil {
		return nil, fmt.Errorf("permissions claim must be a list of derived permissions")
	}

	var out []core.Permission
	for _, d := range derived {
		if !d.HasScope(core.ScopeDerivationRead) {
			continue
		}
		tracked := ""
		if v.derivations != nil {
			tracked = v.derivations.IssuerFor(d.ResourceID)
		}
		if d.Issuer != tracked || tracked == "" {
			return nil, fmt.Errorf("derived permission for %q bound to issuer %q, tracked issuer is %q",
				d.ResourceID, d.Issuer, tracked)
		}
		out = append(out, core.Permission{
			ResourceID:     d.ResourceID,
			ResourceScopes: []string{core.ScopeDerivationRead},
		})
	}
	return out, nil
}

func containsAudience(audience jwt.ClaimStrings, value string) bool {
	for _, aud := range audience {
		if aud == value {
			return true
		}
	}
	return false
}
