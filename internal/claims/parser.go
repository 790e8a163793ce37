// Package claims turns raw, format-tagged credentials into verified claim
// sets. Verification is dispatched per format; trust decisions live in the
// individual verifiers.
package claims

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// DefaultSchemes maps Authorization header schemes to claim token formats.
var DefaultSchemes = map[string]string{
	"Bearer": core.FormatBearerJWT,
	"DPoP":   core.FormatBearerJWT,
}

// ParseCredential extracts a credential from the request's trust-bearing
// header. It is a pure function of the request: ErrUnauthenticated when no
// recognizable credential is present, ErrForbidden when a credential is
// present but its scheme is not mapped to a known format.
func ParseCredential(r *http.Request, schemes map[string]string) (core.Credential, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return core.Credential{}, core.ErrUnauthenticated
	}

	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return core.Credential{}, core.ErrUnauthenticated
	}

	for known, format := range schemes {
		// auth scheme names compare case-insensitively
		if strings.EqualFold(known, scheme) {
			return core.Credential{Token: token, Format: format}, nil
		}
	}
	return core.Credential{}, fmt.Errorf("%w: scheme %q", core.ErrForbidden, scheme)
}
