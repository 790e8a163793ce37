package claims

import (
	"context"
	"net/url"
	"strings"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// IRINormalizingVerifier wraps another verifier and rewrites WebID/ClientID
// claim values that are not absolute IRIs to baseURL + percent-encoded
// value. Values that already are IRIs pass through untouched.
type IRINormalizingVerifier struct {
	inner   core.Verifier
	baseURL string
}

var _ core.Verifier = (*IRINormalizingVerifier)(nil)

func NewIRINormalizingVerifier(inner core.Verifier, baseURL string) *IRINormalizingVerifier {
	return &IRINormalizingVerifier{
		inner:   inner,
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
	}
}

func (v *IRINormalizingVerifier) Verify(ctx context.Context, cred core.Credential) (*core.ClaimSet, error) {
	set, err := v.inner.Verify(ctx, cred)
	if err != nil {
		return nil, err
	}

	set.WebID = v.normalize(set.WebID)
	set.ClientID = v.normalize(set.ClientID)
	return set, nil
}

func (v *IRINormalizingVerifier) normalize(value string) string {
	if value == "" {
		return value
	}
	if parsed, err := url.Parse(value); err == nil && parsed.IsAbs() {
		return value
	}
	return v.baseURL + url.PathEscape(value)
}
