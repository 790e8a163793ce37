package claims

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// TypedVerifier dispatches a credential to the verifier registered for its
// format. The meta format is special-cased: its token is a JSON map of
// format -> token, each entry verified recursively and the claim sets
// deep-merged in document order, later entries winning on collision.
type TypedVerifier struct {
	verifiers map[string]core.Verifier
	order     []string
}

var _ core.ClaimPipeline = (*TypedVerifier)(nil)

func NewTypedVerifier() *TypedVerifier {
	return &TypedVerifier{verifiers: make(map[string]core.Verifier)}
}

// Register binds a verifier to a format. Registering the same format twice
// replaces the earlier verifier but keeps its position in Formats.
func (t *TypedVerifier) Register(format string, verifier core.Verifier) {
	if _, ok := t.verifiers[format]; !ok {
		t.order = append(t.order, format)
	}
	t.verifiers[format] = verifier
}

// Formats lists the registered formats in registration order. The meta
// format is always supported and not listed separately.
func (t *TypedVerifier) Formats() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *TypedVerifier) Verify(ctx context.Context, cred core.Credential) (*core.ClaimSet, error) {
	if cred.Format == core.FormatMeta {
		return t.verifyMeta(ctx, cred.Token)
	}

	verifier, ok := t.verifiers[cred.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, cred.Format)
	}

	set, err := verifier.Verify(ctx, cred)
	if err != nil {
		if errors.Is(err, core.ErrUnsupportedFormat) || errors.Is(err, core.ErrBadCredential) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrBadCredential, err)
	}
	return set, nil
}

func (t *TypedVerifier) verifyMeta(ctx context.Context, token string) (*core.ClaimSet, error) {
	creds, err := decodeMetaToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrBadCredential, err)
	}

	merged := &core.ClaimSet{}
	for _, cred := range creds {
		set, err := t.Verify(ctx, cred)
		if err != nil {
			return nil, err
		}
		merged.Merge(set)
	}
	return merged, nil
}

// decodeMetaToken parses a JSON object of format -> token preserving the
// document order of the keys, which defines the merge order.
func decodeMetaToken(token string) ([]core.Credential, error) {
	dec := json.NewDecoder(strings.NewReader(token))

	open, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing meta token: %w", err)
	}
	if delim, ok := open.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("meta token must be a JSON object")
	}

	var creds []core.Credential
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing meta token: %w", err)
		}
		format, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("meta token key must be a string")
		}

		var inner string
		if err := dec.Decode(&inner); err != nil {
			return nil, fmt.Errorf("meta token entry %q must be a string", format)
		}
		creds = append(creds, core.Credential{Token: inner, Format: format})
	}
	return creds, nil
}
