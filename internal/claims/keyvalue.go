package claims

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// KeyValueVerifier passes the raw token through as an extra claim keyed by
// its format. It proves nothing; it exists for unit composition and testing.
type KeyValueVerifier struct{}

var _ core.Verifier = (*KeyValueVerifier)(nil)

func NewKeyValueVerifier() *KeyValueVerifier {
	log.Warn().Msg("key-value claim verifier enabled: tokens pass through unverified. Never run this in production.")
	return &KeyValueVerifier{}
}

func (v *KeyValueVerifier) Verify(_ context.Context, cred core.Credential) (*core.ClaimSet, error) {
	return &core.ClaimSet{
		Extra: map[string]string{cred.Format: cred.Token},
	}, nil
}
