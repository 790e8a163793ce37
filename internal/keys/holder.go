package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// SigningAlg is the only algorithm the holder signs and publishes with.
const SigningAlg = "ES256"

// Holder is an in-memory key holder with explicit rotation. It owns one
// default signing key plus the historical public keys still accepted for
// verification. The published JWK set is cached and invalidated explicitly
// on every rotation or revocation, there is no hidden memoization.
type Holder struct {
	mu         sync.RWMutex
	defaultKID string
	private    map[string]*ecdsa.PrivateKey
	published  jwk.Set // rebuilt on rotate/revoke, nil when dirty
}

// NewHolder creates a holder with one freshly generated default key.
func NewHolder() (*Holder, error) {
	h := &Holder{private: make(map[string]*ecdsa.PrivateKey)}
	if _, err := h.Rotate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Rotate generates a new default signing key and returns its kid.
// Previous keys stay published for verification until revoked.
func (h *Holder) Rotate() (string, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generating signing key: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	kid := xid.New().String()
	h.private[kid] = key
	h.defaultKID = kid
	h.published = nil // invalidate cached set

	log.Debug().Str("kid", kid).Msg("rotated default signing key")
	return kid, nil
}

// Revoke drops a key entirely. Tokens signed with it stop verifying.
func (h *Holder) Revoke(kid string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.private[kid]; !ok {
		return fmt.Errorf("unknown key id %q", kid)
	}
	if kid == h.defaultKID {
		return fmt.Errorf("cannot revoke the default signing key %q", kid)
	}
	delete(h.private, kid)
	h.published = nil
	return nil
}

func (h *Holder) DefaultKeyID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.defaultKID
}

func (h *Holder) Signer(kid string) (crypto.Signer, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	key, ok := h.private[kid]
	if !ok {
		return nil, fmt.Errorf("no private key for kid %q", kid)
	}
	return key, nil
}

func (h *Holder) PublicKey(kid string) (crypto.PublicKey, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	key, ok := h.private[kid]
	if !ok {
		return nil, fmt.Errorf("no published key for kid %q", kid)
	}
	return &key.PublicKey, nil
}

// JWKS returns the published public keys. The set is cached until the next
// rotation or revocation.
func (h *Holder) JWKS() (jwk.Set, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.published != nil {
		return h.published, nil
	}

	set := jwk.NewSet()
	for kid, key := range h.private {
		pub, err := jwk.Import(&key.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("importing public key %q: %w", kid, err)
		}
		if err := pub.Set(jwk.KeyIDKey, kid); err != nil {
			return nil, fmt.Errorf("setting kid on %q: %w", kid, err)
		}
		if err := pub.Set(jwk.AlgorithmKey, SigningAlg); err != nil {
			return nil, fmt.Errorf("setting alg on %q: %w", kid, err)
		}
		if err := pub.Set(jwk.KeyUsageKey, "sig"); err != nil {
			return nil, fmt.Errorf("setting use on %q: %w", kid, err)
		}
		if err := set.AddKey(pub); err != nil {
			return nil, fmt.Errorf("adding key %q to set: %w", kid, err)
		}
	}

	h.published = set
	return set, nil
}
