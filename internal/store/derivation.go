package store

import (
	"strings"
	"sync"
)

// DerivationRegistry tracks which issuer derived access for a resource.
// The OIDC verifier checks derived-access permissions against it: a
// permission whose bound issuer differs from the tracked one is an error.
type DerivationRegistry struct {
	mu sync.RWMutex
	// issuers maps a resource id prefix to the derivation issuer.
	issuers map[string]string
}

func NewDerivationRegistry(issuers map[string]string) *DerivationRegistry {
	m := make(map[string]string, len(issuers))
	for prefix, iss := range issuers {
		m[prefix] = iss
	}
	return &DerivationRegistry{issuers: m}
}

// Track records (or replaces) the derivation issuer for a resource prefix.
func (r *DerivationRegistry) Track(resourcePrefix, issuer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issuers[resourcePrefix] = issuer
}

// IssuerFor returns the tracked derivation issuer for the resource id.
// The longest matching prefix wins. Empty string means nothing is tracked.
func (r *DerivationRegistry) IssuerFor(resourceID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best, bestLen := "", -1
	for prefix, iss := range r.issuers {
		if strings.HasPrefix(resourceID, prefix) && len(prefix) > bestLen {
			best, bestLen = iss, len(prefix)
		}
	}
	return best
}
