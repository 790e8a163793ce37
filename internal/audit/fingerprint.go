package audit

import (
	"crypto/sha256"
	"encoding/base64"
)

// Fingerprint derives a stable, non-reversible identifier for an issued
// token so audit entries never carry the token itself.
func Fingerprint(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(hash[:])
}
