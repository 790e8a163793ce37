package middleware

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api/presenter"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/claims"
)

const resourceServerRole = "resource_server"

// ResourceServerAuth guards the permission registration endpoint. Resource
// servers authenticate with a JWT signed by the shared HMAC key, carrying
// the "resource_server" role.
// TODO(future): replace the shared key with per-server registration.
func ResourceServerAuth(signingKey []byte) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred, err := claims.ParseCredential(r, claims.DefaultSchemes)
			if err != nil {
				presenter.Error(w, r, "resource server credentials required", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(cred.Token, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method")
				}
				return signingKey, nil
			})
			if err != nil || !token.Valid {
				presenter.Error(w, r, "invalid resource server token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				presenter.Error(w, r, "invalid claims", http.StatusUnauthorized)
				return
			}

			roles, ok := claims["roles"].([]any)
			if !ok {
				presenter.Error(w, r, "invalid claims", http.StatusUnauthorized)
				return
			}

			hasPrivilege := false
			for _, roleAny := range roles {
				roleStr, ok := roleAny.(string)
				if !ok {
					continue
				}
				if roleStr == resourceServerRole {
					hasPrivilege = true
					break
				}
			}
			if !hasPrivilege {
				presenter.Error(w, r, "insufficient privileges", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
