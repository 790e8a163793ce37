package api

import (
	"net/http"
	"strings"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api/presenter"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/buildinfo"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/grant"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/keys"
)

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with service information including version and commit hash.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, buildinfo.GetBuildInfo(), http.StatusOK)
}

// DiscoveryDocument is the uma2-configuration metadata.
type DiscoveryDocument struct {
	Issuer                        string   `json:"issuer"`
	TokenEndpoint                 string   `json:"token_endpoint"`
	PermissionEndpoint            string   `json:"permission_endpoint"`
	JWKSURI                       string   `json:"jwks_uri"`
	GrantTypesSupported           []string `json:"grant_types_supported"`
	ClaimTokenProfilesSupported   []string `json:"claim_token_profiles_supported"`
	UMAProfilesSupported          []string `json:"uma_profiles_supported"`
	DPoPSigningAlgValuesSupported []string `json:"dpop_signing_alg_values_supported"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimSuffix(s.baseURL, "/")
	presenter.JSON(w, r, DiscoveryDocument{
		Issuer:                        s.baseURL,
		TokenEndpoint:                 base + TokenRoute,
		PermissionEndpoint:            base + PermissionsRoute,
		JWKSURI:                       base + JWKSRoute,
		GrantTypesSupported:           []string{grant.UMATicketGrantType},
		ClaimTokenProfilesSupported:   s.pipeline.Formats(),
		UMAProfilesSupported:          []string{},
		DPoPSigningAlgValuesSupported: []string{keys.SigningAlg},
	}, http.StatusOK)
}

// handleJWKS publishes the public half of every active signing key.
func (s *Server) handleJWKS(w http.ResponseWriter, r *http.Request) {
	set, err := s.holder.JWKS()
	if err != nil {
		presenter.Error(w, r, "failed to render key set", http.StatusInternalServerError)
		return
	}
	presenter.JSON(w, r, set, http.StatusOK)
}
