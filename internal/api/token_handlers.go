package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api/presenter"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/claims"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/grant"
)

// TokenResponse is the success body of the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RequiredClaims hints the client which claim token formats the server
// accepts for the next round.
type RequiredClaims struct {
	ClaimTokenFormat []string `json:"claim_token_format"`
}

// NeedInfoResponse carries the replacement ticket for re-negotiation. Its
// presence of the ticket field is what distinguishes it from a denial.
type NeedInfoResponse struct {
	Error          string         `json:"error"`
	Ticket         string         `json:"ticket"`
	RequiredClaims RequiredClaims `json:"required_claims"`
}

// DeniedResponse is terminal for the ticket. It deliberately carries no
// ticket field.
type DeniedResponse struct {
	Error string `json:"error"`
}

// handleToken processes token requests for the uma-ticket grant type.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	if err := r.ParseForm(); err != nil {
		logger.Warn().Err(err).Msg("failed to parse token request form")
		presenter.Error(w, r, "invalid form body", http.StatusBadRequest)
		return
	}

	req := grant.Request{
		GrantType:        r.PostFormValue("grant_type"),
		Ticket:           r.PostFormValue("ticket"),
		ClaimToken:       r.PostFormValue("claim_token"),
		ClaimTokenFormat: r.PostFormValue("claim_token_format"),
		RPT:              r.PostFormValue("rpt"),
	}

	// a credential may also arrive in the Authorization header (Bearer or
	// DPoP-bound token) instead of the claim_token form pair
	if req.ClaimToken == "" && r.Header.Get("Authorization") != "" {
		cred, err := claims.ParseCredential(r, claims.DefaultSchemes)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to parse credential header")
			presenter.Err(w, r, err, "token request failed")
			return
		}
		req.ClaimToken = cred.Token
		req.ClaimTokenFormat = cred.Format
	}

	result, err := s.processor.Process(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Msg("token request failed")
		presenter.Err(w, r, err, "token request failed")
		return
	}

	switch result.Outcome {
	case grant.OutcomeIssued:
		presenter.JSON(w, r, TokenResponse{
			AccessToken: result.AccessToken,
			TokenType:   result.TokenType,
		}, http.StatusOK)
	case grant.OutcomeNeedInfo:
		presenter.JSON(w, r, NeedInfoResponse{
			Error:  "need_info",
			Ticket: result.TicketID,
			RequiredClaims: RequiredClaims{
				ClaimTokenFormat: result.RequiredFormats,
			},
		}, http.StatusForbidden)
	case grant.OutcomeDenied:
		presenter.JSON(w, r, DeniedResponse{
			Error: "request_denied",
		}, http.StatusForbidden)
	default:
		logger.Error().Str("outcome", result.Outcome.String()).Msg("unexpected grant outcome")
		presenter.Error(w, r, "internal server error", http.StatusInternalServerError)
	}
}
