package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/grant"
)

// TokenRequest carries one round of the negotiation.
type TokenRequest struct {
	Ticket           string
	ClaimToken       string
	ClaimTokenFormat string
	RPT              string
}

// TokenResult is the decoded outcome of one token endpoint round. Exactly
// one of AccessToken, Ticket or Denied is meaningful.
type TokenResult struct {
	// AccessToken is set when the request was granted.
	AccessToken string
	TokenType   string

	// Ticket is the replacement ticket when the server needs more claims.
	Ticket          string
	RequiredFormats []string

	// Denied marks a terminal denial. The caller must obtain a new ticket
	// from the resource server.
	Denied bool
}

// RequestToken performs one round against the token endpoint. A need-info
// or denied answer is not an error; both come back in the result.
func (c *Client) RequestToken(ctx context.Context, tr TokenRequest) (*TokenResult, string, error) {
	form := url.Values{}
	form.Set("grant_type", grant.UMATicketGrantType)
	form.Set("ticket", tr.Ticket)
	if tr.ClaimToken != "" {
		form.Set("claim_token", tr.ClaimToken)
		form.Set("claim_token_format", tr.ClaimTokenFormat)
	}
	if tr.RPT != "" {
		form.Set("rpt", tr.RPT)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.endpoint(api.TokenRoute), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("connection failed: %w", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	correlation := correlationFromResponse(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		var success api.TokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&success); err != nil {
			return nil, correlation, fmt.Errorf("failed to decode token response: %w", err)
		}
		return &TokenResult{
			AccessToken: success.AccessToken,
			TokenType:   success.TokenType,
		}, correlation, nil
	case http.StatusForbidden:
		// need_info carries a replacement ticket, a denial does not
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, correlation, fmt.Errorf("reading response body: %w", err)
		}
		var needInfo api.NeedInfoResponse
		if json.Unmarshal(body, &needInfo) == nil && needInfo.Ticket != "" {
			return &TokenResult{
				Ticket:          needInfo.Ticket,
				RequiredFormats: needInfo.RequiredClaims.ClaimTokenFormat,
			}, correlation, nil
		}
		return &TokenResult{Denied: true}, correlation, nil
	default:
		return nil, correlation, parseErrorResponse(resp)
	}
}
