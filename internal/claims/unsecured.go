package claims

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// UnsecuredVerifier accepts "<webid>[:<client id>]" with percent-encoded
// parts and no cryptographic check whatsoever. Local testing only.
type UnsecuredVerifier struct{}

var _ core.Verifier = (*UnsecuredVerifier)(nil)

func NewUnsecuredVerifier() *UnsecuredVerifier {
	log.Warn().Msg("UNSECURED claim verifier enabled: any caller can claim any WebID. Never run this in production.")
	return &UnsecuredVerifier{}
}

func (v *UnsecuredVerifier) Verify(_ context.Context, cred core.Credential) (*core.ClaimSet, error) {
	rawWebID, rawClientID, _ := strings.Cut(cred.Token, ":")

	webid, err := url.QueryUnescape(rawWebID)
	if err != nil || webid == "" {
		return nil, fmt.Errorf("unsecured token carries no decodable webid")
	}

	set := &core.ClaimSet{WebID: webid}
	if rawClientID != "" {
		clientID, err := url.QueryUnescape(rawClientID)
		if err != nil {
			return nil, fmt.Errorf("unsecured token carries an undecodable client id")
		}
		set.ClientID = clientID
	}
	return set, nil
}
