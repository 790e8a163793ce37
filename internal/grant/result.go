package grant

// UMATicketGrantType is the only grant type the processor accepts.
const UMATicketGrantType = "urn:ietf:params:oauth:grant-type:uma-ticket"

// Outcome is the three-variant result of a negotiation step. It is returned,
// never thrown, so callers cannot accidentally swallow a NeedInfo as a
// generic error.
type Outcome int

const (
	// OutcomeIssued means an access token was issued.
	OutcomeIssued Outcome = iota

	// OutcomeNeedInfo means claims were missing or insufficient; the caller
	// should retry with the replacement ticket and a better credential.
	OutcomeNeedInfo

	// OutcomeDenied is terminal for this ticket.
	OutcomeDenied
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIssued:
		return "issued"
	case OutcomeNeedInfo:
		return "need_info"
	case OutcomeDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Request is a parsed token endpoint request body.
type Request struct {
	GrantType        string
	Ticket           string
	ClaimToken       string
	ClaimTokenFormat string

	// RPT is a previously issued access token submitted for step-up.
	RPT string
}

// Result carries exactly one outcome's payload.
type Result struct {
	Outcome Outcome

	// AccessToken and TokenType are set on OutcomeIssued.
	AccessToken string
	TokenType   string

	// TicketID is the replacement ticket on OutcomeNeedInfo.
	TicketID string

	// RequiredFormats lists the claim token formats the server accepts,
	// set on OutcomeNeedInfo.
	RequiredFormats []string
}
