package core

import (
	"errors"
	"fmt"
)

// Error taxonomy of the negotiation engine. Handlers map these onto HTTP
// statuses; the grant processor decides which of them trigger re-negotiation.
var (
	// ErrBadRequest marks a malformed token request. Fatal, no retry.
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthenticated means no recognizable credential was present.
	ErrUnauthenticated = errors.New("no credential present")

	// ErrForbidden means a credential was present but its scheme is unknown.
	ErrForbidden = errors.New("credential scheme not supported")

	// ErrUnsupportedFormat means no verifier is registered for the format.
	ErrUnsupportedFormat = errors.New("unsupported claim token format")

	// ErrBadCredential means a credential failed verification. The caller may
	// recover by supplying a different credential.
	ErrBadCredential = errors.New("credential verification failed")

	// ErrRequestDenied is terminal for a ticket. The caller must obtain a new
	// ticket from the resource server.
	ErrRequestDenied = errors.New("request denied")

	// ErrTicketNotFound is returned by ticket stores on unknown ids.
	ErrTicketNotFound = errors.New("ticket not found")
)

// InvalidTokenError normalizes every ticket or access token parsing failure
// into a single kind, so callers cannot distinguish a forged token from a
// malformed one beyond the reason message.
type InvalidTokenError struct {
	Reason string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token, error while parsing: %s", e.Reason)
}

// ErrInvalidToken is the sentinel all InvalidTokenErrors match against.
var ErrInvalidToken = errors.New("invalid token")

func (e *InvalidTokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// NewInvalidTokenError builds an InvalidTokenError with the given reason.
func NewInvalidTokenError(format string, args ...any) error {
	return &InvalidTokenError{Reason: fmt.Sprintf(format, args...)}
}
