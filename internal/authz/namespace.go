package authz

import (
	"context"
	"net/url"
	"strings"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// DefaultPublicNamespaces are the path namespaces granted without any
// policy check.
var DefaultPublicNamespaces = []string{"profile", "public"}

// NamespaceAuthorizer short-circuits requests that stay inside public
// namespaces. When every requested resource's second path segment is in the
// namespace set the full request is granted immediately; a single resource
// outside them delegates the whole ticket to the wrapped authorizer.
type NamespaceAuthorizer struct {
	namespaces map[string]struct{}
	next       core.Authorizer
}

var _ core.Authorizer = (*NamespaceAuthorizer)(nil)

func NewNamespaceAuthorizer(next core.Authorizer, namespaces []string) *NamespaceAuthorizer {
	if len(namespaces) == 0 {
		namespaces = DefaultPublicNamespaces
	}
	set := make(map[string]struct{}, len(namespaces))
	for _, ns := range namespaces {
		set[ns] = struct{}{}
	}
	return &NamespaceAuthorizer{namespaces: set, next: next}
}

func (a *NamespaceAuthorizer) Authorize(ctx context.Context, ticket *core.Ticket, principal *core.Principal) (*core.Ticket, error) {
	for _, perm := range ticket.RequestedPermissions {
		if !a.public(perm.ResourceID) {
			return a.next.Authorize(ctx, ticket, principal)
		}
	}
	return resolved(ticket, ticket.RequestedPermissions, nil), nil
}

// public checks the second path segment of the resource IRI.
func (a *NamespaceAuthorizer) public(resourceID string) bool {
	parsed, err := url.Parse(resourceID)
	if err != nil {
		return false
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) < 2 {
		return false
	}
	_, ok := a.namespaces[segments[1]]
	return ok
}
