package client

import (
	"context"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/core"
)

// RegisterPermissions registers requested permissions on behalf of a
// resource server and returns the minted ticket id. Requires an auth token
// with the resource_server role.
func (c *Client) RegisterPermissions(ctx context.Context, perms []core.Permission) (string, string, error) {
	var resp api.TicketResponse
	correlation, err := c.post(ctx, c.endpoint(api.PermissionsRoute), perms, &resp)
	if err != nil {
		return "", correlation, err
	}
	return resp.Ticket, correlation, nil
}
