package client

import (
	"context"

	"github.com/SolidLabResearch/user-managed-access-sub001/internal/api"
	"github.com/SolidLabResearch/user-managed-access-sub001/internal/buildinfo"
)

func (c *Client) Info(ctx context.Context) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	correlation, err := c.get(ctx, c.endpoint(api.AboutRoute), &info)
	return &info, correlation, err
}

// Discover fetches the uma2-configuration metadata document.
func (c *Client) Discover(ctx context.Context) (*api.DiscoveryDocument, string, error) {
	var doc api.DiscoveryDocument
	correlation, err := c.get(ctx, c.endpoint(api.DiscoveryRoute), &doc)
	return &doc, correlation, err
}
