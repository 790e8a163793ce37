// Package client is a small HTTP client for the authorization server. It
// covers the negotiation endpoints for clients and resource servers alike.
package client

import (
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAuthToken attaches a bearer token to every request. Resource servers
// use this for the permission endpoint.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}
