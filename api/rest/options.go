package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/goliatone/go-wizard/flow"
)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithTimeout(t time.Duration) Option {
	return func(c *Client) {
		if t > 0 {
			cp := *c.http
			cp.Timeout = t
			c.http = &cp
		}
	}
}

// WithToken sends a static bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = func(context.Context) (string, error) { return token, nil }
	}
}

func WithTokenSource(src TokenSource) Option {
	return func(c *Client) {
		c.token = src
	}
}

func WithMediaOpener(o MediaOpener) Option {
	return func(c *Client) {
		if o != nil {
			c.opener = o
		}
	}
}

func WithLogger(l flow.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}
