package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// TokenSource returns the current bearer token, if any. It is consulted on
// every attempt and never cached by the Client.
type TokenSource func() (string, bool)

// RateLimiter throttles attempts. *rate.Limiter satisfies it.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTransport sets the RoundTripper used by the underlying *http.Client.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.http = &http.Client{Transport: rt}
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithRateLimiter(rl RateLimiter) Option {
	return func(c *Client) { c.limiter = rl }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithDefaultTimeout changes the per-attempt timeout used when a call does not
// set one.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// RequestOption customises a single logical call.
type RequestOption func(*requestConfig)

type requestConfig struct {
	header  http.Header
	query   url.Values
	timeout time.Duration
}

func newRequestConfig(opts []RequestOption) requestConfig {
	var rc requestConfig
	for _, o := range opts {
		if o != nil {
			o(&rc)
		}
	}
	return rc
}

// WithHeader overrides a default header for one call.
func WithHeader(key, value string) RequestOption {
	return func(c *requestConfig) {
		if c.header == nil {
			c.header = make(http.Header)
		}
		c.header.Set(key, value)
	}
}

func WithHeaders(h map[string]string) RequestOption {
	return func(c *requestConfig) {
		if len(h) == 0 {
			return
		}
		if c.header == nil {
			c.header = make(http.Header)
		}
		for k, v := range h {
			c.header.Set(k, v)
		}
	}
}

func WithQuery(values url.Values) RequestOption {
	return func(c *requestConfig) {
		if len(values) == 0 {
			return
		}
		if c.query == nil {
			c.query = make(url.Values)
		}
		for k, vv := range values {
			for _, v := range vv {
				c.query.Add(k, v)
			}
		}
	}
}

func WithQueryParam(key, value string) RequestOption {
	return func(c *requestConfig) {
		if c.query == nil {
			c.query = make(url.Values)
		}
		c.query.Add(key, value)
	}
}

// WithTimeout overrides the per-attempt timeout for one call.
func WithTimeout(d time.Duration) RequestOption {
	return func(c *requestConfig) { c.timeout = d }
}
