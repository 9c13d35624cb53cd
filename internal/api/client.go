package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 30 * time.Second

	defaultUserAgent = "keybot/0.1"
	requestIDHeader  = "X-Request-ID"
	jsonContentType  = "application/json"
)

// Client talks to the KeyBot REST API. It is safe for concurrent use; all
// retry state belongs to the individual call.
type Client struct {
	hosts     Hosts
	http      *http.Client
	token     TokenSource
	notifier  Notifier
	logger    *slog.Logger
	limiter   RateLimiter
	userAgent string
	timeout   time.Duration
	policy    retryPolicy
	sleep     func(context.Context, time.Duration) error
}

// New builds a Client for the given hosts.
func New(hosts Hosts, opts ...Option) (*Client, error) {
	if hosts.Primary == nil || hosts.Fallback == nil {
		return nil, fmt.Errorf("primary and fallback hosts are required")
	}
	c := &Client{
		hosts:     hosts,
		http:      &http.Client{},
		notifier:  Discard,
		logger:    slog.New(slog.DiscardHandler),
		userAgent: defaultUserAgent,
		timeout:   DefaultTimeout,
		policy:    defaultRetryPolicy(),
		sleep:     sleep,
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c, nil
}

// Hosts returns the hosts the client was built with.
func (c *Client) Hosts() Hosts {
	return c.hosts
}

// Get issues a GET and decodes the JSON response into out (which may be nil).
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodPut, path, body, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Request(ctx, http.MethodDelete, path, nil, out, opts...)
}

// call is one logical request.
type call struct {
	method    string
	path      string
	urls      [2]string
	payload   []byte
	out       any
	header    http.Header
	timeout   time.Duration
	requestID string
}

// Request performs one logical call: up to MaxRetries+1 attempts with linear
// backoff on transport failures and a one-way switch to the fallback host once
// half of the retry budget is spent. Any failure other than the caller's own
// cancellation is reported to the Notifier exactly once and returned as *Error.
func (c *Client) Request(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cl, err := c.newCall(method, path, body, out, opts)
	if err != nil {
		return c.report(apiErrorTitle, unknownErrorMessage, err)
	}
	return c.execute(ctx, cl)
}

func (c *Client) newCall(method, path string, body, out any, opts []RequestOption) (*call, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	switch m {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, &Error{Kind: KindRequest, Method: m, Cause: fmt.Errorf("unsupported method: %s", method)}
	}
	rc := newRequestConfig(opts)
	cl := &call{
		method:    m,
		path:      path,
		out:       out,
		header:    rc.header,
		timeout:   rc.timeout,
		requestID: uuid.NewString(),
	}
	if cl.timeout <= 0 {
		cl.timeout = c.timeout
	}
	for _, t := range []target{targetPrimary, targetFallback} {
		u, err := c.hosts.resolve(t, path, rc.query)
		if err != nil {
			return nil, &Error{Kind: KindRequest, Method: m, Cause: err}
		}
		cl.urls[t] = u
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindRequest, Method: m, URL: cl.urls[targetPrimary], Cause: fmt.Errorf("encode request body: %w", err)}
		}
		cl.payload = payload
	}
	return cl, nil
}

func (c *Client) execute(ctx context.Context, cl *call) error {
	st := c.policy.start()
	for n := 1; n <= c.policy.maxRetries+1; n++ {
		aerr := c.attempt(ctx, cl, st.target)
		if aerr != nil {
			aerr.Attempts = n
		}
		next, wait := c.policy.next(st, outcomeOf(aerr))
		switch next.phase {
		case phaseSucceeded:
			if n > 1 {
				c.logger.Debug("api request recovered",
					"method", cl.method, "path", cl.path, "host", st.target.String(), "attempts", n)
			}
			return nil
		case phaseFailed:
			return c.report(apiErrorTitle, unknownErrorMessage, aerr)
		case phaseSwitching:
			next = c.policy.engage(next)
			c.logger.Warn("primary host unreachable, switching to fallback",
				"method", cl.method, "path", cl.path, "request_id", cl.requestID, "retries", next.retries)
		default:
			c.logger.Debug("api request failed, retrying",
				"method", cl.method, "path", cl.path, "host", st.target.String(),
				"retry", next.retries, "wait", wait, "error", aerr)
			if err := c.sleep(ctx, wait); err != nil {
				return c.report(apiErrorTitle, unknownErrorMessage, &Error{
					Kind:     KindCanceled,
					Method:   cl.method,
					URL:      cl.urls[st.target],
					Attempts: n,
					Cause:    err,
				})
			}
		}
		st = next
	}
	return c.report(apiErrorTitle, unknownErrorMessage, &Error{
		Kind:     KindExhausted,
		Method:   cl.method,
		URL:      cl.urls[st.target],
		Attempts: c.policy.maxRetries + 1,
		Cause:    ErrMaxRetriesExceeded,
	})
}

func (c *Client) attempt(ctx context.Context, cl *call, t target) *Error {
	u := cl.urls[t]
	if err := c.wait(ctx); err != nil {
		return &Error{Kind: KindCanceled, Method: cl.method, URL: u, Cause: err}
	}

	actx, cancel := context.WithTimeout(ctx, cl.timeout)
	defer cancel()

	var body io.Reader
	if cl.payload != nil {
		body = bytes.NewReader(cl.payload)
	}
	req, err := http.NewRequestWithContext(actx, cl.method, u, body)
	if err != nil {
		return &Error{Kind: KindRequest, Method: cl.method, URL: u, Cause: fmt.Errorf("create request: %w", err)}
	}
	c.setHeaders(req.Header, cl.header, cl.requestID)
	return c.roundTrip(ctx, req, cl.out)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// setHeaders applies defaults, then caller overrides, then the bearer token.
func (c *Client) setHeaders(h http.Header, overrides http.Header, requestID string) {
	h.Set("Content-Type", jsonContentType)
	h.Set("Accept", jsonContentType)
	h.Set("User-Agent", c.userAgent)
	h.Set(requestIDHeader, requestID)
	for k, vv := range overrides {
		h.Del(k)
		for _, v := range vv {
			h.Add(k, v)
		}
	}
	if c.token == nil {
		return
	}
	if tok, ok := c.token(); ok && strings.TrimSpace(tok) != "" {
		h.Set("Authorization", "Bearer "+strings.TrimSpace(tok))
	}
}

// roundTrip sends one attempt. parent is the caller's context, used to tell a
// caller cancellation apart from the per-attempt deadline.
func (c *Client) roundTrip(parent context.Context, req *http.Request, out any) *Error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: classify(parent, err), Method: req.Method, URL: req.URL.String(), Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return &Error{
			Kind:       KindStatus,
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       raw,
			Cause:      fmt.Errorf("api %s returned status %d", req.URL.Path, resp.StatusCode),
		}
	}
	if readErr != nil {
		kind := classify(parent, readErr)
		if kind == KindTransport {
			kind = KindDecode
		}
		return &Error{Kind: kind, Method: req.Method, URL: req.URL.String(), Cause: fmt.Errorf("read response: %w", readErr)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindDecode, Method: req.Method, URL: req.URL.String(), Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func classify(parent context.Context, err error) Kind {
	if parent.Err() != nil {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindTransport
}

// report is the single exit for failed logical calls: one toast, one log
// line, and the error handed back to the caller. Calls ended by the caller's
// own context are logged but not toasted.
func (c *Client) report(title, generic string, err error) error {
	if ae, ok := AsError(err); ok && ae.Kind == KindCanceled {
		c.logger.Debug("api call canceled", "title", title, "error", err)
		return err
	}
	msg := messageFor(err, generic)
	c.logger.Error("api call failed", "title", title, "message", msg, "error", err)
	c.notifier.Notify(Toast{Level: LevelError, Title: title, Message: msg})
	return err
}
