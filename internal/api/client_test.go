package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type toastRecorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *toastRecorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *toastRecorder) all() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// failingPrimary drops the first n requests aimed at the primary host (paths
// under /api/) as if the host were unreachable; n < 0 drops all of them.
func failingPrimary(n int) (http.RoundTripper, *int32) {
	var dropped int32
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			if n < 0 || atomic.LoadInt32(&dropped) < int32(n) {
				atomic.AddInt32(&dropped, 1)
				return nil, errors.New("dial tcp: connection refused")
			}
		}
		return http.DefaultTransport.RoundTrip(r)
	}), &dropped
}

type testClient struct {
	*Client
	toasts *toastRecorder
	delays []time.Duration
}

func newTestClient(t *testing.T, origin string, opts ...Option) *testClient {
	t.Helper()
	hosts, err := ParseHosts(origin, "/api")
	if err != nil {
		t.Fatalf("ParseHosts returned error: %v", err)
	}
	tc := &testClient{toasts: &toastRecorder{}}
	opts = append([]Option{WithNotifier(tc.toasts)}, opts...)
	c, err := New(hosts, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	c.sleep = func(_ context.Context, d time.Duration) error {
		tc.delays = append(tc.delays, d)
		return nil
	}
	tc.Client = c
	return tc
}

func TestClient_GetDecodesAndSetsHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"customer":{"id":42,"name":"Jo Doe"}}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL, WithTokenSource(func() (string, bool) { return "tok-123", true }))

	var payload struct {
		Customer struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"customer"`
	}
	err := c.Get(context.Background(), "/customers/42", &payload, WithHeader("X-Client", "cli"))
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if payload.Customer.ID != 42 || payload.Customer.Name != "Jo Doe" {
		t.Fatalf("payload = %#v, want id=42", payload)
	}
	if gotPath != "/api/customers/42" {
		t.Fatalf("path = %q, want /api/customers/42", gotPath)
	}
	if got.Get("Authorization") != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, want bearer token", got.Get("Authorization"))
	}
	if got.Get("Content-Type") != "application/json" || got.Get("Accept") != "application/json" {
		t.Fatalf("content headers = %q/%q, want application/json", got.Get("Content-Type"), got.Get("Accept"))
	}
	if !strings.HasPrefix(got.Get("User-Agent"), "keybot/") {
		t.Fatalf("User-Agent = %q, want keybot/*", got.Get("User-Agent"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Fatalf("X-Request-ID missing")
	}
	if got.Get("X-Client") != "cli" {
		t.Fatalf("X-Client = %q, want caller header", got.Get("X-Client"))
	}
	if toasts := c.toasts.all(); len(toasts) != 0 {
		t.Fatalf("toasts = %v, want none", toasts)
	}
}

func TestClient_CallerHeadersOverrideDefaults(t *testing.T) {
	t.Parallel()

	var gotType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	if err := c.Post(context.Background(), "/notes", map[string]string{"content": "x"}, nil,
		WithHeaders(map[string]string{"Content-Type": "application/vnd.keybot+json"})); err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if gotType != "application/vnd.keybot+json" {
		t.Fatalf("Content-Type = %q, want caller override", gotType)
	}
}

func TestClient_NoTokenOmitsAuthorization(t *testing.T) {
	t.Parallel()

	var auth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Values("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL, WithTokenSource(func() (string, bool) { return "", false }))
	if err := c.Get(context.Background(), "/settings", nil); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(auth) != 0 {
		t.Fatalf("Authorization = %v, want none", auth)
	}
}

func TestClient_PostQuoteAgainstHealthyPrimary(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"quote":{"quote_number":"Q-1001"}}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	var out struct {
		Success bool `json:"success"`
		Quote   struct {
			Number string `json:"quote_number"`
		} `json:"quote"`
	}
	err := c.Post(context.Background(), "/quotes", map[string]any{"customer_name": "Ann", "price": 120.5}, &out)
	if err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if gotMethod != http.MethodPost || gotBody["customer_name"] != "Ann" {
		t.Fatalf("server saw %s %v, want POST with payload", gotMethod, gotBody)
	}
	if !out.Success || out.Quote.Number != "Q-1001" {
		t.Fatalf("out = %#v, want decoded quote", out)
	}
	if len(c.toasts.all()) != 0 || len(c.delays) != 0 {
		t.Fatalf("toasts=%v delays=%v, want none", c.toasts.all(), c.delays)
	}
}

func TestClient_HTTPErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"phone number is invalid"}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	err := c.Put(context.Background(), "/customers/7/notes/3", map[string]string{"content": ""}, nil)
	if err == nil {
		t.Fatalf("Put returned nil error, want status error")
	}
	if !IsStatus(err, http.StatusUnprocessableEntity) {
		t.Fatalf("err = %v, want 422 status error", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("hits = %d, want 1", got)
	}
	if len(c.delays) != 0 {
		t.Fatalf("delays = %v, want none", c.delays)
	}
	toasts := c.toasts.all()
	if len(toasts) != 1 || toasts[0].String() != "API Error: phone number is invalid" {
		t.Fatalf("toasts = %v, want one API Error with server message", toasts)
	}
}

func TestClient_HTTPErrorWithoutMessageUsesErrorText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	err := c.Get(context.Background(), "/appointments", nil)
	ae, ok := AsError(err)
	if !ok || ae.Kind != KindStatus || ae.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v, want *Error status 500", err)
	}
	toasts := c.toasts.all()
	if len(toasts) != 1 || !strings.Contains(toasts[0].Message, "returned status 500") {
		t.Fatalf("toasts = %v, want status text", toasts)
	}
}

func TestClient_TransientFailureRetriesPrimaryWithBackoff(t *testing.T) {
	t.Parallel()

	var paths []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"customer":{"id":42}}`))
	}))
	t.Cleanup(server.Close)

	rt, dropped := failingPrimary(1)
	c := newTestClient(t, server.URL, WithTransport(rt))

	var out map[string]any
	if err := c.Get(context.Background(), "/customers/42", &out); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if atomic.LoadInt32(dropped) != 1 {
		t.Fatalf("dropped = %d, want 1", atomic.LoadInt32(dropped))
	}
	if !reflect.DeepEqual(c.delays, []time.Duration{time.Second}) {
		t.Fatalf("delays = %v, want [1s]", c.delays)
	}
	if len(paths) != 1 || paths[0] != "/api/customers/42" {
		t.Fatalf("served paths = %v, want only primary", paths)
	}
	if len(c.toasts.all()) != 0 {
		t.Fatalf("toasts = %v, want none", c.toasts.all())
	}
}

func TestClient_SwitchesToFallbackOnce(t *testing.T) {
	t.Parallel()

	var fallbackHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/settings" {
			atomic.AddInt32(&fallbackHits, 1)
		}
		_, _ = w.Write([]byte(`{"twilioSettings":{"enabled":true}}`))
	}))
	t.Cleanup(server.Close)

	rt, dropped := failingPrimary(-1)
	c := newTestClient(t, server.URL, WithTransport(rt))

	var out map[string]any
	if err := c.Get(context.Background(), "/settings", &out); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got := atomic.LoadInt32(dropped); got != 3 {
		t.Fatalf("primary attempts = %d, want 3", got)
	}
	if got := atomic.LoadInt32(&fallbackHits); got != 1 {
		t.Fatalf("fallback attempts = %d, want 1", got)
	}
	if !reflect.DeepEqual(c.delays, []time.Duration{time.Second, 2 * time.Second}) {
		t.Fatalf("delays = %v, want [1s 2s]", c.delays)
	}
	if len(c.toasts.all()) != 0 {
		t.Fatalf("toasts = %v, want none", c.toasts.all())
	}
}

func TestClient_AllAttemptsFail(t *testing.T) {
	t.Parallel()

	var attempts int32
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("network is unreachable")
	})
	c := newTestClient(t, "http://keybot.invalid", WithTransport(rt))

	err := c.Delete(context.Background(), "/customers/5/files/9", nil)
	ae, ok := AsError(err)
	if !ok || ae.Kind != KindTransport {
		t.Fatalf("err = %v, want transport *Error", err)
	}
	if ae.Attempts != MaxRetries+1 {
		t.Fatalf("Attempts = %d, want %d", ae.Attempts, MaxRetries+1)
	}
	if got := atomic.LoadInt32(&attempts); got != MaxRetries+1 {
		t.Fatalf("round trips = %d, want %d", got, MaxRetries+1)
	}
	if !strings.HasPrefix(ae.URL, "http://keybot.invalid/customers/") {
		t.Fatalf("last URL = %q, want fallback host", ae.URL)
	}
	toasts := c.toasts.all()
	if len(toasts) != 1 || !strings.Contains(toasts[0].Message, "network is unreachable") {
		t.Fatalf("toasts = %v, want one transport toast", toasts)
	}
}

func TestClient_TimeoutIsTerminal(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	err := c.Get(context.Background(), "/customers", nil, WithTimeout(50*time.Millisecond))
	ae, ok := AsError(err)
	if !ok || ae.Kind != KindTimeout {
		t.Fatalf("err = %v, want timeout *Error", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("hits = %d, want 1", got)
	}
	if len(c.toasts.all()) != 1 {
		t.Fatalf("toasts = %v, want 1", c.toasts.all())
	}
}

// A server that stalls once and then answers still fails the call: a
// timeout ends the call without a second attempt.
func TestClient_TimeoutOnceThenRespondsIsNotRetried(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	var out map[string]any
	err := c.Get(context.Background(), "/customers", &out, WithTimeout(50*time.Millisecond))
	if ae, ok := AsError(err); !ok || ae.Kind != KindTimeout || ae.Attempts != 1 {
		t.Fatalf("err = %v, want timeout after one attempt", err)
	}
	if out != nil {
		t.Fatalf("out = %v, want untouched", out)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("hits = %d, want 1", got)
	}
	if len(c.delays) != 0 {
		t.Fatalf("delays = %v, want no backoff after a timeout", c.delays)
	}
	if toasts := c.toasts.all(); len(toasts) != 1 || toasts[0].Title != "API Error" {
		t.Fatalf("toasts = %v, want one API Error", toasts)
	}
}

func TestClient_DecodeErrorFailsWithoutRetry(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("{not-json"))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	var out map[string]any
	err := c.Get(context.Background(), "/quotes", &out)
	ae, ok := AsError(err)
	if !ok || ae.Kind != KindDecode || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("err = %v, want decode error", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("hits = %d, want 1", atomic.LoadInt32(&hits))
	}
}

func TestClient_CanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection reset by peer")
	})
	c := newTestClient(t, "http://keybot.invalid", WithTransport(rt))
	c.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	err := c.Get(context.Background(), "/customers", nil)
	ae, ok := AsError(err)
	if !ok || ae.Kind != KindCanceled || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want canceled *Error", err)
	}
	if len(c.toasts.all()) != 0 {
		t.Fatalf("toasts = %v, want none for a canceled call", c.toasts.all())
	}
}

func TestClient_RepeatedGetIsStable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"customers":[{"id":1},{"id":2}]}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)
	var first, second map[string]any
	if err := c.Get(context.Background(), "/customers", &first); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if err := c.Get(context.Background(), "/customers", &second); err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %v vs %v", first, second)
	}
}

func TestClient_UnsupportedMethodIsReported(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, "http://keybot.invalid")
	err := c.Request(context.Background(), http.MethodPatch, "/customers/1", nil, nil)
	ae, ok := AsError(err)
	if !ok || ae.Kind != KindRequest {
		t.Fatalf("err = %v, want request *Error", err)
	}
	toasts := c.toasts.all()
	if len(toasts) != 1 || toasts[0].String() != "API Error: unsupported method: PATCH" {
		t.Fatalf("toasts = %v, want unsupported method toast", toasts)
	}
}

func TestClient_RateLimiterIsConsulted(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	rl := &countingLimiter{}
	c := newTestClient(t, server.URL, WithRateLimiter(rl))
	for i := 0; i < 3; i++ {
		if err := c.Get(context.Background(), "/customers", nil); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}
	if got := atomic.LoadInt32(&rl.waits); got != 3 {
		t.Fatalf("limiter waits = %d, want 3", got)
	}
}

type countingLimiter struct{ waits int32 }

func (l *countingLimiter) Wait(context.Context) error {
	atomic.AddInt32(&l.waits, 1)
	return nil
}
