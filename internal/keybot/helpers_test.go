package keybot

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/keybot/keybot/internal/api"
)

type testEnv struct {
	client *Client
	mu     sync.Mutex
	toasts []api.Toast
}

func (e *testEnv) toastCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.toasts)
}

// newTestEnv serves handler on the primary host (/api/...) and returns a
// Client wired through a real *api.Client.
func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	env := &testEnv{}
	hosts, err := api.ParseHosts(server.URL, "/api")
	if err != nil {
		t.Fatalf("ParseHosts returned error: %v", err)
	}
	ac, err := api.New(hosts, api.WithNotifier(api.NotifierFunc(func(toast api.Toast) {
		env.mu.Lock()
		env.toasts = append(env.toasts, toast)
		env.mu.Unlock()
	})))
	if err != nil {
		t.Fatalf("api.New returned error: %v", err)
	}
	c, err := New(ac)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	env.client = c
	return env
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
